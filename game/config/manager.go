package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/honeybear/game/engine"
	"github.com/wricardo/mcp-training/honeybear/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = service.ErrInvalidConfig
)

// DefaultName is the config used when none is requested. It is always
// available, from disk if present and built in otherwise.
const DefaultName = "classic"

var extensions = []string{".json", ".yaml", ".yml"}

// Manager handles game configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
	sf            singleflight.Group
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// LoadConfig loads a configuration by name. The name may carry a .json,
// .yaml or .yml extension; without one the extensions are tried in that order.
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	key := configID(name)
	if err := checkName(key); err != nil {
		return nil, err
	}

	m.mu.RLock()
	if config, exists := m.configs[key]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	result, err, _ := m.sf.Do(key, func() (interface{}, error) {
		m.mu.RLock()
		if config, exists := m.configs[key]; exists {
			m.mu.RUnlock()
			return config, nil
		}
		m.mu.RUnlock()

		config, err := m.readConfig(name)
		if errors.Is(err, ErrConfigNotFound) && key == DefaultName {
			config, err = engine.DefaultConfig(), nil
		}
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.configs[key] = config
		m.mu.Unlock()
		return config, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*engine.GameConfig), nil
}

func (m *Manager) readConfig(name string) (*engine.GameConfig, error) {
	path, err := m.findFile(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := Decode(filepath.Ext(path), data)
	if err != nil {
		return nil, err
	}
	return config, nil
}

// Decode parses config bytes by file extension and validates the result
func Decode(ext string, data []byte) (*engine.GameConfig, error) {
	var config engine.GameConfig
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &config, nil
}

func (m *Manager) findFile(name string) (string, error) {
	if ext := filepath.Ext(name); isConfigExt(ext) {
		path := filepath.Join(m.configDir, name)
		if _, err := os.Stat(path); err != nil {
			return "", ErrConfigNotFound
		}
		return path, nil
	}
	for _, ext := range extensions {
		path := filepath.Join(m.configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrConfigNotFound
}

// ListConfigs returns information about all available configurations
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := map[string]bool{}

	for _, entry := range entries {
		if entry.IsDir() || !isConfigExt(filepath.Ext(entry.Name())) {
			continue
		}

		id := configID(entry.Name())
		if seen[id] {
			continue
		}

		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			// Skip invalid configs
			continue
		}
		seen[id] = true
		configs = append(configs, describe(entry.Name(), id, config))
	}

	if !seen[DefaultName] {
		configs = append(configs, describe("", DefaultName, engine.DefaultConfig()))
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

func describe(filename, id string, config *engine.GameConfig) *service.ConfigInfo {
	board, start := engine.ParseLayout(config.Layout)
	pot, _ := engine.FindKind(board, engine.Pot)
	_, reachable := engine.ShortestPath(board, start, pot)

	return &service.ConfigInfo{
		Filename:      filename,
		ConfigID:      id,
		Name:          config.Name,
		Description:   config.Description,
		TimeLimit:     config.TimeLimit,
		QuestionCount: len(config.Questions),
		PotReachable:  reachable,
	}
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops all cached configurations and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(DefaultName)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

// SaveConfig validates and writes a configuration. Names ending in .yaml or
// .yml are written as YAML, everything else as JSON.
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	key := configID(name)
	if err := checkName(key); err != nil {
		return err
	}
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	filename := name
	ext := filepath.Ext(name)
	if !isConfigExt(ext) {
		ext = ".json"
		filename = name + ext
	}

	var data []byte
	var err error
	if ext == ".json" {
		data, err = json.MarshalIndent(config, "", "  ")
	} else {
		data, err = yaml.Marshal(config)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(m.configDir, filename)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[key] = config
	m.mu.Unlock()

	return nil
}

func configID(name string) string {
	if ext := filepath.Ext(name); isConfigExt(ext) {
		return strings.TrimSuffix(name, ext)
	}
	return name
}

func isConfigExt(ext string) bool {
	for _, e := range extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

func checkName(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: bad config name %q", ErrInvalidConfig, id)
	}
	return nil
}
