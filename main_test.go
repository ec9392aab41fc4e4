package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/honeybear/api"
	"github.com/wricardo/mcp-training/honeybear/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Honey Bear Game Server" {
		t.Errorf("Expected app name %q, got %q", "Honey Bear Game Server", AppName)
	}
}

func TestInitializeServices(t *testing.T) {
	svc, err := initializeServices("configs", 0)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.sessions.Close()

	configs, err := svc.game.ListConfigs(context.Background())
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	ids := map[string]bool{}
	for _, c := range configs {
		ids[c.ConfigID] = true
	}
	if !ids["classic"] || !ids["meadow"] {
		t.Errorf("Expected classic and meadow boards, got %v", ids)
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	if _, err := initializeServices("/non/existent/path", 0); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestConnectRedis_Disabled(t *testing.T) {
	client, err := connectRedis(context.Background(), "")
	if err != nil || client != nil {
		t.Errorf("Expected no client and no error, got %v, %v", client, err)
	}
}

// captureFlags runs the app with its actions replaced by a recorder
func captureFlags(t *testing.T, args ...string) map[string]string {
	t.Helper()
	got := map[string]string{}
	record := func(ctx context.Context, cmd *cli.Command) error {
		got["command"] = cmd.Name
		got["host"] = cmd.String("host")
		got["port"] = fmt.Sprint(cmd.Int("port"))
		got["config-dir"] = cmd.String("config-dir")
		got["tick"] = cmd.Duration("tick").String()
		got["redis-addr"] = cmd.String("redis-addr")
		got["ngrok"] = fmt.Sprint(cmd.Bool("ngrok"))
		return nil
	}

	app := newApp()
	app.Action = record
	for _, sub := range app.Commands {
		sub.Action = record
	}
	if err := app.Run(context.Background(), append([]string{"honeybear"}, args...)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return got
}

func TestFlagDefaults(t *testing.T) {
	got := captureFlags(t)

	want := map[string]string{
		"command":    "honeybear",
		"host":       "localhost",
		"port":       "8080",
		"config-dir": "configs",
		"tick":       time.Second.String(),
		"redis-addr": "",
		"ngrok":      "false",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: expected %q, got %q", k, v, got[k])
		}
	}
}

func TestFlagsFromArgsAndEnv(t *testing.T) {
	t.Setenv("CONFIG_DIR", "/srv/boards")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	got := captureFlags(t, "--port", "9090", "--tick", "250ms", "server")

	if got["command"] != "server" {
		t.Errorf("Expected server command, got %q", got["command"])
	}
	if got["port"] != "9090" || got["tick"] != "250ms" {
		t.Errorf("Expected port 9090 and tick 250ms, got %q and %q", got["port"], got["tick"])
	}
	if got["config-dir"] != "/srv/boards" || got["redis-addr"] != "localhost:6379" {
		t.Errorf("Expected env values, got %q and %q", got["config-dir"], got["redis-addr"])
	}
}

func TestStdioAliases(t *testing.T) {
	for _, alias := range []string{"stdio-mcp", "mcp-stdio", "mcp"} {
		if got := captureFlags(t, alias); got["command"] != "stdio-mcp" {
			t.Errorf("%s: expected stdio-mcp, got %q", alias, got["command"])
		}
	}
}

func TestMCPHandler(t *testing.T) {
	handler := mcpHandler(mcp.NewClient("http://localhost:8080").GetMCPServer())

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/mcp", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET, got %d", w.Code)
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`
	w = httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "honey-bear-game") {
		t.Errorf("Expected server name in initialize response, got %s", w.Body.String())
	}
}

func TestBuildRouter(t *testing.T) {
	svc, err := initializeServices("configs", 0)
	if err != nil {
		t.Fatal(err)
	}
	defer svc.sessions.Close()

	router := buildRouter(api.NewServer(svc.game, nil), mcp.NewClient("http://localhost:8080"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(`{"config_id":"meadow"}`)))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 from the API, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mcp", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected /mcp to be routed to the MCP handler, got %d", w.Code)
	}
}
