// Package config provides board configuration management for the Honey Bear game.
//
// Boards live as JSON (.json) or YAML (.yaml, .yml) files in the config
// directory. Each one defines a 6x6 layout (B bear, E empty, ? question,
// R rock, P pot), a time limit, the question pool and optional feedback
// messages. Files are validated with engine.ValidateGameConfig on load and
// cached; concurrent loads of the same name share one read.
//
// The "classic" board is always available. When no classic file exists the
// built-in engine.DefaultConfig is served under that name.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	meadow, err := manager.LoadConfig("meadow")
//	configs, err := manager.ListConfigs()
package config
