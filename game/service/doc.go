// Package service provides the business logic layer for the Honey Bear game.
//
// The service package implements:
//   - Multi-session game management
//   - Move, bulk move and answer processing with per-step diagnostics
//   - Configuration listing, loading and saving
//   - Paginated move history
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the game engine. Each session owns an independent engine. Results carry the
// engine's outcome string so callers can tell a rejected move from a blocked
// one without parsing messages; invalid game input is never an error, only a
// missing session or config is.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "right", false)
//	if result.GameState.ActiveQuestion != nil {
//		gameService.Answer(ctx, info.ID, "whose")
//	}
package service
