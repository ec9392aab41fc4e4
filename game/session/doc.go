// Package session provides session management for the Honey Bear game.
//
// The session package implements:
//   - Thread-safe in-memory session storage and retrieval
//   - Short random session IDs, matched case-insensitively
//   - Per-session countdown clocks and tick notification
//   - Session cleanup and expiration
//
// Manager is the main session manager. Each service.Session holds its own
// engine.GameEngine; the manager starts that engine's clock when the session
// is created and stops it when the session is deleted, expires or the manager
// is closed. No tick fires for a session after any of those return.
//
// Sessions live only in memory and do not survive a restart.
//
// Usage:
//
//	manager := session.NewManager(session.WithTickInterval(time.Second))
//	defer manager.Close()
//
//	manager.SetTickObserver(func(id string, state *engine.GameState) {
//		hub.BroadcastToSession(id, state)
//	})
//
//	sess, err := manager.Create("", engine.DefaultConfig())
package session
