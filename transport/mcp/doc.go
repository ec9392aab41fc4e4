// Package mcp exposes the Honey Bear game to AI agents as Model Context
// Protocol tools.
//
// The Client talks to a running game server over its REST API, so the same
// tool set works in-process (mounted at /mcp) and as a separate stdio
// process pointed at a remote server.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state, describe_cell
//   - move, bulk_move, answer, reset_game
//   - move_history
//   - list_configs, game_instructions
//
// Every game tool takes the session_id returned by create_session. Tool
// failures come back as MCP error results rather than protocol errors, so
// an agent can read the message and retry.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
