// Package api provides the HTTP REST API for the Honey Bear game.
//
// Endpoints:
//
// Session Management:
//   - POST   /api/sessions              create a session, body {"config_id": "classic"}
//   - GET    /api/sessions              list sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/{id}         session details
//   - DELETE /api/sessions/{id}         delete a session and stop its clock
//
// Game Operations:
//   - GET  /api/sessions/{id}/state     current snapshot
//   - POST /api/sessions/{id}/move      {"direction": "up", "reset": false}
//   - POST /api/sessions/{id}/bulk-move {"moves": ["right", "down"], "reset": false}
//   - POST /api/sessions/{id}/answer    {"option": "whose"}
//   - POST /api/sessions/{id}/reset
//   - GET  /api/sessions/{id}/history   (?page=1&limit=20&order=desc)
//
// Configuration:
//   - GET  /api/configs                 list boards
//   - GET  /api/configs/{name}          full board config
//   - POST /api/configs                 save a board config
//
// Other:
//   - GET /healthz
//   - GET /ws?session={id}              WebSocket upgrade
//
// A move or answer the game refuses is still a 200 response with
// "success": false and an "outcome" code. Errors use {"error": "..."} with
// 400 for a bad body or invalid config, 404 for an unknown session or config,
// and 500 otherwise.
//
// Every accepted move, answer or reset is pushed to the session's WebSocket
// viewers, or to the Broadcaster given with WithBroadcaster.
package api
