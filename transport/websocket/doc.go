// Package websocket pushes game snapshots to renderers and accepts player input.
//
// A single Hub goroutine owns the client registry. Clients join a session
// through /ws?session=<id>; every broadcast for that session goes to all of
// its clients, one JSON document per frame:
//
//	{"session_id":"ab12","event":"state_update","game_state":{...}}
//	{"session_id":"ab12","event":"tick","game_state":{...}}
//
// Clients may send input frames, which are handed to the InputHandler:
//
//	{"action":"move","direction":"up"}
//	{"action":"answer","option":"who"}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	hub.SetInputHandler(func(ctx context.Context, id string, in websocket.Input) error { ... })
//
// Cancelling the Run context closes every connection.
package websocket
