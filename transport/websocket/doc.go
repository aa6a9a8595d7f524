// Package websocket provides the real-time transport for tic-tac-toe
// sessions.
//
// The websocket package implements:
//   - Connection upgrade with a configurable origin allow-list
//   - Per-connection read and write pumps with ping/pong keepalive
//   - A single event loop that serializes all game service calls
//   - Delivery of service outbounds to one connection, a session room, or
//     everyone
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub owns all
// connections. Each connection gets a random id and two goroutines. The
// read pump forwards frames into the hub; the write pump drains the
// connection's send buffer. Only Run touches the client table and the game
// service.
//
// Message Protocol:
//
// Every WebSocket message carries one JSON frame in either direction:
//
//	{"event": "make_move", "data": {"row": 1, "col": 2}}
//	{"event": "move_made", "data": {"session": {...}, "move": {...}, "game_state": {...}}}
//
// A frame that is not valid JSON or lacks an event name is answered with
// an "error" frame carrying code "unknown_event".
//
// Usage:
//
//	hub := websocket.NewHub(dispatcher, logger, []string{"http://localhost:3000"})
//	go hub.Run(ctx)
//	router.HandleFunc("/ws", hub.ServeWS)
//
// Connection Lifecycle:
//
// 1. Client connects and is registered; it receives "connected"
// 2. Client sends events, receives the resulting frames
// 3. Disconnection vacates the client's seat, if any
//
// A client whose send buffer fills up is treated as disconnected.
package websocket
