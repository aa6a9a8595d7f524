// Package api provides the HTTP endpoints of the tic-tac-toe server.
//
// Endpoints:
//   - GET /health - Liveness plus the number of sessions held
//   - GET /api/sessions - Public lobby list (waiting and playing sessions)
//   - GET /api/sessions/{id} - One session snapshot, password redacted
//   - GET /ws - WebSocket upgrade, handed to the transport hub
//
// All gameplay happens over the WebSocket; the HTTP surface is read-only.
//
// Usage:
//
//	srv := api.NewServer(registry, hub.ServeWS, logger)
//	http.ListenAndServe(":8080", srv)
//
// Error Handling:
//
// Errors are returned as JSON with an appropriate HTTP status code:
//
//	{"error": "Session not found"}
package api
