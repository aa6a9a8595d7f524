// Package mcp exposes a read-only Model Context Protocol view of the
// tic-tac-toe server.
//
// The Client is a thin proxy: every tool call becomes a GET against the
// REST API and the JSON answer is rendered as text for the agent.
//
// MCP Tools:
//   - list_sessions: Public lobby list
//   - get_session: Board, players and status of one session
//   - server_health: Health check with session count
//
// Transport Modes:
//   - Stdio: ServeStdio, for local MCP clients
//   - HTTP: Client implements http.Handler, one JSON-RPC message per POST
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	mux.Handle("/mcp", client)
//
//	// or
//	err := client.ServeStdio()
package mcp
