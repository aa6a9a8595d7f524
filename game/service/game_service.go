package service

import (
	"encoding/json"

	"github.com/wricardo/mcp-training/tictactoe/game/session"
)

// GameService defines the event-level operations a transport drives.
// Each call runs to completion and returns everything that must be
// delivered as a result; the caller serializes calls.
type GameService interface {
	// Connection lifecycle
	Connect(connID string) []Outbound
	Disconnect(connID string) []Outbound

	// Handle processes one inbound event with its raw JSON payload
	Handle(connID, event string, data json.RawMessage) []Outbound
}

// SessionStore defines session storage operations
type SessionStore interface {
	Create(connID, creatorName, password string) (session.Session, error)
	Join(sessionID, connID, name, password string) (session.Session, error)
	Leave(sessionID, connID string) (session.LeaveResult, error)
	Restart(sessionID string) (session.Session, error)
	ApplyMove(sessionID, connID string, row, col int) (session.MoveOutcome, error)
	AppendChat(sessionID, connID, text string) (session.ChatMessage, error)
	Get(sessionID string) (session.Session, error)
	ListPublic() []session.Summary
	Count() int
}
