package service

import (
	"github.com/wricardo/mcp-training/tictactoe/game/session"
)

// Lister is the read side of the session registry the lobby needs
type Lister interface {
	ListPublic() []session.Summary
}

// Lobby derives the public session list and packages it for delivery.
// Every update is a full resend to everyone, never a diff.
type Lobby struct {
	sessions Lister
}

// NewLobby creates a lobby broadcaster over sessions
func NewLobby(sessions Lister) *Lobby {
	return &Lobby{sessions: sessions}
}

// Snapshot returns the current public session list
func (l *Lobby) Snapshot() SessionsListPayload {
	return SessionsListPayload{Sessions: l.sessions.ListPublic()}
}

// Update builds the broadcast sent after any change to session existence,
// membership or status
func (l *Lobby) Update() Outbound {
	return Outbound{
		Scope:   ScopeAll,
		Event:   EventSessionsList,
		Payload: l.Snapshot(),
	}
}

// Reply answers a single connection's request for the list
func (l *Lobby) Reply(connID string) Outbound {
	return Outbound{
		Scope:      ScopeConnection,
		Recipients: []string{connID},
		Event:      EventSessionsList,
		Payload:    l.Snapshot(),
	}
}
