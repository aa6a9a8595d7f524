package session

import (
	"time"

	"github.com/samber/lo"
	"github.com/wricardo/mcp-training/tictactoe/game/engine"
)

const (
	// MaxPlayers is the seat count of a session
	MaxPlayers = 2

	// MaxChatMessages bounds the chat log; older messages are evicted first
	MaxChatMessages = 50

	// IDLength is the length of session and chat message ids
	IDLength = 8
)

// Status is the lifecycle stage of a session
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Player is a seated participant. ConnectionID identifies the live
// connection controlling the seat; it is a lookup key, not an owner.
type Player struct {
	Name         string        `json:"name"`
	Symbol       engine.Symbol `json:"symbol"`
	ConnectionID string        `json:"socket_id"`
}

// ChatMessage is an immutable chat log entry
type ChatMessage struct {
	ID           string        `json:"id"`
	PlayerName   string        `json:"player_name"`
	Message      string        `json:"message"`
	Timestamp    time.Time     `json:"timestamp"`
	PlayerSymbol engine.Symbol `json:"player_symbol"`
}

// Session is one match: membership, board, chat and status.
// Values handed out by the Registry are snapshots; the password is never
// serialized.
type Session struct {
	ID           string           `json:"id"`
	Creator      string           `json:"creator"`
	Password     string           `json:"-"`
	HasPassword  bool             `json:"has_password"`
	Players      []Player         `json:"players"`
	GameState    engine.GameState `json:"game_state"`
	ChatMessages []ChatMessage    `json:"chat_messages"`
	CreatedAt    time.Time        `json:"created_at"`
	Status       Status           `json:"status"`
}

// Summary is the public lobby projection of a session
type Summary struct {
	ID          string    `json:"id"`
	Creator     string    `json:"creator"`
	HasPassword bool      `json:"has_password"`
	PlayerCount int       `json:"player_count"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// LeaveResult describes the outcome of Registry.Leave
type LeaveResult struct {
	// Player is the seat that was vacated
	Player Player
	// Removed is true when the session was destroyed because nobody remained
	Removed bool
	// Session is the renormalized remainder; zero when Removed is true
	Session Session
}

// MoveOutcome describes a committed move
type MoveOutcome struct {
	Move    engine.Move
	Player  Player
	Session Session
}

// snapshot returns a deep copy safe to hand outside the registry lock
func (s *Session) snapshot() Session {
	c := *s
	c.HasPassword = s.Password != ""
	c.Players = append([]Player(nil), s.Players...)
	c.ChatMessages = append([]ChatMessage(nil), s.ChatMessages...)
	if s.GameState.Winner != nil {
		w := *s.GameState.Winner
		c.GameState.Winner = &w
	}
	if c.Players == nil {
		c.Players = []Player{}
	}
	if c.ChatMessages == nil {
		c.ChatMessages = []ChatMessage{}
	}
	return c
}

// summary projects the session for the lobby
func (s *Session) summary() Summary {
	return Summary{
		ID:          s.ID,
		Creator:     s.Creator,
		HasPassword: s.Password != "",
		PlayerCount: len(s.Players),
		Status:      s.Status,
		CreatedAt:   s.CreatedAt,
	}
}

// playerIndex returns the seat held by connID, or -1
func (s *Session) playerIndex(connID string) int {
	_, idx, _ := lo.FindIndexOf(s.Players, func(p Player) bool {
		return p.ConnectionID == connID
	})
	return idx
}
