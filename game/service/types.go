package service

import (
	"github.com/wricardo/mcp-training/tictactoe/game/engine"
	"github.com/wricardo/mcp-training/tictactoe/game/session"
)

// Inbound event names
const (
	EventCreateSession   = "create_session"
	EventJoinSession     = "join_session"
	EventMakeMove        = "make_move"
	EventSendChatMessage = "send_chat_message"
	EventRestartGame     = "restart_game"
	EventGetSessions     = "get_sessions"
	EventLeaveSession    = "leave_session"
)

// Outbound event names
const (
	EventConnected           = "connected"
	EventSessionCreated      = "session_created"
	EventSessionJoined       = "session_joined"
	EventSessionLeft         = "session_left"
	EventPlayerJoined        = "player_joined"
	EventPlayerLeft          = "player_left"
	EventMoveMade            = "move_made"
	EventGameOver            = "game_over"
	EventGameRestarted       = "game_restarted"
	EventSessionsList        = "sessions_list"
	EventChatMessageReceived = "chat_message_received"
	EventError               = "error"
)

// Scope selects who receives an Outbound
type Scope int

const (
	// ScopeConnection targets the requesting connection only
	ScopeConnection Scope = iota
	// ScopeRoom targets every connection bound to a session
	ScopeRoom
	// ScopeAll targets every connected party
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopeConnection:
		return "connection"
	case ScopeRoom:
		return "room"
	case ScopeAll:
		return "all"
	default:
		return "unknown"
	}
}

// Outbound is one message the transport must deliver. Recipients is
// resolved when the Outbound is built, after the mutation it reports has
// been committed; it is empty for ScopeAll.
type Outbound struct {
	Scope      Scope
	Recipients []string
	SessionID  string
	Event      string
	Payload    any
}

// Request payloads. Pointer fields distinguish an absent value from zero.

type CreateSessionRequest struct {
	PlayerName string `json:"player_name" validate:"required"`
	Password   string `json:"password"`
}

type JoinSessionRequest struct {
	SessionID  string `json:"session_id" validate:"required"`
	PlayerName string `json:"player_name" validate:"required"`
	Password   string `json:"password"`
}

type MakeMoveRequest struct {
	Row *int `json:"row" validate:"required"`
	Col *int `json:"col" validate:"required"`
}

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// Response payloads, shaped after the client contract

type ConnectedPayload struct {
	Status string `json:"status"`
}

type SessionPayload struct {
	SessionID string          `json:"session_id"`
	Session   session.Session `json:"session"`
}

type SessionLeftPayload struct {
	SessionID string `json:"session_id"`
}

type PlayerJoinedPayload struct {
	Session   session.Session `json:"session"`
	NewPlayer string          `json:"new_player"`
}

type PlayerLeftPayload struct {
	Message string          `json:"message"`
	Session session.Session `json:"session"`
}

type MoveMadePayload struct {
	Session   session.Session  `json:"session"`
	Move      engine.Move      `json:"move"`
	GameState engine.GameState `json:"game_state"`
}

type GameOverPayload struct {
	Result string         `json:"result"`
	Winner *engine.Symbol `json:"winner"`
	IsDraw bool           `json:"is_draw"`
}

type GameRestartedPayload struct {
	Session   session.Session  `json:"session"`
	GameState engine.GameState `json:"game_state"`
}

type SessionsListPayload struct {
	Sessions []session.Summary `json:"sessions"`
}

type ChatMessagePayload struct {
	Message session.ChatMessage `json:"message"`
}

type ErrorPayload struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}
