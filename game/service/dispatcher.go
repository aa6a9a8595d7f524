package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/wricardo/mcp-training/tictactoe/game/router"
	"go.uber.org/zap"
)

// Dispatcher implements GameService over a session store and a router.
//
// Every handler has the same shape: resolve the acting session from the
// connection, validate, mutate through the store, then build the
// outbounds. A failed precondition yields one error outbound for the
// requester and no mutation.
type Dispatcher struct {
	sessions SessionStore
	router   *router.Router
	lobby    *Lobby
	validate *validator.Validate
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher. The router must be used by this
// dispatcher only.
func NewDispatcher(sessions SessionStore, rt *router.Router, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		sessions: sessions,
		router:   rt,
		lobby:    NewLobby(sessions),
		validate: validator.New(),
		logger:   logger,
	}
}

// Connect greets a newly connected party
func (d *Dispatcher) Connect(connID string) []Outbound {
	d.logger.Info("client connected", zap.String("conn_id", connID))
	return []Outbound{d.reply(connID, EventConnected, ConnectedPayload{Status: "Connected to server"})}
}

// Disconnect vacates the connection's seat, if any, and refreshes the lobby
func (d *Dispatcher) Disconnect(connID string) []Outbound {
	d.logger.Info("client disconnected", zap.String("conn_id", connID))

	if _, ok := d.router.Resolve(connID); !ok {
		return nil
	}
	outs := d.vacate(connID)
	return append(outs, d.lobby.Update())
}

// Handle routes one inbound event
func (d *Dispatcher) Handle(connID, event string, data json.RawMessage) []Outbound {
	d.logger.Debug("event received", zap.String("conn_id", connID), zap.String("event", event))

	var (
		outs []Outbound
		err  error
	)
	switch event {
	case EventCreateSession:
		var req CreateSessionRequest
		if err = d.decode(data, &req, "Player name is required"); err == nil {
			outs, err = d.CreateSession(connID, req)
		}
	case EventJoinSession:
		var req JoinSessionRequest
		if err = d.decode(data, &req, "Session ID and player name are required"); err == nil {
			outs, err = d.JoinSession(connID, req)
		}
	case EventMakeMove:
		if !d.seated(connID) {
			err = errNotInGame
			break
		}
		var req MakeMoveRequest
		if err = d.decode(data, &req, "Row and column are required"); err == nil {
			outs, err = d.MakeMove(connID, req)
		}
	case EventSendChatMessage:
		if !d.seated(connID) {
			err = errNotInGame
			break
		}
		var req ChatRequest
		if err = d.decode(data, &req, "Message is required"); err == nil {
			outs, err = d.SendChatMessage(connID, req)
		}
	case EventRestartGame:
		outs, err = d.RestartGame(connID)
	case EventGetSessions:
		outs = []Outbound{d.lobby.Reply(connID)}
	case EventLeaveSession:
		outs, err = d.LeaveSession(connID)
	default:
		err = &Error{Code: CodeUnknownEvent, Message: fmt.Sprintf("Unknown event %q", event)}
	}

	if err != nil {
		return []Outbound{d.fail(connID, event, err)}
	}
	return outs
}

// CreateSession seats the requester as X in a new session. A connection
// already seated elsewhere leaves that session first.
func (d *Dispatcher) CreateSession(connID string, req CreateSessionRequest) ([]Outbound, error) {
	name := strings.TrimSpace(req.PlayerName)
	if name == "" {
		return nil, missingField("Player name is required")
	}

	sess, err := d.sessions.Create(connID, name, req.Password)
	if err != nil {
		return nil, err
	}

	var outs []Outbound
	if _, bound := d.router.Resolve(connID); bound {
		outs = d.vacate(connID)
	}
	d.router.Bind(connID, sess.ID)

	outs = append(outs,
		d.reply(connID, EventSessionCreated, SessionPayload{SessionID: sess.ID, Session: sess}),
		d.lobby.Update(),
	)
	return outs, nil
}

// JoinSession seats the requester in an existing session
func (d *Dispatcher) JoinSession(connID string, req JoinSessionRequest) ([]Outbound, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	name := strings.TrimSpace(req.PlayerName)
	if sessionID == "" || name == "" {
		return nil, missingField("Session ID and player name are required")
	}

	sess, err := d.sessions.Join(sessionID, connID, name, req.Password)
	if err != nil {
		return nil, err
	}

	var outs []Outbound
	if prev, bound := d.router.Resolve(connID); bound && prev != sessionID {
		outs = d.vacate(connID)
	}
	d.router.Bind(connID, sessionID)

	outs = append(outs,
		d.room(sessionID, EventPlayerJoined, PlayerJoinedPayload{Session: sess, NewPlayer: name}),
		d.reply(connID, EventSessionJoined, SessionPayload{SessionID: sessionID, Session: sess}),
		d.lobby.Update(),
	)
	return outs, nil
}

// MakeMove plays the requester's symbol at the requested cell
func (d *Dispatcher) MakeMove(connID string, req MakeMoveRequest) ([]Outbound, error) {
	sessionID, ok := d.router.Resolve(connID)
	if !ok {
		return nil, errNotInGame
	}
	if req.Row == nil || req.Col == nil {
		return nil, missingField("Row and column are required")
	}

	res, err := d.sessions.ApplyMove(sessionID, connID, *req.Row, *req.Col)
	if err != nil {
		return nil, err
	}

	state := res.Session.GameState
	outs := []Outbound{
		d.room(sessionID, EventMoveMade, MoveMadePayload{Session: res.Session, Move: res.Move, GameState: state}),
	}
	if state.GameOver {
		result := state.Result(res.Player.Name)
		d.logger.Info("game over",
			zap.String("session_id", sessionID),
			zap.String("result", result),
		)
		outs = append(outs,
			d.room(sessionID, EventGameOver, GameOverPayload{Result: result, Winner: state.Winner, IsDraw: state.IsDraw}),
			d.lobby.Update(),
		)
	}
	return outs, nil
}

// SendChatMessage appends to the session chat and relays it to the room
func (d *Dispatcher) SendChatMessage(connID string, req ChatRequest) ([]Outbound, error) {
	sessionID, ok := d.router.Resolve(connID)
	if !ok {
		return nil, errNotInGame
	}
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, missingField("Message is required")
	}

	msg, err := d.sessions.AppendChat(sessionID, connID, text)
	if err != nil {
		return nil, err
	}
	return []Outbound{d.room(sessionID, EventChatMessageReceived, ChatMessagePayload{Message: msg})}, nil
}

// RestartGame resets the board of the requester's session
func (d *Dispatcher) RestartGame(connID string) ([]Outbound, error) {
	sessionID, ok := d.router.Resolve(connID)
	if !ok {
		return nil, errNotInGame
	}

	sess, err := d.sessions.Restart(sessionID)
	if err != nil {
		return nil, err
	}
	return []Outbound{
		d.room(sessionID, EventGameRestarted, GameRestartedPayload{Session: sess, GameState: sess.GameState}),
		d.lobby.Update(),
	}, nil
}

// LeaveSession vacates the requester's seat without closing the connection
func (d *Dispatcher) LeaveSession(connID string) ([]Outbound, error) {
	sessionID, ok := d.router.Resolve(connID)
	if !ok {
		return nil, errNotInGame
	}

	outs := d.vacate(connID)
	outs = append(outs,
		d.reply(connID, EventSessionLeft, SessionLeftPayload{SessionID: sessionID}),
		d.lobby.Update(),
	)
	return outs, nil
}

// vacate removes connID from its session, then unbinds it, and notifies
// whoever is left. The lobby update is left to the caller.
func (d *Dispatcher) vacate(connID string) []Outbound {
	sessionID, ok := d.router.Resolve(connID)
	if !ok {
		return nil
	}

	res, err := d.sessions.Leave(sessionID, connID)
	d.router.Unbind(connID)
	if err != nil {
		d.logger.Error("router and registry out of step",
			zap.String("conn_id", connID),
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return nil
	}
	if res.Removed {
		return nil
	}

	message := fmt.Sprintf("%s has left the game. Waiting for a new player...", res.Player.Name)
	return []Outbound{d.room(sessionID, EventPlayerLeft, PlayerLeftPayload{Message: message, Session: res.Session})}
}

// decode unmarshals and validates a payload. An absent payload decodes to
// the zero request so that validation reports the missing fields.
// seated reports whether connID holds a seat. In-session events check it
// before looking at their payload.
func (d *Dispatcher) seated(connID string) bool {
	_, ok := d.router.Resolve(connID)
	return ok
}

func (d *Dispatcher) decode(data json.RawMessage, v any, missing string) error {
	if len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, v); err != nil {
			return &Error{Code: CodeMissingField, Message: "Malformed payload", Err: err}
		}
	}
	if err := d.validate.Struct(v); err != nil {
		return &Error{Code: CodeMissingField, Message: missing, Err: err}
	}
	return nil
}

func (d *Dispatcher) reply(connID, event string, payload any) Outbound {
	return Outbound{
		Scope:      ScopeConnection,
		Recipients: []string{connID},
		Event:      event,
		Payload:    payload,
	}
}

func (d *Dispatcher) room(sessionID, event string, payload any) Outbound {
	return Outbound{
		Scope:      ScopeRoom,
		Recipients: d.router.Members(sessionID),
		SessionID:  sessionID,
		Event:      event,
		Payload:    payload,
	}
}

func (d *Dispatcher) fail(connID, event string, err error) Outbound {
	e := toError(err)
	fields := []zap.Field{
		zap.String("conn_id", connID),
		zap.String("event", event),
		zap.String("code", string(e.Code)),
		zap.Error(err),
	}
	if e.Code == CodeInternal {
		d.logger.Error("request failed", fields...)
	} else {
		d.logger.Debug("request rejected", fields...)
	}
	return d.reply(connID, EventError, ErrorPayload{Code: e.Code, Message: e.Message})
}
