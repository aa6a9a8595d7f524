package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/wricardo/mcp-training/tictactoe/game/engine"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrAlreadyJoined    = errors.New("already joined")
	ErrNameTaken        = errors.New("name taken")
	ErrBadPassword      = errors.New("bad password")
	ErrSessionFull      = errors.New("session full")
	ErrAlreadyFinished  = errors.New("already finished")
	ErrNotInSession     = errors.New("not in session")
	ErrIDSpaceExhausted = errors.New("could not allocate a session id")
)

// maxIDAttempts bounds id allocation retries on collision
const maxIDAttempts = 16

// Registry owns every live session and is their only writer.
//
// Mutations are expected from a single dispatch goroutine; the lock exists
// so read-only observers (health checks, lobby endpoints) can run
// concurrently with it.
type Registry struct {
	sessions map[string]*Session
	newID    func() string
	now      func() time.Time
	logger   *zap.Logger
	mu       sync.RWMutex
}

// Option configures a Registry
type Option func(*Registry)

// WithIDGenerator overrides the id source
func WithIDGenerator(gen func() string) Option {
	return func(r *Registry) {
		r.newID = gen
	}
}

// WithClock overrides the time source used for created_at and chat timestamps
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates an empty registry
func NewRegistry(logger *zap.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		sessions: make(map[string]*Session),
		newID:    GenerateID,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GenerateID returns a random 8-character token
func GenerateID() string {
	return uuid.NewString()[:IDLength]
}

// Create seats creatorName as X in a new waiting session. An empty
// password means the session is open.
func (r *Registry) Create(connID, creatorName, password string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.allocateID()
	if err != nil {
		return Session{}, err
	}

	s := &Session{
		ID:       id,
		Creator:  creatorName,
		Password: password,
		Players: []Player{{
			Name:         creatorName,
			Symbol:       engine.X,
			ConnectionID: connID,
		}},
		GameState: engine.NewGameState(),
		CreatedAt: r.now(),
		Status:    StatusWaiting,
	}
	r.sessions[id] = s

	r.logger.Info("session created",
		zap.String("session_id", id),
		zap.String("creator", creatorName),
		zap.Bool("has_password", password != ""),
	)
	return s.snapshot(), nil
}

// allocateID draws ids until one is unused. Caller holds the write lock.
func (r *Registry) allocateID() (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := r.newID()
		if _, exists := r.sessions[id]; !exists {
			return id, nil
		}
		r.logger.Warn("session id collision", zap.String("session_id", id), zap.Int("attempt", attempt+1))
	}
	return "", ErrIDSpaceExhausted
}

// Join seats name in sessionID. Checks run in a fixed order and the first
// failure wins: not found, already joined (by connection), name taken
// (case-insensitive, this session only), bad password, full, finished.
func (r *Registry) Join(sessionID, connID, name, password string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if s.playerIndex(connID) >= 0 {
		return Session{}, ErrAlreadyJoined
	}
	if lo.ContainsBy(s.Players, func(p Player) bool { return strings.EqualFold(p.Name, name) }) {
		return Session{}, ErrNameTaken
	}
	if s.Password != "" && s.Password != password {
		return Session{}, ErrBadPassword
	}
	if len(s.Players) >= MaxPlayers {
		return Session{}, ErrSessionFull
	}
	if s.Status == StatusFinished {
		return Session{}, ErrAlreadyFinished
	}

	symbol := engine.X
	if lo.ContainsBy(s.Players, func(p Player) bool { return p.Symbol == engine.X }) {
		symbol = engine.O
	}
	s.Players = append(s.Players, Player{
		Name:         name,
		Symbol:       symbol,
		ConnectionID: connID,
	})
	if len(s.Players) == MaxPlayers {
		s.Status = StatusPlaying
	}

	r.logger.Info("player joined",
		zap.String("session_id", sessionID),
		zap.String("player", name),
		zap.String("symbol", string(symbol)),
		zap.String("status", string(s.Status)),
	)
	return s.snapshot(), nil
}

// Leave vacates the seat held by connID. An emptied session is destroyed.
// A session left with one player is renormalized: that player becomes X
// and the creator, the board is reset and the status returns to waiting.
func (r *Registry) Leave(sessionID, connID string) (LeaveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return LeaveResult{}, ErrSessionNotFound
	}
	idx := s.playerIndex(connID)
	if idx < 0 {
		return LeaveResult{}, ErrNotInSession
	}

	leaving := s.Players[idx]
	s.Players = append(s.Players[:idx:idx], s.Players[idx+1:]...)

	if len(s.Players) == 0 {
		delete(r.sessions, sessionID)
		r.logger.Info("session removed, no players remaining", zap.String("session_id", sessionID))
		return LeaveResult{Player: leaving, Removed: true}, nil
	}

	s.Players[0].Symbol = engine.X
	s.Creator = s.Players[0].Name
	s.GameState = engine.NewGameState()
	s.Status = StatusWaiting

	r.logger.Info("player left, session reset to waiting",
		zap.String("session_id", sessionID),
		zap.String("player", leaving.Name),
		zap.String("creator", s.Creator),
	)
	return LeaveResult{Player: leaving, Session: s.snapshot()}, nil
}

// Restart resets the board and marks the session playing. Membership is
// not consulted, so a single seated player also ends up playing.
func (r *Registry) Restart(sessionID string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	s.GameState = engine.NewGameState()
	s.Status = StatusPlaying

	r.logger.Info("game restarted", zap.String("session_id", sessionID), zap.Int("players", len(s.Players)))
	return s.snapshot(), nil
}

// ApplyMove plays (row, col) for the player seated by connID and marks the
// session finished when the game ends. A rejected move changes nothing.
func (r *Registry) ApplyMove(sessionID, connID string, row, col int) (MoveOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return MoveOutcome{}, ErrSessionNotFound
	}
	idx := s.playerIndex(connID)
	if idx < 0 {
		return MoveOutcome{}, ErrNotInSession
	}
	player := s.Players[idx]

	next, err := s.GameState.ApplyMove(row, col, player.Symbol)
	if err != nil {
		return MoveOutcome{}, err
	}
	s.GameState = next
	if next.GameOver {
		s.Status = StatusFinished
	}

	r.logger.Debug("move applied",
		zap.String("session_id", sessionID),
		zap.String("player", player.Name),
		zap.Int("row", row),
		zap.Int("col", col),
		zap.Bool("game_over", next.GameOver),
	)
	return MoveOutcome{
		Move: engine.Move{
			Row:    row,
			Col:    col,
			Player: player.Name,
			Symbol: player.Symbol,
		},
		Player:  player,
		Session: s.snapshot(),
	}, nil
}

// AppendChat records text from the player seated by connID, evicting the
// oldest entries beyond MaxChatMessages.
func (r *Registry) AppendChat(sessionID, connID, text string) (ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return ChatMessage{}, ErrSessionNotFound
	}
	idx := s.playerIndex(connID)
	if idx < 0 {
		return ChatMessage{}, ErrNotInSession
	}
	player := s.Players[idx]

	msg := ChatMessage{
		ID:           r.newID(),
		PlayerName:   player.Name,
		Message:      text,
		Timestamp:    r.now(),
		PlayerSymbol: player.Symbol,
	}
	s.ChatMessages = append(s.ChatMessages, msg)
	if over := len(s.ChatMessages) - MaxChatMessages; over > 0 {
		s.ChatMessages = append([]ChatMessage(nil), s.ChatMessages[over:]...)
	}
	return msg, nil
}

// Get returns a snapshot of a session
func (r *Registry) Get(sessionID string) (Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return s.snapshot(), nil
}

// ListPublic returns the waiting and playing sessions, oldest first.
// Finished sessions stay in the registry but are not listed.
func (r *Registry) ListPublic() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := lo.FilterMap(lo.Values(r.sessions), func(s *Session, _ int) (Summary, bool) {
		return s.summary(), s.Status == StatusWaiting || s.Status == StatusPlaying
	})
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Count returns the number of sessions held, including finished ones
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
