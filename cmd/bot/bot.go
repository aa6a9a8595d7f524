package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/wricardo/mcp-training/tictactoe/game/engine"
	"github.com/wricardo/mcp-training/tictactoe/game/service"
	"github.com/wricardo/mcp-training/tictactoe/game/session"
	"go.uber.org/zap"
)

// options controls what a bot joins and how long it plays
type options struct {
	Name      string
	SessionID string
	Password  string
	// JoinAny joins the oldest open, unlocked session when SessionID is
	// empty, and creates one when there is none
	JoinAny bool
	// Games is how many games to finish before leaving
	Games int
	// Delay is slept before every move
	Delay time.Duration
}

// bot plays one seat over a Client. Only the seat holding X asks for
// rematches, so two bots never restart the same game twice.
type bot struct {
	client *Client
	opts   options
	logger *zap.Logger

	symbol  engine.Symbol
	results []string
}

func newBot(client *Client, opts options, logger *zap.Logger) *bot {
	if opts.Games < 1 {
		opts.Games = 1
	}
	return &bot{client: client, opts: opts, logger: logger}
}

// run plays until the configured number of games is over and returns each
// game's result
func (b *bot) run(ctx context.Context) ([]string, error) {
	stop := context.AfterFunc(ctx, func() { b.client.Close() })
	defer stop()

	for {
		f, err := b.client.Next()
		if err != nil {
			if ctx.Err() != nil {
				return b.results, ctx.Err()
			}
			return b.results, fmt.Errorf("read: %w", err)
		}

		done, err := b.handle(f.Event, f.Data)
		if err != nil {
			return b.results, err
		}
		if done {
			return b.results, nil
		}
	}
}

func (b *bot) handle(event string, data json.RawMessage) (bool, error) {
	switch event {
	case service.EventConnected:
		return false, b.enter()

	case service.EventSessionsList:
		if !b.opts.JoinAny || b.symbol != engine.Empty {
			return false, nil
		}
		var p service.SessionsListPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return false, err
		}
		b.opts.JoinAny = false
		open, found := lo.Find(p.Sessions, func(s session.Summary) bool {
			return s.Status == session.StatusWaiting && !s.HasPassword
		})
		if !found {
			return false, b.create()
		}
		return false, b.join(open.ID)

	case service.EventSessionCreated, service.EventSessionJoined:
		var p service.SessionPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return false, err
		}
		b.seat(p.Session)
		b.logger.Info("seated",
			zap.String("session_id", p.SessionID),
			zap.String("symbol", string(b.symbol)),
		)
		return false, b.maybeMove(p.Session)

	case service.EventPlayerJoined:
		var p service.PlayerJoinedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return false, err
		}
		return false, b.maybeMove(p.Session)

	case service.EventPlayerLeft:
		var p service.PlayerLeftPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return false, err
		}
		b.seat(p.Session)
		b.logger.Info(p.Message)
		return false, nil

	case service.EventMoveMade:
		var p service.MoveMadePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return false, err
		}
		return false, b.maybeMove(p.Session)

	case service.EventGameRestarted:
		var p service.GameRestartedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return false, err
		}
		return false, b.maybeMove(p.Session)

	case service.EventGameOver:
		var p service.GameOverPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return false, err
		}
		b.results = append(b.results, p.Result)
		b.logger.Info("game over", zap.String("result", p.Result), zap.Int("game", len(b.results)))
		if len(b.results) >= b.opts.Games {
			return true, nil
		}
		if b.symbol == engine.X {
			return false, b.client.Send(service.EventRestartGame, nil)
		}
		return false, nil

	case service.EventError:
		var p service.ErrorPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return false, err
		}
		return false, fmt.Errorf("server rejected request: %s: %s", p.Code, p.Message)
	}
	return false, nil
}

// enter creates, joins or looks for a session depending on the options
func (b *bot) enter() error {
	switch {
	case b.opts.SessionID != "":
		return b.join(b.opts.SessionID)
	case b.opts.JoinAny:
		return b.client.Send(service.EventGetSessions, nil)
	default:
		return b.create()
	}
}

func (b *bot) create() error {
	return b.client.Send(service.EventCreateSession, service.CreateSessionRequest{
		PlayerName: b.opts.Name,
		Password:   b.opts.Password,
	})
}

func (b *bot) join(sessionID string) error {
	return b.client.Send(service.EventJoinSession, service.JoinSessionRequest{
		SessionID:  sessionID,
		PlayerName: b.opts.Name,
		Password:   b.opts.Password,
	})
}

// seat refreshes our symbol from a session snapshot. Names are unique
// within a session, so the name identifies our seat.
func (b *bot) seat(s session.Session) {
	if p, found := lo.Find(s.Players, func(p session.Player) bool {
		return strings.EqualFold(p.Name, b.opts.Name)
	}); found {
		b.symbol = p.Symbol
	}
}

// maybeMove plays when the session is live and it is our turn
func (b *bot) maybeMove(s session.Session) error {
	state := s.GameState
	if s.Status != session.StatusPlaying || state.GameOver || b.symbol == engine.Empty || state.CurrentPlayer != b.symbol {
		return nil
	}

	row, col, ok := NextMove(state.Board, b.symbol)
	if !ok {
		return errors.New("no empty cell on a live board")
	}
	if b.opts.Delay > 0 {
		time.Sleep(b.opts.Delay)
	}
	b.logger.Debug("moving", zap.Int("row", row), zap.Int("col", col))
	return b.client.Send(service.EventMakeMove, map[string]int{"row": row, "col": col})
}
