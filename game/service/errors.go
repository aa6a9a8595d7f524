package service

import (
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/tictactoe/game/engine"
	"github.com/wricardo/mcp-training/tictactoe/game/session"
)

// Code classifies a request failure on the wire
type Code string

const (
	CodeMissingField    Code = "missing_field"
	CodeNotFound        Code = "not_found"
	CodeAlreadyJoined   Code = "already_joined"
	CodeNameTaken       Code = "name_taken"
	CodeBadPassword     Code = "bad_password"
	CodeFull            Code = "full"
	CodeAlreadyFinished Code = "already_finished"
	CodeNotInSession    Code = "not_in_session"
	CodeInvalidMove     Code = "invalid_move"
	CodeUnknownEvent    Code = "unknown_event"
	CodeInternal        Code = "internal"
)

// Error is a recoverable, user-facing failure scoped to one request
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func missingField(message string) *Error {
	return &Error{Code: CodeMissingField, Message: message}
}

var errNotInGame = &Error{Code: CodeNotInSession, Message: "Not in a game session"}

// toError maps domain errors onto wire errors. Anything unmapped is a
// defect and reported as internal.
func toError(err error) *Error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}

	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return &Error{Code: CodeNotFound, Message: "Session not found", Err: err}
	case errors.Is(err, session.ErrAlreadyJoined):
		return &Error{Code: CodeAlreadyJoined, Message: "You are already in this session", Err: err}
	case errors.Is(err, session.ErrNameTaken):
		return &Error{Code: CodeNameTaken, Message: "That name is already taken in this session", Err: err}
	case errors.Is(err, session.ErrBadPassword):
		return &Error{Code: CodeBadPassword, Message: "Incorrect password", Err: err}
	case errors.Is(err, session.ErrSessionFull):
		return &Error{Code: CodeFull, Message: "Session is full", Err: err}
	case errors.Is(err, session.ErrAlreadyFinished):
		return &Error{Code: CodeAlreadyFinished, Message: "Game has already finished", Err: err}
	case errors.Is(err, session.ErrNotInSession):
		return &Error{Code: CodeNotInSession, Message: "Player not found in session", Err: err}
	case errors.Is(err, engine.ErrInvalidMove):
		return &Error{Code: CodeInvalidMove, Message: "Invalid move", Err: err}
	default:
		return &Error{Code: CodeInternal, Message: "Internal server error", Err: err}
	}
}
