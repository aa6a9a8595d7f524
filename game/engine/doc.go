// Package engine provides the core game logic for a single tic-tac-toe match.
//
// The engine package implements:
//   - The 3x3 board and the X/O turn order
//   - Move validation (bounds, occupancy, turn, game over)
//   - Win detection over rows, columns and diagonals
//   - Draw detection on a full board
//
// Core Types:
//
// GameState is a plain value. ApplyMove never mutates its receiver; it
// returns the next state, or an error wrapping ErrInvalidMove and the
// caller keeps the state it already had. This makes a rejected move
// unobservable to anyone else holding the state.
//
// Usage:
//
//	state := engine.NewGameState()
//
//	next, err := state.ApplyMove(0, 0, engine.X)
//	if err != nil {
//		// state is unchanged
//		return err
//	}
//	state = next
//
// The engine knows nothing about players, connections or sessions.
package engine
