package main

import (
	"github.com/wricardo/mcp-training/tictactoe/game/engine"
)

type cell struct {
	row, col int
}

// preference lists the fallback order once nothing wins or blocks
var preference = []cell{
	{1, 1},
	{0, 0}, {0, 2}, {2, 0}, {2, 2},
	{0, 1}, {1, 0}, {1, 2}, {2, 1},
}

// NextMove picks a cell for sym. It takes a winning cell if there is one,
// then blocks the opponent's winning cell, then falls back to center,
// corners and edges. ok is false when the board has no empty cell.
func NextMove(board engine.Board, sym engine.Symbol) (row, col int, ok bool) {
	if c, found := completing(board, sym); found {
		return c.row, c.col, true
	}
	if c, found := completing(board, sym.Opponent()); found {
		return c.row, c.col, true
	}
	for _, c := range preference {
		if board[c.row][c.col] == engine.Empty {
			return c.row, c.col, true
		}
	}
	return 0, 0, false
}

// completing finds an empty cell that would give sym a line
func completing(board engine.Board, sym engine.Symbol) (cell, bool) {
	probe := engine.GameState{Board: board, CurrentPlayer: sym}
	for _, c := range preference {
		next, err := probe.ApplyMove(c.row, c.col, sym)
		if err != nil {
			continue
		}
		if next.Winner != nil && *next.Winner == sym {
			return c, true
		}
	}
	return cell{}, false
}
