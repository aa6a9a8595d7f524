package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wricardo/mcp-training/tictactoe/game/engine"
	"pgregory.net/rapid"
)

// board builds a Board from three rows like "XO."
func board(rows ...string) engine.Board {
	var b engine.Board
	for r, line := range rows {
		for c, ch := range line {
			if ch != '.' {
				b[r][c] = engine.Symbol(ch)
			}
		}
	}
	return b
}

func TestNextMove(t *testing.T) {
	tests := []struct {
		name    string
		board   engine.Board
		sym     engine.Symbol
		wantRow int
		wantCol int
	}{
		{"empty board takes center", board("...", "...", "..."), engine.X, 1, 1},
		{"center taken takes corner", board("...", ".X.", "..."), engine.O, 0, 0},
		{"completes own row", board("XX.", "OO.", "..."), engine.X, 0, 2},
		{"win beats block", board("OO.", "XX.", "..."), engine.X, 1, 2},
		{"blocks opponent column", board("X..", "XO.", "..."), engine.O, 2, 0},
		{"blocks opponent diagonal", board("X..", ".X.", "O.."), engine.O, 2, 2},
		{"takes the last empty cell", board("XOX", "XOO", "O.X"), engine.X, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, col, ok := NextMove(tt.board, tt.sym)

			assert.True(t, ok)
			assert.Equal(t, tt.wantRow, row, "row")
			assert.Equal(t, tt.wantCol, col, "col")
		})
	}
}

func TestNextMoveFullBoard(t *testing.T) {
	_, _, ok := NextMove(board("XOX", "XOO", "OXX"), engine.O)
	assert.False(t, ok)
}

func TestNextMovePicksEmptyCell(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var b engine.Board
		for r := range b {
			for c := range b[r] {
				b[r][c] = rapid.SampledFrom([]engine.Symbol{engine.Empty, engine.X, engine.O}).Draw(t, "cell")
			}
		}
		sym := rapid.SampledFrom([]engine.Symbol{engine.X, engine.O}).Draw(t, "sym")

		row, col, ok := NextMove(b, sym)

		if b.Full() {
			if ok {
				t.Fatalf("move (%d,%d) on a full board", row, col)
			}
			return
		}
		if !ok {
			t.Fatalf("no move on a board with empty cells")
		}
		if b[row][col] != engine.Empty {
			t.Fatalf("picked occupied cell (%d,%d)", row, col)
		}
	})
}
