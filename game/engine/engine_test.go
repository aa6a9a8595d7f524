package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// play applies moves alternately starting with X and fails the test on any rejection
func play(t *testing.T, moves ...[2]int) GameState {
	t.Helper()
	state := NewGameState()
	for i, m := range moves {
		next, err := state.ApplyMove(m[0], m[1], state.CurrentPlayer)
		require.NoErrorf(t, err, "move %d (%d,%d)", i, m[0], m[1])
		state = next
	}
	return state
}

func TestNewGameState(t *testing.T) {
	state := NewGameState()

	assert.Equal(t, X, state.CurrentPlayer)
	assert.False(t, state.GameOver)
	assert.Nil(t, state.Winner)
	assert.False(t, state.IsDraw)
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			assert.Equal(t, Empty, state.Board[r][c])
		}
	}
}

func TestApplyMove_FlipsTurn(t *testing.T) {
	state := NewGameState()

	next, err := state.ApplyMove(1, 1, X)
	require.NoError(t, err)

	assert.Equal(t, X, next.Board[1][1])
	assert.Equal(t, O, next.CurrentPlayer)
	assert.False(t, next.GameOver)

	// receiver untouched
	assert.Equal(t, Empty, state.Board[1][1])
	assert.Equal(t, X, state.CurrentPlayer)
}

func TestApplyMove_Rejections(t *testing.T) {
	started := play(t, [2]int{0, 0})
	won := play(t, [2]int{0, 0}, [2]int{1, 1}, [2]int{0, 1}, [2]int{1, 0}, [2]int{0, 2})

	tests := []struct {
		name  string
		state GameState
		row   int
		col   int
		sym   Symbol
	}{
		{"occupied cell", started, 0, 0, O},
		{"row below range", started, -1, 0, O},
		{"row above range", started, 3, 0, O},
		{"col above range", started, 0, 3, O},
		{"wrong turn", started, 2, 2, X},
		{"empty symbol", started, 2, 2, Empty},
		{"after game over", won, 2, 2, O},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := tt.state.ApplyMove(tt.row, tt.col, tt.sym)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidMove))
			assert.Equal(t, tt.state, next)
		})
	}
}

func TestApplyMove_TopRowWin(t *testing.T) {
	state := play(t, [2]int{0, 0}, [2]int{1, 1}, [2]int{0, 1}, [2]int{1, 0}, [2]int{0, 2})

	require.True(t, state.GameOver)
	require.NotNil(t, state.Winner)
	assert.Equal(t, X, *state.Winner)
	assert.False(t, state.IsDraw)
	// turn does not flip on the winning move
	assert.Equal(t, X, state.CurrentPlayer)
	assert.Equal(t, "A wins!", state.Result("A"))
}

func TestApplyMove_ColumnAndDiagonalWins(t *testing.T) {
	tests := []struct {
		name   string
		moves  [][2]int
		winner Symbol
	}{
		{"left column X", [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {2, 0}}, X},
		{"main diagonal X", [][2]int{{0, 0}, {0, 1}, {1, 1}, {0, 2}, {2, 2}}, X},
		{"anti diagonal O", [][2]int{{0, 0}, {0, 2}, {0, 1}, {1, 1}, {2, 2}, {2, 0}}, O},
		{"middle column O", [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {2, 2}, {2, 1}}, O},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := play(t, tt.moves...)
			require.True(t, state.GameOver)
			require.NotNil(t, state.Winner)
			assert.Equal(t, tt.winner, *state.Winner)
			assert.False(t, state.IsDraw)
		})
	}
}

func TestApplyMove_Draw(t *testing.T) {
	// X O X / X O O / O X X
	state := play(t,
		[2]int{0, 0}, [2]int{0, 1},
		[2]int{0, 2}, [2]int{1, 1},
		[2]int{1, 0}, [2]int{1, 2},
		[2]int{2, 1}, [2]int{2, 0},
		[2]int{2, 2},
	)

	expected := Board{
		{X, O, X},
		{X, O, O},
		{O, X, X},
	}
	assert.Equal(t, expected, state.Board)
	assert.True(t, state.GameOver)
	assert.True(t, state.IsDraw)
	assert.Nil(t, state.Winner)
	assert.Equal(t, "draw", state.Result("anyone"))
}

func TestApplyMove_WinOnLastCellIsNotDraw(t *testing.T) {
	// X fills the ninth cell and completes the main diagonal at the same time
	state := play(t,
		[2]int{1, 2}, [2]int{0, 1},
		[2]int{2, 0}, [2]int{0, 2},
		[2]int{0, 0}, [2]int{1, 0},
		[2]int{1, 1}, [2]int{2, 1},
		[2]int{2, 2},
	)

	assert.True(t, state.Board.Full())
	require.NotNil(t, state.Winner)
	assert.Equal(t, X, *state.Winner)
	assert.False(t, state.IsDraw)
}

func TestSymbolOpponent(t *testing.T) {
	assert.Equal(t, O, X.Opponent())
	assert.Equal(t, X, O.Opponent())
	assert.Equal(t, Empty, Empty.Opponent())
}

func TestApplyMove_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		state := NewGameState()
		steps := rapid.IntRange(0, 40).Draw(t, "steps")

		for i := 0; i < steps; i++ {
			row := rapid.IntRange(-1, 3).Draw(t, "row")
			col := rapid.IntRange(-1, 3).Draw(t, "col")
			sym := rapid.SampledFrom([]Symbol{X, O}).Draw(t, "sym")

			wasOver := state.GameOver
			next, err := state.ApplyMove(row, col, sym)
			if err != nil {
				if !errors.Is(err, ErrInvalidMove) {
					t.Fatalf("unexpected error type: %v", err)
				}
				if next != state {
					t.Fatalf("rejected move changed state")
				}
				continue
			}
			if wasOver {
				t.Fatalf("move accepted after game over")
			}
			state = next

			if state.Winner != nil && state.IsDraw {
				t.Fatalf("winner and draw both set")
			}
			if state.GameOver != (state.Board.winner() != Empty || state.Board.Full()) {
				t.Fatalf("game_over=%v does not match board", state.GameOver)
			}
			if state.Winner != nil && *state.Winner != sym {
				t.Fatalf("winner %s is not the last mover %s", *state.Winner, sym)
			}
		}
	})
}
