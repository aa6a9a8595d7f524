package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidMove is wrapped by every move rejection
var ErrInvalidMove = errors.New("invalid move")

// lines lists every row, column and diagonal as [row, col] pairs
var lines = [8][3][2]int{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// NewGameState returns an empty board with X to move
func NewGameState() GameState {
	return GameState{CurrentPlayer: X}
}

// ApplyMove places sym at (row, col) and returns the resulting state.
// All preconditions are checked before anything is written; on error the
// receiver is returned unchanged together with an error wrapping
// ErrInvalidMove.
func (g GameState) ApplyMove(row, col int, sym Symbol) (GameState, error) {
	switch {
	case row < 0 || row >= BoardSize || col < 0 || col >= BoardSize:
		return g, fmt.Errorf("%w: cell (%d,%d) is out of bounds", ErrInvalidMove, row, col)
	case g.GameOver:
		return g, fmt.Errorf("%w: game is over", ErrInvalidMove)
	case !sym.Valid():
		return g, fmt.Errorf("%w: unknown symbol %q", ErrInvalidMove, sym)
	case sym != g.CurrentPlayer:
		return g, fmt.Errorf("%w: it is %s's turn", ErrInvalidMove, g.CurrentPlayer)
	case g.Board[row][col] != Empty:
		return g, fmt.Errorf("%w: cell (%d,%d) is occupied", ErrInvalidMove, row, col)
	}

	next := g
	next.Board[row][col] = sym
	next.evaluate()
	if !next.GameOver {
		next.CurrentPlayer = sym.Opponent()
	}
	return next, nil
}

// evaluate sets the terminal fields from the board
func (g *GameState) evaluate() {
	if w := g.Board.winner(); w != Empty {
		g.Winner = &w
		g.GameOver = true
		return
	}
	if g.Board.Full() {
		g.IsDraw = true
		g.GameOver = true
	}
}

// winner returns the symbol occupying a complete line, or Empty
func (b Board) winner() Symbol {
	for _, line := range lines {
		first := b[line[0][0]][line[0][1]]
		if first == Empty {
			continue
		}
		if b[line[1][0]][line[1][1]] == first && b[line[2][0]][line[2][1]] == first {
			return first
		}
	}
	return Empty
}

// Result returns the announcement for a finished game. lastMover is the
// name of the player whose move ended it.
func (g GameState) Result(lastMover string) string {
	if g.IsDraw {
		return "draw"
	}
	return fmt.Sprintf("%s wins!", lastMover)
}
