package engine

// Symbol is the content of a board cell and the role of a player
type Symbol string

const (
	Empty Symbol = ""
	X     Symbol = "X"
	O     Symbol = "O"

	// BoardSize is the width and height of the board
	BoardSize = 3
)

// Opponent returns the other playing symbol. Empty has no opponent.
func (s Symbol) Opponent() Symbol {
	switch s {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

// Valid reports whether s is a playing symbol
func (s Symbol) Valid() bool {
	return s == X || s == O
}

// Board is a 3x3 grid indexed as [row][col]
type Board [BoardSize][BoardSize]Symbol

// Full reports whether every cell is occupied
func (b Board) Full() bool {
	for _, row := range b {
		for _, cell := range row {
			if cell == Empty {
				return false
			}
		}
	}
	return true
}

// Move describes a successfully applied move
type Move struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Player string `json:"player"`
	Symbol Symbol `json:"symbol"`
}

// GameState represents the complete state of one match
type GameState struct {
	Board         Board   `json:"board"`
	CurrentPlayer Symbol  `json:"current_player"`
	GameOver      bool    `json:"game_over"`
	Winner        *Symbol `json:"winner"`
	IsDraw        bool    `json:"is_draw"`
}
