package policy

import (
	"fmt"

	"hexit/game"
)

// Encoding turns a state into the input vector a model expects.
type Encoding string

const (
	// Board is the canonical vector, one value per position.
	Board Encoding = "board"
	// BoardTurn appends a two value mask for the player to move,
	// [1, 0] for P1 and [0, 1] for P2.
	BoardTurn Encoding = "board_turn"
)

func DefaultEncoding(kind game.Kind) Encoding {
	if kind == game.Hex {
		return BoardTurn
	}
	return Board
}

func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(s) {
	case Board, BoardTurn:
		return Encoding(s), nil
	}
	return "", fmt.Errorf("unknown encoding %q", s)
}

func (e Encoding) Encode(s game.State) []float64 {
	v := s.ToVector()
	if e != BoardTurn {
		return v
	}
	if s.Turn() == game.P1 {
		return append(v, 1, 0)
	}
	return append(v, 0, 1)
}

func (e Encoding) EncodeAll(states []game.State) [][]float64 {
	out := make([][]float64, len(states))
	for i, s := range states {
		out[i] = e.Encode(s)
	}
	return out
}
