package game

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NewInitial returns the empty board of the given game. dim is ignored for
// TicTacToe.
func NewInitial(kind Kind, dim int, policy RewardPolicy) (State, error) {
	if kind == TicTacToe {
		dim = tictactoeDim
	}
	return New(kind, dim, make([]int, dim*dim), policy)
}

func New(kind Kind, dim int, pieces []int, policy RewardPolicy) (State, error) {
	switch kind {
	case Hex:
		return NewHex(dim, pieces, policy)
	case TicTacToe:
		if dim != tictactoeDim {
			return nil, fmt.Errorf("%w: tictactoe dimension must be %d, got %d", ErrConstruction, tictactoeDim, dim)
		}
		return NewTicTacToe(pieces, policy)
	}
	return nil, fmt.Errorf("%w: unknown game %q", ErrConstruction, kind)
}

// FromVector rebuilds a state from its canonical vector encoding.
func FromVector(kind Kind, dim int, values []float64, policy RewardPolicy) (State, error) {
	pieces := make([]int, len(values))
	for i, v := range values {
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("%w: non-integral value %v at position %d", ErrConstruction, v, i)
		}
		pieces[i] = int(v)
	}
	return New(kind, dim, pieces, policy)
}

// ParseCSV rebuilds a state from a line written by State.CSV.
func ParseCSV(kind Kind, dim int, line string, policy RewardPolicy) (State, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConstruction, err)
		}
		values[i] = v
	}
	return FromVector(kind, dim, values, policy)
}
