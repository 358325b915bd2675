package game

import (
	"slices"
	"strings"
)

// HexState is a position on a dim x dim rhombic Hex board. P1 connects the
// top row to the bottom row, P2 the left column to the right column.
type HexState struct {
	board
}

var _ State = (*HexState)(nil)

func NewHex(dim int, pieces []int, policy RewardPolicy) (*HexState, error) {
	b, err := newBoard(Hex, dim, pieces, policy)
	if err != nil {
		return nil, err
	}
	s := &HexState{board: b}
	s.settle(s.findWinner(), !slices.Contains(s.pieces, Empty))
	return s, nil
}

func (s *HexState) NextState(action int) (State, error) {
	if s.terminal {
		return s, nil
	}
	pieces, err := s.place(action)
	if err != nil {
		return nil, err
	}
	return NewHex(s.dim, pieces, s.policy)
}

func (s *HexState) findWinner() int {
	if s.NorthSouthPath() {
		return P1
	}
	if s.WestEastPath() {
		return P2
	}
	return 0
}

// String draws the board as a rhombus, each row shifted one cell right of the
// one above it.
func (s *HexState) String() string {
	var sb strings.Builder
	for r := 0; r < s.dim; r++ {
		sb.WriteString(strings.Repeat(" ", r))
		for c := 0; c < s.dim; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(symbol(s.pieces[r*s.dim+c]))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func symbol(piece int) string {
	switch piece {
	case P1:
		return "X"
	case P2:
		return "O"
	}
	return "."
}
