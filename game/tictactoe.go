package game

import (
	"slices"
	"strings"
)

const tictactoeDim = 3

// Every line as an ordered triple of cells. A line's permutation number is
// p0 + 3*p1 + 9*p2, which is unique for each arrangement of pieces.
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

const (
	winPerm = 13 // all three cells
	// Two of three cells held by the same player, indexed by the empty cell.
	// Signs follow the player to move, so threats are that player's own
	// winning moves; 12 = 3+9 leaves cell 0 empty.
	threatFirst  = 12
	threatSecond = 10
	threatThird  = 4
)

type TicTacToeState struct {
	board
	threats []int
}

var _ State = (*TicTacToeState)(nil)

func NewTicTacToe(pieces []int, policy RewardPolicy) (*TicTacToeState, error) {
	b, err := newBoard(TicTacToe, tictactoeDim, pieces, policy)
	if err != nil {
		return nil, err
	}
	s := &TicTacToeState{board: b}
	winner := s.scan()
	s.settle(winner, !slices.Contains(s.pieces, Empty))
	return s, nil
}

func (s *TicTacToeState) NextState(action int) (State, error) {
	if s.terminal {
		return s, nil
	}
	pieces, err := s.place(action)
	if err != nil {
		return nil, err
	}
	return NewTicTacToe(pieces, s.policy)
}

// ThreatActions returns the empty cells that would complete a line for the
// player to move. It is informational and empty once the game is over.
func (s *TicTacToeState) ThreatActions() []int {
	return slices.Clone(s.threats)
}

// scan evaluates every line once, returning the winner and recording threats
// for the player to move.
func (s *TicTacToeState) scan() int {
	winner := 0
	for _, line := range lines {
		perm := s.pieces[line[0]] + 3*s.pieces[line[1]] + 9*s.pieces[line[2]]
		switch perm {
		case winPerm:
			winner = P1
		case -winPerm:
			if winner == 0 {
				winner = P2
			}
		case threatFirst * s.turn:
			s.threats = append(s.threats, line[0])
		case threatSecond * s.turn:
			s.threats = append(s.threats, line[1])
		case threatThird * s.turn:
			s.threats = append(s.threats, line[2])
		}
	}
	if winner != 0 {
		s.threats = nil
	}
	slices.Sort(s.threats)
	s.threats = slices.Compact(s.threats)
	return winner
}

func (s *TicTacToeState) String() string {
	var sb strings.Builder
	for r := 0; r < tictactoeDim; r++ {
		if r > 0 {
			sb.WriteString("-+-+-\n")
		}
		for c := 0; c < tictactoeDim; c++ {
			if c > 0 {
				sb.WriteByte('|')
			}
			sb.WriteString(symbol(s.pieces[r*tictactoeDim+c]))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
