package game

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"hexit/utils"
)

// board holds what both games share. It is embedded by value and never
// modified after construction.
type board struct {
	kind     Kind
	dim      int
	pieces   []int
	turn     int
	winner   int
	terminal bool
	legal    []int
	policy   RewardPolicy
}

// newBoard validates pieces and derives the player to move. The caller fills
// in winner, terminal and legal.
func newBoard(kind Kind, dim int, pieces []int, policy RewardPolicy) (board, error) {
	if dim <= 0 {
		return board{}, fmt.Errorf("%w: dimension %d", ErrConstruction, dim)
	}
	if len(pieces) != dim*dim {
		return board{}, fmt.Errorf("%w: expected %d pieces, got %d", ErrConstruction, dim*dim, len(pieces))
	}
	for i, p := range pieces {
		if p != P1 && p != P2 && p != Empty {
			return board{}, fmt.Errorf("%w: piece %d at position %d", ErrConstruction, p, i)
		}
	}
	if policy == "" {
		policy = DefaultRewardPolicy(kind)
	}

	var turn int
	switch utils.Sum(pieces) {
	case 0:
		turn = P1
	case 1:
		turn = P2
	default:
		return board{}, fmt.Errorf("%w: piece sum %d is neither 0 nor 1", ErrConstruction, utils.Sum(pieces))
	}

	return board{
		kind:   kind,
		dim:    dim,
		pieces: slices.Clone(pieces),
		turn:   turn,
		policy: policy,
	}, nil
}

// settle records the outcome and the legal actions that follow from it.
func (b *board) settle(winner int, full bool) {
	b.winner = winner
	b.terminal = winner != 0 || full
	if b.terminal {
		b.legal = []int{}
		return
	}
	b.legal = make([]int, 0, len(b.pieces))
	for i, p := range b.pieces {
		if p == Empty {
			b.legal = append(b.legal, i)
		}
	}
}

func (b *board) Kind() Kind                 { return b.kind }
func (b *board) Dimension() int             { return b.dim }
func (b *board) NumActions() int            { return len(b.pieces) }
func (b *board) RewardPolicy() RewardPolicy { return b.policy }
func (b *board) Turn() int                  { return b.turn }
func (b *board) Winner() int                { return b.winner }
func (b *board) IsTerminal() bool           { return b.terminal }
func (b *board) LegalActions() []int        { return slices.Clone(b.legal) }
func (b *board) Board() []int               { return slices.Clone(b.pieces) }

func (b *board) Reward() float64 {
	if !b.terminal || b.winner == 0 {
		return 0
	}
	switch b.policy {
	case WinFast:
		played := utils.CountNonZero(b.pieces)
		return float64(b.winner * (len(b.pieces) + 1 - played))
	default:
		return float64(b.winner)
	}
}

func (b *board) IsLegalAction(action int) bool {
	_, found := slices.BinarySearch(b.legal, action)
	return found
}

func (b *board) RandomAction(rng *rand.Rand) (int, error) {
	if len(b.legal) == 0 {
		return 0, ErrNoLegalAction
	}
	return b.legal[rng.IntN(len(b.legal))], nil
}

func (b *board) ToVector() []float64 {
	return utils.ToFloats(b.pieces)
}

func (b *board) CSV() string {
	var sb strings.Builder
	for i, p := range b.pieces {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(p))
	}
	return sb.String()
}

// place returns a copy of the pieces with action filled by the player to
// move, or ErrIllegalAction.
func (b *board) place(action int) ([]int, error) {
	if action < 0 || action >= len(b.pieces) {
		return nil, fmt.Errorf("%w: position %d out of range [0, %d)", ErrIllegalAction, action, len(b.pieces))
	}
	if b.pieces[action] != Empty {
		return nil, fmt.Errorf("%w: position %d is occupied", ErrIllegalAction, action)
	}
	next := slices.Clone(b.pieces)
	next[action] = b.turn
	return next, nil
}
