package game

import (
	"fmt"
	"math/rand/v2"
)

type Kind string

const (
	Hex       Kind = "hex"
	TicTacToe Kind = "tictactoe"
)

// Piece values. P1 always moves first.
const (
	P1    = 1
	P2    = -1
	Empty = 0
)

type RewardPolicy string

const (
	// Basic rewards a win with +1 for P1 and -1 for P2.
	Basic RewardPolicy = "basic"
	// WinFast scales the reward by the number of empty cells left plus one,
	// so faster wins score higher.
	WinFast RewardPolicy = "win_fast"
)

// State should be immutable - operations on State always return a new copy
type State interface {
	Kind() Kind
	Dimension() int
	NumActions() int
	RewardPolicy() RewardPolicy

	// Turn is the player to move, P1 or P2.
	Turn() int
	// Winner is P1, P2 or 0 when there is none.
	Winner() int
	IsTerminal() bool
	Reward() float64

	LegalActions() []int
	IsLegalAction(action int) bool
	NextState(action int) (State, error)
	RandomAction(rng *rand.Rand) (int, error)

	Board() []int
	ToVector() []float64
	CSV() string
	String() string
}

// DefaultRewardPolicy is the policy used when none is configured.
func DefaultRewardPolicy(kind Kind) RewardPolicy {
	if kind == TicTacToe {
		return WinFast
	}
	return Basic
}

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Hex, TicTacToe:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown game %q", s)
}

func ParseRewardPolicy(s string) (RewardPolicy, error) {
	switch RewardPolicy(s) {
	case Basic, WinFast:
		return RewardPolicy(s), nil
	}
	return "", fmt.Errorf("unknown reward policy %q", s)
}

// Equal reports whether two states are the same game with the same pieces.
func Equal(a, b State) bool {
	if a.Kind() != b.Kind() || a.Dimension() != b.Dimension() {
		return false
	}
	x, y := a.Board(), b.Board()
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
