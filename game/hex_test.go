package game

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, dim int, pieces []int, policy RewardPolicy) *HexState {
	t.Helper()
	s, err := NewHex(dim, pieces, policy)
	require.NoError(t, err)
	return s
}

func TestHexNeighbors(t *testing.T) {
	t.Run("interior cell has all six neighbors", func(t *testing.T) {
		// 4 is the centre of a 3x3 board
		for _, tc := range []struct {
			name string
			fn   neighbor
			want int
		}{
			{"NW", NW, 1}, {"NE", NE, 2}, {"SW", SW, 6},
			{"SE", SE, 7}, {"W", W, 3}, {"E", E, 5},
		} {
			got, ok := tc.fn(4, 3)
			require.True(t, ok, tc.name)
			require.Equal(t, tc.want, got, tc.name)
		}
	})

	t.Run("edges have no neighbor off the board", func(t *testing.T) {
		_, ok := NW(1, 3)
		require.False(t, ok, "top row has no NW")
		_, ok = NE(5, 3)
		require.False(t, ok, "right column has no NE")
		_, ok = SW(3, 3)
		require.False(t, ok, "left column has no SW")
		_, ok = SE(7, 3)
		require.False(t, ok, "bottom row has no SE")
		_, ok = W(6, 3)
		require.False(t, ok, "left column has no W")
		_, ok = E(2, 3)
		require.False(t, ok, "right column has no E")
	})

	t.Run("panics outside the board", func(t *testing.T) {
		require.Panics(t, func() { E(9, 3) })
		require.Panics(t, func() { W(-1, 3) })
	})
}

func TestNewHex(t *testing.T) {
	t.Run("empty board", func(t *testing.T) {
		s := mustHex(t, 3, make([]int, 9), Basic)
		require.Equal(t, P1, s.Turn())
		require.False(t, s.IsTerminal())
		require.Equal(t, 0, s.Winner())
		require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, s.LegalActions())
		require.Zero(t, s.Reward())
	})

	t.Run("rejects invalid piece sums", func(t *testing.T) {
		_, err := NewHex(3, []int{1, 1, 0, 0, 0, 0, 0, 0, 0}, Basic)
		require.ErrorIs(t, err, ErrConstruction)
		_, err = NewHex(3, []int{-1, 0, 0, 0, 0, 0, 0, 0, 0}, Basic)
		require.ErrorIs(t, err, ErrConstruction)
	})

	t.Run("rejects wrong length and bad values", func(t *testing.T) {
		_, err := NewHex(3, make([]int, 8), Basic)
		require.ErrorIs(t, err, ErrConstruction)
		_, err = NewHex(3, []int{2, -1, 0, 0, 0, 0, 0, 0, 0}, Basic)
		require.ErrorIs(t, err, ErrConstruction)
	})

	t.Run("does not alias the caller's slice", func(t *testing.T) {
		pieces := make([]int, 9)
		s := mustHex(t, 3, pieces, Basic)
		pieces[0] = P1
		require.Equal(t, Empty, s.Board()[0])
	})
}

func TestHexWinner(t *testing.T) {
	testCases := []struct {
		name     string
		pieces   []int
		policy   RewardPolicy
		turn     int
		winner   int
		terminal bool
		reward   float64
	}{
		{"simple draw", []int{1, 0, 0, 0, -1, 0, 0, 0, 1}, WinFast, P2, 0, false, 0},
		{"complex draw", []int{1, 1, -1, 1, -1, -1, 0, 1, -1}, Basic, P1, 0, false, 0},
		{"one stone", []int{0, 0, 0, 0, 1, 0, 0, 0, 0}, Basic, P2, 0, false, 0},
		{"blocked centre", []int{1, 0, 0, -1, -1, 0, 0, 0, 1}, Basic, P1, 0, false, 0},
		{"full board p1", []int{1, 1, -1, 1, -1, -1, 1, 1, -1}, Basic, P2, P1, true, 1},
		{"simple p1 win", []int{0, 0, 1, -1, 1, 0, 0, 1, -1}, WinFast, P2, P1, true, 5},
		{"complex p1 win", []int{1, 1, -1, -1, 1, 1, -1, -1, 1}, Basic, P2, P1, true, 1},
		{"simple p2 win", []int{0, 0, 1, 0, 1, -1, -1, -1, 1}, WinFast, P1, P2, true, -4},
		{"complex p2 win", []int{-1, 1, -1, -1, -1, 1, 1, 1, 1}, Basic, P2, P2, true, -1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := mustHex(t, 3, tc.pieces, tc.policy)
			require.Equal(t, tc.turn, s.Turn(), "turn")
			require.Equal(t, tc.winner, s.Winner(), "winner")
			require.Equal(t, tc.terminal, s.IsTerminal(), "terminal")
			require.Equal(t, tc.reward, s.Reward(), "reward")
			if tc.terminal {
				require.Empty(t, s.LegalActions(), "terminal states have no legal actions")
			}
		})
	}
}

func TestHexNextState(t *testing.T) {
	t.Run("places the mover's stone", func(t *testing.T) {
		s := mustHex(t, 3, make([]int, 9), Basic)
		next, err := s.NextState(4)
		require.NoError(t, err)
		require.Equal(t, []int{0, 0, 0, 0, 1, 0, 0, 0, 0}, next.Board())
		require.Equal(t, P2, next.Turn())
		require.Equal(t, make([]int, 9), s.Board(), "original state must not change")
	})

	t.Run("last empty cell wins for p1", func(t *testing.T) {
		s := mustHex(t, 3, []int{1, 1, -1, 1, -1, -1, 0, 1, -1}, Basic)
		require.Equal(t, []int{6}, s.LegalActions())
		next, err := s.NextState(6)
		require.NoError(t, err)
		require.Equal(t, P1, next.Winner())
		require.True(t, next.IsTerminal())
	})

	t.Run("rejects occupied and out of range positions", func(t *testing.T) {
		s := mustHex(t, 3, []int{1, 0, 0, 0, 0, 0, 0, 0, 0}, Basic)
		_, err := s.NextState(0)
		require.ErrorIs(t, err, ErrIllegalAction)
		_, err = s.NextState(9)
		require.ErrorIs(t, err, ErrIllegalAction)
		_, err = s.NextState(-1)
		require.ErrorIs(t, err, ErrIllegalAction)
	})

	t.Run("terminal state is returned unchanged", func(t *testing.T) {
		s := mustHex(t, 3, []int{0, 0, 1, -1, 1, 0, 0, 1, -1}, Basic)
		next, err := s.NextState(0)
		require.NoError(t, err)
		require.Same(t, s, next)
	})
}

func TestHexConnectivity(t *testing.T) {
	t.Run("p1 and p2 never both connect", func(t *testing.T) {
		for _, dim := range []int{2, 3} {
			n := dim * dim
			pieces := make([]int, n)
			total := 1
			for i := 0; i < n; i++ {
				total *= 3
			}
			for code := 0; code < total; code++ {
				c := code
				for i := range pieces {
					pieces[i] = c%3 - 1
					c /= 3
				}
				s, err := NewHex(dim, pieces, Basic)
				if err != nil {
					continue
				}
				require.False(t, s.NorthSouthPath() && s.WestEastPath(), "board %v", pieces)
			}
		}
	})

	t.Run("random playouts end with at most one winner", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(1, 2))
		for dim := 4; dim <= 7; dim++ {
			for game := 0; game < 50; game++ {
				var s State = mustHex(t, dim, make([]int, dim*dim), Basic)
				moves := 0
				for !s.IsTerminal() {
					action, err := s.RandomAction(rng)
					require.NoError(t, err)
					s, err = s.NextState(action)
					require.NoError(t, err)
					moves++
				}
				require.LessOrEqual(t, moves, dim*dim)
				h := s.(*HexState)
				require.False(t, h.NorthSouthPath() && h.WestEastPath())
			}
		}
	})

	t.Run("construction is deterministic", func(t *testing.T) {
		pieces := []int{-1, 1, -1, -1, -1, 1, 1, 1, 1}
		a := mustHex(t, 3, pieces, Basic)
		b := mustHex(t, 3, pieces, Basic)
		require.Equal(t, a.Winner(), b.Winner())
		require.Equal(t, a.LegalActions(), b.LegalActions())
		require.True(t, Equal(a, b))
	})
}

func TestHexLegality(t *testing.T) {
	s := mustHex(t, 3, []int{1, 0, 0, -1, -1, 0, 0, 0, 1}, Basic)
	for pos := 0; pos < 9; pos++ {
		require.Equal(t, s.Board()[pos] == Empty, s.IsLegalAction(pos), "position %d", pos)
	}

	rng := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 20; i++ {
		action, err := s.RandomAction(rng)
		require.NoError(t, err)
		require.True(t, s.IsLegalAction(action))
	}

	won := mustHex(t, 3, []int{0, 0, 1, -1, 1, 0, 0, 1, -1}, Basic)
	_, err := won.RandomAction(rng)
	require.ErrorIs(t, err, ErrNoLegalAction)
}
