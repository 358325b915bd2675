package game

import "fmt"

// neighbor maps a position to an adjacent one, reporting false when the
// neighbor would fall off the board.
type neighbor func(pos, dim int) (int, bool)

func checkPosition(pos, dim int) {
	if pos < 0 || pos >= dim*dim {
		panic(fmt.Sprintf("position %d out of range for dimension %d", pos, dim))
	}
}

func NW(pos, dim int) (int, bool) {
	checkPosition(pos, dim)
	if pos/dim == 0 {
		return 0, false
	}
	return pos - dim, true
}

func NE(pos, dim int) (int, bool) {
	checkPosition(pos, dim)
	if pos/dim == 0 || pos%dim == dim-1 {
		return 0, false
	}
	return pos - dim + 1, true
}

func SW(pos, dim int) (int, bool) {
	checkPosition(pos, dim)
	if pos/dim == dim-1 || pos%dim == 0 {
		return 0, false
	}
	return pos + dim - 1, true
}

func SE(pos, dim int) (int, bool) {
	checkPosition(pos, dim)
	if pos/dim == dim-1 {
		return 0, false
	}
	return pos + dim, true
}

func W(pos, dim int) (int, bool) {
	checkPosition(pos, dim)
	if pos%dim == 0 {
		return 0, false
	}
	return pos - 1, true
}

func E(pos, dim int) (int, bool) {
	checkPosition(pos, dim)
	if pos%dim == dim-1 {
		return 0, false
	}
	return pos + 1, true
}

// Directions searched when looking for a winning chain.
var (
	northSouth = []neighbor{SW, SE, E}
	westEast   = []neighbor{E, NE, SE}
)

// NorthSouthPath reports whether P1 stones connect row 0 to the last row.
func (s *HexState) NorthSouthPath() bool {
	seeds := make([]int, s.dim)
	for c := range seeds {
		seeds[c] = c
	}
	return s.connected(P1, seeds, northSouth, func(pos int) bool { return pos/s.dim == s.dim-1 })
}

// WestEastPath reports whether P2 stones connect column 0 to the last column.
func (s *HexState) WestEastPath() bool {
	seeds := make([]int, s.dim)
	for r := range seeds {
		seeds[r] = r * s.dim
	}
	return s.connected(P2, seeds, westEast, func(pos int) bool { return pos%s.dim == s.dim-1 })
}

// connected runs an iterative depth-first search from every seed holding a
// stone of player. The visited set is shared across seeds: a cell already
// explored from an earlier seed cannot reach the goal from a later one either.
func (s *HexState) connected(player int, seeds []int, moves []neighbor, goal func(int) bool) bool {
	visited := newBitset(len(s.pieces))
	stack := make([]int, 0, len(s.pieces))
	for _, seed := range seeds {
		if s.pieces[seed] != player || visited.has(seed) {
			continue
		}
		visited.set(seed)
		stack = append(stack, seed)
		for len(stack) > 0 {
			pos := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if goal(pos) {
				return true
			}
			for _, move := range moves {
				next, ok := move(pos, s.dim)
				if !ok || visited.has(next) || s.pieces[next] != player {
					continue
				}
				visited.set(next)
				stack = append(stack, next)
			}
		}
	}
	return false
}

type bitset []uint64

func newBitset(n int) bitset {
	return make(bitset, (n+63)/64)
}

func (b bitset) has(i int) bool { return b[i/64]&(1<<(i%64)) != 0 }
func (b bitset) set(i int)      { b[i/64] |= 1 << (i % 64) }
