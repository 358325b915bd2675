package searcher

import (
	"math"
	"math/rand/v2"

	"hexit/game"
)

// decision is a tree node for the state reached by playing action from its
// parent. Rewards are summed from P1's perspective.
type decision struct {
	parent   *decision
	action   int
	turn     int
	untried  []int
	children []*decision
	rewards  float64
	visits   int
}

func newDecision(parent *decision, action int, state game.State, rng *rand.Rand) *decision {
	moves := state.LegalActions()
	rng.Shuffle(len(moves), func(i, j int) { moves[i], moves[j] = moves[j], moves[i] })
	return &decision{
		parent:  parent,
		action:  action,
		turn:    state.Turn(),
		untried: moves,
	}
}

// selectOrExpand descends one level. It returns the child and its state, and
// whether the child was newly added.
func (d *decision) selectOrExpand(state game.State, cSquared float64, rng *rand.Rand) (*decision, game.State, bool) {
	if len(d.untried) > 0 {
		action := d.untried[len(d.untried)-1]
		d.untried = d.untried[:len(d.untried)-1]
		next, err := state.NextState(action)
		if err != nil {
			panic(err) // untried only holds legal actions
		}
		child := newDecision(d, action, next, rng)
		d.children = append(d.children, child)
		return child, next, true
	}

	if len(d.children) == 0 { // Terminal node
		return d, state, false
	}

	child := d.pickChild(cSquared)
	next, err := state.NextState(child.action)
	if err != nil {
		panic(err)
	}
	return child, next, false
}

func (d *decision) pickChild(cSquared float64) *decision {
	policy := newUCT(cSquared, float64(d.visits))
	var best *decision
	bestScore := math.Inf(-1)
	for _, child := range d.children {
		// Rewards favour P1, so flip them when P2 chooses.
		score := policy.evaluate(float64(d.turn)*child.rewards, float64(child.visits))
		if score > bestScore {
			bestScore = score
			best = child
		}
	}
	return best
}

func (d *decision) backup(reward float64) *decision {
	d.rewards += reward
	d.visits++
	return d.parent
}
