package searcher

import (
	"context"
	"math/rand/v2"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"

	"hexit/game"
)

type Option func(mcts *MCTS)

// ActionStats summarises the searched subtree under one root action.
type ActionStats struct {
	Action int
	Visits int
	// Mean is the average outcome from P1's perspective, in [-1, 1].
	Mean float64
}

// MCTS is a sequential UCT search with random rollouts.
type MCTS struct {
	simulations int
	cutoff      int
	cSquared    float64
	rng         *rand.Rand
}

func WithSimulations(simulations int) Option {
	return func(m *MCTS) {
		if simulations > 0 {
			m.simulations = simulations
		}
	}
}

// WithCutoff stops rollouts after depth moves and scores them as draws.
func WithCutoff(depth int) Option {
	return func(m *MCTS) {
		if depth > 0 {
			m.cutoff = depth
		}
	}
}

func WithExploration(cSquared float64) Option {
	return func(m *MCTS) {
		if cSquared > 0 {
			m.cSquared = cSquared
		}
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(m *MCTS) {
		if rng != nil {
			m.rng = rng
		}
	}
}

func NewMCTS(options ...Option) *MCTS {
	m := &MCTS{ // Default values
		cSquared: CSquared,
		cutoff:   -1,
	}
	for _, option := range options {
		option(m)
	}
	if m.simulations <= 0 {
		panic("Must specify search simulations")
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return m
}

// Simulate searches from state and returns statistics for every root action
// that was visited, in the order they were expanded.
func (m *MCTS) Simulate(ctx context.Context, state game.State) ([]ActionStats, error) {
	root := newDecision(nil, -1, state, m.rng)
	for i := 0; i < m.simulations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.simulate(root, state)
	}
	log.Ctx(ctx).Trace().Int("simulations", m.simulations).Int("visits", root.visits).Msg("search complete")

	stats := make([]ActionStats, len(root.children))
	for i, child := range root.children {
		stats[i] = ActionStats{
			Action: child.action,
			Visits: child.visits,
			Mean:   child.rewards / float64(child.visits),
		}
	}
	return stats, nil
}

// Distribution spreads the root visits over all numActions positions and
// normalises them to sum to one. Actions never visited get zero.
func Distribution(stats []ActionStats, numActions int) []float64 {
	dist := make([]float64, numActions)
	for _, s := range stats {
		dist[s.Action] = float64(s.Visits)
	}
	if total := floats.Sum(dist); total > 0 {
		floats.Scale(1/total, dist)
	}
	return dist
}

func (m *MCTS) simulate(root *decision, state game.State) {
	node, state := m.selectThenExpand(root, state)
	reward := rollout(state, m.cutoff, m.rng)
	for node != nil {
		node = node.backup(reward)
	}
}

func (m *MCTS) selectThenExpand(root *decision, state game.State) (*decision, game.State) {
	parent := root
	child, state, added := parent.selectOrExpand(state, m.cSquared, m.rng)
	for !added && child != parent {
		parent = child
		child, state, added = parent.selectOrExpand(state, m.cSquared, m.rng)
	}
	return child, state
}

// rollout plays random moves until the game ends or cutoff moves were made,
// returning the winner, or 0 for draws and cut off games.
func rollout(state game.State, cutoff int, rng *rand.Rand) float64 {
	depth := 0
	for !state.IsTerminal() && (cutoff < 0 || depth < cutoff) {
		action, err := state.RandomAction(rng)
		if err != nil {
			break
		}
		state, err = state.NextState(action)
		if err != nil {
			panic(err)
		}
		depth++
	}
	return float64(state.Winner())
}
