package agent

import (
	"context"
	"math/rand/v2"

	"github.com/rs/zerolog/log"

	"hexit/game"
	"hexit/searcher"
)

// MCTS plays the root action with the best mean outcome for the player to
// move.
type MCTS struct {
	mcts *searcher.MCTS
	rng  *rand.Rand
}

var _ Agent = (*MCTS)(nil)

func NewMCTS(mcts *searcher.MCTS, rng *rand.Rand) *MCTS {
	return &MCTS{mcts: mcts, rng: rng}
}

func (a *MCTS) ChooseAction(ctx context.Context, state game.State) (int, error) {
	stats, err := a.mcts.Simulate(ctx, state)
	if err != nil {
		return 0, err
	}
	action := -1
	best, visits := 0.0, 0
	for _, s := range stats {
		value := float64(state.Turn()) * s.Mean
		if action < 0 || value > best || (value == best && s.Visits > visits) {
			action, best, visits = s.Action, value, s.Visits
		}
	}
	if !state.IsLegalAction(action) {
		log.Ctx(ctx).Warn().Int("action", action).Msg("search found no legal action, playing randomly")
		return state.RandomAction(a.rng)
	}
	return action, nil
}

func (a *MCTS) ChooseActionBatch(ctx context.Context, states []game.State) ([]int, error) {
	return chooseEach(ctx, states, a.ChooseAction)
}
