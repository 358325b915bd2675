package agent

import (
	"context"
	"math/rand/v2"

	"hexit/game"
)

// Random plays uniformly among the legal actions.
type Random struct {
	rng *rand.Rand
}

var _ Agent = (*Random)(nil)

func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

func (a *Random) ChooseAction(_ context.Context, state game.State) (int, error) {
	return state.RandomAction(a.rng)
}

func (a *Random) ChooseActionBatch(ctx context.Context, states []game.State) ([]int, error) {
	return chooseEach(ctx, states, a.ChooseAction)
}
