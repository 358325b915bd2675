package agent

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog/log"

	"hexit/game"
	"hexit/policy"
)

// Policy plays the actions suggested by a restored model.
type Policy struct {
	session  policy.Session
	encoding policy.Encoding
	sample   bool
	rng      *rand.Rand
}

var _ Agent = (*Policy)(nil)

// NewPolicy returns an agent over session. With sample set, actions are drawn
// in proportion to the model's scores instead of taking the best one.
func NewPolicy(session policy.Session, encoding policy.Encoding, sample bool, rng *rand.Rand) *Policy {
	return &Policy{
		session:  session,
		encoding: encoding,
		sample:   sample,
		rng:      rng,
	}
}

// ChooseAction queries the model until it suggests a legal action, giving up
// after MaxAttempts.
func (a *Policy) ChooseAction(ctx context.Context, state game.State) (int, error) {
	vector := a.encoding.Encode(state)
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		action, err := policy.PredictSingle(ctx, a.session, vector, a.sample, a.rng)
		if err != nil {
			return 0, err
		}
		if state.IsLegalAction(action) {
			return action, nil
		}
		log.Ctx(ctx).Debug().Int("action", action).Int("attempt", attempt).Msg("policy suggested an illegal action")
	}
	return 0, fmt.Errorf("%w: %d attempts on checkpoint %s", ErrTooManyIllegal, MaxAttempts, a.session.Checkpoint())
}

// ChooseActionBatch scores all states in one call. Suggestions are returned
// as is, legal or not.
func (a *Policy) ChooseActionBatch(ctx context.Context, states []game.State) ([]int, error) {
	return policy.PredictBatch(ctx, a.session, a.encoding.EncodeAll(states), a.sample, a.rng)
}
