package agent

import (
	"context"
	"errors"

	"hexit/game"
)

// ErrTooManyIllegal is returned when an agent keeps proposing illegal actions.
var ErrTooManyIllegal = errors.New("too many illegal actions")

// MaxAttempts bounds how often an agent retries after an illegal action.
const MaxAttempts = 10

// Agent picks actions for the player to move.
type Agent interface {
	// ChooseAction returns a legal action for a non-terminal state.
	ChooseAction(ctx context.Context, state game.State) (int, error)
	// ChooseActionBatch returns one suggestion per state. Suggestions may be
	// illegal; callers decide how to recover.
	ChooseActionBatch(ctx context.Context, states []game.State) ([]int, error)
}

// chooseEach answers a batch by calling choose once per state.
func chooseEach(ctx context.Context, states []game.State, choose func(context.Context, game.State) (int, error)) ([]int, error) {
	actions := make([]int, len(states))
	for i, s := range states {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		action, err := choose(ctx, s)
		if err != nil {
			return nil, err
		}
		actions[i] = action
	}
	return actions, nil
}
