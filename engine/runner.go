package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"hexit/game"
)

// Episode is one complete game.
type Episode struct {
	// States holds every non-terminal state in play order.
	States []game.State
	Final  game.State
	Reward float64
	Winner int
}

// Runner plays single episodes one move at a time.
type Runner struct {
	newState NewState
	players  Players
	settings
}

func NewRunner(newState NewState, players Players, options ...Option) *Runner {
	if players.P1 == nil || players.P2 == nil {
		panic("both players need an agent")
	}
	return &Runner{
		newState: newState,
		players:  players,
		settings: newSettings(options),
	}
}

// RunEpisode plays until the game ends. An agent returning an illegal action
// is an error here; agents are expected to retry on their own.
func (r *Runner) RunEpisode(ctx context.Context) (Episode, error) {
	state, err := r.newState()
	if err != nil {
		return Episode{}, fmt.Errorf("failed to create initial state: %w", err)
	}

	var history []game.State
	for !state.IsTerminal() {
		if err := ctx.Err(); err != nil {
			return Episode{}, err
		}
		history = append(history, state)
		r.show(state)

		var action int
		if len(history) == 1 && r.randomFirstMove > 0 && r.rng.Float64() < r.randomFirstMove {
			action, err = state.RandomAction(r.rng)
		} else {
			action, err = r.players.For(state.Turn()).ChooseAction(ctx, state)
		}
		if err != nil {
			return Episode{}, fmt.Errorf("failed to choose action for player %d: %w", state.Turn(), err)
		}

		next, err := state.NextState(action)
		if err != nil {
			return Episode{}, fmt.Errorf("player %d: %w", state.Turn(), err)
		}
		state = next
	}
	r.show(state)

	r.collector.AddEpisode(state.Winner())
	r.collector.AddMoves(len(history))
	return Episode{
		States: history,
		Final:  state,
		Reward: state.Reward(),
		Winner: state.Winner(),
	}, nil
}

// RunEpisodes plays n episodes and samples one of each episode's states
// uniformly.
func (r *Runner) RunEpisodes(ctx context.Context, n int) ([]game.State, error) {
	if n < 0 {
		return nil, fmt.Errorf("number of episodes cannot be negative, got %d", n)
	}
	logger := log.Ctx(ctx)
	r.collector.Start()

	samples := make([]game.State, 0, n)
	for i := 0; i < n; i++ {
		episode, err := r.RunEpisode(ctx)
		if err != nil {
			return samples, err
		}
		if len(episode.States) > 0 {
			samples = append(samples, episode.States[r.rng.IntN(len(episode.States))])
		}
		if r.logEvery > 0 && (i+1)%r.logEvery == 0 {
			logger.Info().Int("episodes", i+1).Int("total", n).Msg("episodes complete")
		}
	}
	r.collector.AddSamples(len(samples))

	summary := r.collector.Complete()
	logger.Info().
		Int("episodes", summary.Episodes).
		Int("p1_wins", summary.P1Wins).
		Int("p2_wins", summary.P2Wins).
		Int("draws", summary.Draws).
		Msg("episodes complete")
	return samples, nil
}

func (r *Runner) show(state game.State) {
	if r.display != nil {
		fmt.Fprint(r.display, game.Render(state))
	}
}
