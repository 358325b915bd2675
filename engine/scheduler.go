package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"hexit/game"
)

// Scheduler plays many self-play episodes in lockstep so that each turn
// costs one batched agent call, and samples one state from every episode.
type Scheduler struct {
	newState NewState
	players  Players
	settings
}

func NewScheduler(newState NewState, players Players, options ...Option) *Scheduler {
	if players.P1 == nil || players.P2 == nil {
		panic("both players need an agent")
	}
	return &Scheduler{
		newState: newState,
		players:  players,
		settings: newSettings(options),
	}
}

// slot is one episode of a batch.
type slot struct {
	state    game.State
	history  []game.State
	depth    int
	finished bool
	sample   game.State
}

// Run plays numEpisodes episodes as consecutive independent batches of at
// most the configured batch size and returns one sampled state per episode,
// in episode order. Each batch is handed to the sink, if any, as soon as it
// completes, so a later failure keeps earlier batches.
func (s *Scheduler) Run(ctx context.Context, numEpisodes int) ([]game.State, error) {
	if numEpisodes < 0 {
		return nil, fmt.Errorf("number of episodes cannot be negative, got %d", numEpisodes)
	}
	logger := log.Ctx(ctx)
	s.collector.Start()

	samples := make([]game.State, 0, numEpisodes)
	for done := 0; done < numEpisodes; {
		size := min(s.batchSize, numEpisodes-done)
		batch, err := s.RunBatch(ctx, size)
		if err != nil {
			return samples, err
		}
		samples = append(samples, batch...)
		done += size
		if s.sink != nil {
			if err := s.sink(ctx, batch); err != nil {
				return samples, fmt.Errorf("failed to store batch: %w", err)
			}
		}
		logger.Info().Int("episodes", done).Int("total", numEpisodes).Msg("batch complete")
	}

	summary := s.collector.Complete()
	logger.Info().
		Int("episodes", summary.Episodes).
		Int("p1_wins", summary.P1Wins).
		Int("p2_wins", summary.P2Wins).
		Int("draws", summary.Draws).
		Int("cutoffs", summary.Cutoffs).
		Int("fallbacks", summary.Fallbacks).
		Dur("elapsed", summary.Duration).
		Msg("self-play complete")
	return samples, nil
}

// RunBatch plays size episodes together. Each episode is cut at a depth drawn
// from DepthDistribution; the state reached there is sampled, or the last
// state before the end if the game finished first.
func (s *Scheduler) RunBatch(ctx context.Context, size int) ([]game.State, error) {
	if size < 0 {
		return nil, fmt.Errorf("batch size cannot be negative, got %d", size)
	}
	logger := log.Ctx(ctx)
	slots := make([]*slot, size)
	for i := range slots {
		state, err := s.newState()
		if err != nil {
			return nil, fmt.Errorf("failed to create initial state: %w", err)
		}
		slots[i] = &slot{state: state}
	}
	if size == 0 {
		return []game.State{}, nil
	}

	maxMoves := s.maxMoves
	if maxMoves == 0 {
		maxMoves = slots[0].state.NumActions()
	}
	depths := NewDepthDistribution(maxMoves, s.rng)
	for _, sl := range slots {
		sl.depth = depths.Sample()
	}

	turn := game.P1
	remaining := size
	for moveCount := 0; remaining > 0; moveCount++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var active []*slot
		for _, sl := range slots {
			if sl.finished {
				continue
			}
			sl.history = append(sl.history, sl.state)
			if sl.state.IsTerminal() || moveCount == sl.depth {
				s.finish(sl)
				remaining--
				continue
			}
			active = append(active, sl)
		}
		if len(active) == 0 {
			break
		}

		if s.display != nil {
			fmt.Fprint(s.display, game.Render(active[0].state))
		}
		if err := s.advance(ctx, active, turn, moveCount == 0); err != nil {
			return nil, err
		}
		s.collector.AddMoves(len(active))

		turn = -turn
		if s.logEvery > 0 && (moveCount+1)%s.logEvery == 0 {
			logger.Debug().Int("move", moveCount+1).Int("active", len(active)).Msg("batch progress")
		}
	}

	samples := make([]game.State, size)
	for i, sl := range slots {
		samples[i] = sl.sample
	}
	s.collector.AddSamples(size)
	return samples, nil
}

func (s *Scheduler) finish(sl *slot) {
	sl.finished = true
	sl.sample = sl.state
	if sl.state.IsTerminal() && len(sl.history) > 1 {
		sl.sample = sl.history[len(sl.history)-2]
	}
	if sl.state.IsTerminal() {
		s.collector.AddEpisode(sl.state.Winner())
	} else {
		s.collector.AddCutoff()
	}
	sl.history = nil
}

// advance plays one move in every active slot. Illegal suggestions are
// replaced by a random legal action.
func (s *Scheduler) advance(ctx context.Context, active []*slot, turn int, opening bool) error {
	actions := make([]int, len(active))
	var queried []int
	for i, sl := range active {
		if opening && s.randomFirstMove > 0 && s.rng.Float64() < s.randomFirstMove {
			action, err := sl.state.RandomAction(s.rng)
			if err != nil {
				return err
			}
			actions[i] = action
			continue
		}
		queried = append(queried, i)
	}

	if len(queried) > 0 {
		states := make([]game.State, len(queried))
		for j, i := range queried {
			states[j] = active[i].state
		}
		start := time.Now()
		suggested, err := s.players.For(turn).ChooseActionBatch(ctx, states)
		if err != nil {
			return fmt.Errorf("failed to choose actions for player %d: %w", turn, err)
		}
		s.collector.ObserveBatch(len(states), time.Since(start))
		if len(suggested) != len(states) {
			return fmt.Errorf("agent returned %d actions for %d states", len(suggested), len(states))
		}
		for j, i := range queried {
			actions[i] = suggested[j]
		}
	}

	for i, sl := range active {
		action := actions[i]
		if !sl.state.IsLegalAction(action) {
			fallback, err := sl.state.RandomAction(s.rng)
			if err != nil {
				return err
			}
			log.Ctx(ctx).Trace().Int("suggested", action).Int("played", fallback).Msg("replaced illegal action")
			s.collector.AddFallback()
			action = fallback
		}
		next, err := sl.state.NextState(action)
		if err != nil {
			return err
		}
		sl.state = next
	}
	return nil
}
