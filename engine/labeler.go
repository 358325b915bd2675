package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog/log"

	"hexit/game"
	"hexit/searcher"
	"hexit/shard"
)

const (
	StateDir = "x"
	LabelDir = "y"
)

// Labeler searches from each state and stores the state next to the root
// visit distribution of the search. States go to <dir>/x and distributions
// to <dir>/y, in shards with matching numbers.
type Labeler struct {
	search        *searcher.MCTS
	dir           string
	statesPerFile int
}

func NewLabeler(search *searcher.MCTS, dir string, statesPerFile int) (*Labeler, error) {
	if statesPerFile <= 0 {
		return nil, fmt.Errorf("states per file must be positive, got %d", statesPerFile)
	}
	return &Labeler{search: search, dir: dir, statesPerFile: statesPerFile}, nil
}

func (l *Labeler) StateDir() string { return filepath.Join(l.dir, StateDir) }
func (l *Labeler) LabelDir() string { return filepath.Join(l.dir, LabelDir) }

// Label writes one pair of shards per statesPerFile states and returns their
// numbers. Terminal states have nothing to search and are skipped.
func (l *Labeler) Label(ctx context.Context, states []game.State) ([]int, error) {
	logger := log.Ctx(ctx)
	var indices []int
	for chunk := range slices.Chunk(states, l.statesPerFile) {
		var xs, ys [][]string
		for _, state := range chunk {
			if state.IsTerminal() {
				logger.Debug().Str("state", state.CSV()).Msg("skipped terminal state")
				continue
			}
			stats, err := l.search.Simulate(ctx, state)
			if err != nil {
				return indices, err
			}
			xs = append(xs, shard.Row(state))
			ys = append(ys, shard.FloatRow(searcher.Distribution(stats, state.NumActions())))
		}
		if len(xs) == 0 {
			continue
		}

		index, err := shard.AppendPair(l.StateDir(), l.LabelDir(), xs, ys)
		if err != nil {
			return indices, err
		}
		logger.Info().Int("shard", index).Int("states", len(xs)).Str("dir", l.dir).Msg("wrote labelled shard")
		indices = append(indices, index)
	}
	return indices, nil
}
