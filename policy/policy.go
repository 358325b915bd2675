package policy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

var ErrBadScores = errors.New("malformed policy scores")

// Session is a restored model. It scores a batch of encoded states, returning
// one score per board position for each state.
type Session interface {
	Checkpoint() string
	Scores(ctx context.Context, vectors [][]float64) ([][]float64, error)
}

// Service restores sessions from checkpoints. Restoring the same checkpoint
// twice yields an equivalent session.
type Service interface {
	Restore(ctx context.Context, checkpoint string) (Session, error)
}

// PredictBatch returns one action per vector. With sample set the action is
// drawn in proportion to the scores, otherwise it is the highest scoring one.
// Actions are not checked for legality.
func PredictBatch(ctx context.Context, sess Session, vectors [][]float64, sample bool, rng *rand.Rand) ([]int, error) {
	if len(vectors) == 0 {
		return []int{}, nil
	}
	scores, err := sess.Scores(ctx, vectors)
	if err != nil {
		return nil, fmt.Errorf("failed to score %d states: %w", len(vectors), err)
	}
	if len(scores) != len(vectors) {
		return nil, fmt.Errorf("%w: %d rows for %d states", ErrBadScores, len(scores), len(vectors))
	}

	actions := make([]int, len(scores))
	for i, row := range scores {
		action, err := Select(row, sample, rng)
		if err != nil {
			return nil, err
		}
		actions[i] = action
	}
	return actions, nil
}

func PredictSingle(ctx context.Context, sess Session, vector []float64, sample bool, rng *rand.Rand) (int, error) {
	actions, err := PredictBatch(ctx, sess, [][]float64{vector}, sample, rng)
	if err != nil {
		return 0, err
	}
	return actions[0], nil
}

// Select picks an action from one row of scores.
func Select(scores []float64, sample bool, rng *rand.Rand) (int, error) {
	if len(scores) == 0 {
		return 0, fmt.Errorf("%w: empty row", ErrBadScores)
	}
	for _, s := range scores {
		if math.IsNaN(s) {
			return 0, fmt.Errorf("%w: NaN score", ErrBadScores)
		}
	}
	if !sample {
		return floats.MaxIdx(scores), nil
	}
	probs := AdjustTemperature(scores, 1.0)
	if probs == nil {
		return floats.MaxIdx(scores), nil
	}
	return sampleIndex(probs, rng), nil
}

// AdjustTemperature turns non-negative scores into probabilities raised to
// 1/temperature. Negative scores count as zero. It returns nil when nothing
// has positive mass.
func AdjustTemperature(scores []float64, temperature float64) []float64 {
	exponent := 1.0 / temperature
	probs := make([]float64, len(scores))
	for i, s := range scores {
		if s > 0 {
			probs[i] = math.Pow(s, exponent)
		}
	}
	sum := floats.Sum(probs)
	if sum <= 0 || math.IsInf(sum, 0) {
		return nil
	}
	floats.Scale(1/sum, probs)
	return probs
}

func sampleIndex(probs []float64, rng *rand.Rand) int {
	sampled := rng.Float64()
	cumulative := 0.0
	last := 0
	for i, p := range probs {
		if p == 0 {
			continue
		}
		last = i
		cumulative += p
		if sampled < cumulative {
			return i
		}
	}
	return last // rounding
}
