package engine

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// DepthDistribution draws the move count at which an episode is cut and
// sampled. Depth k in [0, maxMoves] has weight k+1, favouring late
// positions.
type DepthDistribution struct {
	categorical distuv.Categorical
	maxMoves    int
}

func NewDepthDistribution(maxMoves int, src rand.Source) DepthDistribution {
	if maxMoves < 0 {
		panic("maxMoves cannot be negative")
	}
	weights := make([]float64, maxMoves+1)
	for k := range weights {
		weights[k] = float64(k + 1)
	}
	return DepthDistribution{
		categorical: distuv.NewCategorical(weights, src),
		maxMoves:    maxMoves,
	}
}

func (d DepthDistribution) Sample() int {
	return int(d.categorical.Rand())
}

func (d DepthDistribution) Prob(depth int) float64 {
	return d.categorical.Prob(float64(depth))
}

func (d DepthDistribution) MaxMoves() int { return d.maxMoves }
