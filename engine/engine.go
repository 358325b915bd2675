package engine

import (
	"context"
	"io"
	"math/rand/v2"

	"hexit/agent"
	"hexit/game"
	"hexit/metrics"
)

// NewState creates the starting position of an episode.
type NewState func() (game.State, error)

// Players maps each side to the agent playing it.
type Players struct {
	P1 agent.Agent
	P2 agent.Agent
}

func (p Players) For(turn int) agent.Agent {
	if turn == game.P2 {
		return p.P2
	}
	return p.P1
}

// Sink receives every completed batch of samples, in episode order.
type Sink func(ctx context.Context, samples []game.State) error

type Option func(s *settings)

type settings struct {
	batchSize       int
	maxMoves        int
	logEvery        int
	randomFirstMove float64
	display         io.Writer
	collector       metrics.Collector
	sink            Sink
	rng             *rand.Rand
}

func newSettings(options []Option) settings {
	s := settings{ // Default values
		batchSize: 1024,
		logEvery:  10,
		collector: metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(&s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

// WithBatchSize sets how many episodes the scheduler plays in lockstep.
func WithBatchSize(size int) Option {
	return func(s *settings) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// WithMaxMoves bounds termination depths to [0, moves]. It defaults to the
// number of board positions.
func WithMaxMoves(moves int) Option {
	return func(s *settings) {
		if moves > 0 {
			s.maxMoves = moves
		}
	}
}

// WithLogEvery logs progress every n turns or episodes. Zero disables it.
func WithLogEvery(n int) Option {
	return func(s *settings) {
		if n >= 0 {
			s.logEvery = n
		}
	}
}

// WithRandomFirstMove replaces the opening move with a random one with
// probability p.
func WithRandomFirstMove(p float64) Option {
	return func(s *settings) {
		if p >= 0 && p <= 1 {
			s.randomFirstMove = p
		}
	}
}

func WithDisplay(w io.Writer) Option {
	return func(s *settings) {
		s.display = w
	}
}

func WithCollector(c metrics.Collector) Option {
	return func(s *settings) {
		if c != nil {
			s.collector = c
		}
	}
}

// WithSink stores samples batch by batch while the scheduler runs.
func WithSink(sink Sink) Option {
	return func(s *settings) {
		s.sink = sink
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(s *settings) {
		if rng != nil {
			s.rng = rng
		}
	}
}
