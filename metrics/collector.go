package metrics

import (
	"sync/atomic"
	"time"

	"hexit/game"
)

// Summary describes one generation run.
type Summary struct {
	Episodes  int
	P1Wins    int
	P2Wins    int
	Draws     int
	// Cutoffs are episodes stopped at their sampling depth before the game
	// ended. They count towards Episodes but not towards Draws.
	Cutoffs   int
	Moves     int
	Fallbacks int
	Samples   int
	Duration  time.Duration
}

type Collector interface {
	Start()
	// AddEpisode records a finished episode by its final state's winner.
	AddEpisode(winner int)
	AddCutoff()
	AddMoves(n int)
	// AddFallback records an illegal suggestion replaced by a random action.
	AddFallback()
	AddSamples(n int)
	ObserveBatch(size int, elapsed time.Duration)
	Complete() Summary
}

type collector struct {
	startTime time.Time
	episodes  atomic.Int64
	p1Wins    atomic.Int64
	p2Wins    atomic.Int64
	cutoffs   atomic.Int64
	moves     atomic.Int64
	fallbacks atomic.Int64
	samples   atomic.Int64
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start() {
	m.startTime = time.Now()
}

func (m *collector) AddEpisode(winner int) {
	m.episodes.Add(1)
	switch winner {
	case game.P1:
		m.p1Wins.Add(1)
	case game.P2:
		m.p2Wins.Add(1)
	}
}

func (m *collector) AddCutoff() {
	m.episodes.Add(1)
	m.cutoffs.Add(1)
}

func (m *collector) AddMoves(n int)                  { m.moves.Add(int64(n)) }
func (m *collector) AddFallback()                    { m.fallbacks.Add(1) }
func (m *collector) AddSamples(n int)                { m.samples.Add(int64(n)) }
func (m *collector) ObserveBatch(int, time.Duration) {}

func (m *collector) Complete() Summary {
	episodes := int(m.episodes.Load())
	p1, p2 := int(m.p1Wins.Load()), int(m.p2Wins.Load())
	cutoffs := int(m.cutoffs.Load())
	var elapsed time.Duration
	if !m.startTime.IsZero() {
		elapsed = time.Since(m.startTime)
	}
	return Summary{
		Episodes:  episodes,
		P1Wins:    p1,
		P2Wins:    p2,
		Draws:     episodes - cutoffs - p1 - p2,
		Cutoffs:   cutoffs,
		Moves:     int(m.moves.Load()),
		Fallbacks: int(m.fallbacks.Load()),
		Samples:   int(m.samples.Load()),
		Duration:  elapsed,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start()                          {}
func (m *dummyCollector) AddEpisode(int)                  {}
func (m *dummyCollector) AddCutoff()                      {}
func (m *dummyCollector) AddMoves(int)                    {}
func (m *dummyCollector) AddFallback()                    {}
func (m *dummyCollector) AddSamples(int)                  {}
func (m *dummyCollector) ObserveBatch(int, time.Duration) {}
func (m *dummyCollector) Complete() Summary               { return Summary{} }
