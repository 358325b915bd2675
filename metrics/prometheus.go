package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hexit"

// Prometheus counts the same events as NewCollector and also exports them.
type Prometheus struct {
	Collector

	EpisodesTotal  *prometheus.CounterVec
	MovesTotal     prometheus.Counter
	FallbacksTotal prometheus.Counter
	CutoffsTotal   prometheus.Counter
	SamplesTotal   prometheus.Counter
	BatchSeconds   prometheus.Histogram
	BatchSize      prometheus.Histogram
}

// NewPrometheus registers the generation metrics with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)
	return &Prometheus{
		Collector: NewCollector(),
		EpisodesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "episodes_total",
			Help:      "Finished self-play episodes by winner.",
		}, []string{"winner"}),
		MovesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Moves played across all episodes.",
		}),
		FallbacksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "illegal_fallbacks_total",
			Help:      "Illegal policy suggestions replaced by a random legal action.",
		}),
		CutoffsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cutoffs_total",
			Help:      "Episodes stopped at their sampling depth before the game ended.",
		}),
		SamplesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "States sampled for training.",
		}),
		BatchSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "agent_batch_seconds",
			Help:      "Latency of one batched agent call.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "agent_batch_size",
			Help:      "States sent in one batched agent call.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
}

func (m *Prometheus) AddEpisode(winner int) {
	m.Collector.AddEpisode(winner)
	m.EpisodesTotal.WithLabelValues(strconv.Itoa(winner)).Inc()
}

func (m *Prometheus) AddCutoff() {
	m.Collector.AddCutoff()
	m.CutoffsTotal.Inc()
}

func (m *Prometheus) AddMoves(n int) {
	m.Collector.AddMoves(n)
	m.MovesTotal.Add(float64(n))
}

func (m *Prometheus) AddFallback() {
	m.Collector.AddFallback()
	m.FallbacksTotal.Inc()
}

func (m *Prometheus) AddSamples(n int) {
	m.Collector.AddSamples(n)
	m.SamplesTotal.Add(float64(n))
}

func (m *Prometheus) ObserveBatch(size int, elapsed time.Duration) {
	m.BatchSeconds.Observe(elapsed.Seconds())
	m.BatchSize.Observe(float64(size))
}
