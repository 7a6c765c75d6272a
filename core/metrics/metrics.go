package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/leofalp/chatbridge/providers/ai"
)

// Namespace prefixes every metric name.
const Namespace = "chatbridge"

// Collector owns a private Prometheus registry and the generation metrics.
//
// Metrics:
//   - chatbridge_generations_total: Generations by provider, model and outcome
//   - chatbridge_generation_duration_seconds: Generation latency by provider and model
//   - chatbridge_generation_tokens_per_second: Estimated throughput of completed generations
//   - chatbridge_stream_deltas_total: Text deltas delivered by provider
//   - chatbridge_stream_lines_skipped_total: Wire lines that carried no text by provider
//   - chatbridge_fallbacks_total: Non-streaming fallback calls by provider and model
//   - chatbridge_model_list_failures_total: Failed model listings by provider
//   - chatbridge_models_available: Models reported by the last listing per provider
//
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	generationsTotal   *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	tokensPerSecond    *prometheus.HistogramVec
	deltasTotal        *prometheus.CounterVec
	skippedLinesTotal  *prometheus.CounterVec
	fallbacksTotal     *prometheus.CounterVec
	modelListFailures  *prometheus.CounterVec
	modelsAvailable    *prometheus.GaugeVec
}

// NewCollector creates and registers the metrics with a new registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		generationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "generations_total",
				Help:      "Total number of generations by outcome",
			},
			[]string{"provider", "model", "outcome"},
		),

		generationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "generation_duration_seconds",
				Help:      "Time from send to the end of the answer",
				Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"provider", "model"},
		),

		tokensPerSecond: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "generation_tokens_per_second",
				Help:      "Estimated output tokens per second of completed generations",
				Buckets:   []float64{1, 5, 10, 20, 40, 80, 160},
			},
			[]string{"provider"},
		),

		deltasTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "stream_deltas_total",
				Help:      "Total number of text deltas delivered",
			},
			[]string{"provider"},
		),

		skippedLinesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "stream_lines_skipped_total",
				Help:      "Total number of stream lines that produced no text",
			},
			[]string{"provider"},
		),

		fallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "fallbacks_total",
				Help:      "Total number of non-streaming fallback calls",
			},
			[]string{"provider", "model"},
		),

		modelListFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "model_list_failures_total",
				Help:      "Total number of failed model listings",
			},
			[]string{"provider"},
		),

		modelsAvailable: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "models_available",
				Help:      "Number of models reported by the last listing",
			},
			[]string{"provider"},
		),
	}

	c.registry.MustRegister(
		c.generationsTotal,
		c.generationDuration,
		c.tokensPerSecond,
		c.deltasTotal,
		c.skippedLinesTotal,
		c.fallbacksTotal,
		c.modelListFailures,
		c.modelsAvailable,
	)

	return c
}

// Registry returns the private registry, for tests and custom exporters.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordGeneration records the outcome of one generation.
//
// Example:
//
//	c.RecordGeneration(outcome)
func (c *Collector) RecordGeneration(outcome ai.Outcome) {
	if c == nil {
		return
	}

	provider := string(outcome.Provider)
	c.generationsTotal.WithLabelValues(provider, outcome.Model, string(outcome.Kind)).Inc()
	c.generationDuration.WithLabelValues(provider, outcome.Model).Observe(outcome.Duration.Seconds())

	if outcome.Kind == ai.OutcomeCompleted && outcome.TokensPerSecond > 0 {
		c.tokensPerSecond.WithLabelValues(provider).Observe(outcome.TokensPerSecond)
	}
	if outcome.UsedFallback {
		c.fallbacksTotal.WithLabelValues(provider, outcome.Model).Inc()
	}
}

// RecordStream adds the wire counters of one stream.
func (c *Collector) RecordStream(provider ai.ProviderKind, stats ai.StreamStats) {
	if c == nil {
		return
	}
	c.deltasTotal.WithLabelValues(string(provider)).Add(float64(stats.Deltas))
	c.skippedLinesTotal.WithLabelValues(string(provider)).Add(float64(stats.Skipped))
}

// RecordModelList records the result of a model listing. A failed listing
// leaves the last known model count untouched.
func (c *Collector) RecordModelList(provider ai.ProviderKind, count int, failed bool) {
	if c == nil {
		return
	}
	if failed {
		c.modelListFailures.WithLabelValues(string(provider)).Inc()
		return
	}
	c.modelsAvailable.WithLabelValues(string(provider)).Set(float64(count))
}
