// Package observability collects Prometheus metrics for the plugin host.
//
// Exposition is the embedder's concern: the package registers collectors
// and records values but never starts an HTTP listener.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the host's Prometheus collectors.
//
// A nil *Metrics is a valid no-op recorder, so callers never guard their
// record calls on whether monitoring is enabled.
type Metrics struct {
	// CommandMatches counts matched command invocations.
	// Labels: id (pattern id)
	CommandMatches *prometheus.CounterVec

	// CommandMisses counts inputs with the command prefix that matched
	// no registered pattern.
	CommandMisses prometheus.Counter

	// ActionSelections counts actions chosen to run for a turn.
	// Labels: action, rule (always|keyword|random|judge)
	ActionSelections *prometheus.CounterVec

	// ConfigSets counts configuration writes by outcome.
	// Labels: result (ok|readonly|unknown_key|conversion|validation|error)
	ConfigSets *prometheus.CounterVec

	// CacheHits and CacheMisses count response cache lookups.
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// TurnDuration measures end-to-end turn handling in seconds.
	// Labels: kind (command|chat)
	// Buckets: 1ms to 30s
	TurnDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the host collectors. A nil registerer
// falls back to the Prometheus default registry; tests pass their own
// registry so repeated construction never collides.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		CommandMatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pluginhost_commands_matched_total",
				Help: "Total number of matched command invocations by pattern id",
			},
			[]string{"id"},
		),

		CommandMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pluginhost_commands_unmatched_total",
				Help: "Total number of command-prefixed inputs that matched no pattern",
			},
		),

		ActionSelections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pluginhost_action_selections_total",
				Help: "Total number of actions selected to run by action and activation rule",
			},
			[]string{"action", "rule"},
		),

		ConfigSets: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pluginhost_config_sets_total",
				Help: "Total number of configuration writes by outcome",
			},
			[]string{"result"},
		),

		CacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pluginhost_cache_hits_total",
				Help: "Total number of response cache hits",
			},
		),

		CacheMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pluginhost_cache_misses_total",
				Help: "Total number of response cache misses",
			},
		),

		TurnDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pluginhost_turn_duration_seconds",
				Help:    "Duration of turn handling in seconds by turn kind",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
			[]string{"kind"},
		),
	}
}

// CommandMatched increments the matched-command counter for a pattern id.
func (m *Metrics) CommandMatched(id string) {
	if m == nil || m.CommandMatches == nil {
		return
	}
	m.CommandMatches.WithLabelValues(id).Inc()
}

// CommandUnmatched increments the unmatched-command counter.
func (m *Metrics) CommandUnmatched() {
	if m == nil || m.CommandMisses == nil {
		return
	}
	m.CommandMisses.Inc()
}

// ActionSelected records that an action was chosen to run under a rule.
func (m *Metrics) ActionSelected(action, rule string) {
	if m == nil || m.ActionSelections == nil {
		return
	}
	m.ActionSelections.WithLabelValues(action, rule).Inc()
}

// ConfigSet records the outcome of a configuration write.
func (m *Metrics) ConfigSet(result string) {
	if m == nil || m.ConfigSets == nil {
		return
	}
	m.ConfigSets.WithLabelValues(result).Inc()
}

// CacheHit increments the response cache hit counter.
func (m *Metrics) CacheHit() {
	if m == nil || m.CacheHits == nil {
		return
	}
	m.CacheHits.Inc()
}

// CacheMiss increments the response cache miss counter.
func (m *Metrics) CacheMiss() {
	if m == nil || m.CacheMisses == nil {
		return
	}
	m.CacheMisses.Inc()
}

// ObserveTurn records the duration of one handled turn.
func (m *Metrics) ObserveTurn(kind string, seconds float64) {
	if m == nil || m.TurnDuration == nil {
		return
	}
	m.TurnDuration.WithLabelValues(kind).Observe(seconds)
}
