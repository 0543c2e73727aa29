package autoplay

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	EntriesRecorded     prometheus.Counter
	TransitionsRecorded prometheus.Counter
	EntriesPlayed       prometheus.Counter
	TransitionsApplied  prometheus.Counter
	SessionsSaved       prometheus.Counter
	SessionsLoaded      prometheus.Counter
	FileErrors          *prometheus.CounterVec
	State               prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		EntriesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autoplay_entries_recorded_total",
			Help: "Total session entries recorded",
		}),
		TransitionsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autoplay_transitions_recorded_total",
			Help: "Total key transitions recorded",
		}),
		EntriesPlayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autoplay_entries_played_total",
			Help: "Total session entries applied during playback",
		}),
		TransitionsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autoplay_transitions_applied_total",
			Help: "Total key transitions synthesized during playback",
		}),
		SessionsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autoplay_sessions_saved_total",
			Help: "Total session files written",
		}),
		SessionsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autoplay_sessions_loaded_total",
			Help: "Total session files loaded",
		}),
		FileErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoplay_file_errors_total",
				Help: "Session file failures by operation and kind",
			},
			[]string{"op", "kind"},
		),
		State: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "autoplay_state",
			Help: "Current engine state (0 stopped, 1 recording, 2 playing)",
		}),
	}

	if reg == nil {
		return m, nil
	}

	for _, c := range []prometheus.Collector{
		m.EntriesRecorded,
		m.TransitionsRecorded,
		m.EntriesPlayed,
		m.TransitionsApplied,
		m.SessionsSaved,
		m.SessionsLoaded,
		m.FileErrors,
		m.State,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) entryRecorded(transitions int) {
	if m == nil {
		return
	}
	m.EntriesRecorded.Inc()
	m.TransitionsRecorded.Add(float64(transitions))
}

func (m *Metrics) entryPlayed(transitions int) {
	if m == nil {
		return
	}
	m.EntriesPlayed.Inc()
	m.TransitionsApplied.Add(float64(transitions))
}

func (m *Metrics) saved() {
	if m == nil {
		return
	}
	m.SessionsSaved.Inc()
}

func (m *Metrics) loaded() {
	if m == nil {
		return
	}
	m.SessionsLoaded.Inc()
}

func (m *Metrics) fileError(op string, err error) {
	if m == nil {
		return
	}
	kind := "unknown"
	var e *Error
	if errors.As(err, &e) {
		kind = e.Kind.String()
	}
	m.FileErrors.WithLabelValues(op, kind).Inc()
}

func (m *Metrics) state(s State) {
	if m == nil {
		return
	}
	m.State.Set(float64(s))
}
