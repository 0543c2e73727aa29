package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dshills/autoplay/internal/autoplay"
)

// Metrics tracks the tick loop next to the engine's own collectors.
type Metrics struct {
	Engine *autoplay.Metrics

	Ticks        prometheus.Counter
	TickDuration prometheus.Histogram
	Reloads      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	engine, err := autoplay.NewMetrics(reg)
	if err != nil {
		return nil, err
	}

	m := &Metrics{
		Engine: engine,
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autoplay_ticks_total",
			Help: "Total host ticks run",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "autoplay_tick_duration_seconds",
			Help:    "Time spent in one host tick",
			Buckets: []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05},
		}),
		Reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoplay_config_reloads_total",
				Help: "Configuration reloads by result",
			},
			[]string{"result"},
		),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Ticks, m.TickDuration, m.Reloads} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeTick(d time.Duration) {
	m.Ticks.Inc()
	m.TickDuration.Observe(d.Seconds())
}

func (m *Metrics) reload(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Reloads.WithLabelValues(result).Inc()
}

// MetricsServer serves /metrics and /health.
type MetricsServer struct {
	server   *http.Server
	listener net.Listener
	logger   zerolog.Logger
}

// NewMetricsServer creates a server for the collectors in g.
func NewMetricsServer(addr string, g prometheus.Gatherer, logger zerolog.Logger) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &MetricsServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: WithComponent(logger, "metrics"),
	}
}

// Start binds the listen address and serves in the background.
func (s *MetricsServer) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return &InitError{Component: "metrics server", Err: err}
	}
	s.listener = ln
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Starting metrics server")

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *MetricsServer) Addr() string {
	if s.listener == nil {
		return s.server.Addr
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down.
func (s *MetricsServer) Stop(ctx context.Context) error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Shutdown(ctx)
}
