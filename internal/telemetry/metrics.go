package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/1broseidon/viewwall/internal/events"
)

// Metrics are the wall's prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	ViewersAdded    *prometheus.CounterVec
	ViewersRemoved  *prometheus.CounterVec
	ForcedReleases  prometheus.Counter
	ViewersLive     *prometheus.GaugeVec
	Darkeners       prometheus.Gauge
	Commands        *prometheus.CounterVec
	CommandFailures *prometheus.CounterVec
	TickDuration    prometheus.Histogram
	PendingTweens   prometheus.Gauge
	SlideChanges    prometheus.Counter
}

// NewMetrics registers every collector on a fresh registry together with
// the Go and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		ViewersAdded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "viewwall_viewers_added_total",
			Help: "Viewers launched, by view type.",
		}, []string{"type"}),
		ViewersRemoved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "viewwall_viewers_removed_total",
			Help: "Viewers that started closing, by view type.",
		}, []string{"type"}),
		ForcedReleases: f.NewCounter(prometheus.CounterOpts{
			Name: "viewwall_forced_releases_total",
			Help: "Close transitions completed by the reconciler after timing out.",
		}),
		ViewersLive: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "viewwall_viewers_live",
			Help: "Viewers on the wall that are not closing, by view type.",
		}, []string{"type"}),
		Darkeners: f.NewGauge(prometheus.GaugeOpts{
			Name: "viewwall_fullscreen_darkeners",
			Help: "Fullscreen darkeners currently shown.",
		}),
		Commands: f.NewCounterVec(prometheus.CounterOpts{
			Name: "viewwall_commands_total",
			Help: "Commands received, by source and kind.",
		}, []string{"source", "kind"}),
		CommandFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "viewwall_command_failures_total",
			Help: "Commands that returned an error, by source and kind.",
		}, []string{"source", "kind"}),
		TickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "viewwall_tick_duration_seconds",
			Help:    "Time spent in one loop tick.",
			Buckets: []float64{.0005, .001, .002, .004, .008, .016, .033, .066},
		}),
		PendingTweens: f.NewGauge(prometheus.GaugeOpts{
			Name: "viewwall_pending_tweens",
			Help: "Tweens scheduled or running.",
		}),
		SlideChanges: f.NewCounter(prometheus.CounterOpts{
			Name: "viewwall_presentation_slide_changes_total",
			Help: "Presentation status updates.",
		}),
	}
}

// Observe counts orchestrator notifications from the bus.
func (m *Metrics) Observe(bus *events.Bus) {
	events.Listen(bus, func(e events.ViewerAdded) { m.ViewersAdded.WithLabelValues(e.ViewType).Inc() })
	events.Listen(bus, func(e events.ViewerRemoved) { m.ViewersRemoved.WithLabelValues(e.ViewType).Inc() })
	events.Listen(bus, func(e events.ViewerReleased) {
		if e.Forced {
			m.ForcedReleases.Inc()
		}
	})
	events.Listen(bus, func(events.PresentationStatusUpdated) { m.SlideChanges.Inc() })
}

// SetLive replaces the live viewer gauges.
func (m *Metrics) SetLive(byType map[string]int, darkeners, tweens int) {
	m.ViewersLive.Reset()
	for t, n := range byType {
		m.ViewersLive.WithLabelValues(t).Set(float64(n))
	}
	m.Darkeners.Set(float64(darkeners))
	m.PendingTweens.Set(float64(tweens))
}

// Command counts one command and, when err is set, its failure.
func (m *Metrics) Command(source, kind string, err error) {
	m.Commands.WithLabelValues(source, kind).Inc()
	if err != nil {
		m.CommandFailures.WithLabelValues(source, kind).Inc()
	}
}

// Handler serves /metrics and /healthz.
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	return mux
}

// Serve listens on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
