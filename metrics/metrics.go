// Package metrics exports marble game activity to Prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marblering/debug"
	"marblering/marblegame"
)

// Recorder collects per-turn and per-run metrics. It implements
// marblegame.Observer.
type Recorder struct {
	inserts  prometheus.Counter
	removals prometheus.Counter
	score    prometheus.Counter
	ringSize prometheus.Gauge
	runs     *prometheus.HistogramVec
	highest  prometheus.Gauge

	size int64
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	turns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marblering_turns_total",
		Help: "Turns played by branch",
	}, []string{"branch"})

	r := &Recorder{
		inserts:  turns.WithLabelValues("insert"),
		removals: turns.WithLabelValues("remove"),
		score: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marblering_score_total",
			Help: "Sum of all scores awarded",
		}),
		ringSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "marblering_ring_size",
			Help: "Marbles in the ring of the current run",
		}),
		runs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "marblering_run_seconds",
			Help:    "Wall time of finished runs",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 12), // 0.1ms to ~7min
		}, []string{"result"}),
		highest: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "marblering_high_score",
			Help: "High score of the most recent finished run",
		}),
		size: 1,
	}
	reg.MustRegister(turns, r.score, r.ringSize, r.runs, r.highest)
	return r
}

var _ marblegame.Observer = (*Recorder)(nil)

// Turn records one game turn. A run starts from a single-marble ring; call
// Reset between runs.
func (r *Recorder) Turn(_, score uint64, removed bool) {
	if removed {
		r.removals.Inc()
		r.score.Add(float64(score))
		r.size--
	} else {
		r.inserts.Inc()
		r.size++
	}
	r.ringSize.Set(float64(r.size))
}

// Reset prepares for a new run.
func (r *Recorder) Reset() {
	r.size = 1
	r.ringSize.Set(1)
}

// ObserveRun records a finished run, or a failed one when err is non-nil.
func (r *Recorder) ObserveRun(res marblegame.Result, err error) {
	if err != nil {
		r.runs.WithLabelValues("error").Observe(res.Elapsed.Seconds())
		return
	}
	r.runs.WithLabelValues("ok").Observe(res.Elapsed.Seconds())
	r.highest.Set(float64(res.HighScore))
	r.ringSize.Set(float64(res.RingLen))
}

// Listen binds addr for Serve. Binding up front surfaces a busy port before
// any run starts.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics: listen %s: %w", addr, err)
	}
	return ln, nil
}

// Serve exposes g on ln under /metrics until ctx is cancelled. It closes ln.
func Serve(ctx context.Context, ln net.Listener, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	debug.DropMessage("METRICS", "serving on "+ln.Addr().String())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
