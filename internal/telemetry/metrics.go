package telemetry

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"augment/internal/logging"
	"augment/internal/media"
)

var (
	transformsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "augment",
		Name:      "transform_applied_total",
		Help:      "Media values a transform was applied to, by transform and media kind.",
	}, []string{"transform", "kind"})

	transformErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "augment",
		Name:      "transform_errors_total",
		Help:      "Transform applications that returned an error.",
	}, []string{"transform"})

	transformDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "augment",
		Name:      "transform_duration_seconds",
		Help:      "Wall time of a single transform application.",
		Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
	}, []string{"transform"})

	framesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "augment",
		Name:      "frames_processed_total",
		Help:      "Frames leaving the pipeline runner, by outcome (ok, dropped).",
	}, []string{"outcome"})
)

// ObserveTransform records one application of the named transform.
func ObserveTransform(name string, kind media.Kind, took time.Duration, err error) {
	transformDuration.WithLabelValues(name).Observe(took.Seconds())
	if err != nil {
		transformErrors.WithLabelValues(name).Inc()
		return
	}
	transformsApplied.WithLabelValues(name, kind.String()).Inc()
}

func FrameProcessed() { framesProcessed.WithLabelValues("ok").Inc() }
func FrameDropped()   { framesProcessed.WithLabelValues("dropped").Inc() }

// Expose serves /metrics on port in the background. The returned server is
// for shutdown.
func Expose(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.L().Error("metrics endpoint stopped", "port", port, "err", err)
		}
	}()
	return srv
}
