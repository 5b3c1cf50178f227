package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "claimdesk"

var (
	validationRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_rejections_total",
		Help:      "Upload batches rejected before reaching the selection, by slot and reason.",
	}, []string{"slot", "reason"})

	submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Finished submissions by outcome (claimable, not_claimable, ineligible, error).",
	}, []string{"outcome"})

	backendDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Latency of verify-date and claimability calls.",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"endpoint", "status"})

	tokens = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_tokens_total",
		Help:      "Token usage reported by the backend, by model and direction.",
	}, []string{"model", "direction"})

	sessionsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_created_total",
		Help:      "Intake sessions opened through the API.",
	})
)

// Register adds every collector to reg. Collectors that are already
// registered are left alone so tests and re-inits can call it twice.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{validationRejections, submissions, backendDuration, tokens, sessionsCreated} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func ValidationRejected(slot, reason string) {
	validationRejections.WithLabelValues(slot, reason).Inc()
}

func SubmissionFinished(outcome string) {
	submissions.WithLabelValues(outcome).Inc()
}

// ObserveBackend records one backend call. status is 0 when no response arrived.
func ObserveBackend(endpoint string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	backendDuration.WithLabelValues(endpoint, label).Observe(elapsed.Seconds())
}

func TokensUsed(model string, in, out int64) {
	if in > 0 {
		tokens.WithLabelValues(model, "input").Add(float64(in))
	}
	if out > 0 {
		tokens.WithLabelValues(model, "output").Add(float64(out))
	}
}

func SessionCreated() {
	sessionsCreated.Inc()
}

// RegisterDefault registers with the registry Handler serves.
func RegisterDefault() error {
	return Register(prometheus.DefaultRegisterer)
}
