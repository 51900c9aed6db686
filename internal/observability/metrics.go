package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "steemtx"

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	signerAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signer",
			Name:      "attempts_total",
			Help:      "Signatures computed by the canonical search.",
		},
		[]string{"chain"},
	)
	signerNonCanonical = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signer",
			Name:      "noncanonical_total",
			Help:      "Signatures rejected as non-canonical.",
		},
		[]string{"chain"},
	)
	signerExhausted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signer",
			Name:      "exhausted_total",
			Help:      "Canonical searches that ran out of attempts or time.",
		},
		[]string{"chain", "reason"},
	)
	signerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "signer",
			Name:      "duration_seconds",
			Help:      "Wall time of one canonical search.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .5, 1},
		},
		[]string{"chain", "success"},
	)
	txBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tx",
			Name:      "built_total",
			Help:      "Transactions prepared for signing.",
		},
		[]string{"chain"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			signerAttempts,
			signerNonCanonical,
			signerExhausted,
			signerDuration,
			txBuilt,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordSignAttempt counts one signature; canonical=false also counts a
// rejection.
func RecordSignAttempt(chain string, canonical bool) {
	RegisterMetrics()
	signerAttempts.WithLabelValues(chain).Inc()
	if !canonical {
		signerNonCanonical.WithLabelValues(chain).Inc()
	}
}

func RecordSignExhausted(chain, reason string) {
	RegisterMetrics()
	signerExhausted.WithLabelValues(chain, reason).Inc()
}

func RecordSignDuration(chain string, duration time.Duration, success bool) {
	RegisterMetrics()
	signerDuration.WithLabelValues(chain, strconv.FormatBool(success)).Observe(duration.Seconds())
}

func RecordTxBuilt(chain string) {
	RegisterMetrics()
	txBuilt.WithLabelValues(chain).Inc()
}
