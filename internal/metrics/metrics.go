package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every taskdesk collector. It is separate from the default registry so a
// one-shot CLI run only exports its own series.
var Registry = prometheus.NewRegistry()

var (
	storeFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taskdesk_store_fallbacks_total",
		Help: "Reads that returned the fallback value because the stored value was missing or invalid",
	}, []string{"key", "reason"})

	storeWriteFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taskdesk_store_write_failures_total",
		Help: "Writes or deletes that failed and were swallowed",
	}, []string{"key", "op"})

	deadlineSweeps = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "taskdesk_deadline_sweeps_total",
		Help: "Completed deadline sweeps",
	})

	deadlineNotifications = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "taskdesk_deadline_notifications_total",
		Help: "DEADLINE notifications created by sweeps",
	})

	lastSweep = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "taskdesk_deadline_last_sweep_timestamp_seconds",
		Help: "Unix time of the last completed deadline sweep",
	})

	reseeds = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taskdesk_reseeds_total",
		Help: "Times the store was (re)populated from the demo seed",
	}, []string{"reason"})
)

func init() {
	Registry.MustRegister(storeFallbacks, storeWriteFailures, deadlineSweeps, deadlineNotifications, lastSweep, reseeds)
}

func ObserveFallback(key, reason string) {
	storeFallbacks.WithLabelValues(key, reason).Inc()
}

func ObserveWriteFailure(key, op string) {
	storeWriteFailures.WithLabelValues(key, op).Inc()
}

// ObserveSweep records one finished sweep that created sent notifications at unix time ts.
func ObserveSweep(sent int, ts float64) {
	deadlineSweeps.Inc()
	deadlineNotifications.Add(float64(sent))
	lastSweep.Set(ts)
}

func ObserveReseed(reason string) {
	reseeds.WithLabelValues(reason).Inc()
}

// WriteTextfile dumps the registry in the node_exporter textfile collector format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
