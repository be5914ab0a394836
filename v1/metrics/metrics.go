package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// AcquireCounter tracks successful lock acquisitions.
	AcquireCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dislock_acquire_total",
		Help: "Total number of successful lock acquisitions",
	})
	// BusyCounter tracks non-blocking acquisitions that found the lock held.
	BusyCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dislock_busy_total",
		Help: "Total number of non-blocking acquisitions refused because the lock was held",
	})
	// TimeoutCounter tracks blocking acquisitions that exhausted their wait
	// budget.
	TimeoutCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dislock_timeout_total",
		Help: "Total number of blocking acquisitions that timed out",
	})
	// ReleaseCounter tracks releases that removed a held lock.
	ReleaseCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dislock_release_total",
		Help: "Total number of releases that removed a held lock",
	})
	// LostReleaseCounter tracks releases that found the lock already expired
	// or re-claimed by another owner.
	LostReleaseCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dislock_release_lost_total",
		Help: "Total number of releases that found the lock expired or stolen",
	})
	// WaitHistogram observes how long blocking acquisitions waited.
	WaitHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dislock_wait_seconds",
		Help:    "Time spent waiting in blocking acquisitions",
		Buckets: prometheus.DefBuckets,
	})
)

// NewRegistry creates a new Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// RegisterCoreMetrics registers dislock core metrics on the provided registry.
func RegisterCoreMetrics(reg prometheus.Registerer) {
	reg.MustRegister(
		AcquireCounter,
		BusyCounter,
		TimeoutCounter,
		ReleaseCounter,
		LostReleaseCounter,
		WaitHistogram,
	)
}
