package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	usersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "users",
		Name:      "created_total",
		Help:      "Number of users registered.",
	})
	exercisesLogged = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "exercises",
		Name:      "logged_total",
		Help:      "Number of exercises recorded.",
	})
	exerciseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "exercise_tracker",
		Subsystem: "exercises",
		Name:      "duration",
		Help:      "Durations submitted with recorded exercises, in caller units.",
		Buckets:   []float64{5, 10, 15, 30, 45, 60, 90, 120, 180},
	})
	logEntriesReturned = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "exercise_tracker",
		Subsystem: "logs",
		Name:      "entries_returned",
		Help:      "Number of entries returned per log query.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	// HTTPRequests counts API requests by route pattern, method and status code.
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})
	// HTTPDuration observes API latency by route pattern and method.
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "exercise_tracker",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
)

func init() {
	prometheus.MustRegister(
		usersCreated,
		exercisesLogged,
		exerciseDuration,
		logEntriesReturned,
		HTTPRequests,
		HTTPDuration,
	)
}

// RecordUserCreated increments the registration counter.
func RecordUserCreated() {
	usersCreated.Inc()
}

// RecordExerciseLogged counts an exercise and observes its duration.
func RecordExerciseLogged(duration float64) {
	exercisesLogged.Inc()
	exerciseDuration.Observe(duration)
}

// RecordLogQuery observes the size of a returned log.
func RecordLogQuery(entries int) {
	logEntriesReturned.Observe(float64(entries))
}
