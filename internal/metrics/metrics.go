package metrics

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "healthtracker"

var (
	once sync.Once

	timerEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timer_events_total",
			Help:      "Rest timer transitions by event.",
		},
		[]string{"event"},
	)

	storeWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_writes_total",
			Help:      "Data store slice writes by slice and result.",
		},
		[]string{"slice", "result"},
	)

	feedbackSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_total",
			Help:      "Feedback cues emitted by kind.",
		},
		[]string{"kind"},
	)

	profileUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_updates_total",
			Help:      "Remote profile updates by result.",
		},
		[]string{"result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(timerEvents, storeWrites, feedbackSent, profileUpdates)
	})
}

func IncTimerEvent(event string) {
	timerEvents.WithLabelValues(event).Inc()
}

func IncStoreWrite(slice string, err error) {
	storeWrites.WithLabelValues(slice, result(err)).Inc()
}

func IncFeedback(kind string) {
	feedbackSent.WithLabelValues(kind).Inc()
}

func IncProfileUpdate(err error) {
	profileUpdates.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler serves the default registry through fiber.
func Handler() fiber.Handler {
	Register()
	return adaptor.HTTPHandler(promhttp.Handler())
}
