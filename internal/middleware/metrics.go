package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by command name.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "agora_redis_errors_total",
	Help: "Total number of Redis command errors",
}, []string{"command"})

// VoteTransitions counts applied vote transitions by result type.
var VoteTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "agora_vote_transitions_total",
	Help: "Total number of applied vote transitions",
}, []string{"result"})

// PhotoUploads counts photo objects written to the object store.
var PhotoUploads = promauto.NewCounter(prometheus.CounterOpts{
	Name: "agora_photo_uploads_total",
	Help: "Total number of photo objects uploaded",
})

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the fiber handler recording HTTP metrics.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
