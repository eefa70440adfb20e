package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	plansBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visaverse_plans_built_total",
		Help: "Plans returned to callers, by generation mode",
	}, []string{"mode"})

	planFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "visaverse_plan_validation_failures_total",
		Help: "Assembled plans rejected by schema validation",
	})

	generationFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visaverse_generation_fallbacks_total",
		Help: "Completion failures that fell back to deterministic generation",
	}, []string{"reason"})

	planDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "visaverse_plan_duration_seconds",
		Help:    "End-to-end plan assembly latency",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"mode"})

	snippetsRetrieved = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "visaverse_snippets_retrieved",
		Help:    "Snippets returned per retrieval call",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
	})

	chatAnswers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visaverse_chat_answers_total",
		Help: "Chat answers returned, by generation mode",
	}, []string{"mode"})
)

// IncPlanBuilt counts a plan returned in the given mode.
func IncPlanBuilt(mode string) {
	plansBuilt.WithLabelValues(mode).Inc()
}

// IncPlanValidationFailure counts an assembled plan that failed validation.
func IncPlanValidationFailure() {
	planFailures.Inc()
}

// IncGenerationFallback counts a completion failure by reason.
func IncGenerationFallback(reason string) {
	generationFallbacks.WithLabelValues(reason).Inc()
}

// ObservePlanDuration records assembly latency in seconds.
func ObservePlanDuration(mode string, seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	planDuration.WithLabelValues(mode).Observe(seconds)
}

// ObserveSnippets records how many snippets a retrieval returned.
func ObserveSnippets(n int) {
	snippetsRetrieved.Observe(float64(n))
}

// IncChatAnswer counts a chat answer in the given mode.
func IncChatAnswer(mode string) {
	chatAnswers.WithLabelValues(mode).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
