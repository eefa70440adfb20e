package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHandlerExposesPlanCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	IncPlanBuilt("deterministic")
	IncGenerationFallback("timeout")
	ObservePlanDuration("deterministic", 0.02)

	r := gin.New()
	r.GET("/metrics", Handler())
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	for _, want := range []string{
		`visaverse_plans_built_total{mode="deterministic"}`,
		`visaverse_generation_fallbacks_total{reason="timeout"}`,
		"visaverse_plan_duration_seconds_bucket",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected metrics output to contain %q", want)
		}
	}
}
