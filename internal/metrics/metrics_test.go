package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerExposesRegisteredMetrics(t *testing.T) {
	SolveDuration.WithLabelValues("cp", "success").Observe(1.5)
	SolvePasses.WithLabelValues("1", "success").Inc()
	ViolationCount.WithLabelValues("cp").Set(2)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, name := range []string{
		"scheduler_solve_duration_seconds",
		"scheduler_solve_passes_total",
		"scheduler_last_violation_count",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("expected metrics output to contain %q", name)
		}
	}
}
