package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddlewareCountsServerErrors(t *testing.T) {
	m := NewMetrics(16)
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	h := Middleware(m)(mux)

	for _, path := range []string{"/ok", "/ok", "/boom"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	}

	total, errored, _, _, _ := m.Snapshot()
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if errored != 1 {
		t.Errorf("errored = %d, want 1", errored)
	}
}

func TestSnapshotQuantiles(t *testing.T) {
	m := NewMetrics(4)
	for _, ms := range []float64{10, 20, 30, 40, 50} { // wraps, 10 falls out
		m.Observe(ms, http.StatusOK)
	}
	total, _, avg, p50, p95 := m.Snapshot()
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if avg != 35 {
		t.Errorf("avg = %g, want 35", avg)
	}
	if p50 != 40 || p95 != 50 {
		t.Errorf("p50 = %g p95 = %g, want 40 and 50", p50, p95)
	}
}

func TestMetricsHandlerShape(t *testing.T) {
	m := NewMetrics(8)
	m.Observe(12.5, http.StatusBadGateway)

	w := httptest.NewRecorder()
	MetricsHandler(m).ServeHTTP(w, httptest.NewRequest("GET", "/metrics.json", nil))

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := body["requests_total"].(float64); got != 1 {
		t.Errorf("requests_total = %g, want 1", got)
	}
	if got := body["requests_5xx"].(float64); got != 1 {
		t.Errorf("requests_5xx = %g, want 1", got)
	}
}
