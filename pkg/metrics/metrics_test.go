package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegistryReturnsExistingMetric(t *testing.T) {
	r := NewRegistry()
	a := r.Counter("lookups_total", "first")
	b := r.Counter("lookups_total", "second")
	if a != b {
		t.Error("re-registering a counter name returned a new counter")
	}
	a.Inc(2)
	if got := b.Get(); got != 2 {
		t.Errorf("counter = %d, want 2", got)
	}
}

func TestHistogramBucketsAndExposition(t *testing.T) {
	r := NewRegistry()
	h := r.Histogram("latency_ms", "request latency", []float64{10, 100})
	h.Observe(5)
	h.Observe(10) // boundary lands in the le="10" bucket
	h.Observe(50)
	h.Observe(5000) // beyond all bounds, +Inf only

	c := r.Counter("page views-total", "sanitized name")
	c.Inc(1)
	r.Gauge("listing_size", "snapshot size").SetFloat64(7)

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body := w.Body.String()

	for _, want := range []string{
		"# TYPE latency_ms histogram",
		`latency_ms_bucket{le="10"} 2`,
		`latency_ms_bucket{le="100"} 3`,
		`latency_ms_bucket{le="+Inf"} 4`,
		"latency_ms_sum 5065",
		"latency_ms_count 4",
		"page_views_total 1",
		"listing_size 7",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q:\n%s", want, body)
		}
	}
}
