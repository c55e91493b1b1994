package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/pprof"
	"runtime"
	"sort"
	"sync"
	"time"
)

// Metrics keeps a ring of recent request durations plus totals. The JSON
// snapshot at /metrics.json is the quick operator view; the Prometheus
// endpoint carries the per-feature counters.
type Metrics struct {
	mu      sync.Mutex
	ring    []float64 // request durations in milliseconds
	idx     int
	total   int64
	errored int64 // responses with a 5xx status
}

// NewMetrics sizes the duration ring. An admin panel sees low traffic, so a
// few hundred samples cover well past the last scrape interval.
func NewMetrics(capacity int) *Metrics {
	if capacity <= 0 {
		capacity = 512
	}
	return &Metrics{ring: make([]float64, capacity)}
}

// Observe records one request: its duration in milliseconds and whether the
// response carried a server error status.
func (m *Metrics) Observe(ms float64, status int) {
	m.mu.Lock()
	m.ring[m.idx] = ms
	m.idx = (m.idx + 1) % len(m.ring)
	m.total++
	if status >= http.StatusInternalServerError {
		m.errored++
	}
	m.mu.Unlock()
}

// Snapshot reports totals and duration quantiles over the retained samples.
func (m *Metrics) Snapshot() (total, errored int64, avg, p50, p95 float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.ring)
	if m.total < int64(n) {
		n = m.idx
	}
	if n == 0 {
		return m.total, m.errored, 0, 0, 0
	}
	samples := make([]float64, n)
	copy(samples, m.ring[:n])

	var sum float64
	for _, v := range samples {
		sum += v
	}
	avg = sum / float64(n)
	sort.Float64s(samples)
	p50 = samples[n*50/100]
	p95 = samples[n*95/100]
	return m.total, m.errored, avg, p50, p95
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

// Middleware times every request and feeds the result into m. No per-route
// labels; the panel has too few routes to need them.
func Middleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			m.Observe(float64(time.Since(start).Microseconds())/1000.0, sw.status)
		})
	}
}

// MetricsHandler serves request and runtime stats as a single JSON object.
func MetricsHandler(m *Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		total, errored, avg, p50, p95 := m.Snapshot()
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"time":             time.Now().Format(time.RFC3339),
			"requests_total":   total,
			"requests_5xx":     errored,
			"duration_ms_avg":  avg,
			"duration_ms_p50":  p50,
			"duration_ms_p95":  p95,
			"goroutines":       runtime.NumGoroutine(),
			"mem_alloc_bytes":  ms.Alloc,
			"heap_inuse_bytes": ms.HeapInuse,
			"gc_num":           ms.NumGC,
		})
	})
}

// RegisterPprof mounts the standard pprof handlers under /debug/pprof/ on
// the side mux, away from the public router.
func RegisterPprof(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	mux.Handle("/debug/pprof/block", pprof.Handler("block"))
	mux.Handle("/debug/pprof/mutex", pprof.Handler("mutex"))
}

// EnableProfiling toggles block and mutex profiling. Sampling every tenth
// contention event keeps the overhead negligible for this workload.
func EnableProfiling(enabled bool) {
	if enabled {
		runtime.SetBlockProfileRate(1)
		runtime.SetMutexProfileFraction(10)
		return
	}
	runtime.SetBlockProfileRate(0)
	runtime.SetMutexProfileFraction(0)
}
