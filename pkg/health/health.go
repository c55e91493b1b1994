package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"restaurant-listing-admin/pkg/logging"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// ComponentHealth represents the health of a single component
type ComponentHealth struct {
	Name        string                 `json:"name"`
	Status      Status                 `json:"status"`
	Message     string                 `json:"message,omitempty"`
	LastChecked time.Time              `json:"last_checked"`
	Duration    time.Duration          `json:"duration"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// SystemHealth represents the overall system health
type SystemHealth struct {
	Status     Status                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Uptime     time.Duration              `json:"uptime"`
	Components map[string]ComponentHealth `json:"components"`
	Summary    Summary                    `json:"summary"`
}

// Summary provides aggregated health information
type Summary struct {
	TotalComponents int `json:"total_components"`
	HealthyCount    int `json:"healthy_count"`
	DegradedCount   int `json:"degraded_count"`
	UnhealthyCount  int `json:"unhealthy_count"`
	UnknownCount    int `json:"unknown_count"`
}

// Checker defines the interface for health check functions
type Checker interface {
	Check(ctx context.Context) ComponentHealth
	Name() string
}

// Manager runs health checks for all registered components
type Manager struct {
	checkers  map[string]Checker
	results   map[string]ComponentHealth
	startTime time.Time
	version   string
	timeout   time.Duration
	logger    *logging.ComponentLogger
	mu        sync.RWMutex
}

// Config holds configuration for the health manager
type Config struct {
	Timeout time.Duration `json:"timeout"`
	Version string        `json:"version"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Timeout: 30 * time.Second,
		Version: "1.0.0",
	}
}

// NewManager creates a new health manager
func NewManager(config Config, logger *logging.Logger) *Manager {
	return &Manager{
		checkers:  make(map[string]Checker),
		results:   make(map[string]ComponentHealth),
		startTime: time.Now(),
		version:   config.Version,
		timeout:   config.Timeout,
		logger:    logger.WithComponent("health"),
	}
}

// Register registers a health checker
func (m *Manager) Register(checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := checker.Name()
	m.checkers[name] = checker
	m.results[name] = ComponentHealth{
		Name:        name,
		Status:      StatusUnknown,
		LastChecked: time.Time{},
	}

	m.logger.Info("Registered health checker",
		logging.String("checker", name))
}

// CheckAll runs all health checks concurrently
func (m *Manager) CheckAll(ctx context.Context) SystemHealth {
	start := time.Now()

	m.mu.RLock()
	checkers := make(map[string]Checker)
	for name, checker := range m.checkers {
		checkers[name] = checker
	}
	m.mu.RUnlock()

	results := make(chan ComponentHealth, len(checkers))
	var wg sync.WaitGroup

	for _, checker := range checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()

			results <- c.Check(checkCtx)
		}(checker)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	components := make(map[string]ComponentHealth)
	for result := range results {
		components[result.Name] = result

		m.mu.Lock()
		m.results[result.Name] = result
		m.mu.Unlock()
	}

	systemStatus := m.determineSystemHealth(components)
	summary := m.calculateSummary(components)

	m.logger.Debug("Completed health check",
		logging.String("status", string(systemStatus)),
		logging.Duration("duration", time.Since(start)),
		logging.Int("components", len(components)))

	return SystemHealth{
		Status:     systemStatus,
		Timestamp:  time.Now(),
		Version:    m.version,
		Uptime:     time.Since(m.startTime),
		Components: components,
		Summary:    summary,
	}
}

// CachedHealth returns the last known health status without re-running checks
func (m *Manager) CachedHealth() SystemHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()

	components := make(map[string]ComponentHealth)
	for name, result := range m.results {
		components[name] = result
	}

	return SystemHealth{
		Status:     m.determineSystemHealth(components),
		Timestamp:  time.Now(),
		Version:    m.version,
		Uptime:     time.Since(m.startTime),
		Components: components,
		Summary:    m.calculateSummary(components),
	}
}

func (m *Manager) determineSystemHealth(components map[string]ComponentHealth) Status {
	if len(components) == 0 {
		return StatusUnknown
	}

	healthyCount := 0
	degradedCount := 0
	unhealthyCount := 0

	for _, component := range components {
		switch component.Status {
		case StatusHealthy:
			healthyCount++
		case StatusDegraded:
			degradedCount++
		case StatusUnhealthy:
			unhealthyCount++
		}
	}

	if unhealthyCount > 0 {
		return StatusUnhealthy
	}
	if degradedCount > 0 {
		return StatusDegraded
	}
	if healthyCount == len(components) {
		return StatusHealthy
	}

	return StatusUnknown
}

func (m *Manager) calculateSummary(components map[string]ComponentHealth) Summary {
	summary := Summary{
		TotalComponents: len(components),
	}

	for _, component := range components {
		switch component.Status {
		case StatusHealthy:
			summary.HealthyCount++
		case StatusDegraded:
			summary.DegradedCount++
		case StatusUnhealthy:
			summary.UnhealthyCount++
		default:
			summary.UnknownCount++
		}
	}

	return summary
}

// DatabaseChecker checks database connectivity
type DatabaseChecker struct {
	db   *sql.DB
	name string
}

// NewDatabaseChecker creates a database health checker
func NewDatabaseChecker(db *sql.DB, name string) *DatabaseChecker {
	return &DatabaseChecker{db: db, name: name}
}

func (dc *DatabaseChecker) Name() string {
	return dc.name
}

func (dc *DatabaseChecker) Check(ctx context.Context) ComponentHealth {
	start := time.Now()

	result := ComponentHealth{
		Name:        dc.name,
		LastChecked: time.Now(),
		Metadata:    make(map[string]interface{}),
	}

	if err := dc.db.PingContext(ctx); err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
		result.Message = "Database connection failed"
		result.Duration = time.Since(start)
		return result
	}

	var count int
	if err := dc.db.QueryRowContext(ctx, "SELECT 1").Scan(&count); err != nil {
		result.Status = StatusDegraded
		result.Error = err.Error()
		result.Message = "Database query failed"
	} else {
		result.Status = StatusHealthy
		result.Message = "Database connection successful"
	}

	stats := dc.db.Stats()
	result.Metadata["open_connections"] = stats.OpenConnections
	result.Metadata["in_use"] = stats.InUse
	result.Metadata["idle"] = stats.Idle
	result.Metadata["wait_count"] = stats.WaitCount
	result.Metadata["wait_duration"] = stats.WaitDuration.String()

	result.Duration = time.Since(start)
	return result
}

// HTTPChecker checks external HTTP services
type HTTPChecker struct {
	client *http.Client
	url    string
	name   string
}

// NewHTTPChecker creates an HTTP health checker
func NewHTTPChecker(url, name string, timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		client: &http.Client{Timeout: timeout},
		url:    url,
		name:   name,
	}
}

func (hc *HTTPChecker) Name() string {
	return hc.name
}

func (hc *HTTPChecker) Check(ctx context.Context) ComponentHealth {
	start := time.Now()

	result := ComponentHealth{
		Name:        hc.name,
		LastChecked: time.Now(),
		Metadata:    make(map[string]interface{}),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hc.url, nil)
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
		result.Message = "Failed to create HTTP request"
		result.Duration = time.Since(start)
		return result
	}

	resp, err := hc.client.Do(req)
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
		result.Message = "HTTP request failed"
		result.Duration = time.Since(start)
		return result
	}
	defer resp.Body.Close()

	result.Metadata["status_code"] = resp.StatusCode
	result.Metadata["url"] = hc.url

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		result.Status = StatusHealthy
		result.Message = fmt.Sprintf("HTTP service responding (status: %d)", resp.StatusCode)
	case resp.StatusCode >= 500:
		result.Status = StatusUnhealthy
		result.Message = fmt.Sprintf("HTTP service error (status: %d)", resp.StatusCode)
	default:
		result.Status = StatusDegraded
		result.Message = fmt.Sprintf("HTTP service degraded (status: %d)", resp.StatusCode)
	}

	result.Duration = time.Since(start)
	return result
}

// Handler serves the overall system health as JSON. Unhealthy maps to 503
// so load balancers can act on it; degraded still serves 200.
func Handler(m *Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := m.CheckAll(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if state.Status == StatusUnhealthy || state.Status == StatusUnknown {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(state)
	})
}
