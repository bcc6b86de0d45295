package health

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

// StatusResponse is the body of GET /api/health.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// LivenessResponse is the body of GET /api/health/live.
type LivenessResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version,omitempty"`
}

// Check represents an individual dependency check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// ReadinessResponse represents the readiness check response.
type ReadinessResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
}

// StatsResponse represents process statistics.
type StatsResponse struct {
	GoVersion    string `json:"go_version"`
	NumCPU       int    `json:"num_cpu"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	Uptime       string `json:"uptime"`
}

// PingFunc checks one dependency.
type PingFunc func(ctx context.Context) error

const checkTimeout = 3 * time.Second

type Handler struct {
	version string
	checks  map[string]PingFunc
	started time.Time
}

// NewHandler returns health endpoints probing the named dependencies.
func NewHandler(version string, checks map[string]PingFunc) *Handler {
	return &Handler{version: version, checks: checks, started: time.Now()}
}

// HealthHandler handles GET /api/health.
func (h *Handler) HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "OK", Message: "Server is running"})
}

// LivenessHandler returns 200 while the process is serving.
func (h *Handler) LivenessHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, LivenessResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
	})
}

// ReadinessHandler checks every dependency concurrently and returns 503 when
// any of them fails.
func (h *Handler) ReadinessHandler(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		mu     sync.Mutex
		checks = make(map[string]Check, len(h.checks))
		g      errgroup.Group
	)
	for name, ping := range h.checks {
		g.Go(func() error {
			chk := run(ctx, name, ping)
			mu.Lock()
			checks[name] = chk
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	status, code := "ok", http.StatusOK
	for _, chk := range checks {
		if chk.Status != "ok" {
			status, code = "unhealthy", http.StatusServiceUnavailable
			break
		}
	}
	return c.JSON(code, ReadinessResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// StatsHandler returns runtime statistics for monitoring.
func (h *Handler) StatsHandler(c echo.Context) error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return c.JSON(http.StatusOK, StatsResponse{
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
		MemAlloc:     m.Alloc,
		MemSys:       m.Sys,
		Uptime:       time.Since(h.started).Round(time.Second).String(),
	})
}

func run(ctx context.Context, name string, ping PingFunc) Check {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return Check{Status: "error", Message: name + " check failed", Latency: latency.String()}
	}
	return Check{Status: "ok", Latency: latency.String()}
}
