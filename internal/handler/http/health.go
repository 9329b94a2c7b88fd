package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// HealthResponse represents the JSON response of GET /health.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy", "degraded" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // RFC 3339
	Version   string                 `json:"version"`
	Storage   string                 `json:"storage"`
	Checks    map[string]CheckStatus `json:"checks"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Breaker is the read side of a circuit breaker.
type Breaker interface {
	Name() string
	State() gobreaker.State
}

// HealthHandler reports database connectivity, circuit breaker states and
// whether background jobs are running. DB is nil for the in-memory storage
// driver. A nil Scheduler skips the jobs check and a nil Queue omits the
// pending count.
type HealthHandler struct {
	DB        *sql.DB
	Storage   string
	Version   string
	Breakers  []Breaker
	Scheduler interface{ Running() bool }
	Queue     interface{ Pending() int }
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus)
	status := "healthy"

	if h.DB != nil {
		db := h.checkDatabase(ctx)
		checks["database"] = db
		status = worse(status, db.Status)
	}

	// 通知チャネルのブレーカーが開いていても API 自体は稼働している
	for _, b := range h.Breakers {
		st := b.State()
		check := CheckStatus{Status: "healthy", Details: map[string]any{"state": st.String()}}
		if st == gobreaker.StateOpen {
			check.Status = "degraded"
		}
		checks["breaker:"+b.Name()] = check
		status = worse(status, check.Status)
	}

	if h.Scheduler != nil {
		// スケジューラが止まっていると通知がキューに溜まり続ける
		check := CheckStatus{Status: "healthy"}
		if h.Queue != nil {
			check.Details = map[string]any{"pending_articles": h.Queue.Pending()}
		}
		if !h.Scheduler.Running() {
			check.Status = "degraded"
			check.Message = "scheduler is not running"
		}
		checks["jobs"] = check
		status = worse(status, check.Status)
	}

	code := http.StatusOK
	if status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.Version,
		Storage:   h.Storage,
		Checks:    checks,
	}); err != nil {
		slog.Error("health: failed to encode response", slog.Any("error", err))
	}
}

// checkDatabase pings the database and reports pool statistics.
func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if err := h.DB.PingContext(ctx); err != nil {
		return CheckStatus{Status: "unhealthy", Message: "database unreachable"}
	}

	stats := h.DB.Stats()
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
	if stats.MaxOpenConnections > 0 {
		utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
		details["utilization_percent"] = utilization
		if utilization >= 80.0 {
			return CheckStatus{Status: "degraded", Message: "connection pool utilization above 80%", Details: details}
		}
	}
	return CheckStatus{Status: "healthy", Details: details}
}

var severity = map[string]int{"healthy": 0, "degraded": 1, "unhealthy": 2}

// worse returns the more severe of two statuses.
func worse(a, b string) string {
	if severity[b] > severity[a] {
		return b
	}
	return a
}
