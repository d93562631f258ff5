package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthChecker tracks collaborator reachability for the health
// endpoint. Catalog or backtest failures degrade the status but never
// block editing.
type HealthChecker struct {
	mu             sync.RWMutex
	startTime      time.Time
	catalogLoaded  bool
	lastSubmission time.Time
	errors         []string
}

// HealthStatus is the JSON body served by the health endpoint.
type HealthStatus struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	CatalogLoaded  bool      `json:"catalog_loaded"`
	LastSubmission time.Time `json:"last_submission,omitempty"`
	Uptime         string    `json:"uptime"`
	Errors         []string  `json:"errors,omitempty"`
}

// NewHealthChecker creates a health checker anchored at now.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		startTime: time.Now(),
		errors:    make([]string, 0),
	}
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if !h.catalogLoaded {
		status = "degraded"
	}
	w.Header().Set("Content-Type", "application/json")
	if len(h.errors) > 0 {
		status = "unhealthy"
		w.WriteHeader(http.StatusInternalServerError)
	}

	health := HealthStatus{
		Status:         status,
		Timestamp:      time.Now(),
		CatalogLoaded:  h.catalogLoaded,
		LastSubmission: h.lastSubmission,
		Uptime:         time.Since(h.startTime).String(),
		Errors:         h.errors,
	}

	json.NewEncoder(w).Encode(health)
}

// SetCatalogLoaded marks whether the indicator catalog fetch succeeded.
func (h *HealthChecker) SetCatalogLoaded(loaded bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.catalogLoaded = loaded
}

// RecordSubmission marks the time of the latest backtest submission.
func (h *HealthChecker) RecordSubmission() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastSubmission = time.Now()
}

// RecordError appends a collaborator error to the health report, keeping
// the most recent ten.
func (h *HealthChecker) RecordError(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, msg)
	if len(h.errors) > 10 {
		h.errors = h.errors[len(h.errors)-10:]
	}
}

// ClearErrors resets the error report.
func (h *HealthChecker) ClearErrors() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = h.errors[:0]
}
