package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/roster-console/internal/lib/logger/sl"
)

type DBPinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker reports whether the roster API and, when configured, the mirror database are reachable.
type HealthChecker struct {
	db         DBPinger
	apiHost    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewHealthChecker creates a checker. db may be nil when no mirror database is configured.
func NewHealthChecker(db DBPinger, apiHost string, log *slog.Logger) *HealthChecker {
	clientTO := 5
	return &HealthChecker{
		db:         db,
		apiHost:    apiHost,
		httpClient: &http.Client{Timeout: time.Duration(clientTO) * time.Second},
		log:        log,
	}
}

func (h *HealthChecker) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	h.log.DebugContext(ctx, "Performing health checks...")

	status := make(map[string]string)
	overallStatus := http.StatusOK

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			status["database"] = "unavailable"
			overallStatus = http.StatusServiceUnavailable
			h.log.WarnContext(ctx, "Health check failed: DB ping", sl.Err(err))
		} else {
			status["database"] = "ok"
		}
	}

	status["api_host"] = h.checkAPI(ctx)
	if status["api_host"] != "ok" {
		overallStatus = http.StatusServiceUnavailable
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(overallStatus)
	if err := json.NewEncoder(writer).Encode(status); err != nil {
		h.log.ErrorContext(ctx, "Failed to write health check response", sl.Err(err))
	}

	h.log.DebugContext(ctx, "Health checks completed", "status", overallStatus)
}

// checkAPI sends a HEAD request to the API host. Any answer below 500 counts as reachable.
func (h *HealthChecker) checkAPI(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, h.apiHost, nil)
	if err != nil {
		h.log.WarnContext(ctx, "Health check failed: invalid api host", "host", h.apiHost, sl.Err(err))
		return "unreachable"
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.log.WarnContext(ctx, "Health check failed: api host unreachable", "host", h.apiHost, sl.Err(err))
		return "unreachable"
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			h.log.WarnContext(ctx, "Failed to close response body", sl.Err(err))
		}
	}()

	if resp.StatusCode >= http.StatusInternalServerError {
		h.log.WarnContext(ctx, "Health check failed: api host returned error status",
			"host", h.apiHost, "status_code", resp.StatusCode)
		return "degraded"
	}

	return "ok"
}
