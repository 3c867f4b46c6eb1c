package roster_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/UnknownOlympus/roster-console/internal/client"
	"github.com/UnknownOlympus/roster-console/internal/metrics"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newTestAPI starts handler behind an httptest server and returns a client for its /api prefix.
func newTestAPI(t *testing.T, handler http.Handler, token string) (*client.APIClient, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := testLogger()
	api, err := client.NewAPIClient(logger, client.CreateHTTPClient(logger, time.Second),
		server.URL+"/api", "", client.StaticToken(token), metrics.NewNopMetrics())
	require.NoError(t, err)

	return api, server
}

// requestLog records the requests a fake backend received.
type requestLog struct {
	mu       sync.Mutex
	requests []*http.Request
}

func (l *requestLog) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l.mu.Lock()
		l.requests = append(l.requests, r.Clone(r.Context()))
		l.mu.Unlock()

		next(w, r)
	}
}

func (l *requestLog) count(method, path string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	var n int
	for _, r := range l.requests {
		if r.Method == method && r.URL.Path == path {
			n++
		}
	}

	return n
}

func (l *requestLog) total() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.requests)
}

func (l *requestLog) last() *http.Request {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.requests[len(l.requests)-1]
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
