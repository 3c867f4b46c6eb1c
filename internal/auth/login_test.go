package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/UnknownOlympus/roster-console/internal/auth"
	"github.com/UnknownOlympus/roster-console/internal/client"
	"github.com/UnknownOlympus/roster-console/internal/metrics"
	"github.com/UnknownOlympus/roster-console/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRoundTripper helps to imitate errors on transport level.
type mockRoundTripper struct {
	RoundTripFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if m.RoundTripFunc == nil {
		return nil, errors.New("RoundTripFunc not set")
	}
	return m.RoundTripFunc(req)
}

func newAPI(t *testing.T, serverURL string, transport http.RoundTripper, tokens client.TokenSource) *client.APIClient {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	httpClient := client.CreateHTTPClient(logger, time.Second)
	if transport != nil {
		httpClient.Transport = transport
	}

	api, err := client.NewAPIClient(logger, httpClient, serverURL+"/api", "", tokens, metrics.NewNopMetrics())
	require.NoError(t, err)

	return api
}

func TestLogin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                  string
		handler               http.HandlerFunc
		clientTransport       http.RoundTripper
		ctx                   context.Context
		expectedToken         string
		expectedSpecificError error
		wantErrMsgContains    string
	}{
		{
			name: "success login",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/api/login" {
					t.Errorf("Expected POST /api/login, but received %s %s", r.Method, r.URL.Path)
				}
				if got, want := r.Header.Get("Content-Type"), "application/json"; got != want {
					t.Errorf("Expected Content-Type '%s', but received '%s'", want, got)
				}

				var body map[string]string
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					http.Error(w, "failed to parse the body", http.StatusBadRequest)
					return
				}
				if body["username"] != "admin" || body["password"] != "pastibisa" {
					t.Errorf("Unexpected credentials: %v", body)
				}

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"status":"success","message":"Login successful","data":{"token":"1|abc"}}`))
			},
			ctx:           context.Background(),
			expectedToken: "1|abc",
		},
		{
			name: "wrong credentials",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"status":"error","message":"Invalid credentials"}`))
			},
			ctx:                   context.Background(),
			expectedSpecificError: auth.ErrInvalidCredentials,
		},
		{
			name: "status is not success",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(`{"status":"error","message":"account locked"}`))
			},
			ctx:                   context.Background(),
			expectedSpecificError: auth.ErrLogin,
			wantErrMsgContains:    "account locked",
		},
		{
			name: "success without token",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(`{"status":"success","data":{}}`))
			},
			ctx:                   context.Background(),
			expectedSpecificError: auth.ErrInvalidResponse,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			ctx:                   context.Background(),
			expectedSpecificError: client.ErrServer,
		},
		{
			name: "request execution error",
			clientTransport: &mockRoundTripper{
				RoundTripFunc: func(*http.Request) (*http.Response, error) {
					return nil, errors.New("simulated network error")
				},
			},
			ctx:                   context.Background(),
			expectedSpecificError: client.ErrNetwork,
			wantErrMsgContains:    "simulated network error",
		},
		{
			name: "context was canceled before the request was called",
			handler: func(http.ResponseWriter, *http.Request) {
				t.Error("The server handler should not be called if the context is canceled before the request")
			},
			ctx: func() context.Context {
				c, cancel := context.WithCancel(context.Background())
				cancel()
				return c
			}(),
			expectedSpecificError: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			serverURL := "http://dummy.example.com"
			if tt.handler != nil {
				server := httptest.NewServer(tt.handler)
				defer server.Close()
				serverURL = server.URL
			}
			api := newAPI(t, serverURL, tt.clientTransport, nil)

			token, err := auth.Login(tt.ctx, api, "admin", "pastibisa")

			if tt.expectedSpecificError == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedToken, token)
				return
			}
			require.ErrorIs(t, err, tt.expectedSpecificError)
			require.ErrorIs(t, err, auth.ErrLogin)
			assert.Empty(t, token)
			if tt.wantErrMsgContains != "" {
				assert.Contains(t, err.Error(), tt.wantErrMsgContains)
			}
		})
	}
}

func TestSession(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"token":"2|xyz"}}`))
	})
	mux.HandleFunc("GET /api/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer 2|xyz" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"data":{"id":1,"name":"Admin","username":"admin","phone":"0812","email":"admin@example.com"}}`))
	})
	mux.HandleFunc("POST /api/logout", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer 2|xyz" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"status":"success"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	logger := slog.New(slog.DiscardHandler)
	tokens := client.NewTokenStore(logger, "", "")
	api := newAPI(t, server.URL, nil, tokens)
	ctx := context.Background()

	_, err := auth.CurrentUser(ctx, api)
	require.ErrorIs(t, err, client.ErrUnauthorized, "no token yet")

	require.NoError(t, auth.LoginAndStore(ctx, logger, api, tokens, "admin", "pastibisa"))
	assert.Equal(t, "2|xyz", tokens.Token())

	user, err := auth.CurrentUser(ctx, api)
	require.NoError(t, err)
	assert.Equal(t, models.User{ID: float64(1), Name: "Admin", Username: "admin", Phone: "0812",
		Email: "admin@example.com"}, user)

	require.NoError(t, auth.Logout(ctx, logger, api, tokens))
	assert.Empty(t, tokens.Token())

	err = auth.Logout(ctx, logger, api, tokens)
	require.ErrorIs(t, err, client.ErrUnauthorized, "a rejected logout is reported")
	assert.Empty(t, tokens.Token())
}

func TestCurrentUser_InvalidResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"message":"ok"}`))
	}))
	defer server.Close()

	_, err := auth.CurrentUser(context.Background(), newAPI(t, server.URL, nil, client.StaticToken("t")))
	require.ErrorIs(t, err, auth.ErrInvalidResponse)
}
