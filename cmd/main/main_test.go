package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Flaque/filet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UnknownOlympus/roster-console/internal/client"
	"github.com/UnknownOlympus/roster-console/internal/collection"
)

// backend is a fake roster API that records the calls it received.
type backend struct {
	mu      sync.Mutex
	calls   []string
	authHdr []string
}

func (b *backend) record(r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)
	b.authHdr = append(b.authHdr, r.Header.Get("Authorization"))
}

func (b *backend) count(prefix string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	var n int
	for _, call := range b.calls {
		if strings.HasPrefix(call, prefix) {
			n++
		}
	}
	return n
}

func (b *backend) lastAuth() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.authHdr[len(b.authHdr)-1]
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	reply := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			b.record(r)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}
	}

	mux.HandleFunc("POST /api/login", reply(`{"status":"success","data":{"token":"tok-123"}}`))
	mux.HandleFunc("POST /api/logout", reply(`{"status":"success"}`))
	mux.HandleFunc("GET /api/user", reply(`{"data":{"id":1,"name":"Admin","username":"admin"}}`))
	mux.HandleFunc("GET /api/divisions", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		if page == "" {
			page = "1"
		}
		reply(fmt.Sprintf(`{"data":{"divisions":[{"id":"d%s","name":"Division %s"}]},
			"pagination":{"current_page":%s,"last_page":2}}`, page, page, page))(w, r)
	})
	mux.HandleFunc("GET /api/employees", reply(`{"data":{"employees":[
		{"id":"e1","name":"Ana","phone":"0812","position":"Lead","image":null,"division":{"id":"d1","name":"Finance"}}]},
		"pagination":{"current_page":1,"last_page":1}}`))
	mux.HandleFunc("DELETE /api/employees/{id}", reply(`{"status":"success"}`))
	mux.HandleFunc("GET /api/nilairt", reply(`{"data":[{"nama":"Citra","nisn":"001","nilai":"88"}],
		"pagination":{"current_page":1,"last_page":1}}`))

	return mux
}

type cli struct {
	t          *testing.T
	configPath string
	tokenFile  string
	backend    *backend
}

func newCLI(t *testing.T) *cli {
	t.Helper()

	b := &backend{}
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	dir := filet.TmpDir(t, "")
	tokenFile := filepath.Join(dir, "token")
	configPath := filepath.Join(dir, "config.yaml")
	filet.File(t, configPath, fmt.Sprintf(`
env: production
api:
  url: %s/api
  token_file: %s
`, srv.URL, tokenFile))

	return &cli{t: t, configPath: configPath, tokenFile: tokenFile, backend: b}
}

func (c *cli) run(input string, args ...string) (string, error) {
	c.t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd(newApp(strings.NewReader(input), &out, &errOut))
	cmd.SetArgs(append([]string{"--config", c.configPath}, args...))
	err := cmd.Execute()

	return out.String(), err
}

func TestCLI_Session(t *testing.T) {
	defer filet.CleanUp(t)
	c := newCLI(t)

	out, err := c.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Username: admin")
	assert.Empty(t, c.backend.lastAuth(), "no token yet")

	out, err = c.run("admin\nsecret\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as admin.")

	token, err := os.ReadFile(c.tokenFile)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", string(token))

	_, err = c.run("", "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", c.backend.lastAuth())

	out, err = c.run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out.")
	assert.NoFileExists(t, c.tokenFile)
}

func TestCLI_DivisionsList(t *testing.T) {
	defer filet.CleanUp(t)
	c := newCLI(t)

	out, err := c.run("", "divisions", "list", "--page", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "Division 2")
	assert.Contains(t, out, "Page 2 of 2")
	assert.Equal(t, 1, c.backend.count("GET /api/divisions?page=2"))
}

func TestCLI_EmployeeDelete(t *testing.T) {
	defer filet.CleanUp(t)
	c := newCLI(t)

	out, err := c.run("c\n", "employees", "delete", "e1")
	require.NoError(t, err)
	assert.Contains(t, out, "Delete employee Ana (e1)? [c]ancel/[d]elete:")
	assert.Contains(t, out, "Cancelled.")
	assert.Equal(t, 0, c.backend.count("DELETE"))

	out, err = c.run("", "employees", "delete", "e1", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Employee deleted.")
	assert.Contains(t, out, "No employees found.")
	assert.Equal(t, 1, c.backend.count("DELETE /api/employees/e1"))

	_, err = c.run("", "employees", "delete", "e9", "--yes")
	require.ErrorIs(t, err, collection.ErrRowNotFound)
}

func TestCLI_ScoresList(t *testing.T) {
	defer filet.CleanUp(t)
	c := newCLI(t)

	out, err := c.run("", "scores", "list", "--source", "nilairt", "--per-page", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "Citra")
	assert.Equal(t, 1, c.backend.count("GET /api/nilairt?page=1&per_page=10"))

	_, err = c.run("", "scores", "list", "--per-page", "7")
	require.ErrorIs(t, err, collection.ErrInvalidPageSize)

	_, err = c.run("", "scores", "list", "--source", "grades")
	require.ErrorIs(t, err, collection.ErrInvalidSource)
	assert.Equal(t, 1, c.backend.count("GET /api/"))
}

func TestCLI_BrowseDivisions(t *testing.T) {
	defer filet.CleanUp(t)
	c := newCLI(t)

	out, err := c.run("n\nn\ng 9\nq\n", "browse", "divisions")
	require.NoError(t, err)

	assert.Contains(t, out, "Division 1")
	assert.Contains(t, out, "Division 2")
	assert.Contains(t, out, "page is outside the available range")
	// the second "n" on the last page is a no-op
	assert.Equal(t, 2, c.backend.count("GET /api/divisions"))
}

func TestCLI_MirrorRequiresDatabase(t *testing.T) {
	defer filet.CleanUp(t)
	c := newCLI(t)

	_, err := c.run("", "mirror", "--once")
	require.ErrorIs(t, err, errNoDatabase)
}

func TestCLI_UnauthorizedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	defer filet.CleanUp(t)

	configPath := filepath.Join(filet.TmpDir(t, ""), "config.yaml")
	filet.File(t, configPath, fmt.Sprintf("env: production\napi:\n  url: %s/api\n  token: stale\n", srv.URL))

	cmd := newRootCmd(newApp(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{}))
	cmd.SetArgs([]string{"--config", configPath, "employees", "list"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, client.IsUnauthorized(err))
}
