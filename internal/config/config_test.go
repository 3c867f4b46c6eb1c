package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/roster-console/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
env: development
api:
  url: https://roster.example.com/api
  asset_origin: https://cdn.example.com
  timeout: 3s
  token_file: /tmp/roster-token
views:
  scores:
    page_sizes: [10, 20, 50]
    page_size: 20
postgres:
  host: db
  port: "5433"
  user: roster
  password: secret
  db_name: roster
mirror:
  interval: 30m
monitoring:
  port: 9090
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	dir := filet.TmpDir(t, "")
	path := filepath.Join(dir, "config.yaml")
	filet.File(t, path, content)

	return path
}

func TestLoad_FromFile(t *testing.T) {
	defer filet.CleanUp(t)
	path := writeConfig(t, sampleConfig)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "https://roster.example.com/api", cfg.API.URL)
	assert.Equal(t, "https://cdn.example.com", cfg.API.AssetOrigin)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "/tmp/roster-token", cfg.API.TokenFile)
	assert.Equal(t, []int{10, 20, 50}, cfg.Views.Scores.PageSizes)
	assert.Equal(t, 20, cfg.Views.Scores.PageSize)
	assert.Equal(t, config.PostgresConfig{Host: "db", Port: "5433", User: "roster", Password: "secret",
		Dbname: "roster"}, cfg.Postgres)
	assert.True(t, cfg.Postgres.Configured())
	assert.Equal(t, 30*time.Minute, cfg.Mirror.Interval)
	assert.Equal(t, 9090, cfg.Monitoring.Port)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "http://127.0.0.1:8000/api", cfg.API.URL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, []int{5, 10, 15}, cfg.Views.Scores.PageSizes)
	assert.Equal(t, 5, cfg.Views.Scores.PageSize)
	assert.Equal(t, 12*time.Hour, cfg.Mirror.Interval)
	assert.False(t, cfg.Postgres.Configured())
	assert.Zero(t, cfg.Monitoring.Port)
}

func TestLoad_EnvOverrides(t *testing.T) {
	defer filet.CleanUp(t)
	t.Setenv("CONFIG_PATH", writeConfig(t, sampleConfig))
	t.Setenv("ROSTER_ENV", "production")
	t.Setenv("ROSTER_API_TOKEN", "env-token")
	t.Setenv("ROSTER_API_TIMEOUT", "1m")
	t.Setenv("ROSTER_VIEWS_SCORES_PAGE_SIZES", "5, 25")
	t.Setenv("ROSTER_VIEWS_SCORES_PAGE_SIZE", "25")
	t.Setenv("ROSTER_POSTGRES_DB_NAME", "other")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "env-token", cfg.API.Token)
	assert.Equal(t, time.Minute, cfg.API.Timeout)
	assert.Equal(t, []int{5, 25}, cfg.Views.Scores.PageSizes)
	assert.Equal(t, 25, cfg.Views.Scores.PageSize)
	assert.Equal(t, "other", cfg.Postgres.Dbname)
	assert.Equal(t, "https://roster.example.com/api", cfg.API.URL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing file",
			env:     map[string]string{"CONFIG_PATH": "/definitely/not/here.yaml"},
			wantMsg: "config file does not exist",
		},
		{
			name:    "relative api url",
			env:     map[string]string{"ROSTER_API_URL": "not a url"},
			wantMsg: "invalid configuration",
		},
		{
			name:    "page size not offered",
			env:     map[string]string{"ROSTER_VIEWS_SCORES_PAGE_SIZE": "7"},
			wantErr: config.ErrInvalidPageSize,
		},
		{
			name:    "page sizes not numeric",
			env:     map[string]string{"ROSTER_VIEWS_SCORES_PAGE_SIZES": "5,ten"},
			wantMsg: "failed to parse views.scores.page_sizes",
		},
		{
			name:    "negative timeout",
			env:     map[string]string{"ROSTER_API_TIMEOUT": "-1s"},
			wantMsg: "invalid configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_PATH", "")
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			cfg, err := config.Load("")

			require.Error(t, err)
			assert.Nil(t, cfg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestMustLoad_Panics(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("ROSTER_MIRROR_INTERVAL", "0s")

	assert.Panics(t, func() {
		config.MustLoad("")
	})
}
