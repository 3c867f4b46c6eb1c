package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ROSTER_API_URL for api.url.
const EnvPrefix = "ROSTER"

var ErrInvalidPageSize = errors.New("default page size is not one of the offered page sizes")

type Config struct {
	Env        string           `validate:"required"` // Env is the current environment: local, development, production.
	API        APIConfig        // API holds the roster backend connection
	Views      ViewsConfig      // Views holds list view settings
	Postgres   PostgresConfig   // Postgres holds the mirror database configuration
	Mirror     MirrorConfig     // Mirror holds the mirror schedule
	Monitoring MonitoringConfig // Monitoring holds the metrics server settings
}

// APIConfig struct holds the configuration details for the roster REST API.
type APIConfig struct {
	URL         string        `validate:"required,url"`  // URL is the API base, e.g. `https://example.com/api`
	AssetOrigin string        `validate:"omitempty,url"` // AssetOrigin resolves relative image paths
	Timeout     time.Duration `validate:"gt=0"`          // Timeout bounds every request
	Token       string        // Token is a bearer token supplied by the environment
	TokenFile   string        // TokenFile is where `login` stores the token
}

// ViewsConfig struct holds per-view settings.
type ViewsConfig struct {
	Scores ScoresViewConfig
}

// ScoresViewConfig struct holds the page sizes offered by the score records view.
type ScoresViewConfig struct {
	PageSizes []int `validate:"min=1,dive,gt=0"`
	PageSize  int   `validate:"gt=0"`
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Dbname   string // Dbname is the name of the database.
}

// Configured reports whether enough settings are present to open a connection.
func (p PostgresConfig) Configured() bool {
	return p.Host != "" && p.Dbname != ""
}

// MirrorConfig struct holds the roster mirror schedule.
type MirrorConfig struct {
	Interval time.Duration `validate:"gt=0"` // Interval is the time between two mirror runs.
}

// MonitoringConfig struct holds the metrics and health server settings.
type MonitoringConfig struct {
	Port int `validate:"gte=0,lte=65535"` // Port is 0 to disable the server.
}

// MustLoad loads the configuration and panics on any error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic("config error: " + err.Error())
	}

	return cfg
}

// Load builds the configuration from an optional .env file, an optional YAML file and
// ROSTER_ environment overrides. When path is empty CONFIG_PATH is used.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		// check if file exists
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	pageSizes, err := intList(v.Get("views.scores.page_sizes"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse views.scores.page_sizes: %w", err)
	}

	cfg := &Config{
		Env: v.GetString("env"),
		API: APIConfig{
			URL:         v.GetString("api.url"),
			AssetOrigin: v.GetString("api.asset_origin"),
			Timeout:     v.GetDuration("api.timeout"),
			Token:       v.GetString("api.token"),
			TokenFile:   v.GetString("api.token_file"),
		},
		Views: ViewsConfig{
			Scores: ScoresViewConfig{
				PageSizes: pageSizes,
				PageSize:  v.GetInt("views.scores.page_size"),
			},
		},
		Postgres: PostgresConfig{
			Host:     v.GetString("postgres.host"),
			Port:     v.GetString("postgres.port"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			Dbname:   v.GetString("postgres.db_name"),
		},
		Mirror: MirrorConfig{
			Interval: v.GetDuration("mirror.interval"),
		},
		Monitoring: MonitoringConfig{
			Port: v.GetInt("monitoring.port"),
		},
	}

	if err = validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if !slices.Contains(cfg.Views.Scores.PageSizes, cfg.Views.Scores.PageSize) {
		return nil, fmt.Errorf("%w: %d not in %v", ErrInvalidPageSize, cfg.Views.Scores.PageSize,
			cfg.Views.Scores.PageSizes)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	const (
		defAPITimeout     = 10 * time.Second
		defMirrorInterval = 12 * time.Hour
		defScorePageSize  = 5
	)

	v.SetDefault("env", "local")
	v.SetDefault("api.url", "http://127.0.0.1:8000/api")
	v.SetDefault("api.timeout", defAPITimeout)
	v.SetDefault("api.token", "")
	v.SetDefault("api.asset_origin", "")
	v.SetDefault("api.token_file", defaultTokenFile())
	v.SetDefault("views.scores.page_sizes", []int{5, 10, 15})
	v.SetDefault("views.scores.page_size", defScorePageSize)
	v.SetDefault("postgres.host", "")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db_name", "")
	v.SetDefault("mirror.interval", defMirrorInterval)
	v.SetDefault("monitoring.port", 0)
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "roster-console", "token")
}

// intList accepts a YAML list or a comma separated string such as "5,10,15".
func intList(raw any) ([]int, error) {
	switch value := raw.(type) {
	case nil:
		return nil, nil
	case []int:
		return value, nil
	case []any:
		out := make([]int, 0, len(value))
		for _, item := range value {
			n, err := strconv.Atoi(strings.TrimSpace(fmt.Sprint(item)))
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case string:
		out := []int{}
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item == "" {
				continue
			}
			n, err := strconv.Atoi(item)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value %v", raw)
	}
}
