package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "dashboard.yaml"

// minSecretLength is the shortest JWT signing secret accepted with auth on.
const minSecretLength = 32

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// Overrides carries command-line values. Nil fields leave the loaded value
// untouched; set fields win over YAML and environment.
type Overrides struct {
	Port      *string
	LogLevel  *string
	StoreMode *string
	DSN       *string
	NatsURL   *string
}

// LoadWithOverrides extends the hierarchy with a final command-line layer:
// defaults < YAML < ENV < flags.
func LoadWithOverrides(yamlPath string, o Overrides) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}
	loadEnv(&cfg)
	applyOverrides(&cfg, o)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}
	return &cfg, nil
}

func applyOverrides(cfg *Config, o Overrides) {
	if o.Port != nil {
		cfg.Server.Port = *o.Port
	}
	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
	if o.StoreMode != nil {
		cfg.Store.Mode = *o.StoreMode
	}
	if o.DSN != nil {
		cfg.Postgres.DSN = *o.DSN
	}
	if o.NatsURL != nil {
		cfg.NATS.URL = *o.NatsURL
	}
}

// Location resolves App.Timezone. validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "DASHBOARD_PORT")
	setString(&cfg.Server.CORSOrigin, "DASHBOARD_CORS_ORIGIN")
	setDuration(&cfg.Server.RequestTimeout, "DASHBOARD_REQUEST_TIMEOUT")

	setString(&cfg.Store.Mode, "DASHBOARD_STORE_MODE")
	setString(&cfg.Store.Slot, "DASHBOARD_STORE_SLOT")

	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "DASHBOARD_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "DASHBOARD_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "DASHBOARD_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "DASHBOARD_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "DASHBOARD_PG_HEALTH_CHECK")

	setString(&cfg.SQLite.Path, "DASHBOARD_SQLITE_PATH")

	// S3
	setString(&cfg.S3.Bucket, "DASHBOARD_S3_BUCKET")
	setString(&cfg.S3.Prefix, "DASHBOARD_S3_PREFIX")
	setString(&cfg.S3.Region, "DASHBOARD_S3_REGION")
	setString(&cfg.S3.Endpoint, "DASHBOARD_S3_ENDPOINT")
	setString(&cfg.S3.AccessKeyID, "AWS_ACCESS_KEY_ID")
	setString(&cfg.S3.SecretAccessKey, "AWS_SECRET_ACCESS_KEY")
	setBool(&cfg.S3.PathStyle, "DASHBOARD_S3_PATH_STYLE")

	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.NATS.SlotBucket, "DASHBOARD_NATS_SLOT_BUCKET")

	// Cache
	setInt64(&cfg.Cache.L1MaxSizeMB, "DASHBOARD_CACHE_L1_SIZE_MB")
	setString(&cfg.Cache.L2Bucket, "DASHBOARD_CACHE_L2_BUCKET")
	setDuration(&cfg.Cache.L2TTL, "DASHBOARD_CACHE_L2_TTL")
	setDuration(&cfg.Cache.SnapshotTTL, "DASHBOARD_CACHE_SNAPSHOT_TTL")

	setString(&cfg.Logging.Level, "DASHBOARD_LOG_LEVEL")
	setString(&cfg.Logging.Service, "DASHBOARD_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "DASHBOARD_LOG_ASYNC")

	// Auth
	setBool(&cfg.Auth.Enabled, "DASHBOARD_AUTH_ENABLED")
	setString(&cfg.Auth.JWTSecret, "DASHBOARD_JWT_SECRET")
	setDuration(&cfg.Auth.AccessTokenExpiry, "DASHBOARD_ACCESS_TOKEN_EXPIRY")
	setInt(&cfg.Auth.BcryptCost, "DASHBOARD_BCRYPT_COST")
	setString(&cfg.Auth.DefaultAdminEmail, "DASHBOARD_ADMIN_EMAIL")
	setString(&cfg.Auth.DefaultAdminName, "DASHBOARD_ADMIN_NAME")
	setString(&cfg.Auth.DefaultAdminPassword, "DASHBOARD_ADMIN_PASSWORD")
	setBool(&cfg.Auth.AllowSignup, "DASHBOARD_ALLOW_SIGNUP")

	setInt(&cfg.Breaker.MaxFailures, "DASHBOARD_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "DASHBOARD_BREAKER_TIMEOUT")
	setFloat64(&cfg.Rate.RequestsPerSecond, "DASHBOARD_RATE_RPS")
	setInt(&cfg.Rate.Burst, "DASHBOARD_RATE_BURST")
	setDuration(&cfg.Rate.CleanupInterval, "DASHBOARD_RATE_CLEANUP_INTERVAL")
	setDuration(&cfg.Rate.MaxIdleTime, "DASHBOARD_RATE_MAX_IDLE_TIME")

	// OpenTelemetry
	setBool(&cfg.OTEL.Enabled, "DASHBOARD_OTEL_ENABLED")
	setString(&cfg.OTEL.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&cfg.OTEL.ServiceName, "OTEL_SERVICE_NAME")
	setBool(&cfg.OTEL.Insecure, "DASHBOARD_OTEL_INSECURE")
	setFloat64(&cfg.OTEL.SampleRate, "DASHBOARD_OTEL_SAMPLE_RATE")

	setString(&cfg.App.Timezone, "DASHBOARD_TIMEZONE")
}

// validate checks that required fields are set and combinations are sane.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	switch cfg.Store.Mode {
	case StoreLocal:
		if err := validateSlot(cfg); err != nil {
			return err
		}
	case StoreRemote:
		if cfg.Postgres.DSN == "" {
			return errors.New("postgres.dsn is required in remote mode")
		}
		if cfg.Postgres.MaxConns < 1 {
			return errors.New("postgres.max_conns must be >= 1")
		}
		if !cfg.Auth.Enabled {
			return errors.New("auth.enabled is required in remote mode")
		}
	default:
		return fmt.Errorf("store.mode %q: must be local or remote", cfg.Store.Mode)
	}
	if cfg.Auth.Enabled && len(cfg.Auth.JWTSecret) < minSecretLength {
		return fmt.Errorf("auth.jwt_secret must be at least %d characters", minSecretLength)
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Rate.Burst < 1 {
		return errors.New("rate.burst must be >= 1")
	}
	if cfg.Cache.L1MaxSizeMB < 1 {
		return errors.New("cache.l1_max_size_mb must be >= 1")
	}
	if _, err := time.LoadLocation(cfg.App.Timezone); err != nil {
		return fmt.Errorf("app.timezone: %w", err)
	}
	return nil
}

func validateSlot(cfg *Config) error {
	switch cfg.Store.Slot {
	case SlotSQLite:
		if cfg.SQLite.Path == "" {
			return errors.New("sqlite.path is required for the sqlite slot")
		}
	case SlotNATSKV:
		if cfg.NATS.URL == "" {
			return errors.New("nats.url is required for the natskv slot")
		}
	case SlotS3:
		if cfg.S3.Bucket == "" {
			return errors.New("s3.bucket is required for the s3 slot")
		}
	default:
		return fmt.Errorf("store.slot %q: must be sqlite, natskv or s3", cfg.Store.Slot)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
