package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/quizprogress-backend/internal/clients/redis"
	"github.com/yungbote/quizprogress-backend/internal/data/db"
	httpH "github.com/yungbote/quizprogress-backend/internal/http/handlers"
	"github.com/yungbote/quizprogress-backend/internal/observability"
	"github.com/yungbote/quizprogress-backend/internal/platform/envutil"
	"github.com/yungbote/quizprogress-backend/internal/platform/gcp"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
)

const defaultJWTSecret = "defaultsecret"

type DatabaseConfig struct {
	Driver           string        `yaml:"driver"`
	PostgresHost     string        `yaml:"postgres_host"`
	PostgresPort     string        `yaml:"postgres_port"`
	PostgresUser     string        `yaml:"postgres_user"`
	PostgresPassword string        `yaml:"postgres_password"`
	PostgresName     string        `yaml:"postgres_name"`
	PostgresSSLMode  string        `yaml:"postgres_sslmode"`
	SQLitePath       string        `yaml:"sqlite_path"`
	SlowThreshold    time.Duration `yaml:"slow_threshold"`
	MaxOpenConns     int           `yaml:"max_open_conns"`
}

type AuthConfig struct {
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	JWTIssuer    string        `yaml:"jwt_issuer"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

type StorageConfig struct {
	Mode            string `yaml:"mode"`
	EmulatorHost    string `yaml:"emulator_host"`
	AvatarBucket    string `yaml:"avatar_bucket"`
	AvatarCDNDomain string `yaml:"avatar_cdn_domain"`
	PublicBaseURL   string `yaml:"public_base_url"`
	Credentials     string `yaml:"credentials"`
}

type OtelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Environment string  `yaml:"environment"`
	SampleRatio float64 `yaml:"sample_ratio"`
	Endpoint    string  `yaml:"endpoint"`
	Headers     string  `yaml:"headers"`
	Insecure    bool    `yaml:"insecure"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type HTTPConfig struct {
	AllowedOrigins         []string      `yaml:"allowed_origins"`
	AttemptConflictRetries int           `yaml:"attempt_conflict_retries"`
	ShutdownTimeout        time.Duration `yaml:"shutdown_timeout"`
}

type Config struct {
	LogMode string `yaml:"log_mode"`
	Port    string `yaml:"port"`
	Version string `yaml:"version"`

	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	Otel     OtelConfig     `yaml:"otel"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	HTTP     HTTPConfig     `yaml:"http"`
}

func defaultConfig() Config {
	return Config{
		LogMode: "development",
		Port:    "8080",
		Version: "dev",
		Database: DatabaseConfig{
			Driver:        db.DriverPostgres,
			PostgresHost:  "localhost",
			PostgresPort:  "5432",
			PostgresName:  "quizprogress",
			SQLitePath:    "quizprogress.db",
			SlowThreshold: time.Second,
		},
		Auth: AuthConfig{
			JWTSecretKey: defaultJWTSecret,
			TokenTTL:     time.Hour,
		},
		Redis: RedisConfig{Channel: redis.DefaultChannel},
		Otel:  OtelConfig{SampleRatio: 1},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
		HTTP: HTTPConfig{
			AttemptConflictRetries: httpH.DefaultRetryPolicy().MaxRetries,
			ShutdownTimeout:        10 * time.Second,
		},
	}
}

// LoadConfig layers defaults, an optional YAML file (APP_CONFIG_PATH) and the environment,
// in that order. A .env file in the working directory is loaded first when present.
func LoadConfig(log *logger.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()
	if path := envutil.String("APP_CONFIG_PATH", ""); path != "" {
		if err := cfg.overlayYAML(path); err != nil {
			return Config{}, err
		}
		if log != nil {
			log.Info("Loaded config file", "path", path)
		}
	}
	cfg.overlayEnv()

	if cfg.Auth.JWTSecretKey == defaultJWTSecret && log != nil {
		log.Warn("JWT_SECRET_KEY not set; using the development default")
	}
	return cfg, cfg.Validate()
}

func (c *Config) overlayYAML(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) overlayEnv() {
	c.LogMode = envutil.String("LOG_MODE", c.LogMode)
	c.Port = envutil.String("PORT", c.Port)
	c.Version = envutil.String("APP_VERSION", c.Version)

	d := &c.Database
	d.Driver = envutil.String("DB_DRIVER", d.Driver)
	d.PostgresHost = envutil.String("POSTGRES_HOST", d.PostgresHost)
	d.PostgresPort = envutil.String("POSTGRES_PORT", d.PostgresPort)
	d.PostgresUser = envutil.String("POSTGRES_USER", d.PostgresUser)
	d.PostgresPassword = envutil.String("POSTGRES_PASSWORD", d.PostgresPassword)
	d.PostgresName = envutil.String("POSTGRES_NAME", d.PostgresName)
	d.PostgresSSLMode = envutil.String("POSTGRES_SSLMODE", d.PostgresSSLMode)
	d.SQLitePath = envutil.String("SQLITE_PATH", d.SQLitePath)
	d.SlowThreshold = envutil.Duration("DB_SLOW_THRESHOLD", d.SlowThreshold)
	d.MaxOpenConns = envutil.Int("DB_MAX_OPEN_CONNS", d.MaxOpenConns)

	c.Auth.JWTSecretKey = envutil.String("JWT_SECRET_KEY", c.Auth.JWTSecretKey)
	c.Auth.JWTIssuer = envutil.String("JWT_ISSUER", c.Auth.JWTIssuer)
	c.Auth.TokenTTL = envutil.Duration("TOKEN_TTL", c.Auth.TokenTTL)

	c.Redis.Addr = envutil.String("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = envutil.String("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = envutil.Int("REDIS_DB", c.Redis.DB)
	c.Redis.Channel = envutil.String("REDIS_CHANNEL", c.Redis.Channel)

	s := &c.Storage
	s.Mode = envutil.String("OBJECT_STORAGE_MODE", s.Mode)
	s.EmulatorHost = envutil.String("STORAGE_EMULATOR_HOST", s.EmulatorHost)
	s.AvatarBucket = envutil.String("AVATAR_GCS_BUCKET_NAME", s.AvatarBucket)
	s.AvatarCDNDomain = envutil.String("AVATAR_CDN_DOMAIN", s.AvatarCDNDomain)
	s.PublicBaseURL = envutil.String("STORAGE_PUBLIC_BASE_URL", s.PublicBaseURL)
	s.Credentials = envutil.String("GOOGLE_APPLICATION_CREDENTIALS", s.Credentials)

	o := &c.Otel
	o.Enabled = envutil.Bool("OTEL_ENABLED", o.Enabled)
	o.Environment = envutil.String("OTEL_ENVIRONMENT", o.Environment)
	o.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", o.SampleRatio)
	o.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", o.Endpoint)
	o.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", o.Headers)
	o.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", o.Insecure)

	c.Metrics.Enabled = envutil.Bool("METRICS_ENABLED", c.Metrics.Enabled)
	c.Metrics.Addr = envutil.String("METRICS_ADDR", c.Metrics.Addr)

	if raw := envutil.String("CORS_ALLOWED_ORIGINS", ""); raw != "" {
		c.HTTP.AllowedOrigins = splitList(raw)
	}
	c.HTTP.AttemptConflictRetries = envutil.Int("ATTEMPT_CONFLICT_RETRIES", c.HTTP.AttemptConflictRetries)
	c.HTTP.ShutdownTimeout = envutil.Duration("SHUTDOWN_TIMEOUT", c.HTTP.ShutdownTimeout)
}

func (c Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q (allowed: %q, %q)", c.Database.Driver, db.DriverPostgres, db.DriverSQLite)
	}
	if strings.TrimSpace(c.Auth.JWTSecretKey) == "" {
		return fmt.Errorf("missing JWT_SECRET_KEY")
	}
	if c.HTTP.AttemptConflictRetries < 0 {
		return fmt.Errorf("ATTEMPT_CONFLICT_RETRIES must be >= 0")
	}
	return nil
}

func (c Config) DBConfig() db.Config {
	d := c.Database
	return db.Config{
		Driver:           d.Driver,
		PostgresHost:     d.PostgresHost,
		PostgresPort:     d.PostgresPort,
		PostgresUser:     d.PostgresUser,
		PostgresPassword: d.PostgresPassword,
		PostgresName:     d.PostgresName,
		PostgresSSLMode:  d.PostgresSSLMode,
		SQLitePath:       d.SQLitePath,
		SlowThreshold:    d.SlowThreshold,
		MaxOpenConns:     d.MaxOpenConns,
	}
}

// StorageEnabled reports whether an avatar bucket is configured.
func (c Config) StorageEnabled() bool { return strings.TrimSpace(c.Storage.AvatarBucket) != "" }

func (c Config) StorageConfig() gcp.StorageConfig {
	s := c.Storage
	return gcp.StorageConfig{
		Mode:            gcp.ObjectStorageMode(s.Mode),
		EmulatorHost:    s.EmulatorHost,
		AvatarBucket:    s.AvatarBucket,
		AvatarCDNDomain: s.AvatarCDNDomain,
		PublicBaseURL:   s.PublicBaseURL,
		Credentials:     s.Credentials,
	}
}

func (c Config) BusConfig() redis.BusConfig {
	return redis.BusConfig{Addr: c.Redis.Addr, Password: c.Redis.Password, DB: c.Redis.DB, Channel: c.Redis.Channel}
}

func (c Config) OtelConfig() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.Otel.Enabled,
		ServiceName: observability.DefaultServiceName,
		Environment: c.Otel.Environment,
		Version:     c.Version,
		SampleRatio: c.Otel.SampleRatio,
		Endpoint:    c.Otel.Endpoint,
		Headers:     c.Otel.Headers,
		Insecure:    c.Otel.Insecure,
	}
}

func (c Config) RetryPolicy() httpH.RetryPolicy {
	p := httpH.DefaultRetryPolicy()
	p.MaxRetries = c.HTTP.AttemptConflictRetries
	return p
}

func (c Config) Addr() string {
	port := strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	if port == "" {
		port = "8080"
	}
	return ":" + port
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
