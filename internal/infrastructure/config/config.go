package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Security SecurityConfig `mapstructure:"security"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
	RateLimitRequests  int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow    time.Duration `mapstructure:"rate_limit_window"`
	RateLimitBackend   string        `mapstructure:"rate_limit_backend"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Rate limit backends
const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// Supported database/sql driver names
const (
	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

// Load loads configuration from various sources
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "TaskFlow")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)

	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "15s")

	// Database defaults; user and password have none
	v.SetDefault("database.driver", DriverPQ)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "tasks")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.conn_max_idle_time", "30s")
	v.SetDefault("database.connect_timeout", "10s")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.filename", "")

	// Security defaults
	v.SetDefault("security.cors_allowed_origins", "*")
	v.SetDefault("security.rate_limit_requests", 100)
	v.SetDefault("security.rate_limit_window", "1m")
	v.SetDefault("security.rate_limit_backend", RateLimitBackendMemory)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
}

// envBindings maps config keys to environment variables; earlier names win.
var envBindings = map[string][]string{
	// App
	"app.name":        {"APP_NAME"},
	"app.version":     {"APP_VERSION"},
	"app.environment": {"APP_ENVIRONMENT"},
	"app.debug":       {"APP_DEBUG"},

	// Server
	"server.port":             {"SERVER_PORT", "PORT"},
	"server.host":             {"SERVER_HOST"},
	"server.read_timeout":     {"SERVER_READ_TIMEOUT"},
	"server.write_timeout":    {"SERVER_WRITE_TIMEOUT"},
	"server.idle_timeout":     {"SERVER_IDLE_TIMEOUT"},
	"server.request_timeout":  {"SERVER_REQUEST_TIMEOUT"},
	"server.shutdown_timeout": {"SERVER_SHUTDOWN_TIMEOUT"},

	// Database
	"database.driver":             {"DB_DRIVER"},
	"database.host":               {"POSTGRES_HOST", "DB_HOST"},
	"database.port":               {"POSTGRES_PORT", "DB_PORT"},
	"database.name":               {"POSTGRES_DB", "DB_NAME"},
	"database.user":               {"POSTGRES_USER", "DB_USER"},
	"database.password":           {"POSTGRES_PASSWORD", "DB_PASSWORD"},
	"database.ssl_mode":           {"DB_SSL_MODE"},
	"database.max_open_conns":     {"DB_MAX_OPEN_CONNS"},
	"database.max_idle_conns":     {"DB_MAX_IDLE_CONNS"},
	"database.conn_max_lifetime":  {"DB_CONN_MAX_LIFETIME"},
	"database.conn_max_idle_time": {"DB_CONN_MAX_IDLE_TIME"},
	"database.connect_timeout":    {"DB_CONNECT_TIMEOUT"},

	// Redis
	"redis.host":     {"REDIS_HOST"},
	"redis.port":     {"REDIS_PORT"},
	"redis.password": {"REDIS_PASSWORD"},
	"redis.db":       {"REDIS_DB"},

	// Logger
	"logger.level":    {"LOG_LEVEL"},
	"logger.format":   {"LOG_FORMAT"},
	"logger.output":   {"LOG_OUTPUT"},
	"logger.filename": {"LOG_FILENAME"},

	// Security
	"security.cors_allowed_origins": {"CORS_ALLOWED_ORIGINS"},
	"security.rate_limit_requests":  {"RATE_LIMIT_REQUESTS"},
	"security.rate_limit_window":    {"RATE_LIMIT_WINDOW"},
	"security.rate_limit_backend":   {"RATE_LIMIT_BACKEND"},

	// Metrics
	"metrics.enabled": {"ENABLE_METRICS"},
}

func bindEnvVars(v *viper.Viper) error {
	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return err
		}
	}
	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if cfg.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}

	if cfg.Database.User == "" {
		return fmt.Errorf("database user is required (POSTGRES_USER)")
	}

	if cfg.Database.Password == "" {
		return fmt.Errorf("database password is required (POSTGRES_PASSWORD)")
	}

	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		return fmt.Errorf("database port must be between 1 and 65535")
	}

	if cfg.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database max_open_conns must be positive")
	}

	switch cfg.Database.Driver {
	case DriverPQ, DriverPGX:
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	switch cfg.Security.RateLimitBackend {
	case RateLimitBackendMemory, RateLimitBackendRedis:
	default:
		return fmt.Errorf("unsupported rate limit backend %q", cfg.Security.RateLimitBackend)
	}

	return nil
}

// GetDSN returns the database connection string
func (cfg *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		dsnValue(cfg.Host),
		cfg.Port,
		dsnValue(cfg.User),
		dsnValue(cfg.Password),
		dsnValue(cfg.Name),
		dsnValue(cfg.SSLMode),
		int(cfg.ConnectTimeout.Seconds()),
	)
}

// dsnValue quotes a keyword/value DSN value when it is empty or contains
// characters the connection string parser treats specially.
func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\n\r'\\") {
		return v
	}
	return "'" + dsnEscaper.Replace(v) + "'"
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// GetAddr returns the Redis address
func (cfg *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// GetAddr returns the HTTP listen address
func (cfg *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}
