package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Cache      CacheConfig
	Database   DatabaseConfig
	Logging    LoggingConfig
	Auth       AuthConfig
	Storage    StorageConfig
	Moderation ModerationConfig
	Rates      RatesConfig
	Import     ImportConfig
	SQLProxy   SQLProxyConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPAddr string
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Backend   string // "memory" or "redis"
	TTL       time.Duration
	RedisAddr string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// StorageConfig holds object storage (S3-compatible) configuration.
// When Endpoint is empty, uploads are kept in process memory, which is
// only useful for development.
type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

// ModerationConfig holds image moderation settings
type ModerationConfig struct {
	Enabled          bool
	AWSRegion        string
	RejectConfidence float64
	Timeout          time.Duration
}

// RatesConfig holds currency conversion settings
type RatesConfig struct {
	EndpointURL string
	TTL         time.Duration
}

// ImportConfig holds catalog import settings
type ImportConfig struct {
	SourceURL string
	BatchSize int
	// MinRequestInterval spaces repeated requests to the same host
	MinRequestInterval time.Duration
}

// SQLProxyConfig holds the external MySQL passthrough settings.
// The proxy endpoint is disabled when DSN is empty.
type SQLProxyConfig struct {
	DSN string
}

// Load parses flags and environment variables to build configuration
func Load() *Config {
	cfg := &Config{}

	httpAddr := flag.String("http", ":8080", "HTTP server address")
	cacheTTL := flag.Duration("cache-ttl", 5*time.Minute, "Cache TTL for catalog data")
	cacheBackend := flag.String("cache-backend", "memory", "Cache backend: memory or redis")
	redisAddr := flag.String("redis-addr", "localhost:6379", "Redis server address")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	dbHost := flag.String("db-host", "localhost", "PostgreSQL host")
	dbPort := flag.Int("db-port", 5432, "PostgreSQL port")
	dbUser := flag.String("db-user", "postgres", "PostgreSQL user")
	dbPassword := flag.String("db-password", "postgres", "PostgreSQL password")
	dbName := flag.String("db-name", "figurevault", "PostgreSQL database name")
	dbSSLMode := flag.String("db-sslmode", "disable", "PostgreSQL SSL mode")

	flag.Parse()

	applyEnvOverrides(httpAddr, cacheTTL, cacheBackend, redisAddr, logLevel, dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode)

	cfg.Server = ServerConfig{HTTPAddr: *httpAddr}

	cfg.Cache = CacheConfig{
		Backend:   *cacheBackend,
		TTL:       *cacheTTL,
		RedisAddr: *redisAddr,
	}

	cfg.Database = DatabaseConfig{
		Host:     *dbHost,
		Port:     *dbPort,
		User:     *dbUser,
		Password: *dbPassword,
		Database: *dbName,
		SSLMode:  *dbSSLMode,
	}

	cfg.Logging = LoggingConfig{Level: *logLevel}

	cfg.Auth = loadAuthConfig()
	cfg.Storage = loadStorageConfig()
	cfg.Moderation = loadModerationConfig()
	cfg.Rates = loadRatesConfig()
	cfg.Import = loadImportConfig()
	cfg.SQLProxy = SQLProxyConfig{DSN: os.Getenv("SQL_PROXY_MYSQL_DSN")}

	return cfg
}

func loadAuthConfig() AuthConfig {
	accessTTL := 15 * time.Minute
	if v := os.Getenv("AUTH_ACCESS_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			accessTTL = d
		}
	}

	refreshTTL := 7 * 24 * time.Hour
	if v := os.Getenv("AUTH_REFRESH_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			refreshTTL = d
		}
	}

	return AuthConfig{
		JWTSecret:       getEnvOrDefault("AUTH_JWT_SECRET", "change-me-in-production"),
		JWTIssuer:       getEnvOrDefault("AUTH_JWT_ISSUER", "figurevault"),
		JWTAudience:     getEnvOrDefault("AUTH_JWT_AUDIENCE", "figurevault-users"),
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: refreshTTL,
	}
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Endpoint:      os.Getenv("STORAGE_ENDPOINT"),
		AccessKey:     os.Getenv("STORAGE_ACCESS_KEY"),
		SecretKey:     os.Getenv("STORAGE_SECRET_KEY"),
		Bucket:        getEnvOrDefault("STORAGE_BUCKET", "figurevault-images"),
		UseSSL:        os.Getenv("STORAGE_USE_SSL") == "true",
		PublicBaseURL: os.Getenv("STORAGE_PUBLIC_BASE_URL"),
	}
}

func loadModerationConfig() ModerationConfig {
	rejectConfidence := 70.0
	if v := os.Getenv("MODERATION_REJECT_CONFIDENCE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			rejectConfidence = parsed
		}
	}

	timeout := 5 * time.Second
	if v := os.Getenv("MODERATION_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			timeout = parsed
		}
	}

	enabled := true
	if v := os.Getenv("IMAGE_MODERATION_ENABLED"); v == "false" || v == "0" {
		enabled = false
	}

	return ModerationConfig{
		Enabled:          enabled,
		AWSRegion:        os.Getenv("AWS_REGION"),
		RejectConfidence: rejectConfidence,
		Timeout:          timeout,
	}
}

func loadRatesConfig() RatesConfig {
	ttl := time.Hour
	if v := os.Getenv("RATES_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			ttl = d
		}
	}

	return RatesConfig{
		EndpointURL: getEnvOrDefault("RATES_ENDPOINT_URL", "https://open.er-api.com/v6/latest/EUR"),
		TTL:         ttl,
	}
}

func loadImportConfig() ImportConfig {
	batchSize := 200
	if v := os.Getenv("IMPORT_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			batchSize = n
		}
	}

	interval := time.Second
	if v := os.Getenv("IMPORT_RATE_LIMIT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			interval = d
		}
	}

	return ImportConfig{
		SourceURL:          os.Getenv("IMPORT_SOURCE_URL"),
		BatchSize:          batchSize,
		MinRequestInterval: interval,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func applyEnvOverrides(
	httpAddr *string,
	cacheTTL *time.Duration,
	cacheBackend *string,
	redisAddr *string,
	logLevel *string,
	dbHost *string,
	dbPort *int,
	dbUser *string,
	dbPassword *string,
	dbName *string,
	dbSSLMode *string,
) {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		*httpAddr = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*cacheTTL = d
		}
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		*cacheBackend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		*redisAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		*logLevel = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		*dbHost = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			*dbPort = p
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		*dbUser = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		*dbPassword = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		*dbName = v
	}
	if v := os.Getenv("DB_SSLMODE"); v != "" {
		*dbSSLMode = v
	}
}
