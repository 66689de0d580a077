package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Env          string
	LogLevel     string
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Storage      StorageConfig
	SMS          SMSConfig
	Auth         AuthConfig
	Emergency    EmergencyConfig
	Connectivity ConnectivityConfig
	OTEL         OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// StorageConfig holds object storage (MinIO / S3 compatible) configuration
type StorageConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	UseSSL     bool
	PublicBase string
}

// SMSConfig holds the SMS gateway configuration
type SMSConfig struct {
	BaseURL string
	Timeout time.Duration
}

// AuthConfig holds bearer token validation settings
type AuthConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
	DevMode    bool
}

// EmergencyConfig holds emergency browsing and response tunables
type EmergencyConfig struct {
	RareBloodTypes      []string
	NotificationWindow  time.Duration
	BannerAnimation     time.Duration
	ChatReplyDelay      time.Duration
	ChatReplyText       string
	ResponseSessionTTL  time.Duration
	ActiveListCacheTTL  time.Duration
	DefaultSearchRadius float64
}

// ConnectivityConfig holds the outbound connectivity check settings.
// An empty CheckURL means the service always considers itself online.
type ConnectivityConfig struct {
	CheckURL      string
	CheckInterval time.Duration
	CheckTimeout  time.Duration
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "bloodhub"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:      getEnv("REDIS_HOST", "localhost"),
			Port:      getEnvAsInt("REDIS_PORT", 6379),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("REDIS_DB", 0),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "bloodhub:"),
		},
		Storage: StorageConfig{
			Endpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:  getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:  getEnv("MINIO_SECRET_KEY", ""),
			Bucket:     getEnv("MINIO_BUCKET", "bloodhub"),
			UseSSL:     getEnvAsBool("MINIO_USE_SSL", false),
			PublicBase: getEnv("MINIO_PUBLIC_BASE", ""),
		},
		SMS: SMSConfig{
			BaseURL: getEnv("SMS_BASE_URL", "https://raksetu-backend.vercel.app"),
			Timeout: getEnvAsDuration("SMS_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			SigningKey: getEnv("AUTH_SIGNING_KEY", ""),
			Issuer:     getEnv("AUTH_ISSUER", ""),
			Audience:   getEnv("AUTH_AUDIENCE", ""),
			DevMode:    getEnvAsBool("AUTH_DEV_MODE", false),
		},
		Emergency: EmergencyConfig{
			RareBloodTypes:      getEnvAsList("EMERGENCY_RARE_BLOOD_TYPES", []string{"O h"}),
			NotificationWindow:  getEnvAsDuration("EMERGENCY_NOTIFICATION_WINDOW", 5*time.Minute),
			BannerAnimation:     getEnvAsDuration("EMERGENCY_BANNER_ANIMATION", 2*time.Second),
			ChatReplyDelay:      getEnvAsDuration("EMERGENCY_CHAT_REPLY_DELAY", time.Second),
			ChatReplyText:       getEnv("EMERGENCY_CHAT_REPLY_TEXT", "Thank you for reaching out! A representative will assist you shortly."),
			ResponseSessionTTL:  getEnvAsDuration("EMERGENCY_SESSION_TTL", 30*time.Minute),
			ActiveListCacheTTL:  getEnvAsDuration("EMERGENCY_LIST_CACHE_TTL", 30*time.Second),
			DefaultSearchRadius: getEnvAsFloat("EMERGENCY_DEFAULT_RADIUS_KM", 0),
		},
		Connectivity: ConnectivityConfig{
			CheckURL:      getEnv("CONNECTIVITY_CHECK_URL", ""),
			CheckInterval: getEnvAsDuration("CONNECTIVITY_CHECK_INTERVAL", 15*time.Second),
			CheckTimeout:  getEnvAsDuration("CONNECTIVITY_CHECK_TIMEOUT", 3*time.Second),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "bloodhub-api"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if cfg.Auth.SigningKey == "" && !cfg.Auth.DevMode {
		return nil, fmt.Errorf("AUTH_SIGNING_KEY must be set unless AUTH_DEV_MODE is enabled")
	}

	return cfg, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SendSMSURL returns the full URL of the send-sms endpoint
func (c *SMSConfig) SendSMSURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/send-sms"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value. Entries are trimmed but inner
// spaces are kept so that types such as "O h" survive.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
