package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers.
const (
	StoreDriverMemory   = "memory"
	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Cart     CartConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Coupon   CouponConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	S3       S3Config
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// BackendConfig holds the bookstore REST backend settings.
type BackendConfig struct {
	BaseURL string
	Token   string
	Timeout int // seconds
}

// CartConfig holds the cart pricing rules and reconciliation settings.
type CartConfig struct {
	FreeShippingThreshold int64
	ShippingFee           int64
	RefreshTimeout        int // seconds
}

// StoreConfig selects and configures the persisted cart store.
type StoreConfig struct {
	Driver    string
	FilePath  string
	Namespace string
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CouponConfig holds the built-in coupon rule and optional catalogue files.
type CouponConfig struct {
	Code          string
	Rate          float64
	Files         []string
	MinMatchCount int
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string
}

// S3Config holds AWS S3 configuration for coupon files.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "coupons/")
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Backend: BackendConfig{
			BaseURL: getEnv("BACKEND_URL", "http://localhost:8000/api"),
			Token:   getEnv("BACKEND_TOKEN", ""),
			Timeout: getEnvAsInt("BACKEND_TIMEOUT", 10),
		},
		Cart: CartConfig{
			FreeShippingThreshold: int64(getEnvAsInt("CART_FREE_SHIPPING_THRESHOLD", 300000)),
			ShippingFee:           int64(getEnvAsInt("CART_SHIPPING_FEE", 30000)),
			RefreshTimeout:        getEnvAsInt("CART_REFRESH_TIMEOUT", 10),
		},
		Store: StoreConfig{
			Driver:    getEnv("STORE_DRIVER", StoreDriverFile),
			FilePath:  getEnv("STORE_FILE_PATH", "data/storefront.json"),
			Namespace: getEnv("STORE_NAMESPACE", ""),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "bookstore"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 10),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 1),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Coupon: CouponConfig{
			Code:          getEnv("COUPON_CODE", "DISCOUNT10"),
			Rate:          getEnvAsFloat("COUPON_RATE", 0.10),
			Files:         getEnvAsList("COUPON_FILES"),
			MinMatchCount: getEnvAsInt("COUPON_MIN_MATCH", 1),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "us-east-1"),
			Prefix:  getEnv("S3_PREFIX", "coupons/"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend URL is required")
	}

	if c.Backend.Timeout < 1 {
		return fmt.Errorf("backend timeout must be at least 1 second")
	}

	if c.Cart.FreeShippingThreshold < 0 {
		return fmt.Errorf("free shipping threshold cannot be negative")
	}

	if c.Cart.ShippingFee < 0 {
		return fmt.Errorf("shipping fee cannot be negative")
	}

	if c.Cart.RefreshTimeout < 1 {
		return fmt.Errorf("cart refresh timeout must be at least 1 second")
	}

	switch c.Store.Driver {
	case StoreDriverMemory, StoreDriverRedis:
	case StoreDriverFile:
		if c.Store.FilePath == "" {
			return fmt.Errorf("store file path is required for the file driver")
		}
	case StoreDriverPostgres:
		if err := c.Database.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid store driver: %s (must be memory, file, postgres, or redis)", c.Store.Driver)
	}

	if c.Store.Driver == StoreDriverRedis && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required for the redis driver")
	}

	if c.Coupon.Code == "" {
		return fmt.Errorf("coupon code is required")
	}

	if c.Coupon.Rate <= 0 || c.Coupon.Rate > 1 {
		return fmt.Errorf("invalid coupon rate: %v (must be in (0, 1])", c.Coupon.Rate)
	}

	if len(c.Coupon.Files) > 0 && (c.Coupon.MinMatchCount < 1 || c.Coupon.MinMatchCount > len(c.Coupon.Files)) {
		return fmt.Errorf("coupon min match count must be between 1 and %d", len(c.Coupon.Files))
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	return nil
}

// Validate validates the database settings used by the postgres store driver.
func (c *DatabaseConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Port)
	}

	if c.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.MinConnections > c.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TimeoutDuration returns the per-request backend timeout.
func (c *BackendConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// RefreshTimeoutDuration returns the reconciliation timeout.
func (c *CartConfig) RefreshTimeoutDuration() time.Duration {
	return time.Duration(c.RefreshTimeout) * time.Second
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated environment variable, dropping empty entries.
func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var items []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
