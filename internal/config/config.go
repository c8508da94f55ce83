package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Authentication configuration
	Auth AuthConfig

	// Blog content configuration
	Blog BlogConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// AuthConfig holds authentication and permission settings
type AuthConfig struct {
	SessionLifetime      time.Duration
	RememberLifetime     time.Duration
	SessionSweepInterval time.Duration
	BcryptCost           int
	PermissionControl    bool
}

// BlogConfig holds content rules and listing defaults
type BlogConfig struct {
	UserIDPattern    string
	UserNamePattern  string
	PasswordPattern  string
	ContentIDPattern string // category and article IDs share one shape

	UserPageSize    int
	ArticlePageSize int
	CommentPageSize int

	CommentNeedReview bool
	EventBufferSize   int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Name:         getEnv("DB_NAME", "cage"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Auth: AuthConfig{
			SessionLifetime:      getDurationEnv("SESSION_LIFETIME", 24*time.Hour),
			RememberLifetime:     getDurationEnv("SESSION_REMEMBER_LIFETIME", 30*24*time.Hour),
			SessionSweepInterval: getDurationEnv("SESSION_SWEEP_INTERVAL", time.Hour),
			BcryptCost:           getIntEnv("BCRYPT_COST", 10),
			PermissionControl:    getBoolEnv("ENABLE_PERMISSION_CONTROL", true),
		},
		Blog: BlogConfig{
			UserIDPattern:    getEnv("USER_ID_PATTERN", `^[0-9a-zA-Z_]{5,32}$`),
			UserNamePattern:  getEnv("USER_NAME_PATTERN", `^[^\t\r\n]{1,12}$`),
			PasswordPattern:  getEnv("USER_PASSWORD_PATTERN", `^[^\s]{10,32}$`),
			ContentIDPattern: getEnv("CONTENT_ID_PATTERN", `^[-0-9a-z]{1,64}$`),

			UserPageSize:    getIntEnv("USER_LIST_DEFAULT_LIMIT", 20),
			ArticlePageSize: getIntEnv("ARTICLE_LIST_DEFAULT_LIMIT", 20),
			CommentPageSize: getIntEnv("COMMENT_LIST_DEFAULT_LIMIT", 20),

			CommentNeedReview: getBoolEnv("COMMENT_NEED_REVIEW", true),
			EventBufferSize:   getIntEnv("EVENT_BUFFER_SIZE", 256),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
