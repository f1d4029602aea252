package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Email    EmailConfig
	SMS      SMSConfig
	Storage  StorageConfig
}

// AppConfig holds application-level configuration
type AppConfig struct {
	Name       string
	Version    string
	Debug      bool
	Port       string
	Host       string
	PublicURL  string
	AdminEmail string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	SecretKey          string
	TokenExpiryMinutes int
	ResetExpiryMinutes int
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// EmailConfig holds email service configuration
type EmailConfig struct {
	Enabled   bool
	Provider  string // "smtp", "resend", "console" (for development)
	SMTPHost  string
	SMTPPort  int
	Username  string
	Password  string
	ResendKey string
	FromEmail string
	FromName  string
}

// SMSConfig holds SMS service configuration
type SMSConfig struct {
	Enabled    bool
	Provider   string // "twilio", "console" (for development)
	TwilioSID  string
	TwilioAuth string
	TwilioFrom string
}

// StorageConfig holds uploaded-file storage configuration
type StorageConfig struct {
	Root          string // directory uploaded objects are written under
	PublicPath    string // URL path prefix the objects are served from
	MaxUploadSize int64  // bytes
}

var globalConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		App: AppConfig{
			Name:       getEnv("APP_NAME", "Meridian Wealth API"),
			Version:    getEnv("APP_VERSION", "1.0.0"),
			Debug:      getEnvAsBool("DEBUG", false),
			Port:       getEnv("PORT", "8000"),
			Host:       getEnv("HOST", "0.0.0.0"),
			PublicURL:  getEnv("PUBLIC_URL", "http://localhost:8000"),
			AdminEmail: getEnv("ADMIN_EMAIL", "advisory@meridianwealth.com"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", "sqlite:///./meridian_wealth.db"),
		},
		Auth: AuthConfig{
			SecretKey:          getEnv("SECRET_KEY", "your-secret-key-change-in-production"),
			TokenExpiryMinutes: getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60),
			ResetExpiryMinutes: getEnvAsInt("RESET_TOKEN_EXPIRE_MINUTES", 30),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("ALLOWED_HOSTS", []string{"*"}),
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			MaxAge:         86400,
		},
		Email: EmailConfig{
			Enabled:   getEnvAsBool("EMAIL_ENABLED", false),
			Provider:  getEnv("EMAIL_PROVIDER", "console"),
			SMTPHost:  getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:  getEnvAsInt("SMTP_PORT", 587),
			Username:  getEnv("SMTP_USERNAME", ""),
			Password:  getEnv("SMTP_PASSWORD", ""),
			ResendKey: getEnv("RESEND_API_KEY", ""),
			FromEmail: getEnv("EMAIL_FROM", "noreply@meridianwealth.com"),
			FromName:  getEnv("EMAIL_FROM_NAME", "Meridian Wealth"),
		},
		SMS: SMSConfig{
			Enabled:    getEnvAsBool("SMS_ENABLED", false),
			Provider:   getEnv("SMS_PROVIDER", "console"),
			TwilioSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
			TwilioAuth: getEnv("TWILIO_AUTH_TOKEN", ""),
			TwilioFrom: getEnv("TWILIO_PHONE_NUMBER", ""),
		},
		Storage: StorageConfig{
			Root:          getEnv("STORAGE_ROOT", "./uploads"),
			PublicPath:    getEnv("STORAGE_PUBLIC_PATH", "/uploads"),
			MaxUploadSize: int64(getEnvAsInt("STORAGE_MAX_UPLOAD_MB", 10)) << 20,
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	globalConfig = config
	return config, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.App.Port == "" {
		return fmt.Errorf("PORT must be set")
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL must be set")
	}
	if cfg.Auth.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY must be set")
	}
	if cfg.Auth.TokenExpiryMinutes <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be greater than 0")
	}
	if cfg.Storage.Root == "" {
		return fmt.Errorf("STORAGE_ROOT must be set")
	}
	return nil
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		config, _ := Load()
		return config
	}
	return globalConfig
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}

// IsPostgres checks if the database URL is for PostgreSQL
func (c *DatabaseConfig) IsPostgres() bool {
	return strings.HasPrefix(c.URL, "postgres://") || strings.HasPrefix(c.URL, "postgresql://")
}

// GetPostgresDSN converts a postgres:// URL into the keyword DSN gorm's
// postgres driver expects. URLs already in keyword form pass through.
func (c *DatabaseConfig) GetPostgresDSN() string {
	raw := c.URL
	if strings.Contains(raw, " ") || !strings.Contains(raw, "://") {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	host := u.Hostname()
	if host == "" {
		host = "localhost"
	}
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	dbname := strings.TrimPrefix(u.Path, "/")
	if dbname == "" {
		dbname = "postgres"
	}
	sslmode := u.Query().Get("sslmode")
	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s dbname=%s sslmode=%s", host, port, dbname, sslmode)
	if u.User != nil {
		dsn += " user=" + u.User.Username()
		if password, ok := u.User.Password(); ok && password != "" {
			dsn += " password=" + password
		}
	}
	return dsn
}

// GetSQLitePath extracts the SQLite database path from the URL
func (c *DatabaseConfig) GetSQLitePath() string {
	if strings.HasPrefix(c.URL, "sqlite:///") {
		return strings.TrimPrefix(c.URL, "sqlite:///")
	}
	return c.URL
}
