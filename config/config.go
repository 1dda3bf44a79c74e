package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"nba-predictions-go/logging"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Logging  LoggingConfig  `json:"logging"`
	Email    EmailConfig    `json:"email"`
	Auth     AuthConfig     `json:"auth"`
	App      AppConfig      `json:"app"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string `json:"port"`
	Host        string `json:"host"`
	UseTLS      bool   `json:"use_tls"`
	BehindProxy bool   `json:"behind_proxy"`
	CertFile    string `json:"cert_file"`
	KeyFile     string `json:"key_file"`
	Environment string `json:"environment"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string        `json:"driver"`
	Host     string        `json:"host"`
	Port     string        `json:"port"`
	Username string        `json:"username"`
	Password string        `json:"password"`
	Database string        `json:"database"`
	DSN      string        `json:"dsn"`
	Timeout  time.Duration `json:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `json:"level"`
	Prefix      string `json:"prefix"`
	EnableColor bool   `json:"enable_color"`
	LogDir      string `json:"log_dir"`
	EnableFile  bool   `json:"enable_file"`
}

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string `json:"smtp_host"`
	SMTPPort     string `json:"smtp_port"`
	SMTPUsername string `json:"smtp_username"`
	SMTPPassword string `json:"smtp_password"`
	FromEmail    string `json:"from_email"`
	FromName     string `json:"from_name"`
	BaseURL      string `json:"base_url"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret           string        `json:"jwt_secret"`
	TokenTTL            time.Duration `json:"token_ttl"`
	AllowedEmailDomains []string      `json:"allowed_email_domains"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	IsDevelopment        bool          `json:"is_development"`
	TeamCatalogFile      string        `json:"team_catalog_file"`
	AvailabilityDebounce time.Duration `json:"availability_debounce"`
	SSEHeartbeat         time.Duration `json:"sse_heartbeat"`
	SessionIdleTimeout   time.Duration `json:"session_idle_timeout"`
	SeedDemoData         bool          `json:"seed_demo_data"`
	SeedPerUser          int           `json:"seed_per_user"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// a missing .env is normal outside development
		logging.Debugf("Could not load .env file: %v", err)
	}

	config := FromEnv()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// FromEnv builds a Config from the process environment without validating it
func FromEnv() *Config {
	environment := getEnv("ENVIRONMENT", "development")
	isDevelopment := strings.ToLower(environment) == "development"

	serverPort := getEnv("SERVER_PORT", "8080")
	if isDevelopment {
		if develPort := getEnv("DEVEL_SERVER_PORT", ""); develPort != "" {
			serverPort = develPort
		}
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", "memory"))

	return &Config{
		Server: ServerConfig{
			Port:        serverPort,
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			UseTLS:      getBoolEnv("USE_TLS", false),
			BehindProxy: getBoolEnv("BEHIND_PROXY", false),
			CertFile:    getEnv("TLS_CERT_FILE", "server.crt"),
			KeyFile:     getEnv("TLS_KEY_FILE", "server.key"),
			Environment: environment,
		},
		Database: DatabaseConfig{
			Driver:   driver,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", defaultDBPort(driver)),
			Username: getEnv("DB_USERNAME", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "nba_predictions"),
			DSN:      getEnv("DB_DSN", ""),
			Timeout:  getDurationEnv("DB_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Prefix:      getEnv("LOG_PREFIX", "nba-predictions"),
			EnableColor: getBoolEnv("LOG_COLOR", true),
			LogDir:      getEnv("LOG_DIR", "./logs"),
			EnableFile:  getBoolEnv("LOG_FILE", false),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromEmail:    getEnv("FROM_EMAIL", ""),
			FromName:     getEnv("FROM_NAME", "NBA Predictions"),
			BaseURL:      getEnv("BASE_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret:           getEnv("JWT_SECRET", defaultJWTSecret),
			TokenTTL:            getDurationEnv("TOKEN_TTL", 7*24*time.Hour),
			AllowedEmailDomains: getListEnv("ALLOWED_EMAIL_DOMAINS", []string{"gmail.com", "yahoo.com"}),
		},
		App: AppConfig{
			IsDevelopment:        isDevelopment,
			TeamCatalogFile:      getEnv("TEAM_CATALOG_FILE", ""),
			AvailabilityDebounce: getDurationEnv("AVAILABILITY_DEBOUNCE", 500*time.Millisecond),
			SSEHeartbeat:         getDurationEnv("SSE_HEARTBEAT", 30*time.Second),
			SessionIdleTimeout:   getDurationEnv("SESSION_IDLE_TIMEOUT", 30*time.Minute),
			SeedDemoData:         getBoolEnv("SEED_DEMO_DATA", isDevelopment),
			SeedPerUser:          getIntEnv("SEED_PREDICTIONS_PER_USER", 12),
		},
	}
}

func defaultDBPort(driver string) string {
	if driver == "postgres" {
		return "5432"
	}
	return "27017"
}

// Validate validates the configuration for required fields and sensible values
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Server.UseTLS && !c.Server.BehindProxy {
		if c.Server.CertFile == "" || c.Server.KeyFile == "" {
			return fmt.Errorf("TLS certificate and key files are required when USE_TLS=true")
		}
		if _, err := os.Stat(c.Server.CertFile); os.IsNotExist(err) {
			return fmt.Errorf("TLS certificate file not found: %s", c.Server.CertFile)
		}
		if _, err := os.Stat(c.Server.KeyFile); os.IsNotExist(err) {
			return fmt.Errorf("TLS key file not found: %s", c.Server.KeyFile)
		}
	}

	switch c.Database.Driver {
	case "memory":
	case "sqlite":
		if c.Database.DSN == "" {
			return fmt.Errorf("DB_DSN is required for the sqlite driver")
		}
	case "mongo", "postgres":
		if c.Database.DSN == "" && (c.Database.Host == "" || c.Database.Port == "" || c.Database.Database == "") {
			return fmt.Errorf("database host, port and name are required for the %s driver", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q (want memory, mongo, postgres or sqlite)", c.Database.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.Auth.JWTSecret == defaultJWTSecret && !c.App.IsDevelopment {
		return fmt.Errorf("JWT secret must be changed in production")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL)
	}

	if c.App.AvailabilityDebounce < 0 {
		return fmt.Errorf("AVAILABILITY_DEBOUNCE cannot be negative")
	}
	if c.App.SessionIdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.App.SeedPerUser < 0 {
		return fmt.Errorf("SEED_PREDICTIONS_PER_USER cannot be negative")
	}
	if c.App.TeamCatalogFile != "" {
		if _, err := os.Stat(c.App.TeamCatalogFile); err != nil {
			return fmt.Errorf("team catalog file: %w", err)
		}
	}

	return nil
}

// IsEmailConfigured returns true if email service is configured
func (c *Config) IsEmailConfigured() bool {
	return c.Email.SMTPHost != "" &&
		c.Email.SMTPPort != "" &&
		c.Email.FromEmail != ""
}

// SecureCookies is false behind a TLS-terminating proxy, which talks plain HTTP to us
func (c *Config) SecureCookies() bool {
	return c.Server.UseTLS && !c.Server.BehindProxy
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

// LogConfiguration logs the current configuration (without sensitive data)
func (c *Config) LogConfiguration() {
	logging.Info("=== Application Configuration ===")
	logging.Infof("Server: %s (TLS: %t, Behind Proxy: %t, Environment: %s)",
		c.GetServerAddress(), c.Server.UseTLS, c.Server.BehindProxy, c.Server.Environment)
	if c.Database.DSN != "" {
		logging.Infof("Database: driver=%s (DSN set)", c.Database.Driver)
	} else {
		logging.Infof("Database: driver=%s %s:%s/%s (Username: %s, Auth: %t)",
			c.Database.Driver, c.Database.Host, c.Database.Port, c.Database.Database,
			c.Database.Username, c.Database.Password != "")
	}
	logging.Infof("Logging: Level=%s, Prefix=%s, Color=%t",
		c.Logging.Level, c.Logging.Prefix, c.Logging.EnableColor)
	logging.Infof("Email: Configured=%t, Host=%s, From=%s",
		c.IsEmailConfigured(), c.Email.SMTPHost, c.Email.FromEmail)
	logging.Infof("Auth: TokenTTL=%s, Domains=%s",
		c.Auth.TokenTTL, strings.Join(c.Auth.AllowedEmailDomains, ","))
	logging.Infof("App: Development=%t, Catalog=%q, Debounce=%s, Heartbeat=%s, SessionIdle=%s, Seed=%t",
		c.App.IsDevelopment, c.App.TeamCatalogFile, c.App.AvailabilityDebounce,
		c.App.SSEHeartbeat, c.App.SessionIdleTimeout, c.App.SeedDemoData)
	logging.Info("================================")
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getListEnv splits a comma separated value; an explicitly empty value is not distinguishable from unset
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
