package config

import (
	"os"
	"path/filepath"

	"nba-predictions-go/database"
	"nba-predictions-go/logging"
	"nba-predictions-go/services"
)

// ToDatabaseConfig converts Config to database.Config
func (c *Config) ToDatabaseConfig() database.Config {
	return database.Config{
		Driver:   c.Database.Driver,
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		Username: c.Database.Username,
		Password: c.Database.Password,
		Database: c.Database.Database,
		DSN:      c.Database.DSN,
		Timeout:  c.Database.Timeout,
	}
}

// ToLoggingConfig converts Config to logging.Config
func (c *Config) ToLoggingConfig() logging.Config {
	cfg := logging.Config{
		Level:       c.Logging.Level,
		Output:      os.Stdout,
		Prefix:      c.Logging.Prefix,
		EnableColor: c.Logging.EnableColor,
	}
	if c.ShouldLogToFile() {
		cfg.FilePath = filepath.Join(c.GetLogDir(), "nba-predictions.log")
	}
	return cfg
}

// ToAuthConfig converts Config to services.AuthConfig
func (c *Config) ToAuthConfig() services.AuthConfig {
	return services.AuthConfig{
		JWTSecret:           c.Auth.JWTSecret,
		TokenTTL:            c.Auth.TokenTTL,
		AllowedEmailDomains: c.Auth.AllowedEmailDomains,
	}
}

// ToEmailConfig converts Config to services.EmailConfig
func (c *Config) ToEmailConfig() services.EmailConfig {
	return services.EmailConfig{
		SMTPHost:     c.Email.SMTPHost,
		SMTPPort:     c.Email.SMTPPort,
		SMTPUsername: c.Email.SMTPUsername,
		SMTPPassword: c.Email.SMTPPassword,
		FromEmail:    c.Email.FromEmail,
		FromName:     c.Email.FromName,
		BaseURL:      c.Email.BaseURL,
	}
}

// ShouldLogToFile returns whether file logging is enabled
func (c *Config) ShouldLogToFile() bool {
	return c.Logging.EnableFile
}

// GetLogDir returns the log directory path
func (c *Config) GetLogDir() string {
	return c.Logging.LogDir
}
