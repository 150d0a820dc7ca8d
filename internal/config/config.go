package config

import (
	"errors"
	"fmt"
	"os"

	"granbokning/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App           AppConfig           `yaml:"app"`
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Admin         AdminConfig         `yaml:"admin"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Payment       PaymentConfig       `yaml:"payment"`
	PickupDates   []models.PickupDate `yaml:"pickup_dates"`
	Monitoring    MonitoringConfig    `yaml:"monitoring"`
	Logging       LoggingConfig       `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port      int             `yaml:"port"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Submit    SubmitConfig    `yaml:"submit"`
}

// RateLimitConfig throttles admin requests per session token.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// SubmitConfig throttles public booking submissions per client address.
type SubmitConfig struct {
	Limit         int `yaml:"limit"`
	WindowSeconds int `yaml:"window_seconds"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type AdminConfig struct {
	Password        string `yaml:"password"`
	SessionTTLHours int    `yaml:"session_ttl_hours"`
}

type NotificationsConfig struct {
	Enabled      bool   `yaml:"enabled"`
	ResendAPIKey string `yaml:"resend_api_key"`
	FromEmail    string `yaml:"from_email"`
	Subject      string `yaml:"subject"`
}

// PaymentConfig holds the static payment-instruction text embedded in the
// confirmation email. Payment itself happens offline via Swish.
type PaymentConfig struct {
	Payee       string `yaml:"payee"`
	SwishNumber string `yaml:"swish_number"`
	SwishHandle string `yaml:"swish_handle"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; the environment may already be populated.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Expand environment variables in the YAML before parsing.
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Admin.Password == "" || c.Admin.Password == "CHANGE_ME" {
		return errors.New("admin password is required")
	}

	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Notifications.Enabled {
		if c.Notifications.ResendAPIKey == "" {
			return errors.New("notifications enabled but resend_api_key is not set")
		}
		if c.Notifications.FromEmail == "" {
			return errors.New("notifications enabled but from_email is not set")
		}
	}

	return ValidatePickupDates(c.PickupDates)
}

func ValidatePickupDates(dates []models.PickupDate) error {
	seen := make(map[string]bool)
	for _, d := range dates {
		if d.Value == "" {
			return fmt.Errorf("pickup date '%s' has empty value", d.Label)
		}
		if seen[d.Value] {
			return fmt.Errorf("duplicate pickup date found: %s", d.Value)
		}
		seen[d.Value] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Admin.SessionTTLHours == 0 {
		c.Admin.SessionTTLHours = models.DefaultSessionTTLHours
	}
	if c.Server.Submit.Limit == 0 {
		c.Server.Submit.Limit = models.DefaultSubmitLimit
	}
	if c.Server.Submit.WindowSeconds == 0 {
		c.Server.Submit.WindowSeconds = models.DefaultSubmitWindowSeconds
	}
	if c.Notifications.Subject == "" {
		c.Notifications.Subject = "Bekräftelse på din bokning - Granupphämtning i Trollhättan"
	}
}
