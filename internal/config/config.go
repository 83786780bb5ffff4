package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	defaultSessionTTLHours   = 8
	defaultLinkTTLHours      = 24
	defaultInviteTTLDays     = 14
	defaultCleanupCron       = "0 * * * *"
	defaultMinimumPeriods    = 2
	defaultShutdownTimeout   = 30
	defaultInvitesPerHour    = 30
	defaultLoginMaxAttempts  = 5
	defaultLoginLockoutMins  = 5
	maxPeriodsPerMatchPlayer = 4
)

type DatabaseConfig struct {
	Driver    string `yaml:"driver"`
	Filename  string `yaml:"filename"`
	URL       string `yaml:"url,omitempty"`
	AuthToken string `yaml:"-"` // Loaded from environment
}

// Secrets are never read from the YAML file.
type Secrets struct {
	AppSecretKey       string `envconfig:"APP_SECRET_KEY"`
	DatabaseAuthToken  string `envconfig:"DATABASE_AUTH_TOKEN"`
	ClerkSecretKey     string `envconfig:"CLERK_SECRET_KEY"`
	SESAccessKeyID     string `envconfig:"SES_ACCESS_KEY_ID"`
	SESSecretAccessKey string `envconfig:"SES_SECRET_ACCESS_KEY"`
	SlackWebhookURL    string `envconfig:"SLACK_WEBHOOK_URL"`
}

type Config struct {
	App struct {
		Name                   string `yaml:"name"`
		Environment            string `yaml:"environment"`
		Port                   int    `yaml:"port"`
		BaseURL                string `yaml:"base_url"`
		ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
		TrustProxy             bool   `yaml:"trust_proxy"`
		SecretKey              string `yaml:"-"` // Loaded from environment
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`

	Auth struct {
		CognitoPoolID    string `yaml:"cognito_pool_id"`
		CognitoClientID  string `yaml:"cognito_client_id"`
		SessionTTLHours  int    `yaml:"session_ttl_hours"`
		LoginMaxAttempts int    `yaml:"login_max_attempts"`
		LoginLockoutMins int    `yaml:"login_lockout_minutes"`
		ClerkSecretKey   string `yaml:"-"`
	} `yaml:"auth"`

	Email struct {
		Region          string `yaml:"region"`
		Sender          string `yaml:"sender"`
		AccessKeyID     string `yaml:"-"`
		SecretAccessKey string `yaml:"-"`
	} `yaml:"email"`

	Invites struct {
		DefaultRedirect string `yaml:"default_redirect"`
		LinkTTLHours    int    `yaml:"link_ttl_hours"`
		InviteTTLDays   int    `yaml:"invite_ttl_days"`
		CleanupCron     string `yaml:"cleanup_cron"`
		MaxPerHour      int    `yaml:"max_per_hour"`
	} `yaml:"invites"`

	Matches struct {
		// nil means unset; 0 disables the check.
		MinimumPeriods *int `yaml:"minimum_periods"`
	} `yaml:"matches"`

	Slack struct {
		WebhookURL string `yaml:"-"`
	} `yaml:"-"`

	Features struct {
		EnableMetrics bool `yaml:"enable_metrics"`
		EnableDebug   bool `yaml:"enable_debug"`
	} `yaml:"features"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	var secrets Secrets
	if err := envconfig.Process("", &secrets); err != nil {
		return nil, fmt.Errorf("error loading secrets: %w", err)
	}
	cfg.ApplySecrets(secrets)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML and fills defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) ApplySecrets(s Secrets) {
	c.App.SecretKey = s.AppSecretKey
	c.Database.AuthToken = s.DatabaseAuthToken
	c.Auth.ClerkSecretKey = s.ClerkSecretKey
	c.Email.AccessKeyID = s.SESAccessKeyID
	c.Email.SecretAccessKey = s.SESSecretAccessKey
	c.Slack.WebhookURL = s.SlackWebhookURL
}

func (c *Config) applyDefaults() {
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.App.ShutdownTimeoutSeconds <= 0 {
		c.App.ShutdownTimeoutSeconds = defaultShutdownTimeout
	}
	if c.Auth.SessionTTLHours <= 0 {
		c.Auth.SessionTTLHours = defaultSessionTTLHours
	}
	if c.Auth.LoginMaxAttempts <= 0 {
		c.Auth.LoginMaxAttempts = defaultLoginMaxAttempts
	}
	if c.Auth.LoginLockoutMins <= 0 {
		c.Auth.LoginLockoutMins = defaultLoginLockoutMins
	}
	if c.Invites.LinkTTLHours <= 0 {
		c.Invites.LinkTTLHours = defaultLinkTTLHours
	}
	if c.Invites.InviteTTLDays <= 0 {
		c.Invites.InviteTTLDays = defaultInviteTTLDays
	}
	if c.Invites.CleanupCron == "" {
		c.Invites.CleanupCron = defaultCleanupCron
	}
	if c.Invites.MaxPerHour <= 0 {
		c.Invites.MaxPerHour = defaultInvitesPerHour
	}
	if c.Matches.MinimumPeriods == nil {
		minimum := defaultMinimumPeriods
		c.Matches.MinimumPeriods = &minimum
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	case "turso":
		if c.Database.URL == "" {
			return fmt.Errorf("database URL is required for turso")
		}
		if c.Database.AuthToken == "" {
			return fmt.Errorf("database auth token is required for turso")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if minimum := c.MinimumPeriods(); minimum < 0 || minimum > maxPeriodsPerMatchPlayer {
		return fmt.Errorf("matches.minimum_periods must be between 0 and %d", maxPeriodsPerMatchPlayer)
	}

	if _, err := cron.ParseStandard(c.Invites.CleanupCron); err != nil {
		return fmt.Errorf("invites.cleanup_cron is invalid: %w", err)
	}

	if (c.Auth.CognitoPoolID == "") != (c.Auth.CognitoClientID == "") {
		return fmt.Errorf("cognito pool id and client id must be set together")
	}

	if c.Email.Sender != "" && c.Email.Region == "" {
		return fmt.Errorf("email region is required when a sender is configured")
	}

	return nil
}

func (c *Config) MinimumPeriods() int {
	if c.Matches.MinimumPeriods == nil {
		return defaultMinimumPeriods
	}
	return *c.Matches.MinimumPeriods
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Auth.SessionTTLHours) * time.Hour
}

func (c *Config) LinkTTL() time.Duration {
	return time.Duration(c.Invites.LinkTTLHours) * time.Hour
}

func (c *Config) InviteTTL() time.Duration {
	return time.Duration(c.Invites.InviteTTLDays) * 24 * time.Hour
}

func (c *Config) LoginLockout() time.Duration {
	return time.Duration(c.Auth.LoginLockoutMins) * time.Minute
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.App.ShutdownTimeoutSeconds) * time.Second
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
