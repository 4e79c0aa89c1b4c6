package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported identity/document backends.
const (
	BackendFirebase = "firebase"
	BackendMemory   = "memory"
)

// Config holds all configuration for the application.
type Config struct {
	Port     string `mapstructure:"PORT"`
	GinMode  string `mapstructure:"GIN_MODE"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// LogFormat is "json" for production output, anything else for the development console encoder.
	LogFormat   string `mapstructure:"LOG_FORMAT"`
	StaticRoot  string `mapstructure:"STATIC_ROOT"`
	TemplateDir string `mapstructure:"TEMPLATE_DIR"`
	OpenBrowser bool   `mapstructure:"OPEN_BROWSER"`
	ClientURL   string `mapstructure:"CLIENT_URL"`

	AuthBackend                      string `mapstructure:"AUTH_BACKEND"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseWebAPIKey                string `mapstructure:"FIREBASE_WEB_API_KEY"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	// GoogleClientID is the OAuth client of the Google sign-in button. Empty hides the button.
	GoogleClientID string `mapstructure:"GOOGLE_CLIENT_ID"`
	// IdentityRateLimit caps calls per second to the Identity Toolkit REST API.
	IdentityRateLimit float64 `mapstructure:"IDENTITY_RATE_LIMIT"`

	SessionKey string `mapstructure:"SESSION_KEY"` // Base64 encoded, 32 bytes

	TickInterval    time.Duration `mapstructure:"TICK_INTERVAL"`
	RedirectDelay   time.Duration `mapstructure:"REDIRECT_DELAY"`
	ProfileCacheTTL time.Duration `mapstructure:"PROFILE_CACHE_TTL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	RabbitMQURL   string `mapstructure:"RABBITMQ_URL"`
	RabbitMQQueue string `mapstructure:"RABBITMQ_QUEUE"`

	SMTPHost string `mapstructure:"SMTP_HOST"`
	SMTPPort string `mapstructure:"SMTP_PORT"`
	SMTPUser string `mapstructure:"SMTP_USER"`
	SMTPPass string `mapstructure:"SMTP_PASS"`
	MailFrom string `mapstructure:"MAIL_FROM"`
}

var envKeys = []string{
	"PORT", "GIN_MODE", "LOG_LEVEL", "LOG_FORMAT", "STATIC_ROOT", "TEMPLATE_DIR", "OPEN_BROWSER", "CLIENT_URL",
	"AUTH_BACKEND", "FIREBASE_PROJECT_ID", "FIREBASE_WEB_API_KEY", "GOOGLE_APPLICATION_CREDENTIALS",
	"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64", "GOOGLE_CLIENT_ID", "IDENTITY_RATE_LIMIT", "SESSION_KEY",
	"TICK_INTERVAL", "REDIRECT_DELAY", "PROFILE_CACHE_TTL",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "RABBITMQ_URL", "RABBITMQ_QUEUE",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS", "MAIL_FROM",
}

// LoadConfig loads configuration from environment variables using Viper.
// If PATH_CONFIG points at a YAML file, its values are read first and the environment overrides them.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	v.SetDefault("PORT", "3000")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("STATIC_ROOT", "web/public")
	v.SetDefault("TEMPLATE_DIR", "web/templates")
	v.SetDefault("OPEN_BROWSER", true)
	v.SetDefault("AUTH_BACKEND", BackendFirebase)
	v.SetDefault("IDENTITY_RATE_LIMIT", 10)
	v.SetDefault("TICK_INTERVAL", "5s")
	v.SetDefault("REDIRECT_DELAY", "1500ms")
	v.SetDefault("PROFILE_CACHE_TTL", "5m")
	v.SetDefault("RABBITMQ_QUEUE", "trademind.events")
	v.SetDefault("SMTP_HOST", "smtp.mailtrap.io")
	v.SetDefault("SMTP_PORT", "2525")
	v.SetDefault("MAIL_FROM", "no-reply@trademind.local")

	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	if path := os.Getenv("PATH_CONFIG"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.New("failed to read config file " + path + ": " + err.Error())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields required by the selected backend.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.TickInterval <= 0 {
		return errors.New("TICK_INTERVAL must be positive")
	}

	switch strings.ToLower(c.AuthBackend) {
	case BackendMemory:
		return nil
	case BackendFirebase:
		if err := c.validateFirebase(); err != nil {
			return fmt.Errorf("%w (set AUTH_BACKEND=memory to run without Firebase)", err)
		}
		return nil
	default:
		return errors.New("AUTH_BACKEND must be either 'firebase' or 'memory'")
	}
}

func (c *Config) validateFirebase() error {
	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	if c.FirebaseWebAPIKey == "" {
		return errors.New("FIREBASE_WEB_API_KEY is required")
	}
	if c.GoogleApplicationCredentials == "" && c.FirebaseServiceAccountJSONBase64 == "" {
		return errors.New("either GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is required")
	}
	return nil
}

// MailerConfigured reports whether SMTP credentials were supplied.
func (c *Config) MailerConfigured() bool {
	return c.SMTPUser != "" && c.SMTPPass != ""
}
