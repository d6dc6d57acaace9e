package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

// Mail providers.
const (
	MailProviderNone     = "none"
	MailProviderSMTP     = "smtp"
	MailProviderSendGrid = "sendgrid"
)

// Config holds all configuration for the application.
type Config struct {
	Port    string `mapstructure:"PORT"`
	GinMode string `mapstructure:"GIN_MODE"`

	StoreBackend                     string `mapstructure:"STORE_BACKEND"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	FirebaseStorageBucket            string `mapstructure:"FIREBASE_STORAGE_BUCKET"`
	ClientURL                        string `mapstructure:"CLIENT_URL"`

	RedisAddress  string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	AMQPURL      string `mapstructure:"AMQP_URL"`
	AMQPExchange string `mapstructure:"AMQP_EXCHANGE"`

	MailProvider     string `mapstructure:"MAIL_PROVIDER"`
	MailFrom         string `mapstructure:"MAIL_FROM"`
	SMTPHost         string `mapstructure:"SMTP_HOST"`
	SMTPPort         int    `mapstructure:"SMTP_PORT"`
	SMTPUser         string `mapstructure:"SMTP_USER"`
	SMTPPass         string `mapstructure:"SMTP_PASS"`
	SendGridAPIKey   string `mapstructure:"SENDGRID_API_KEY"`
	PasswordResetURL string `mapstructure:"PASSWORD_RESET_URL"`

	ImageMaxDimension int   `mapstructure:"IMAGE_MAX_DIMENSION"`
	ImageJPEGQuality  int   `mapstructure:"IMAGE_JPEG_QUALITY"`
	MaxUploadBytes    int64 `mapstructure:"MAX_UPLOAD_BYTES"`

	Timezone string `mapstructure:"TIMEZONE"`
}

var keys = []string{
	"PORT", "GIN_MODE",
	"STORE_BACKEND", "FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS",
	"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64", "FIREBASE_STORAGE_BUCKET", "CLIENT_URL",
	"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB", "CACHE_TTL",
	"AMQP_URL", "AMQP_EXCHANGE",
	"MAIL_PROVIDER", "MAIL_FROM", "SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS",
	"SENDGRID_API_KEY", "PASSWORD_RESET_URL",
	"IMAGE_MAX_DIMENSION", "IMAGE_JPEG_QUALITY", "MAX_UPLOAD_BYTES",
	"TIMEZONE",
}

// Load reads configuration from the environment, an optional .env file (outside release
// mode) and an optional YAML file named by CONFIG_FILE. Environment variables win.
func Load() (*Config, error) {
	if os.Getenv("GIN_MODE") != "release" {
		// A missing .env is normal outside local development.
		_ = godotenv.Load()
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("STORE_BACKEND", BackendFirestore)
	v.SetDefault("CLIENT_URL", "http://localhost:5173")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("AMQP_EXCHANGE", "plants")
	v.SetDefault("MAIL_PROVIDER", MailProviderNone)
	v.SetDefault("MAIL_FROM", "no-reply@plantationdrive.local")
	v.SetDefault("SMTP_PORT", 2525)
	v.SetDefault("IMAGE_MAX_DIMENSION", 1600)
	v.SetDefault("IMAGE_JPEG_QUALITY", 85)
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("TIMEZONE", "Asia/Kolkata")

	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
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

// Validate checks the keys the selected backends need.
func (c *Config) Validate() error {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	switch c.StoreBackend {
	case BackendFirestore:
		if c.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required")
		}
		if c.FirebaseStorageBucket == "" {
			return errors.New("FIREBASE_STORAGE_BUCKET is required")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendFirestore, BackendMemory, c.StoreBackend)
	}

	c.MailProvider = strings.ToLower(strings.TrimSpace(c.MailProvider))
	switch c.MailProvider {
	case MailProviderNone, "":
		c.MailProvider = MailProviderNone
	case MailProviderSMTP:
		if c.SMTPHost == "" {
			return errors.New("SMTP_HOST is required when MAIL_PROVIDER is smtp")
		}
	case MailProviderSendGrid:
		if c.SendGridAPIKey == "" {
			return errors.New("SENDGRID_API_KEY is required when MAIL_PROVIDER is sendgrid")
		}
	default:
		return fmt.Errorf("unknown MAIL_PROVIDER %q", c.MailProvider)
	}

	if c.ImageMaxDimension <= 0 {
		return errors.New("IMAGE_MAX_DIMENSION must be positive")
	}
	if c.ImageJPEGQuality < 1 || c.ImageJPEGQuality > 100 {
		return errors.New("IMAGE_JPEG_QUALITY must be between 1 and 100")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}
