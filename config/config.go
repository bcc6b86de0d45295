package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full runtime configuration. Keys mirror the environment
// variable names so a plain .env file works unchanged.
type Config struct {
	AppEnv         string `mapstructure:"APP_ENV" validate:"oneof=development production test"`
	Port           int    `mapstructure:"PORT" validate:"min=1,max=65535"`
	LogLevel       string `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFile        string `mapstructure:"LOG_FILE"`
	ServiceVersion string `mapstructure:"SERVICE_VERSION"`

	DatabaseURL       string        `mapstructure:"DATABASE_URL" validate:"required"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS" validate:"min=1"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS" validate:"min=0"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
	DBConnMaxIdleTime time.Duration `mapstructure:"DB_CONN_MAX_IDLE_TIME"`

	JWTSecret     string        `mapstructure:"JWT_SECRET" validate:"required,min=16"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL" validate:"min=1m"`
	ResetTokenTTL time.Duration `mapstructure:"RESET_TOKEN_TTL" validate:"min=5m,max=1h"`

	FrontendURL       string   `mapstructure:"FRONTEND_URL" validate:"required,url"`
	CORSOrigins       []string `mapstructure:"CORS_ORIGINS"`
	TrustedProxies    []string `mapstructure:"TRUSTED_PROXIES" validate:"dive,cidr"`
	UploadsDir        string   `mapstructure:"UPLOADS_DIR" validate:"required"`
	BodyLimit         string   `mapstructure:"BODY_LIMIT"`
	AllowRegistration bool     `mapstructure:"ALLOW_REGISTRATION"`

	RedisURL string `mapstructure:"REDIS_URL"`

	MailProvider   string        `mapstructure:"MAIL_PROVIDER" validate:"oneof=smtp resend ses"`
	MailFrom       string        `mapstructure:"MAIL_FROM" validate:"required,email"`
	MailTimeout    time.Duration `mapstructure:"MAIL_TIMEOUT" validate:"min=1s"`
	RecipientEmail string        `mapstructure:"RECIPIENT_EMAIL" validate:"required,email"`
	BrandName      string        `mapstructure:"BRAND_NAME"`
	SMTPHost       string        `mapstructure:"SMTP_HOST" validate:"required_if=MailProvider smtp"`
	SMTPPort       int           `mapstructure:"SMTP_PORT"`
	SMTPUsername   string        `mapstructure:"SMTP_USERNAME"`
	SMTPPassword   string        `mapstructure:"SMTP_PASSWORD"`
	SMTPSSL        bool          `mapstructure:"SMTP_SSL"`
	ResendAPIKey   string        `mapstructure:"RESEND_API_KEY" validate:"required_if=MailProvider resend"`
	AWSRegion      string        `mapstructure:"AWS_REGION" validate:"required_if=MailProvider ses"`

	LoginMaxAttempts   int           `mapstructure:"LOGIN_MAX_ATTEMPTS" validate:"min=1"`
	LoginBlockDuration time.Duration `mapstructure:"LOGIN_BLOCK_DURATION"`
	RateLimitRequests  int           `mapstructure:"RATE_LIMIT_REQUESTS" validate:"min=1"`
	RateLimitWindow    time.Duration `mapstructure:"RATE_LIMIT_WINDOW" validate:"min=1s"`
	RateLimitBlock     time.Duration `mapstructure:"RATE_LIMIT_BLOCK"`
}

var defaults = map[string]interface{}{
	"APP_ENV":         "development",
	"PORT":            5000,
	"LOG_LEVEL":       "info",
	"LOG_FILE":        "",
	"SERVICE_VERSION": "dev",

	"DATABASE_URL":          "",
	"DB_MAX_OPEN_CONNS":     25,
	"DB_MAX_IDLE_CONNS":     10,
	"DB_CONN_MAX_LIFETIME":  5 * time.Minute,
	"DB_CONN_MAX_IDLE_TIME": time.Minute,

	"JWT_SECRET":      "",
	"SESSION_TTL":     7 * 24 * time.Hour,
	"RESET_TOKEN_TTL": time.Hour,

	"FRONTEND_URL":       "http://localhost:3000",
	"CORS_ORIGINS":       "http://localhost:3000",
	"TRUSTED_PROXIES":    "",
	"UPLOADS_DIR":        "public/uploads",
	"BODY_LIMIT":         "60M",
	"ALLOW_REGISTRATION": true,

	"REDIS_URL": "",

	"MAIL_PROVIDER":   "smtp",
	"MAIL_FROM":       "",
	"MAIL_TIMEOUT":    15 * time.Second,
	"RECIPIENT_EMAIL": "",
	"BRAND_NAME":      "Tirzah",
	"SMTP_HOST":       "",
	"SMTP_PORT":       587,
	"SMTP_USERNAME":   "",
	"SMTP_PASSWORD":   "",
	"SMTP_SSL":        false,
	"RESEND_API_KEY":  "",
	"AWS_REGION":      "",

	"LOGIN_MAX_ATTEMPTS":   5,
	"LOGIN_BLOCK_DURATION": 15 * time.Minute,
	"RATE_LIMIT_REQUESTS":  20,
	"RATE_LIMIT_WINDOW":    time.Minute,
	"RATE_LIMIT_BLOCK":     5 * time.Minute,
}

// Load reads an optional dotenv file, overlays the process environment and
// validates the result. An empty envFile means ".env".
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.TrustedProxies = splitList(v.GetString("TRUSTED_PROXIES"))
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
