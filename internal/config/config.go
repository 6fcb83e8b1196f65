package config

import (
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	JWTSecret    string        `mapstructure:"JWT_HMAC_SECRET"`
	JWTTTL       time.Duration `mapstructure:"JWT_TTL"`
	StaticTokens string        `mapstructure:"STATIC_TOKENS"`

	// Wall-clock zone used to interpret schedules and appointment dates.
	Timezone              string `mapstructure:"APP_TIMEZONE"`
	DefaultServiceMinutes int    `mapstructure:"DEFAULT_SERVICE_MINUTES"`

	CORSOrigins      string `mapstructure:"CORS_ORIGINS"`
	PublicRatePerMin int    `mapstructure:"PUBLIC_RATE_PER_MIN"`
	// Proxies whose X-Forwarded-For is believed. Empty trusts none.
	TrustedProxies   string `mapstructure:"TRUSTED_PROXIES"`

	ResendAPIKey string `mapstructure:"RESEND_API_KEY"`
	EmailFrom    string `mapstructure:"EMAIL_FROM"`

	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `mapstructure:"CLOUDINARY_FOLDER"`

	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	RedisPassword     string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int           `mapstructure:"REDIS_DB"`
	DashboardCacheTTL time.Duration `mapstructure:"DASHBOARD_CACHE_TTL"`

	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`

	ReminderCron string `mapstructure:"REMINDER_CRON"`
}

// defaults doubles as the key list viper binds from the environment;
// Unmarshal only sees keys it already knows about.
var defaults = map[string]any{
	"PORT":                    "8080",
	"ENV":                     "development",
	"LOG_LEVEL":               "info",
	"DATABASE_URL":            "",
	"JWT_HMAC_SECRET":         "",
	"JWT_TTL":                 "12h",
	"STATIC_TOKENS":           "",
	"APP_TIMEZONE":            "America/Bogota",
	"DEFAULT_SERVICE_MINUTES": 30,
	"CORS_ORIGINS":            "*",
	"PUBLIC_RATE_PER_MIN":     120,
	"TRUSTED_PROXIES":         "",
	"RESEND_API_KEY":          "",
	"EMAIL_FROM":              "MiTurno <onboarding@resend.dev>",
	"CLOUDINARY_CLOUD_NAME":   "",
	"CLOUDINARY_API_KEY":      "",
	"CLOUDINARY_API_SECRET":   "",
	"CLOUDINARY_FOLDER":       "miturno/services",
	"REDIS_ADDR":              "",
	"REDIS_PASSWORD":          "",
	"REDIS_DB":                0,
	"DASHBOARD_CACHE_TTL":     "1m",
	"GOOGLE_CLIENT_ID":        "",
	"GOOGLE_CLIENT_SECRET":    "",
	"GOOGLE_REDIRECT_URL":     "",
	"REMINDER_CRON":           "0 18 * * *",
}

// Load reads an optional .env file, then the environment and an optional
// config.yaml, in that order of precedence (env wins).
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("no .env file found, using environment variables")
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required but not set")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_HMAC_SECRET is required but not set")
	}
	if c.DefaultServiceMinutes <= 0 {
		return fmt.Errorf("DEFAULT_SERVICE_MINUTES must be positive, got %d", c.DefaultServiceMinutes)
	}
	for _, p := range c.TrustedProxyList() {
		if net.ParseIP(p) == nil {
			if _, _, err := net.ParseCIDR(p); err != nil {
				return fmt.Errorf("invalid TRUSTED_PROXIES entry %q", p)
			}
		}
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location returns the configured business time zone. Load already
// validated it, so the error path only matters for hand-built configs.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) StaticTokenList() []string {
	return splitList(c.StaticTokens)
}

func (c *Config) TrustedProxyList() []string {
	return splitList(c.TrustedProxies)
}

func (c *Config) CORSOriginList() []string {
	return splitList(c.CORSOrigins)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
