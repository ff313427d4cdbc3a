package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riyashastri4/nh-fuel-finder/internal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	defaultNominatimBaseURL = "https://nominatim.openstreetmap.org"
	defaultOverpassBaseURL  = "https://overpass-api.de"
	defaultIPLocateURL      = "https://ipapi.co/json/"
	defaultUserAgent        = "nh-fuel-finder/1.0 (fuel station locator)"
	defaultHTTPTimeout      = 10 * time.Second
)

type Config struct {
	Environment      string `validate:"required"`
	LogLevel         zerolog.Level
	HTTPTimeout      time.Duration `validate:"gt=0"`
	MaxRetries       int           `validate:"gte=0"`
	NominatimBaseURL string        `validate:"required,url"`
	OverpassBaseURL  string        `validate:"required,url"`
	IPLocateURL      string        `validate:"omitempty,url"`
	UserAgent        string        `validate:"required"`
	// Home is the fixed device position used when IP lookup is disabled.
	Home *models.Coordinates
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

func WithMaxRetries(retries int) Option {
	return func(c *Config) {
		c.MaxRetries = retries
	}
}

func WithNominatimBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.NominatimBaseURL = baseURL
	}
}

func WithOverpassBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.OverpassBaseURL = baseURL
	}
}

// WithIPLocateURL sets the IP geolocation endpoint; empty disables IP lookup.
func WithIPLocateURL(endpoint string) Option {
	return func(c *Config) {
		c.IPLocateURL = endpoint
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Config) {
		c.UserAgent = userAgent
	}
}

func WithHomeLocation(lat, lon float64) Option {
	return func(c *Config) {
		c.Home = &models.Coordinates{Lat: lat, Lon: lon}
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:      "production",
		LogLevel:         zerolog.InfoLevel,
		HTTPTimeout:      defaultHTTPTimeout,
		MaxRetries:       0,
		NominatimBaseURL: defaultNominatimBaseURL,
		OverpassBaseURL:  defaultOverpassBaseURL,
		IPLocateURL:      defaultIPLocateURL,
		UserAgent:        defaultUserAgent,
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// Validate checks the configuration before any client is built from it.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Home != nil {
		if err := c.Home.Validate(); err != nil {
			return fmt.Errorf("invalid home location: %w", err)
		}
	}
	return nil
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	// Setup console logger for development environments
	if c.Environment == "local" || c.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_MAX_RETRIES", 0)
	v.SetDefault("NOMINATIM_BASE_URL", defaultNominatimBaseURL)
	v.SetDefault("OVERPASS_BASE_URL", defaultOverpassBaseURL)
	v.SetDefault("IP_LOCATE_URL", defaultIPLocateURL)
	v.SetDefault("USER_AGENT", defaultUserAgent)

	opts := []Option{
		WithEnvironment(v.GetString("ENV")),
		WithLogLevel(v.GetString("LOG_LEVEL")),
		WithHTTPTimeout(getDurationOrDefault(v, "HTTP_TIMEOUT", defaultHTTPTimeout)),
		WithMaxRetries(v.GetInt("HTTP_MAX_RETRIES")),
		WithNominatimBaseURL(v.GetString("NOMINATIM_BASE_URL")),
		WithOverpassBaseURL(v.GetString("OVERPASS_BASE_URL")),
		WithIPLocateURL(v.GetString("IP_LOCATE_URL")),
		WithUserAgent(v.GetString("USER_AGENT")),
	}

	if v.IsSet("HOME_LAT") && v.IsSet("HOME_LON") {
		opts = append(opts, WithHomeLocation(v.GetFloat64("HOME_LAT"), v.GetFloat64("HOME_LON")))
	}

	return New(opts...)
}

func getDurationOrDefault(v *viper.Viper, key string, defaultValue time.Duration) time.Duration {
	if !v.IsSet(key) {
		return defaultValue
	}
	if duration := v.GetDuration(key); duration > 0 {
		return duration
	}
	log.Warn().Str("key", key).Msg("Invalid duration value in environment variable, using default")
	return defaultValue
}
