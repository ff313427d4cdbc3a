package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// CacheConfig holds the in-memory cache and device-location reuse settings
type CacheConfig struct {
	// Geocode LRU settings
	GeocodeLRUSize       int
	GeocodeLRUTTLMinutes int
	EnableGeocodeCache   bool

	// Device location settings
	LocateTimeout time.Duration
	LocateMaxAge  time.Duration
}

const (
	defaultGeocodeLRUSize       = 256
	defaultGeocodeLRUTTLMinutes = 60
	defaultLocateTimeout        = 10 * time.Second
	defaultLocateMaxAge         = 10 * time.Minute
)

// GetCacheConfig returns the cache configuration from environment variables or defaults
func GetCacheConfig() *CacheConfig {
	config := &CacheConfig{
		GeocodeLRUSize:       getEnvInt("CACHE_GEOCODE_LRU_SIZE", defaultGeocodeLRUSize),
		GeocodeLRUTTLMinutes: getEnvInt("CACHE_GEOCODE_TTL_MINUTES", defaultGeocodeLRUTTLMinutes),
		EnableGeocodeCache:   getEnvBool("CACHE_ENABLE_GEOCODE", true),
		LocateTimeout:        getEnvDuration("LOCATE_TIMEOUT", defaultLocateTimeout),
		LocateMaxAge:         getEnvDuration("LOCATE_MAX_AGE", defaultLocateMaxAge),
	}

	log.Debug().
		Int("GeocodeLRUSize", config.GeocodeLRUSize).
		Int("GeocodeLRUTTLMinutes", config.GeocodeLRUTTLMinutes).
		Bool("EnableGeocodeCache", config.EnableGeocodeCache).
		Dur("LocateTimeout", config.LocateTimeout).
		Dur("LocateMaxAge", config.LocateMaxAge).
		Msg("Cache configuration loaded")

	return config
}

func (c *CacheConfig) GetGeocodeLRUTTL() time.Duration {
	return time.Duration(c.GeocodeLRUTTLMinutes) * time.Minute
}

// Helper functions to get environment variables with defaults
func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			return d
		}
		log.Warn().Str("key", key).Msg("Invalid duration value in environment variable, using default")
	}
	return defaultVal
}
