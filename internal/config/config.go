package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Booking store backends
const (
	StoreStatic   = "static"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds all configuration for the navigator service
type Config struct {
	// HTTP
	Port           int      `yaml:"port" validate:"gt=0,lte=65535"`
	AllowedOrigins []string `yaml:"allowed_origins" validate:"dive,required"`
	StaticDir      string   `yaml:"static_dir"`

	// Station data; empty uses the built-in station
	StationFile string `yaml:"station_file"`

	// Bookings
	BookingStore string `yaml:"booking_store" validate:"oneof=static sqlite postgres"`
	DatabasePath string `yaml:"sqlite_database" validate:"required_if=BookingStore sqlite"`
	DatabaseURL  string `yaml:"database_url" validate:"required_if=BookingStore postgres"`

	// Simulation
	Speed         float64       `yaml:"speed" validate:"gt=0"`
	TickPeriod    time.Duration `yaml:"tick_period" validate:"gt=0"`
	Lang          string        `yaml:"lang" validate:"oneof=en-IN hi-IN"`
	PathCacheSize int           `yaml:"path_cache_size" validate:"gte=1"`

	// Live location
	LocationMaxWait time.Duration `yaml:"location_max_wait" validate:"gt=0"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Port:            8081,
		AllowedOrigins:  []string{"http://localhost:5173"},
		BookingStore:    StoreSQLite,
		DatabasePath:    "data/bookings.db",
		Speed:           2,
		TickPeriod:      50 * time.Millisecond,
		Lang:            "en-IN",
		PathCacheSize:   16,
		LocationMaxWait: 10 * time.Second,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// NAVIGATOR_CONFIG (if any), then environment variables, and validates it.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("NAVIGATOR_CONFIG"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnvInt("PORT", cfg.Port)
	cfg.AllowedOrigins = getEnvList("ALLOWED_ORIGINS", cfg.AllowedOrigins)
	cfg.StaticDir = getEnv("STATIC_DIR", cfg.StaticDir)
	cfg.StationFile = getEnv("STATION_FILE", cfg.StationFile)
	cfg.BookingStore = getEnv("BOOKING_STORE", cfg.BookingStore)
	cfg.DatabasePath = getEnv("SQLITE_DATABASE", cfg.DatabasePath)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.Speed = getEnvFloat("WALK_SPEED", cfg.Speed)
	cfg.TickPeriod = getEnvDuration("TICK_MS", time.Millisecond, cfg.TickPeriod)
	cfg.Lang = getEnv("LANG_TAG", cfg.Lang)
	cfg.PathCacheSize = getEnvInt("PATH_CACHE_SIZE", cfg.PathCacheSize)
	cfg.LocationMaxWait = getEnvDuration("LOCATION_MAX_WAIT", time.Second, cfg.LocationMaxWait)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field against its constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration reads an integer count of unit
func getEnvDuration(key string, unit, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return time.Duration(intValue) * unit
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
