package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Hass    HassConfig
	Lookup  LookupConfig
	List    ListConfig
	Scanner ScannerConfig
	History HistoryConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	Locale         string   `mapstructure:"locale"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// HassConfig holds the Home Assistant connection settings
type HassConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
}

// LookupConfig holds product lookup and cache configuration
type LookupConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	CacheEnabled bool          `mapstructure:"cache_enabled"`
	RatePerMin   int           `mapstructure:"rate_per_min"`
	RateBurst    int           `mapstructure:"rate_burst"`
}

// ListConfig holds shopping list behavior configuration
type ListConfig struct {
	EntityID      string `mapstructure:"entity_id"`
	BrandRequired bool   `mapstructure:"brand_required"`
	AutoAdd       bool   `mapstructure:"auto_add"`
	ShowCompleted bool   `mapstructure:"show_completed"`
}

// ScannerConfig holds barcode capture configuration
type ScannerConfig struct {
	CameraEnabled  bool          `mapstructure:"camera_enabled"`
	FrameInterval  time.Duration `mapstructure:"frame_interval"`
	DecodeInterval time.Duration `mapstructure:"decode_interval"`
	Formats        []string      `mapstructure:"formats"`
}

// HistoryConfig holds the local usage history settings
type HistoryConfig struct {
	Path           string `mapstructure:"path"`
	MaxSuggestions int    `mapstructure:"max_suggestions"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/scancard/")

	// Environment variable settings
	v.SetEnvPrefix("SCANCARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads variables from a .env file in the working directory.
// Existing environment variables are never overridden.
func loadEnvFile() error {
	file, err := os.Open(".env")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		os.Setenv(key, strings.TrimSpace(value))
	}
	return scanner.Err()
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.locale", "en")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Home Assistant defaults
	v.SetDefault("hass.base_url", "http://homeassistant.local:8123")
	v.SetDefault("hass.token", "")

	// Lookup defaults
	v.SetDefault("lookup.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("lookup.timeout", "10s")
	v.SetDefault("lookup.cache_ttl", "720h") // 30 days
	v.SetDefault("lookup.cache_enabled", true)
	v.SetDefault("lookup.rate_per_min", 100)
	v.SetDefault("lookup.rate_burst", 10)

	// List defaults
	v.SetDefault("list.entity_id", "todo.shopping_list")
	v.SetDefault("list.brand_required", true)
	v.SetDefault("list.auto_add", false)
	v.SetDefault("list.show_completed", true)

	// Scanner defaults
	v.SetDefault("scanner.camera_enabled", true)
	v.SetDefault("scanner.frame_interval", "33ms")
	v.SetDefault("scanner.decode_interval", "200ms")
	v.SetDefault("scanner.formats", []string{
		"ean_13", "ean_8", "upc_a", "upc_e", "code_128", "code_39",
	})

	// History defaults
	v.SetDefault("history.path", "scancard.db")
	v.SetDefault("history.max_suggestions", 8)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Hass.Token == "" {
		return fmt.Errorf("Home Assistant token is required (set SCANCARD_HASS_TOKEN)")
	}

	if !strings.HasPrefix(config.List.EntityID, "todo.") {
		return fmt.Errorf("list entity id must be a todo entity, got: %s", config.List.EntityID)
	}

	if config.Lookup.RatePerMin <= 0 || config.Lookup.RateBurst <= 0 {
		return fmt.Errorf("lookup rate limit values must be positive")
	}

	if config.History.MaxSuggestions <= 0 {
		return fmt.Errorf("history max_suggestions must be positive")
	}

	return nil
}
