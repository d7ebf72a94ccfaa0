package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("SCANCARD_SERVER_PORT")
		os.Unsetenv("SCANCARD_SERVER_ENVIRONMENT")
		os.Unsetenv("SCANCARD_HASS_BASE_URL")
		os.Unsetenv("SCANCARD_HASS_TOKEN")
		os.Unsetenv("SCANCARD_LOOKUP_BASE_URL")
		os.Unsetenv("SCANCARD_LOOKUP_CACHE_TTL")
		os.Unsetenv("SCANCARD_LOOKUP_RATE_PER_MIN")
		os.Unsetenv("SCANCARD_LIST_ENTITY_ID")
		os.Unsetenv("SCANCARD_LIST_BRAND_REQUIRED")
		os.Unsetenv("SCANCARD_SCANNER_CAMERA_ENABLED")
		os.Unsetenv("SCANCARD_HISTORY_PATH")
		os.Unsetenv("SCANCARD_HISTORY_MAX_SUGGESTIONS")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		// Set required token
		os.Setenv("SCANCARD_HASS_TOKEN", "test-token")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Server.Locale != "en" {
			t.Errorf("Server.Locale = %s, want en", cfg.Server.Locale)
		}
		if cfg.Hass.BaseURL != "http://homeassistant.local:8123" {
			t.Errorf("Hass.BaseURL = %s, want http://homeassistant.local:8123", cfg.Hass.BaseURL)
		}
		if cfg.Lookup.BaseURL != "https://world.openfoodfacts.org" {
			t.Errorf("Lookup.BaseURL = %s, want https://world.openfoodfacts.org", cfg.Lookup.BaseURL)
		}
		if cfg.Lookup.CacheTTL != 720*time.Hour {
			t.Errorf("Lookup.CacheTTL = %v, want 720h", cfg.Lookup.CacheTTL)
		}
		if !cfg.Lookup.CacheEnabled {
			t.Error("Lookup.CacheEnabled = false, want true")
		}
		if cfg.List.EntityID != "todo.shopping_list" {
			t.Errorf("List.EntityID = %s, want todo.shopping_list", cfg.List.EntityID)
		}
		if !cfg.List.BrandRequired {
			t.Error("List.BrandRequired = false, want true")
		}
		if cfg.List.AutoAdd {
			t.Error("List.AutoAdd = true, want false")
		}
		if !cfg.Scanner.CameraEnabled {
			t.Error("Scanner.CameraEnabled = false, want true")
		}
		if cfg.Scanner.FrameInterval != 33*time.Millisecond {
			t.Errorf("Scanner.FrameInterval = %v, want 33ms", cfg.Scanner.FrameInterval)
		}
		if cfg.Scanner.DecodeInterval != 200*time.Millisecond {
			t.Errorf("Scanner.DecodeInterval = %v, want 200ms", cfg.Scanner.DecodeInterval)
		}
		if len(cfg.Scanner.Formats) != 6 {
			t.Errorf("Scanner.Formats = %v, want 6 entries", cfg.Scanner.Formats)
		}
		if cfg.History.Path != "scancard.db" {
			t.Errorf("History.Path = %s, want scancard.db", cfg.History.Path)
		}
		if cfg.History.MaxSuggestions != 8 {
			t.Errorf("History.MaxSuggestions = %d, want 8", cfg.History.MaxSuggestions)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("SCANCARD_SERVER_PORT", "9090")
		os.Setenv("SCANCARD_SERVER_ENVIRONMENT", "production")
		os.Setenv("SCANCARD_HASS_BASE_URL", "http://192.168.1.10:8123")
		os.Setenv("SCANCARD_HASS_TOKEN", "custom-token")
		os.Setenv("SCANCARD_LOOKUP_BASE_URL", "https://custom.api.com")
		os.Setenv("SCANCARD_LOOKUP_CACHE_TTL", "24h")
		os.Setenv("SCANCARD_LIST_ENTITY_ID", "todo.groceries")
		os.Setenv("SCANCARD_HISTORY_PATH", "/var/lib/scancard/history.db")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Hass.BaseURL != "http://192.168.1.10:8123" {
			t.Errorf("Hass.BaseURL = %s, want http://192.168.1.10:8123", cfg.Hass.BaseURL)
		}
		if cfg.Hass.Token != "custom-token" {
			t.Errorf("Hass.Token = %s, want custom-token", cfg.Hass.Token)
		}
		if cfg.Lookup.BaseURL != "https://custom.api.com" {
			t.Errorf("Lookup.BaseURL = %s, want https://custom.api.com", cfg.Lookup.BaseURL)
		}
		if cfg.Lookup.CacheTTL != 24*time.Hour {
			t.Errorf("Lookup.CacheTTL = %v, want 24h", cfg.Lookup.CacheTTL)
		}
		if cfg.List.EntityID != "todo.groceries" {
			t.Errorf("List.EntityID = %s, want todo.groceries", cfg.List.EntityID)
		}
		if cfg.History.Path != "/var/lib/scancard/history.db" {
			t.Errorf("History.Path = %s, want /var/lib/scancard/history.db", cfg.History.Path)
		}
	})

	t.Run("fails validation when token is missing", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing token")
		}
		if err != nil && err.Error() != "invalid configuration: Home Assistant token is required (set SCANCARD_HASS_TOKEN)" {
			t.Errorf("Load() error = %v, want 'Home Assistant token is required'", err)
		}
	})

	t.Run("fails validation for non-todo entity id", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("SCANCARD_HASS_TOKEN", "test-token")
		os.Setenv("SCANCARD_LIST_ENTITY_ID", "light.kitchen")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for non-todo entity")
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		// Save current directory
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		// Create temp directory
		tempDir := t.TempDir()
		os.Chdir(tempDir)

		err := loadEnvFile()
		if err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables from .env file", func(t *testing.T) {
		// Save current directory
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		// Create temp directory
		tempDir := t.TempDir()
		os.Chdir(tempDir)

		// Create .env file
		envContent := `
# Comment line
TEST_VAR_1=value1
TEST_VAR_2=value2

# Another comment
TEST_VAR_3=value3
`
		err := os.WriteFile(".env", []byte(envContent), 0644)
		if err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		// Clear any existing values
		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
		os.Unsetenv("TEST_VAR_3")

		err = loadEnvFile()
		if err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_VAR_1") != "value1" {
			t.Errorf("TEST_VAR_1 = %s, want value1", os.Getenv("TEST_VAR_1"))
		}
		if os.Getenv("TEST_VAR_2") != "value2" {
			t.Errorf("TEST_VAR_2 = %s, want value2", os.Getenv("TEST_VAR_2"))
		}
		if os.Getenv("TEST_VAR_3") != "value3" {
			t.Errorf("TEST_VAR_3 = %s, want value3", os.Getenv("TEST_VAR_3"))
		}

		// Cleanup
		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
		os.Unsetenv("TEST_VAR_3")
	})

	t.Run("skips empty lines and comments", func(t *testing.T) {
		// Save current directory
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		// Create temp directory
		tempDir := t.TempDir()
		os.Chdir(tempDir)

		// Create .env file with various formats
		envContent := `
# This is a comment
   # This is also a comment

TEST_SKIP_1=value1

TEST_SKIP_2=value2
# TEST_COMMENTED=should_not_load
`
		err := os.WriteFile(".env", []byte(envContent), 0644)
		if err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		os.Unsetenv("TEST_SKIP_1")
		os.Unsetenv("TEST_SKIP_2")
		os.Unsetenv("TEST_COMMENTED")

		err = loadEnvFile()
		if err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_SKIP_1") != "value1" {
			t.Errorf("TEST_SKIP_1 not loaded correctly")
		}
		if os.Getenv("TEST_SKIP_2") != "value2" {
			t.Errorf("TEST_SKIP_2 not loaded correctly")
		}
		if os.Getenv("TEST_COMMENTED") != "" {
			t.Errorf("TEST_COMMENTED should not be loaded from comment")
		}

		os.Unsetenv("TEST_SKIP_1")
		os.Unsetenv("TEST_SKIP_2")
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		// Save current directory
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		// Create temp directory
		tempDir := t.TempDir()
		os.Chdir(tempDir)

		// Set existing env var
		os.Setenv("TEST_OVERRIDE", "existing-value")

		// Create .env file that tries to override
		envContent := "TEST_OVERRIDE=new-value"
		err := os.WriteFile(".env", []byte(envContent), 0644)
		if err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		err = loadEnvFile()
		if err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		// Should still have original value
		if os.Getenv("TEST_OVERRIDE") != "existing-value" {
			t.Errorf("TEST_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("TEST_OVERRIDE"))
		}

		os.Unsetenv("TEST_OVERRIDE")
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Hass: HassConfig{
				BaseURL: "http://homeassistant.local:8123",
				Token:   "test-token",
			},
			Lookup: LookupConfig{
				RatePerMin: 100,
				RateBurst:  10,
			},
			List: ListConfig{
				EntityID: "todo.shopping_list",
			},
			History: HistoryConfig{
				MaxSuggestions: 8,
			},
		}
	}

	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(valid()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails when token is empty", func(t *testing.T) {
		cfg := valid()
		cfg.Hass.Token = ""

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty token")
		}
	})

	t.Run("fails for non-todo entity id", func(t *testing.T) {
		cfg := valid()
		cfg.List.EntityID = "sensor.kitchen"

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for non-todo entity")
		}
	})

	t.Run("fails for non-positive rate limit", func(t *testing.T) {
		cfg := valid()
		cfg.Lookup.RatePerMin = 0

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for zero rate limit")
		}
	})

	t.Run("fails for non-positive max suggestions", func(t *testing.T) {
		cfg := valid()
		cfg.History.MaxSuggestions = 0

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for zero max suggestions")
		}
	})
}
