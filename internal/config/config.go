package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Link shortener (optional; links are stored as-is when unset)
	ShortenerURL   string
	ShortenerKey   string
	ShortenerField string // JSON field holding the shortened URL, provider-specific

	// TMDB metadata lookup (optional; entries stay unenriched when unset)
	TMDBAPIKey string

	// Admins allowed to mutate the catalog (caller-supplied identity is
	// trusted as given)
	AdminIDs []int64

	// Backfill
	BackfillHours int // hours between metadata backfill runs (default: 6)

	// Server
	ServerPort string

	// Paths
	CatalogFile string // $CONFIG_DIR/catalog.db

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("SHORTENER_FIELD", "shortenedUrl")
	viper.SetDefault("BACKFILL_HOURS", 6)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "kinodex")
	} else {
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	adminIDs, err := parseAdminIDs(viper.GetString("ADMIN_IDS"))
	if err != nil {
		return nil, err
	}

	config := &Config{
		ShortenerURL:   viper.GetString("SHORTENER_URL"),
		ShortenerKey:   viper.GetString("SHORTENER_KEY"),
		ShortenerField: viper.GetString("SHORTENER_FIELD"),

		TMDBAPIKey: viper.GetString("TMDB_API_KEY"),

		AdminIDs: adminIDs,

		BackfillHours: viper.GetInt("BACKFILL_HOURS"),

		ServerPort: viper.GetString("SERVER_PORT"),

		CatalogFile: filepath.Join(configDir, "catalog.db"),

		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	// A shortener URL without its key (or the reverse) is a
	// misconfiguration, not a degradation case.
	if (config.ShortenerURL == "") != (config.ShortenerKey == "") {
		return nil, fmt.Errorf("SHORTENER_URL and SHORTENER_KEY must be set together")
	}

	return config, nil
}

// IsAdmin reports whether userID is in the configured admin list
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// parseAdminIDs parses a comma-separated list of numeric user IDs
func parseAdminIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin ID %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
