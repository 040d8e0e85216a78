// Package config provides application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Comment posting identities.
const (
	IdentityBot    = "bot"    // post with the server-held bot credential
	IdentityCaller = "caller" // post with the caller's own credential
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Port     int
	LogLevel string

	// Bot identity: a static token, a GitHub App installation, or both (App wins).
	GitHubToken          string
	GitHubAppID          int64
	GitHubInstallationID int64
	GitHubPrivateKey     string // PEM file contents

	TrustedToken    string // accepted without a remote check; defaults to GitHubToken
	BotLogin        string // author login matched when allowRepeats=false and no header
	GitHubAPIURL    string
	CommentIdentity string

	// OpenTelemetry (optional)
	OTelEnabled bool // OTEL_ENABLED feature flag
}

// UsesApp reports whether the bot identity is a GitHub App installation.
func (c Config) UsesApp() bool {
	return c.GitHubAppID != 0
}

// Load reads configuration from environment variables, validates required
// fields, and applies defaults for Port (8080), LogLevel ("info") and
// CommentIdentity ("bot"). If ENV_FILE is set, that file is loaded first
// without overriding variables already present.
func Load() (Config, error) {
	if path := os.Getenv("ENV_FILE"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return Config{}, fmt.Errorf("loading ENV_FILE %q: %w", path, err)
		}
	}

	cfg := Config{
		Port:            8080,
		LogLevel:        "info",
		CommentIdentity: IdentityBot,
	}

	if err := loadCoreConfig(&cfg); err != nil {
		return Config{}, err
	}

	if err := loadIdentityConfig(&cfg); err != nil {
		return Config{}, err
	}

	loadOTelConfig(&cfg)

	return cfg, nil
}

func loadCoreConfig(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = p
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	cfg.GitHubAPIURL = os.Getenv("GITHUB_API_URL")
	cfg.BotLogin = os.Getenv("BOT_LOGIN")

	return nil
}

func loadIdentityConfig(cfg *Config) error {
	cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	cfg.TrustedToken = getEnvOrDefault("TRUSTED_TOKEN", cfg.GitHubToken)

	if v := os.Getenv("COMMENT_IDENTITY"); v != "" {
		cfg.CommentIdentity = strings.ToLower(v)
	}
	if cfg.CommentIdentity != IdentityBot && cfg.CommentIdentity != IdentityCaller {
		return fmt.Errorf("invalid COMMENT_IDENTITY %q: want %q or %q", cfg.CommentIdentity, IdentityBot, IdentityCaller)
	}

	if err := loadAppConfig(cfg); err != nil {
		return err
	}

	if cfg.CommentIdentity == IdentityBot && cfg.GitHubToken == "" && !cfg.UsesApp() {
		return errors.New("GITHUB_TOKEN or GITHUB_APP_ID is required when COMMENT_IDENTITY=bot")
	}
	return nil
}

// loadAppConfig reads the GitHub App settings. They are optional, but all
// three must be present once GITHUB_APP_ID is set.
func loadAppConfig(cfg *Config) error {
	if os.Getenv("GITHUB_APP_ID") == "" {
		return nil
	}

	var err error
	cfg.GitHubAppID, err = parseRequiredInt64("GITHUB_APP_ID")
	if err != nil {
		return err
	}

	cfg.GitHubInstallationID, err = parseRequiredInt64("GITHUB_INSTALLATION_ID")
	if err != nil {
		return err
	}

	cfg.GitHubPrivateKey = os.Getenv("GITHUB_PRIVATE_KEY")
	if cfg.GitHubPrivateKey == "" {
		return errors.New("GITHUB_PRIVATE_KEY is required")
	}

	return nil
}

func parseRequiredInt64(envKey string) (int64, error) {
	v := os.Getenv(envKey)
	if v == "" {
		return 0, fmt.Errorf("%s is required", envKey)
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, v, err)
	}
	return id, nil
}

func getEnvOrDefault(envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return defaultValue
}

func loadOTelConfig(cfg *Config) {
	cfg.OTelEnabled = os.Getenv("OTEL_ENABLED") == "true"
}
