package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/dshills/gatekeeper/internal/review"
)

// Config represents the gatekeeper configuration.
type Config struct {
	Server ServerConfig `json:"server"`
	GitHub GitHubConfig `json:"github"`
	Review ReviewConfig `json:"review"`
}

// ServerConfig controls the webhook server.
type ServerConfig struct {
	Addr          string `json:"addr"`
	WebhookSecret string `json:"webhookSecret,omitempty"`
}

// GitHubConfig holds GitHub App credentials and API settings.
type GitHubConfig struct {
	AppID          string `json:"appId,omitempty"`
	PrivateKeyPath string `json:"privateKeyPath,omitempty"`
	APIURL         string `json:"apiUrl"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// ReviewConfig bounds the review pipeline and the CLI output.
type ReviewConfig struct {
	MaxLineLength     int    `json:"maxLineLength"`
	MaxInlineComments int    `json:"maxInlineComments"`
	MaxTableRows      int    `json:"maxTableRows"`
	RulesFile         string `json:"rulesFile,omitempty"`
	Format            string `json:"format"`
	FailOn            string `json:"failOn"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8000",
		},
		GitHub: GitHubConfig{
			APIURL:         "https://api.github.com",
			TimeoutSeconds: 20,
		},
		Review: ReviewConfig{
			MaxLineLength:     120,
			MaxInlineComments: 50,
			MaxTableRows:      40,
			Format:            "text",
			FailOn:            "none",
		},
	}
}

// Validate checks the review bounds the pipeline requires. An invalid
// value is fatal to the whole run, surfaced before any parsing begins.
func (c Config) Validate() error {
	return c.Pipeline().Validate()
}

// Pipeline converts the review settings into the pipeline configuration.
func (c Config) Pipeline() review.PipelineConfig {
	return review.PipelineConfig{
		MaxLineLength:     c.Review.MaxLineLength,
		MaxInlineComments: c.Review.MaxInlineComments,
		MaxTableRows:      c.Review.MaxTableRows,
	}
}

// ConfigDir returns the platform-appropriate config directory for gatekeeper.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gatekeeper"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "gatekeeper"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "gatekeeper"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "gatekeeper"), nil
	default:
		return filepath.Join(home, ".config", "gatekeeper"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil error if file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Server.Addr != "" {
		dst.Server.Addr = src.Server.Addr
	}
	if src.Server.WebhookSecret != "" {
		dst.Server.WebhookSecret = src.Server.WebhookSecret
	}
	if src.GitHub.AppID != "" {
		dst.GitHub.AppID = src.GitHub.AppID
	}
	if src.GitHub.PrivateKeyPath != "" {
		dst.GitHub.PrivateKeyPath = src.GitHub.PrivateKeyPath
	}
	if src.GitHub.APIURL != "" {
		dst.GitHub.APIURL = src.GitHub.APIURL
	}
	if src.GitHub.TimeoutSeconds > 0 {
		dst.GitHub.TimeoutSeconds = src.GitHub.TimeoutSeconds
	}
	if src.Review.MaxLineLength > 0 {
		dst.Review.MaxLineLength = src.Review.MaxLineLength
	}
	if src.Review.MaxInlineComments > 0 {
		dst.Review.MaxInlineComments = src.Review.MaxInlineComments
	}
	if src.Review.MaxTableRows > 0 {
		dst.Review.MaxTableRows = src.Review.MaxTableRows
	}
	if src.Review.RulesFile != "" {
		dst.Review.RulesFile = src.Review.RulesFile
	}
	if src.Review.Format != "" {
		dst.Review.Format = src.Review.Format
	}
	if src.Review.FailOn != "" {
		dst.Review.FailOn = src.Review.FailOn
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("GATEKEEPER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("GITHUB_WEBHOOK_SECRET"); v != "" {
		cfg.Server.WebhookSecret = v
	}
	if v := os.Getenv("GITHUB_APP_ID"); v != "" {
		cfg.GitHub.AppID = v
	}
	if v := os.Getenv("GITHUB_APP_PRIVATE_KEY_PATH"); v != "" {
		cfg.GitHub.PrivateKeyPath = v
	}
	if v := os.Getenv("GITHUB_API_URL"); v != "" {
		cfg.GitHub.APIURL = v
	}
	if v := os.Getenv("GATEKEEPER_MAX_LINE_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Review.MaxLineLength = n
		}
	}
	if v := os.Getenv("GATEKEEPER_MAX_INLINE_COMMENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Review.MaxInlineComments = n
		}
	}
	if v := os.Getenv("GATEKEEPER_FORMAT"); v != "" {
		cfg.Review.Format = v
	}
	if v := os.Getenv("GATEKEEPER_FAIL_ON"); v != "" {
		cfg.Review.FailOn = v
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	for key, v := range overrides {
		if v == "" {
			continue
		}
		// Unknown keys were already rejected at flag parsing.
		_ = SetField(cfg, key, v)
	}
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "addr":
		cfg.Server.Addr = value
	case "webhookSecret":
		cfg.Server.WebhookSecret = value
	case "appId":
		cfg.GitHub.AppID = value
	case "privateKeyPath":
		cfg.GitHub.PrivateKeyPath = value
	case "apiUrl":
		cfg.GitHub.APIURL = value
	case "timeoutSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("timeoutSeconds must be an integer: %w", err)
		}
		cfg.GitHub.TimeoutSeconds = n
	case "maxLineLength":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxLineLength must be an integer: %w", err)
		}
		cfg.Review.MaxLineLength = n
	case "maxInlineComments":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxInlineComments must be an integer: %w", err)
		}
		cfg.Review.MaxInlineComments = n
	case "maxTableRows":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxTableRows must be an integer: %w", err)
		}
		cfg.Review.MaxTableRows = n
	case "rulesFile":
		cfg.Review.RulesFile = value
	case "format":
		cfg.Review.Format = value
	case "failOn":
		cfg.Review.FailOn = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
