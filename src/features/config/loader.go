package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// cookieEnvVars maps each platform to the environment variable that can
// override its session cookie.
var cookieEnvVars = map[string]string{
	"netease": "TUNEGATE_COOKIE_NETEASE",
	"tencent": "TUNEGATE_COOKIE_TENCENT",
	"kugou":   "TUNEGATE_COOKIE_KUGOU",
	"kuwo":    "TUNEGATE_COOKIE_KUWO",
}

// Load reads a YAML file from the given path and returns a new Manager.
// If the file doesn't exist, creates a default configuration.
func Load(path string) (*Manager, error) {
	// Check if config file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Info("Config file not found, creating default configuration", "path", path)
		cfg := defaultConfig
		manager := NewManager(&cfg)

		// Persist the defaults before the env overrides land so secrets
		// from the environment never end up on disk.
		if err := manager.Save(path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}

		applyEnvOverrides(&cfg)
		return manager, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := defaultConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	applyEnvOverrides(&cfg)

	return NewManager(&cfg), nil
}

// applyEnvOverrides lets the environment win over the file for the
// proxy and the platform cookies.
func applyEnvOverrides(cfg *Config) {
	if proxy := os.Getenv("TUNEGATE_PROXY"); proxy != "" {
		cfg.Upstream.Proxy = proxy
	}
	for platform, envVar := range cookieEnvVars {
		if cookie := strings.TrimSpace(os.Getenv(envVar)); cookie != "" {
			if cfg.Upstream.Cookies == nil {
				cfg.Upstream.Cookies = make(map[string]string)
			}
			cfg.Upstream.Cookies[platform] = cookie
		}
	}
}
