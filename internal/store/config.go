package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultEndpoint is the crew's deployed sheet script.
const DefaultEndpoint = "https://script.google.com/macros/s/AKfycbw8W_RzH1ktZ0xQIakbNww6RP23PiRl-X577_Eou7m7vRlrlWeUwlTnjgXIBksr8TIoEw/exec"

const (
	EnvConfigDir = "FLOORING_CONFIG_DIR"
	EnvEndpoint  = "FLOORING_ENDPOINT"
)

type Config struct {
	// Endpoint is the sheet script URL. Empty means DefaultEndpoint.
	Endpoint string `json:"endpoint,omitempty"`

	// CurrentUser is the logged-in foreman; it survives restarts until logout.
	CurrentUser string `json:"currentUser,omitempty"`

	// ResyncDelayMs overrides the delay before the post-write reload.
	ResyncDelayMs int `json:"resyncDelay,omitempty"`
}

func (c *Config) ResyncDelay() time.Duration {
	if c == nil || c.ResyncDelayMs <= 0 {
		return 0
	}
	return time.Duration(c.ResyncDelayMs) * time.Millisecond
}

func ConfigDir() (string, error) {
	// Keeps unit tests from touching ~/.flooring.
	if v := strings.TrimSpace(os.Getenv(EnvConfigDir)); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".flooring"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Keep the previous config around for recovery; failures here don't block the save.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o644)
	}
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}

// UpdateConfig loads, edits and saves the config in one step.
func UpdateConfig(fn func(*Config)) (*Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	fn(cfg)
	if err := SaveConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateEndpoint accepts absolute http(s) URLs with a host.
func ValidateEndpoint(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: want an http(s) URL", raw)
	}
	return nil
}

// ResolveEndpoint picks FLOORING_ENDPOINT, then the stored endpoint, then the
// default. Invalid values are skipped.
func ResolveEndpoint(cfg *Config) string {
	if v := strings.TrimSpace(os.Getenv(EnvEndpoint)); v != "" && ValidateEndpoint(v) == nil {
		return v
	}
	if cfg != nil {
		if v := strings.TrimSpace(cfg.Endpoint); v != "" && ValidateEndpoint(v) == nil {
			return v
		}
	}
	return DefaultEndpoint
}
