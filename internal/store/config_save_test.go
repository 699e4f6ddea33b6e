package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSaveConfig_ConcurrentWriters_DoesNotCorruptConfig(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv(EnvConfigDir, cfgDir)

	if err := SaveConfig(&Config{Endpoint: "https://example.test/exec"}); err != nil {
		t.Fatalf("SaveConfig(seed): %v", err)
	}

	const n = 64
	errCh := make(chan error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cfg, err := LoadConfig()
			if err != nil {
				errCh <- err
				return
			}
			cfg.CurrentUser = fmt.Sprintf("foreman-%d", i)
			if err := SaveConfig(cfg); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("concurrent load/save: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(cfgDir, "config.json"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		t.Fatalf("config corrupted: %v\n%s", err, b)
	}
	if !strings.HasPrefix(cfg.CurrentUser, "foreman-") {
		t.Fatalf("unexpected user %q", cfg.CurrentUser)
	}
	if _, err := os.Stat(filepath.Join(cfgDir, "config.json.bak")); err != nil {
		t.Fatalf("expected backup copy: %v", err)
	}
}

func TestLoadConfig_MissingFileIsEmpty(t *testing.T) {
	t.Setenv(EnvConfigDir, t.TempDir())
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Endpoint != "" || cfg.CurrentUser != "" {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
	if cfg.ResyncDelay() != 0 {
		t.Fatalf("expected no delay override")
	}
}

func TestResolveEndpoint(t *testing.T) {
	t.Setenv(EnvEndpoint, "")
	if got := ResolveEndpoint(nil); got != DefaultEndpoint {
		t.Fatalf("expected default, got %q", got)
	}
	if got := ResolveEndpoint(&Config{Endpoint: "not a url"}); got != DefaultEndpoint {
		t.Fatalf("invalid stored endpoint should fall back, got %q", got)
	}
	if got := ResolveEndpoint(&Config{Endpoint: "http://127.0.0.1:8080/exec"}); got != "http://127.0.0.1:8080/exec" {
		t.Fatalf("expected stored endpoint, got %q", got)
	}
	t.Setenv(EnvEndpoint, "https://override.test/exec")
	if got := ResolveEndpoint(&Config{Endpoint: "http://127.0.0.1:8080/exec"}); got != "https://override.test/exec" {
		t.Fatalf("expected env override, got %q", got)
	}
}

func TestValidateEndpoint(t *testing.T) {
	for _, ok := range []string{DefaultEndpoint, "http://localhost:8080/exec"} {
		if err := ValidateEndpoint(ok); err != nil {
			t.Fatalf("ValidateEndpoint(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"", "ftp://x/y", "script.google.com/exec", "https://"} {
		if err := ValidateEndpoint(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestConfigResyncDelay(t *testing.T) {
	cfg := &Config{ResyncDelayMs: 1500}
	if cfg.ResyncDelay() != 1500*time.Millisecond {
		t.Fatalf("unexpected delay %v", cfg.ResyncDelay())
	}
}

func TestSessionPersistsAcrossLoads(t *testing.T) {
	t.Setenv(EnvConfigDir, t.TempDir())
	if err := SaveConfig(&Config{Endpoint: "https://example.test/exec"}); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	var s Session
	if err := s.SaveUser(" Joe "); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	if got := s.CurrentUser(); got != "Joe" {
		t.Fatalf("expected Joe, got %q", got)
	}
	if err := s.ClearUser(); err != nil {
		t.Fatalf("ClearUser: %v", err)
	}
	if got := s.CurrentUser(); got != "" {
		t.Fatalf("expected logged out, got %q", got)
	}
	cfg, _ := LoadConfig()
	if cfg.Endpoint != "https://example.test/exec" {
		t.Fatalf("session writes must keep other keys, got %+v", cfg)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("FLOORING_TEST_A=env\nFLOORING_TEST_B=env\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env.local"), []byte("FLOORING_TEST_B=local\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FLOORING_TEST_A", "preset")
	t.Setenv("FLOORING_TEST_B", "")
	os.Unsetenv("FLOORING_TEST_B")

	if err := LoadDotEnv(dir); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("FLOORING_TEST_A"); got != "preset" {
		t.Fatalf(".env must not override the environment, got %q", got)
	}
	if got := os.Getenv("FLOORING_TEST_B"); got != "local" {
		t.Fatalf(".env.local should override, got %q", got)
	}
	if err := LoadDotEnv(t.TempDir()); err != nil {
		t.Fatalf("missing files should be ignored: %v", err)
	}
}
