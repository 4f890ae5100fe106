package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := manager.Get()
	if cfg.Defaults.Bitrate != 320 || cfg.Defaults.Limit != 20 || cfg.Defaults.ArtworkSize != 300 {
		t.Errorf("defaults = %+v", cfg.Defaults)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config file was not written: %v", err)
	}
}

func TestLoadMergesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  port: 8080\ndefaults:\n  bitrate: 128\n  artwork_size: 300\n  limit: 20\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := manager.Get()
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Defaults.Bitrate != 128 {
		t.Errorf("bitrate = %d", cfg.Defaults.Bitrate)
	}
	// Unspecified sections keep their defaults.
	if cfg.Logger.Level != "info" {
		t.Errorf("logger level = %q", cfg.Logger.Level)
	}
}

func TestLoadRejectsInvalidDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  port: 8080\ndefaults:\n  bitrate: -5\n  artwork_size: 300\n  limit: 20\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("negative bitrate must fail validation")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TUNEGATE_PROXY", "http://proxy.internal:3128")
	t.Setenv("TUNEGATE_COOKIE_NETEASE", "MUSIC_U=abc123")

	path := filepath.Join(t.TempDir(), "config.yaml")
	manager, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := manager.Get()
	if cfg.Upstream.Proxy != "http://proxy.internal:3128" {
		t.Errorf("proxy = %q", cfg.Upstream.Proxy)
	}
	if cfg.Upstream.Cookies["netease"] != "MUSIC_U=abc123" {
		t.Errorf("cookie override = %q", cfg.Upstream.Cookies["netease"])
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := defaultConfig
	cfg.Server.Port = 4242
	if err := NewManager(&cfg).Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reloaded.Get().Server.Port != 4242 {
		t.Errorf("port after reload = %d", reloaded.Get().Server.Port)
	}
}

func TestEnvCookieNotPersisted(t *testing.T) {
	t.Setenv("TUNEGATE_COOKIE_KUGOU", "KuGoo=secret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := Load(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "KuGoo=secret") {
		t.Error("environment cookie leaked into the config file")
	}
}

// Dumps must not re-enter the manager lock: with a writer queued between
// two read acquisitions on the same goroutine the dump would deadlock.
func TestConfigDumpDuringUpdates(t *testing.T) {
	cfg := defaultConfig
	manager := NewManager(&cfg)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			next := defaultConfig
			next.Server.Port = uint32(4000 + i)
			manager.Update(&next)
		}
	}()

	for i := 0; i < 500; i++ {
		if manager.GetJSON() == "" {
			t.Fatal("empty JSON dump")
		}
		if manager.GetYAML() == "" {
			t.Fatal("empty YAML dump")
		}
	}
	<-done
}

func TestRedactedCookies(t *testing.T) {
	manager := NewManager(&Config{
		Upstream: Upstream{Cookies: map[string]string{"tencent": "uin=123; skey=secret"}},
	})

	redacted := manager.redactedCfg()
	if redacted.Upstream.Cookies["tencent"] != "<redacted>" {
		t.Errorf("cookie not redacted: %q", redacted.Upstream.Cookies["tencent"])
	}
	// The live config must stay intact.
	if manager.Get().Upstream.Cookies["tencent"] != "uin=123; skey=secret" {
		t.Error("redaction mutated the live config")
	}
}
