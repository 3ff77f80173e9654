package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Store.Timeout != 15*time.Second {
		t.Errorf("Store.Timeout: got %v, want 15s", cfg.Store.Timeout)
	}
	if cfg.Session.MaxSessions != 1024 {
		t.Errorf("Session.MaxSessions: got %d, want 1024", cfg.Session.MaxSessions)
	}
	if cfg.Controller.RefreshPolicy != "refresh-clean" {
		t.Errorf("Controller.RefreshPolicy: got %s, want refresh-clean", cfg.Controller.RefreshPolicy)
	}
	if cfg.Store.Offline {
		t.Error("Store.Offline should default to false")
	}
}

func TestManagerGet(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), DefaultFileName))

	cfg := m.Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}
	if cfg.Controller.DebounceWindow != 500*time.Millisecond {
		t.Errorf("DebounceWindow: got %v, want 500ms", cfg.Controller.DebounceWindow)
	}
}

func TestManagerLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	body := `
store:
  project_id: silver-key
  app_id: ordo-app
  timeout: 5s
controller:
  refresh_policy: refresh-always
  debounce_window: 2s
server:
  listen_addr: "0.0.0.0:9000"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(path)
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	cfg := m.Get()
	if cfg.Store.ProjectID != "silver-key" {
		t.Errorf("Store.ProjectID: got %s, want silver-key", cfg.Store.ProjectID)
	}
	if cfg.Store.Timeout != 5*time.Second {
		t.Errorf("Store.Timeout: got %v, want 5s", cfg.Store.Timeout)
	}
	if cfg.Controller.RefreshPolicy != "refresh-always" {
		t.Errorf("RefreshPolicy: got %s", cfg.Controller.RefreshPolicy)
	}
	if cfg.Server.ListenAddr != "0.0.0.0:9000" {
		t.Errorf("ListenAddr: got %s", cfg.Server.ListenAddr)
	}

	// Unset fields keep their defaults.
	if cfg.Session.MaxSessions != 1024 {
		t.Errorf("Session.MaxSessions: got %d, want default 1024", cfg.Session.MaxSessions)
	}
}

func TestManagerLoadMissingFileUsesDefaults(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "absent.yaml"))
	if err := m.Load(); err != nil {
		t.Fatalf("Load with missing file: %v", err)
	}
	if m.Get().Controller.RefreshPolicy != "refresh-clean" {
		t.Error("missing file should leave defaults intact")
	}
}

func TestManagerEnvironmentOverrides(t *testing.T) {
	t.Setenv("DOSSIER_API_KEY", "env-key")
	t.Setenv("DOSSIER_OFFLINE", "true")
	t.Setenv("DOSSIER_DEBOUNCE_WINDOW", "750ms")
	t.Setenv("DOSSIER_SESSION_MAX", "64")

	m := NewManager(filepath.Join(t.TempDir(), DefaultFileName))
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	cfg := m.Get()
	if cfg.Store.APIKey != "env-key" {
		t.Errorf("APIKey: got %s, want env-key", cfg.Store.APIKey)
	}
	if !cfg.Store.Offline {
		t.Error("Offline should be true")
	}
	if cfg.Controller.DebounceWindow != 750*time.Millisecond {
		t.Errorf("DebounceWindow: got %v, want 750ms", cfg.Controller.DebounceWindow)
	}
	if cfg.Session.MaxSessions != 64 {
		t.Errorf("MaxSessions: got %d, want 64", cfg.Session.MaxSessions)
	}
}

func TestManagerOnChange(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), DefaultFileName))

	var seen *Config
	m.OnChange(func(cfg *Config) { seen = cfg })

	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if seen == nil {
		t.Fatal("OnChange callback not invoked")
	}
	if seen != m.Get() {
		t.Error("callback should observe the live config")
	}
}

func TestManagerWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte("server:\n  listen_addr: \"127.0.0.1:1000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(path)
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer m.Close()

	reloaded := make(chan *Config, 4)
	m.OnChange(func(cfg *Config) { reloaded <- cfg })

	if err := m.Watch(nil); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(path, []byte("server:\n  listen_addr: \"127.0.0.1:2000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-reloaded:
			if cfg.Server.ListenAddr == "127.0.0.1:2000" {
				return
			}
		case <-deadline:
			t.Fatal("config was not reloaded after file change")
		}
	}
}
