// Package config loads and serves the process configuration: remote
// store coordinates, session bounds, and controller tuning. The live
// config is swapped atomically so readers never see a partial reload.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Configuration
// =============================================================================

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "dossier.yaml"

type Config struct {
	Store      StoreConfig      `yaml:"store"`
	Session    SessionConfig    `yaml:"session"`
	Controller ControllerConfig `yaml:"controller"`
	Server     ServerConfig     `yaml:"server"`
}

// StoreConfig locates the remote document store. When Offline is set the
// process uses the on-disk store at LocalPath instead.
type StoreConfig struct {
	ProjectID        string        `yaml:"project_id"`
	AppID            string        `yaml:"app_id"`
	APIKey           string        `yaml:"api_key"`
	BaseURL          string        `yaml:"base_url"`
	CollectionRoot   string        `yaml:"collection_root"`
	Collection       string        `yaml:"collection"`
	PrimarySegment   string        `yaml:"primary_segment"`
	SecondarySegment string        `yaml:"secondary_segment"`
	Timeout          time.Duration `yaml:"timeout"`
	CacheTTL         time.Duration `yaml:"cache_ttl"`
	Offline          bool          `yaml:"offline"`
	LocalPath        string        `yaml:"local_path"`
}

type SessionConfig struct {
	MaxSessions int           `yaml:"max_sessions"`
	IdleTTL     time.Duration `yaml:"idle_ttl"`
}

// ControllerConfig tunes the interaction loop. RefreshPolicy is
// "refresh-clean" or "refresh-always"; a zero DebounceWindow patches
// every edit immediately.
type ControllerConfig struct {
	RefreshPolicy  string        `yaml:"refresh_policy"`
	DebounceWindow time.Duration `yaml:"debounce_window"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Timeout:   15 * time.Second,
			CacheTTL:  30 * time.Second,
			LocalPath: ".dossier/local.db",
		},
		Session: SessionConfig{
			MaxSessions: 1024,
			IdleTTL:     30 * time.Minute,
		},
		Controller: ControllerConfig{
			RefreshPolicy:  "refresh-clean",
			DebounceWindow: 500 * time.Millisecond,
		},
		Server: ServerConfig{
			ListenAddr: "127.0.0.1:8443",
		},
	}
}

// =============================================================================
// Manager
// =============================================================================

// Manager owns the live configuration. Get is lock-free; Load and
// Reload swap in a fully-built replacement.
type Manager struct {
	configPtr unsafe.Pointer
	path      string
	watchers  []func(*Config)
	watcherMu sync.RWMutex
	stopWatch chan struct{}
	watchOnce sync.Once
}

// NewManager creates a manager serving defaults until Load is called.
// An empty path falls back to DefaultFileName in the working directory.
func NewManager(path string) *Manager {
	if path == "" {
		path = DefaultFileName
	}
	m := &Manager{
		path:      path,
		stopWatch: make(chan struct{}),
	}
	atomic.StorePointer(&m.configPtr, unsafe.Pointer(DefaultConfig()))
	return m
}

// Get returns the live configuration. The returned struct must be
// treated as read-only.
func (m *Manager) Get() *Config {
	return (*Config)(atomic.LoadPointer(&m.configPtr))
}

// Path returns the config file the manager loads and watches.
func (m *Manager) Path() string {
	return m.path
}

// Load layers the user config, the working-directory config, and the
// environment over defaults, then swaps the result in.
func (m *Manager) Load() error {
	cfg := DefaultConfig()

	if err := m.loadUserConfig(cfg); err != nil {
		return fmt.Errorf("user config: %w", err)
	}

	if err := loadYAMLFile(m.path, cfg); err != nil {
		return fmt.Errorf("config %s: %w", m.path, err)
	}

	applyEnvironment(cfg)

	atomic.StorePointer(&m.configPtr, unsafe.Pointer(cfg))
	m.notifyWatchers(cfg)

	return nil
}

// Reload re-runs Load; callers registered via OnChange observe the swap.
func (m *Manager) Reload() error {
	return m.Load()
}

func (m *Manager) loadUserConfig(cfg *Config) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return loadYAMLFile(filepath.Join(home, ".dossier", "config.yaml"), cfg)
}

func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// =============================================================================
// Environment
// =============================================================================

func applyEnvironment(cfg *Config) {
	if v := os.Getenv("DOSSIER_PROJECT_ID"); v != "" {
		cfg.Store.ProjectID = v
	}
	if v := os.Getenv("DOSSIER_APP_ID"); v != "" {
		cfg.Store.AppID = v
	}
	if v := os.Getenv("DOSSIER_API_KEY"); v != "" {
		cfg.Store.APIKey = v
	}
	if v := os.Getenv("DOSSIER_BASE_URL"); v != "" {
		cfg.Store.BaseURL = v
	}
	if v := os.Getenv("DOSSIER_STORE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Store.Timeout = d
		}
	}
	if v := os.Getenv("DOSSIER_OFFLINE"); v != "" {
		cfg.Store.Offline = strings.ToLower(v) == "true"
	}
	if v := os.Getenv("DOSSIER_LOCAL_PATH"); v != "" {
		cfg.Store.LocalPath = v
	}
	if v := os.Getenv("DOSSIER_SESSION_MAX"); v != "" {
		if n, err := parseInt(v); err == nil {
			cfg.Session.MaxSessions = n
		}
	}
	if v := os.Getenv("DOSSIER_SESSION_IDLE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Session.IdleTTL = d
		}
	}
	if v := os.Getenv("DOSSIER_REFRESH_POLICY"); v != "" {
		cfg.Controller.RefreshPolicy = v
	}
	if v := os.Getenv("DOSSIER_DEBOUNCE_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Controller.DebounceWindow = d
		}
	}
	if v := os.Getenv("DOSSIER_LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
}

// =============================================================================
// Change Notification
// =============================================================================

// OnChange registers fn to run after every successful (re)load.
func (m *Manager) OnChange(fn func(*Config)) {
	m.watcherMu.Lock()
	m.watchers = append(m.watchers, fn)
	m.watcherMu.Unlock()
}

func (m *Manager) notifyWatchers(cfg *Config) {
	m.watcherMu.RLock()
	watchers := m.watchers
	m.watcherMu.RUnlock()

	for _, fn := range watchers {
		fn(cfg)
	}
}

// Close stops the file watcher, if one was started.
func (m *Manager) Close() error {
	m.watchOnce.Do(func() {
		close(m.stopWatch)
	})
	return nil
}

func parseInt(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}
