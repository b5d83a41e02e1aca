// Package config loads promptist settings from ~/.promptist/config.yaml,
// PROMPTIST_* environment variables and built-in defaults, and hot-reloads
// them when the file changes.
package config

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"promptist/logger"
	"promptist/resolve"
	"promptist/shortcut"
)

// EnvPrefix is prepended to every environment override, e.g.
// PROMPTIST_SERVER_PORT.
const EnvPrefix = "PROMPTIST"

type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Tracker  TrackerConfig  `mapstructure:"tracker" yaml:"tracker"`
	Launcher LauncherConfig `mapstructure:"launcher" yaml:"launcher"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type StoreConfig struct {
	// Path overrides the template library location. Empty means
	// <home>/templates.json.
	Path     string        `mapstructure:"path" yaml:"path"`
	Watch    bool          `mapstructure:"watch" yaml:"watch"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

type TrackerConfig struct {
	PollInterval    time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	FocusAttempts   uint          `mapstructure:"focus_attempts" yaml:"focus_attempts"`
	FocusDelay      time.Duration `mapstructure:"focus_delay" yaml:"focus_delay"`
	IgnoreBundleIDs []string      `mapstructure:"ignore_bundle_ids" yaml:"ignore_bundle_ids"`
}

type LauncherConfig struct {
	AutoPaste bool            `mapstructure:"auto_paste" yaml:"auto_paste"`
	Hotkey    string          `mapstructure:"hotkey" yaml:"hotkey"`
	Formats   resolve.Formats `mapstructure:"formats" yaml:"formats"`
}

type LogConfig struct {
	JSON  bool   `mapstructure:"json" yaml:"json"`
	Level string `mapstructure:"level" yaml:"level"`
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{Host: "127.0.0.1", Port: 7777},
		Store:  StoreConfig{Watch: true, Debounce: 200 * time.Millisecond},
		Tracker: TrackerConfig{
			PollInterval:  500 * time.Millisecond,
			FocusAttempts: 5,
			FocusDelay:    100 * time.Millisecond,
			// Promptist's own launcher window must never become the paste target.
			IgnoreBundleIDs: []string{"com.promptist.app"},
		},
		Launcher: LauncherConfig{
			Hotkey:  "opt+space",
			Formats: resolve.DefaultFormats,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Validate checks values that viper cannot type-check.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Newf("server.port %d out of range", c.Server.Port)
	}
	if c.Launcher.Hotkey != "" {
		if _, err := shortcut.Parse(c.Launcher.Hotkey); err != nil {
			return errors.Wrap(err, "launcher.hotkey")
		}
	}
	if c.Tracker.PollInterval <= 0 {
		return errors.New("tracker.poll_interval must be positive")
	}
	return nil
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	v *viper.Viper

	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager loads configuration from cfgFile. A missing file is not an
// error; defaults and environment variables still apply.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		v:         viper.New(),
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

func (cm *Manager) initViper(cfgFile string) error {
	v := cm.v
	d := DefaultConfig()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.watch", d.Store.Watch)
	v.SetDefault("store.debounce", d.Store.Debounce)
	v.SetDefault("tracker.poll_interval", d.Tracker.PollInterval)
	v.SetDefault("tracker.focus_attempts", d.Tracker.FocusAttempts)
	v.SetDefault("tracker.focus_delay", d.Tracker.FocusDelay)
	v.SetDefault("tracker.ignore_bundle_ids", d.Tracker.IgnoreBundleIDs)
	v.SetDefault("launcher.auto_paste", d.Launcher.AutoPaste)
	v.SetDefault("launcher.hotkey", d.Launcher.Hotkey)
	v.SetDefault("launcher.formats.date", d.Launcher.Formats.Date)
	v.SetDefault("launcher.formats.time", d.Launcher.Formats.Time)
	v.SetDefault("launcher.formats.datetime", d.Launcher.Formats.DateTime)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.level", d.Log.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile == "" {
		return nil
	}
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		return nil
	}
	v.SetConfigFile(cfgFile)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrapf(err, "error reading config file %s", cfgFile)
	}
	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithHint(err, "check "+cm.v.ConfigFileUsed())
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// File is the config file in use, or "" when running on defaults.
func (cm *Manager) File() string {
	return cm.v.ConfigFileUsed()
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// Reload re-reads the config file and notifies subscribers. An invalid file
// keeps the previous configuration.
func (cm *Manager) Reload() error {
	if cm.v.ConfigFileUsed() != "" {
		if err := cm.v.ReadInConfig(); err != nil {
			return errors.Wrap(err, "error reading config file")
		}
	}
	cfg, err := cm.load()
	if err != nil {
		return err
	}
	cm.apply(cfg)
	return nil
}

func (cm *Manager) apply(cfg *Config) {
	cm.mu.Lock()
	cm.config = cfg
	callbacks := make([]func(*Config), len(cm.callbacks))
	copy(callbacks, cm.callbacks)
	cm.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	if cm.v.ConfigFileUsed() == "" {
		return
	}
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			logger.Logger.Warnw("Ignoring invalid config change", "file", e.Name, "error", err)
			return
		}
		logger.Logger.Infow("Config reloaded", "file", e.Name)
		cm.apply(cfg)
	})
	cm.v.WatchConfig()
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	header := []byte(`# Promptist configuration
# Every key can be overridden with an environment variable, e.g.
# PROMPTIST_SERVER_PORT=8080 or PROMPTIST_LAUNCHER_AUTO_PASTE=true

`)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	return os.WriteFile(path, append(header, data...), 0o644)
}
