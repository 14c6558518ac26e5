// Package config loads the external, persisted settings that seed a
// auroraview.Config before an Instance is constructed. It uses Viper for
// layered file/env loading and fsnotify (via Viper's watcher) for live
// reload of *future* instances' defaults — never a frozen, already-running
// instance, which would violate the one-value-per-option guarantee in
// spec §4.1.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/auroraview/auroraview/internal/logging"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// File permission constants.
const (
	dirPerm  = 0755
	filePerm = 0644
)

var log = logging.For("config")

// HostDefaults mirrors the recognized ConfigModel options from spec §4.1.
// It is a plain data holder — never frozen itself, never shared with a
// running Instance's ConfigModel by reference, only by value at
// construction time.
type HostDefaults struct {
	Title             string `mapstructure:"title" yaml:"title"`
	Width             int    `mapstructure:"width" yaml:"width"`
	Height            int    `mapstructure:"height" yaml:"height"`
	Resizable         bool   `mapstructure:"resizable" yaml:"resizable"`
	Decorations       bool   `mapstructure:"decorations" yaml:"decorations"`
	Debug             bool   `mapstructure:"debug" yaml:"debug"`
	ContextMenu       bool   `mapstructure:"context_menu" yaml:"context_menu"`
	AssetRoot         string `mapstructure:"asset_root" yaml:"asset_root"`
	AllowFileProtocol bool   `mapstructure:"allow_file_protocol" yaml:"allow_file_protocol"`
	JSCallTimeoutMs   int    `mapstructure:"js_call_timeout_ms" yaml:"js_call_timeout_ms"`
	MaxTasksPerTick   int    `mapstructure:"max_tasks_per_tick" yaml:"max_tasks_per_tick"`
	WakeBatchMs       int    `mapstructure:"wake_batch_ms" yaml:"wake_batch_ms"`

	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// LoggingConfig holds ambient logging configuration (not part of the Core).
type LoggingConfig struct {
	Level         string `mapstructure:"level" yaml:"level"`
	Format        string `mapstructure:"format" yaml:"format"`
	LogDir        string `mapstructure:"log_dir" yaml:"log_dir"`
	EnableFileLog bool   `mapstructure:"enable_file_log" yaml:"enable_file_log"`
	MaxSizeMB     int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups    int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays    int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress      bool   `mapstructure:"compress" yaml:"compress"`
}

var (
	mu      sync.RWMutex
	current *HostDefaults
	v       *viper.Viper
)

// Init loads HostDefaults from the XDG config file, environment variables
// (prefixed AURORAVIEW_), and built-in defaults, in that precedence order
// (lowest to highest: defaults, file, env).
func Init() error {
	mu.Lock()
	defer mu.Unlock()

	if err := EnsureDirectories(); err != nil {
		return fmt.Errorf("config: ensure directories: %w", err)
	}

	configFile, err := GetConfigFile()
	if err != nil {
		return fmt.Errorf("config: resolve config file: %w", err)
	}

	vv := viper.New()
	vv.SetConfigFile(configFile)
	vv.SetConfigType("yaml")
	vv.SetEnvPrefix("AURORAVIEW")
	vv.AutomaticEnv()

	applyDefaults(vv)

	if err := vv.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return fmt.Errorf("config: read %s: %w", configFile, err)
		}
		if mkErr := writeDefaultConfig(configFile, vv); mkErr != nil {
			log.Warn("failed to write default config at %s: %v", configFile, mkErr)
		}
	}

	hd := &HostDefaults{}
	if err := vv.Unmarshal(hd); err != nil {
		return fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := Validate(hd); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	v = vv
	current = hd
	return nil
}

// Watch enables live reload of HostDefaults on config file changes. Only
// Get() calls made after the file changes observe the new values — no
// instance already past show() is ever mutated.
func Watch() error {
	mu.RLock()
	vv := v
	mu.RUnlock()
	if vv == nil {
		return fmt.Errorf("config: Watch called before Init")
	}

	vv.OnConfigChange(func(_ fsnotify.Event) {
		hd := &HostDefaults{}
		if err := vv.Unmarshal(hd); err != nil {
			log.Warn("config reload: unmarshal failed: %v", err)
			return
		}
		if err := Validate(hd); err != nil {
			log.Warn("config reload: rejected: %v", err)
			return
		}
		mu.Lock()
		current = hd
		mu.Unlock()
		log.Info("config reloaded")
	})
	vv.WatchConfig()
	return nil
}

// Get returns the current HostDefaults snapshot. Safe for concurrent use.
func Get() *HostDefaults {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return DefaultConfig()
	}
	cp := *current
	return &cp
}

func writeDefaultConfig(path string, vv *viper.Viper) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return err
	}
	return vv.SafeWriteConfigAs(path)
}
