package config

import "github.com/spf13/viper"

// Default values, mirroring the platform defaults documented in spec §4.1.
const (
	defaultWidth             = 1024
	defaultHeight            = 768
	defaultJSCallTimeoutMs   = 5000
	defaultMaxTasksPerTick   = 64
	defaultWakeBatchMs       = 250
	defaultLogMaxSizeMB      = 50
	defaultLogMaxBackups     = 3
	defaultLogMaxAgeDays     = 14
)

// DefaultConfig returns the built-in HostDefaults used when no config file
// is present and Init has not been called.
func DefaultConfig() *HostDefaults {
	logDir, err := GetLogDir()
	if err != nil {
		logDir = ""
	}
	return &HostDefaults{
		Title:             "AuroraView",
		Width:             defaultWidth,
		Height:            defaultHeight,
		Resizable:         true,
		Decorations:       true,
		Debug:             false,
		ContextMenu:       true,
		AssetRoot:         "",
		AllowFileProtocol: false,
		JSCallTimeoutMs:   defaultJSCallTimeoutMs,
		MaxTasksPerTick:   defaultMaxTasksPerTick,
		WakeBatchMs:       defaultWakeBatchMs,
		Logging: LoggingConfig{
			Level:         "info",
			Format:        "text",
			LogDir:        logDir,
			EnableFileLog: true,
			MaxSizeMB:     defaultLogMaxSizeMB,
			MaxBackups:    defaultLogMaxBackups,
			MaxAgeDays:    defaultLogMaxAgeDays,
			Compress:      true,
		},
	}
}

func applyDefaults(vv *viper.Viper) {
	d := DefaultConfig()
	vv.SetDefault("title", d.Title)
	vv.SetDefault("width", d.Width)
	vv.SetDefault("height", d.Height)
	vv.SetDefault("resizable", d.Resizable)
	vv.SetDefault("decorations", d.Decorations)
	vv.SetDefault("debug", d.Debug)
	vv.SetDefault("context_menu", d.ContextMenu)
	vv.SetDefault("asset_root", d.AssetRoot)
	vv.SetDefault("allow_file_protocol", d.AllowFileProtocol)
	vv.SetDefault("js_call_timeout_ms", d.JSCallTimeoutMs)
	vv.SetDefault("max_tasks_per_tick", d.MaxTasksPerTick)
	vv.SetDefault("wake_batch_ms", d.WakeBatchMs)
	vv.SetDefault("logging.level", d.Logging.Level)
	vv.SetDefault("logging.format", d.Logging.Format)
	vv.SetDefault("logging.log_dir", d.Logging.LogDir)
	vv.SetDefault("logging.enable_file_log", d.Logging.EnableFileLog)
	vv.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	vv.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	vv.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
	vv.SetDefault("logging.compress", d.Logging.Compress)
}
