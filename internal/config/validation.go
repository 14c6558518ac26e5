// Package config provides validation utilities for configuration values.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Validate performs comprehensive validation of HostDefaults, collecting
// every violation instead of failing on the first one so a misconfigured
// host sees the whole picture in one error.
func Validate(hd *HostDefaults) error {
	var validationErrors []string

	if hd.Width <= 0 {
		validationErrors = append(validationErrors, "width must be positive")
	}
	if hd.Height <= 0 {
		validationErrors = append(validationErrors, "height must be positive")
	}
	if hd.JSCallTimeoutMs <= 0 {
		validationErrors = append(validationErrors, "js_call_timeout_ms must be positive")
	}
	if hd.MaxTasksPerTick <= 0 {
		validationErrors = append(validationErrors, "max_tasks_per_tick must be positive")
	}
	if hd.WakeBatchMs <= 0 {
		validationErrors = append(validationErrors, "wake_batch_ms must be positive")
	}
	if hd.AssetRoot != "" && !filepath.IsAbs(hd.AssetRoot) {
		validationErrors = append(validationErrors, "asset_root must be an absolute path")
	}

	switch strings.ToLower(hd.Logging.Level) {
	case "debug", "info", "warn", "error", "fatal":
	default:
		validationErrors = append(validationErrors, fmt.Sprintf("logging.level %q is not recognized", hd.Logging.Level))
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(validationErrors, "\n  - "))
	}
	return nil
}
