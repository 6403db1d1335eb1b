package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// Validate enforces config constraints and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if cfg.Server.WordSize != 32 && cfg.Server.WordSize != 64 {
		return nil, fmt.Errorf("server.word_size must be 32 or 64, got %d", cfg.Server.WordSize)
	}
	if cfg.Server.WordSize == 32 {
		warnings = append(warnings, Warning{Message: "server.word_size=32: window handles above 0xFFFFFFFF will be rejected"})
	}

	if _, err := ParseLogLevel(cfg.Log.Level); err != nil {
		return nil, err
	}

	return warnings, nil
}

// ParseLogLevel maps log.level onto a slog level.
func ParseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}
}
