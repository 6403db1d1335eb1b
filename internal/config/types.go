// Package config resolves, parses, validates, and defaults traymondctl configuration.
package config

// Config is the fully materialized runtime configuration used by traymondctl.
type Config struct {
	Server ServerConfig
	Send   SendConfig
	Log    LogConfig
}

// ServerConfig describes the Traymond build the client talks to.
type ServerConfig struct {
	// WordSize is the server's pointer width in bits (32 or 64). It picks the
	// record layout, since the window handle field follows the server's HWND.
	WordSize int
}

// SendConfig controls delivery behavior around a single send.
type SendConfig struct {
	ProbeFirst bool
}

// LogConfig controls the JSONL runtime log.
type LogConfig struct {
	Level string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
