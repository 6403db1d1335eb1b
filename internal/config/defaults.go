package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{WordSize: 64},
		Send:   SendConfig{ProbeFirst: false},
		Log:    LogConfig{Level: "info"},
	}
}
