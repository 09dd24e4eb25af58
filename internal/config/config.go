// Package config loads vizdeploy.toml.
package config

import (
	"time"

	"github.com/conn-castle/vizdeploy/internal/assets"
	"github.com/conn-castle/vizdeploy/internal/hostdir"
)

// DefaultFileName is the config file looked up next to the executable.
const DefaultFileName = "vizdeploy.toml"

// Config is the full vizdeploy configuration.
type Config struct {
	Mode                 string      `toml:"mode"`
	HostDir              string      `toml:"host_dir"`
	VSEdition            string      `toml:"vs_edition"`
	Subfolder            string      `toml:"subfolder"`
	SourceDir            string      `toml:"source_dir"`
	Files                []string    `toml:"files"`
	CreateDestinationDir bool        `toml:"create_destination_dir"`
	Retry                RetryConfig `toml:"retry"`
	Lock                 LockConfig  `toml:"lock"`
	Log                  LogConfig   `toml:"log"`
}

// RetryConfig bounds the final rename of a replaced file.
type RetryConfig struct {
	Attempts int `toml:"attempts"`
	DelayMS  int `toml:"delay_ms"`
}

// LockConfig controls the cross-process deploy lock.
type LockConfig struct {
	Enabled        bool `toml:"enabled"`
	TimeoutSeconds int  `toml:"timeout_seconds"`
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		Mode:      "baseline",
		VSEdition: hostdir.DefaultEdition,
		Subfolder: assets.Subfolder,
		Files:     assets.Files(),
		Retry: RetryConfig{
			Attempts: 3,
			DelayMS:  200,
		},
		Lock: LockConfig{
			Enabled:        true,
			TimeoutSeconds: 30,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// RenameDelay is the pause between rename attempts.
func (c Config) RenameDelay() time.Duration {
	return time.Duration(c.Retry.DelayMS) * time.Millisecond
}

// LockTimeout is how long a run waits for another run's lock.
func (c Config) LockTimeout() time.Duration {
	return time.Duration(c.Lock.TimeoutSeconds) * time.Second
}
