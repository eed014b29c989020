// Package am ("I am") holds obelisk's configuration: where the knowledge
// base lives, how compile runs behave and how logs are written.
//
// Settings merge from /etc/obelisk/am.toml, ~/.obelisk/am.toml, the nearest
// am.toml above the working directory and OBELISK_* environment variables,
// in rising order of precedence.
package am

import (
	"fmt"
	"time"
)

// Config represents the obelisk configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database" toml:"database" json:"database" yaml:"database"`
	Compile  CompileConfig  `mapstructure:"compile" toml:"compile" json:"compile" yaml:"compile"`
	Log      LogConfig      `mapstructure:"log" toml:"log" json:"log" yaml:"log"`
}

// DatabaseConfig configures the knowledge base file
type DatabaseConfig struct {
	// SQLite file, ":memory:" for a throwaway run
	Path string `mapstructure:"path" toml:"path" json:"path" yaml:"path"`
}

// CompileConfig configures compile runs
type CompileConfig struct {
	// Resync at the next ';' after a rejected statement
	ContinueOnError bool `mapstructure:"continue_on_error" toml:"continue_on_error" json:"continue_on_error" yaml:"continue_on_error"`
	// Quiet period before watch recompiles (0 = default)
	DebounceMS      int  `mapstructure:"debounce_ms" toml:"debounce_ms" json:"debounce_ms" yaml:"debounce_ms"`
}

// LogConfig configures log output
type LogConfig struct {
	// Structured JSON instead of console output
	JSON      bool `mapstructure:"json" toml:"json" json:"json" yaml:"json"`
	// Baseline verbosity, added to -v flags
	Verbosity int  `mapstructure:"verbosity" toml:"verbosity" json:"verbosity" yaml:"verbosity"`
}

// Defaults
const (
	DefaultDatabasePath = "obelisk.kb"
	DefaultDebounceMS   = 500
	ConfigFileName      = "am.toml"
	EnvPrefix           = "OBELISK"
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)

// Debounce returns the watch quiet period with the default applied
func (c *Config) Debounce() time.Duration {
	if c.Compile.DebounceMS <= 0 {
		return DefaultDebounceMS * time.Millisecond
	}
	return time.Duration(c.Compile.DebounceMS) * time.Millisecond
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Database: %s, Compile: {ContinueOnError: %t, DebounceMS: %d}, Log: {JSON: %t}}",
		c.Database.Path, c.Compile.ContinueOnError, c.Compile.DebounceMS, c.Log.JSON)
}
