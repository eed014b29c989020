package am

import (
	"strings"

	"github.com/teranos/obelisk/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Empty falls back to DefaultDatabasePath; whitespace is a mistake
	if c.Database.Path != "" && len(c.Database.Path) != len(strings.TrimSpace(c.Database.Path)) {
		return errors.Newf("database.path must not start or end with whitespace, got %q", c.Database.Path)
	}

	// Debounce: 0 = default, negative = invalid
	if c.Compile.DebounceMS < 0 {
		return errors.Newf("compile.debounce_ms must be >= 0, got %d", c.Compile.DebounceMS)
	}

	if c.Log.Verbosity < 0 {
		return errors.Newf("log.verbosity must be >= 0, got %d", c.Log.Verbosity)
	}

	return nil
}
