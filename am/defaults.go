package am

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)

	v.SetDefault("compile.continue_on_error", true)
	v.SetDefault("compile.debounce_ms", DefaultDebounceMS)

	v.SetDefault("log.json", false)
	v.SetDefault("log.verbosity", 0)
}

// BindEnvVars binds settings whose environment names do not follow the
// OBELISK_SECTION_KEY pattern
func BindEnvVars(v *viper.Viper) {
	// Short form used by scripts: OBELISK_KB=game.kb obelisk game.obk
	v.BindEnv("database.path", EnvPrefix+"_DATABASE_PATH", EnvPrefix+"_KB")
}

// DefaultConfig returns the configuration obelisk runs with when no file
// or environment variable says otherwise
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Path: DefaultDatabasePath},
		Compile: CompileConfig{
			ContinueOnError: true,
			DebounceMS:      DefaultDebounceMS,
		},
	}
}

// GetDatabasePath returns the configured knowledge base path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return DefaultDatabasePath
	}
	return c.Database.Path
}

// viperWithDefaults returns a Viper holding only the defaults
func viperWithDefaults() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}
