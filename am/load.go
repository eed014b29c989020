package am

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/obelisk/errors"
	"github.com/teranos/obelisk/logger"
)

var globalConfig *Config
var viperInstance *viper.Viper

// ConfigSources records which file supplied each setting during the last
// load. Keys are dotted setting names.
var ConfigSources = map[string]SourceInfo{}

// SystemConfigPath is the machine-wide config file
var SystemConfigPath = "/etc/obelisk/" + ConfigFileName

// Load reads the obelisk configuration using Viper
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	config, err := LoadWithViper(initViper())
	if err != nil {
		return nil, err
	}

	globalConfig = config
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() *viper.Viper {
	return initViper()
}

// LoadWithViper loads and validates configuration from a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path, on top of
// the defaults only
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}
	return LoadWithViper(v)
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
	ConfigSources = map[string]SourceInfo{}
}

// initViper initializes Viper with configuration sources and defaults
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	BindEnvVars(v)

	SetDefaults(v)

	// Files merge into the config layer, so environment variables still win
	mergeConfigFiles(v)

	viperInstance = v
	return v
}

// UserConfigPath returns ~/.obelisk/am.toml, or "" without a home directory
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".obelisk", ConfigFileName)
}

// FindProjectConfig searches for am.toml by walking up the directory tree.
// Returns the path to the first file found, or "" if none found.
func FindProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		amPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(amPath); err == nil {
			return amPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// configFile is one layer of the merge
type configFile struct {
	path   string
	source ConfigSource
}

// configFiles lists the config layers, lowest precedence first
func configFiles() []configFile {
	files := []configFile{{path: SystemConfigPath, source: SourceSystem}}
	if user := UserConfigPath(); user != "" {
		files = append(files, configFile{path: user, source: SourceUser})
	}
	// A project config in the home directory is the user config; count it once
	if project := FindProjectConfig(); project != "" && project != UserConfigPath() {
		files = append(files, configFile{path: project, source: SourceProject})
	}
	return files
}

// mergeConfigFiles merges configuration files in precedence order,
// recording where every setting came from.
// Precedence (lowest to highest): system < user < project < env vars
func mergeConfigFiles(v *viper.Viper) {
	for _, file := range configFiles() {
		if _, err := os.Stat(file.path); err != nil {
			continue
		}

		tempViper := viper.New()
		tempViper.SetConfigFile(file.path)
		tempViper.SetConfigType("toml")
		if err := tempViper.ReadInConfig(); err != nil {
			logger.Warnw("Skipping unreadable config file",
				logger.FieldPath, file.path,
				logger.FieldError, err.Error())
			continue
		}

		if err := v.MergeConfigMap(tempViper.AllSettings()); err != nil {
			logger.Warnw("Skipping config file that could not be merged",
				logger.FieldPath, file.path,
				logger.FieldError, err.Error())
			continue
		}
		for _, key := range tempViper.AllKeys() {
			ConfigSources[key] = SourceInfo{Source: file.source, Path: file.path}
		}
		logger.Debugw("Merged config file", logger.FieldPath, file.path, "source", file.source)
	}
}

// Get returns a configuration value using dot notation
func Get(key string) interface{} {
	return initViper().Get(key)
}

// GetString returns a configuration value as string using dot notation
func GetString(key string) string {
	return initViper().GetString(key)
}

// GetBool returns a configuration value as bool using dot notation
func GetBool(key string) bool {
	return initViper().GetBool(key)
}

// GetInt returns a configuration value as int using dot notation
func GetInt(key string) int {
	return initViper().GetInt(key)
}
