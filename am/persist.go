package am

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/obelisk/errors"
	"github.com/teranos/obelisk/logger"
)

// createBackup creates rotating backups (.back1, .back2, .back3) before modifying config
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil // No file to backup
	}

	// Rotate backups: .back3 -> delete, .back2 -> .back3, .back1 -> .back2, current -> .back1
	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		// Saving the config matters more than pruning old backups
		logger.Warnw("Failed to delete old backup", logger.FieldPath, back3, logger.FieldError, err.Error())
	}

	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}

	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}
	if err := os.WriteFile(back1, content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}
	return nil
}

// ProjectConfigPath returns am.toml in the working directory
func ProjectConfigPath() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to determine working directory")
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// InitConfig writes the default configuration to configPath, or to the
// project am.toml when configPath is empty. An existing file is only
// replaced with force, and is backed up first. Returns the path written.
func InitConfig(configPath string, force bool) (string, error) {
	if configPath == "" {
		var err error
		if configPath, err = ProjectConfigPath(); err != nil {
			return "", err
		}
	}

	if _, err := os.Stat(configPath); err == nil && !force {
		return "", errors.WithHint(
			errors.Newf("config file %s already exists", configPath),
			"pass --force to overwrite it; the old file is kept as .back1")
	}

	if err := WriteConfig(configPath, DefaultConfig()); err != nil {
		return "", err
	}
	return configPath, nil
}

// WriteConfig validates cfg and writes it as TOML with backup
func WriteConfig(configPath string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "refusing to write invalid config")
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	return saveConfig(configPath, data)
}

// SetValue updates one dotted setting in the TOML file at configPath,
// creating the file if needed. Other settings in the file are preserved.
func SetValue(configPath, key string, value interface{}) error {
	parts := strings.Split(key, ".")
	if key == "" || len(parts) < 2 {
		return errors.NewInvalidRequestError("setting %q must be section.key", key)
	}
	if !isKnownKey(key) {
		return errors.NewInvalidRequestError("unknown setting %q", key)
	}

	config := make(map[string]interface{})
	if data, err := os.ReadFile(configPath); err == nil {
		if err := toml.Unmarshal(data, &config); err != nil {
			return errors.Wrapf(err, "failed to parse %s", configPath)
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to read %s", configPath)
	}

	section := config
	for _, part := range parts[:len(parts)-1] {
		next, ok := section[part].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			section[part] = next
		}
		section = next
	}
	section[parts[len(parts)-1]] = value

	data, err := toml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	// Check the result before replacing a working file
	var check Config
	if err := toml.Unmarshal(data, &check); err != nil {
		return errors.Wrapf(err, "invalid value for %s", key)
	}
	if err := check.Validate(); err != nil {
		return err
	}

	return saveConfig(configPath, data)
}

// isKnownKey reports whether key names a setting with a default
func isKnownKey(key string) bool {
	v := viperWithDefaults()
	return v.IsSet(key)
}

// saveConfig writes data to configPath after backing up the current file
func saveConfig(configPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(configPath), DefaultDirPermissions); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}

	// Mark this as our own write to prevent reload loops
	globalWatcherMu.Lock()
	if globalWatcher != nil {
		globalWatcher.MarkOwnWrite()
	}
	globalWatcherMu.Unlock()

	if err := os.WriteFile(configPath, data, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to write config")
	}
	logger.Infow("Config written", logger.FieldPath, configPath)
	return nil
}

// ParseValue turns command-line text into the TOML value it most likely
// means: a bool, an integer, or else the string itself
func ParseValue(text string) interface{} {
	if b, err := strconv.ParseBool(text); err == nil {
		return b
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n
	}
	return text
}
