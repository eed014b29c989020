package am

import (
	"os"
	"sort"
	"strings"

	"github.com/teranos/obelisk/errors"
)

// ConfigSource represents where a configuration value came from
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceSystem      ConfigSource = "system"      // /etc/obelisk/am.toml
	SourceUser        ConfigSource = "user"        // ~/.obelisk/am.toml
	SourceProject     ConfigSource = "project"     // nearest am.toml upward
	SourceEnvironment ConfigSource = "environment" // OBELISK_* env vars
)

// SettingInfo contains metadata about a configuration setting
type SettingInfo struct {
	Key        string       `json:"key"`
	Value      interface{}  `json:"value"`
	Source     ConfigSource `json:"source"`
	SourcePath string       `json:"source_path,omitempty"` // File path or env var name
}

// ConfigIntrospection describes the active configuration setting by setting
type ConfigIntrospection struct {
	Files    []string      `json:"files"` // Config files that were merged
	Settings []SettingInfo `json:"settings"`
}

// SourceInfo tracks where a configuration value originated
type SourceInfo struct {
	Source ConfigSource
	Path   string // File path or environment variable name
}

// GetConfigIntrospection returns every effective setting with its source
func GetConfigIntrospection() (*ConfigIntrospection, error) {
	if _, err := Load(); err != nil {
		return nil, errors.Wrap(err, "failed to load config for introspection")
	}
	v := GetViper()

	introspection := &ConfigIntrospection{Settings: make([]SettingInfo, 0)}

	seen := make(map[string]bool)
	for _, info := range ConfigSources {
		if !seen[info.Path] {
			seen[info.Path] = true
			introspection.Files = append(introspection.Files, info.Path)
		}
	}
	sort.Strings(introspection.Files)

	keys := v.AllKeys()
	sort.Strings(keys)
	for _, key := range keys {
		info := SourceInfo{Source: SourceDefault, Path: "built-in default"}
		if si, ok := ConfigSources[key]; ok {
			info = si
		}
		if envKey, ok := envOverride(key); ok {
			info = SourceInfo{Source: SourceEnvironment, Path: envKey}
		}

		introspection.Settings = append(introspection.Settings, SettingInfo{
			Key:        key,
			Value:      v.Get(key),
			Source:     info.Source,
			SourcePath: info.Path,
		})
	}

	return introspection, nil
}

// envOverride returns the environment variable that sets key, if any
func envOverride(key string) (string, bool) {
	candidates := []string{EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}
	if key == "database.path" {
		candidates = append(candidates, EnvPrefix+"_KB")
	}
	for _, envKey := range candidates {
		if os.Getenv(envKey) != "" {
			return envKey, true
		}
	}
	return "", false
}

// Summary counts settings by source
func (ci *ConfigIntrospection) Summary() map[ConfigSource]int {
	counts := make(map[ConfigSource]int)
	for _, setting := range ci.Settings {
		counts[setting.Source]++
	}
	return counts
}
