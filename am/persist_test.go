package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/obelisk/errors"
)

func TestInitConfig(t *testing.T) {
	isolate(t)

	path, err := InitConfig("", false)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, ConfigFileName), path)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	t.Run("refuses to overwrite", func(t *testing.T) {
		_, err := InitConfig(path, false)
		require.Error(t, err)
		assert.Contains(t, errors.FlattenHints(err), "--force")
	})

	t.Run("force keeps a backup", func(t *testing.T) {
		require.NoError(t, SetValue(path, "database.path", "custom.kb"))
		_, err := InitConfig(path, true)
		require.NoError(t, err)

		backup, err := LoadFromFile(path + ".back1")
		require.NoError(t, err)
		assert.Equal(t, "custom.kb", backup.Database.Path)

		current, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, DefaultDatabasePath, current.Database.Path)
	})
}

func TestCreateBackup_Rotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, createBackup(path), "missing file needs no backup")

	for _, content := range []string{"one", "two", "three", "four", "five"} {
		writeFile(t, path, content)
		require.NoError(t, createBackup(path))
	}

	for suffix, want := range map[string]string{".back1": "five", ".back2": "four", ".back3": "three"} {
		data, err := os.ReadFile(path + suffix)
		require.NoError(t, err)
		assert.Equal(t, want, string(data), suffix)
	}
}

func TestSetValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)

	require.NoError(t, SetValue(path, "database.path", "game.kb"))
	require.NoError(t, SetValue(path, "compile.debounce_ms", ParseValue("250")))
	require.NoError(t, SetValue(path, "compile.continue_on_error", ParseValue("false")))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "game.kb", cfg.Database.Path)
	assert.Equal(t, 250, cfg.Compile.DebounceMS)
	assert.False(t, cfg.Compile.ContinueOnError)

	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{"no section", "path", "x"},
		{"unknown setting", "database.size", int64(3)},
		{"invalid value", "compile.debounce_ms", int64(-1)},
		{"wrong type", "compile.debounce_ms", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, SetValue(path, tt.key, tt.value))

			unchanged, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, unchanged)
		})
	}
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, true, ParseValue("true"))
	assert.Equal(t, int64(42), ParseValue("42"))
	assert.Equal(t, "game.kb", ParseValue("game.kb"))
}
