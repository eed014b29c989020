package am

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestConfigWatcher_Reload(t *testing.T) {
	root := isolate(t)
	path := filepath.Join(root, "project", ConfigFileName)
	writeFile(t, path, "[compile]\ndebounce_ms = 100\n")

	cw, err := NewConfigWatcher(path, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	cw.SetDebounce(20 * time.Millisecond)

	reloaded := make(chan *Config, 4)
	cw.OnReload(func(cfg *Config) error {
		reloaded <- cfg
		return nil
	})
	cw.Start()
	defer cw.Stop()

	require.NoError(t, os.WriteFile(path, []byte("[compile]\ndebounce_ms = 300\n"), 0644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 300, cfg.Compile.DebounceMS)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}

func TestConfigWatcher_OwnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	writeFile(t, path, "")

	cw, err := NewConfigWatcher(path, nil)
	require.NoError(t, err)
	defer cw.Stop()

	SetGlobalWatcher(cw)
	defer SetGlobalWatcher(nil)
	assert.Same(t, cw, GetGlobalWatcher())

	assert.False(t, cw.checkOwnWrite())
	require.NoError(t, SetValue(path, "log.json", true))
	assert.True(t, cw.checkOwnWrite(), "saveConfig marks its write")
	assert.False(t, cw.checkOwnWrite(), "flag is cleared once seen")
}

func TestNewConfigWatcher_MissingFile(t *testing.T) {
	_, err := NewConfigWatcher(filepath.Join(t.TempDir(), "missing.toml"), nil)
	assert.Error(t, err)
}

func TestIsBackupFile(t *testing.T) {
	assert.True(t, isBackupFile("/x/am.toml.back1"))
	assert.True(t, isBackupFile("am.toml.back3"))
	assert.False(t, isBackupFile("/x/am.toml"))
	assert.False(t, isBackupFile("am.toml.back4"))
}
