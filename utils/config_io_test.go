package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triage-bot/model"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigStoreMissingFile(t *testing.T) {
	_, err := LoadConfigStore(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestUpdatePersistsAcrossReload(t *testing.T) {
	path := writeTestConfig(t, `{"token": "tok"}`)

	store, err := LoadConfigStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Update(func(cfg *model.Config) error {
		cfg.ServerPrefixes["guild-1"] = "$"
		return nil
	}))

	reloaded, err := LoadConfigStore(path)
	require.NoError(t, err)
	reloaded.View(func(cfg *model.Config) {
		assert.Equal(t, "$", cfg.PrefixFor("guild-1"))
	})
}

func TestUpdateErrorSkipsPersist(t *testing.T) {
	path := writeTestConfig(t, `{"token": "tok"}`)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	store, err := LoadConfigStore(path)
	require.NoError(t, err)

	err = store.Update(func(cfg *model.Config) error {
		cfg.ServerPrefixes["guild-1"] = "$"
		return ErrNoChange
	})
	assert.ErrorIs(t, err, ErrNoChange)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestEnsureReadChannelsCreatesOnce(t *testing.T) {
	path := writeTestConfig(t, `{"token": "tok"}`)

	store, err := LoadConfigStore(path)
	require.NoError(t, err)

	created, err := store.EnsureReadChannels("guild-1")
	require.NoError(t, err)
	assert.True(t, created)

	// Second call is a no-op, not an error.
	created, err = store.EnsureReadChannels("guild-1")
	require.NoError(t, err)
	assert.False(t, created)

	// The empty list survives a reload, so the guild stays registered.
	reloaded, err := LoadConfigStore(path)
	require.NoError(t, err)
	reloaded.View(func(cfg *model.Config) {
		channels, ok := cfg.OCRReadChannels["guild-1"]
		assert.True(t, ok)
		assert.Empty(t, channels)
	})
}

func TestEnsureResponseChannelsCreatesOnce(t *testing.T) {
	path := writeTestConfig(t, `{"token": "tok", "ocr_response_channels": {"guild-1": [42]}}`)

	store, err := LoadConfigStore(path)
	require.NoError(t, err)

	created, err := store.EnsureResponseChannels("guild-1")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = store.EnsureResponseChannels("guild-2")
	require.NoError(t, err)
	assert.True(t, created)

	store.View(func(cfg *model.Config) {
		assert.Equal(t, []int64{42}, cfg.OCRResponseChannels["guild-1"])
	})
}

func TestApplyOverridesDoesNotPersist(t *testing.T) {
	path := writeTestConfig(t, `{"token": ""}`)

	store, err := LoadConfigStore(path)
	require.NoError(t, err)

	store.ApplyOverrides(func(cfg *model.Config) {
		cfg.Token = "env-token"
	})
	store.View(func(cfg *model.Config) {
		assert.Equal(t, "env-token", cfg.Token)
	})

	reloaded, err := LoadConfigStore(path)
	require.NoError(t, err)
	reloaded.View(func(cfg *model.Config) {
		assert.Empty(t, cfg.Token)
	})
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	path := writeTestConfig(t, `{"token": "tok"}`)

	store, err := LoadConfigStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Update(func(cfg *model.Config) error {
		cfg.ServerPrefixes["g"] = "?"
		return nil
	}))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "config.json", entries[0].Name())
}
