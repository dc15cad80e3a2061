package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modsync/pkg/errors"
)

func TestLoadCreatesDefaultAndFailsOnEmptyKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrWebAPIKeyMissing))

	// The default file was still written so the user can fill in the key.
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), "collection_path")
	assert.Contains(t, string(data), "steam_webapi_key")
}

func TestLoadValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(
		"collection_path = '/srv/mods'\nsteam_webapi_key = 'secret'\napp_id = '440'\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/mods", cfg.CollectionPath)
	assert.Equal(t, "secret", cfg.SteamWebAPIKey)
	assert.Equal(t, "440", cfg.AppID)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("steam_webapi_key = 'secret'\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mods", cfg.CollectionPath)
	assert.Equal(t, DefaultAppID, cfg.AppID)
}

func TestLoadBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("steam_webapi_key = \n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}
