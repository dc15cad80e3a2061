// Package config loads and validates the modsync configuration file.
package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/logging"
)

// DefaultAppID is the Steam app whose workshop the collection belongs to
// (Stellaris).
const DefaultAppID = "281990"

// Config holds the user-editable settings read from config.toml.
type Config struct {
	// CollectionPath is where managed mod folders live. Relative paths are
	// resolved under the modsync data directory.
	CollectionPath string `toml:"collection_path"`

	// SteamWebAPIKey authenticates metadata requests. Required.
	SteamWebAPIKey string `toml:"steam_webapi_key"`

	// AppID selects the workshop. Defaults to DefaultAppID when empty.
	AppID string `toml:"app_id"`
}

// Default returns the configuration written when no config file exists yet.
func Default() Config {
	return Config{
		CollectionPath: "mods",
		AppID:          DefaultAppID,
	}
}

// Load reads the config file at path, creating a default one first if it
// does not exist. An empty steam_webapi_key is a fatal configuration error:
// every remote operation needs it, so the run must not start.
func Load(path string) (*Config, error) {
	logger := logging.GetLogger("config")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Warn().Str("path", path).Msg("Config file does not exist, creating default")
		if err := write(path, Default()); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read config file %s", path)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config file %s", path)
	}

	if cfg.AppID == "" {
		cfg.AppID = DefaultAppID
	}
	if cfg.CollectionPath == "" {
		cfg.CollectionPath = Default().CollectionPath
	}

	if cfg.SteamWebAPIKey == "" {
		return nil, errors.Newf(errors.ErrWebAPIKeyMissing,
			"empty steam_webapi_key in %s, acquire one from https://steamcommunity.com/dev/apikey", path)
	}

	return &cfg, nil
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to serialize default config")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "failed to write config file %s", path)
	}
	return nil
}
