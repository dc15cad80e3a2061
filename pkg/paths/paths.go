// Package paths provides centralized path handling for modsync.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for all path operations in the codebase.
package paths

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/modsync/pkg/errors"
)

// Environment variable names
const (
	// EnvDataDir overrides the XDG data directory for modsync
	EnvDataDir = "MODSYNC_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory for modsync
	EnvConfigDir = "MODSYNC_CONFIG_DIR"
)

// Directory and file names inside the modsync data dir. These are not
// user-configurable; the collection location is (see pkg/config).
const (
	appDirName      = "modsync"
	steamCmdDirName = "steamcmd"
	stateDBName     = "state.db"
	configFileName  = "config.toml"
)

// Paths resolves every location modsync reads or writes.
type Paths struct {
	dataDir   string
	configDir string
}

// New creates a Paths instance, honoring MODSYNC_DATA_DIR and
// MODSYNC_CONFIG_DIR before falling back to the XDG base directories.
func New() (*Paths, error) {
	dataDir := os.Getenv(EnvDataDir)
	if dataDir == "" {
		dataDir = filepath.Join(xdg.DataHome, appDirName)
	}
	configDir := os.Getenv(EnvConfigDir)
	if configDir == "" {
		configDir = filepath.Join(xdg.ConfigHome, appDirName)
	}

	for _, dir := range []string{dataDir, configDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, errors.ErrInternal, "failed to create directory %s", dir)
		}
	}

	return &Paths{dataDir: dataDir, configDir: configDir}, nil
}

// DataDir returns the modsync data directory
func (p *Paths) DataDir() string {
	return p.dataDir
}

// ConfigFile returns the path of the TOML config file
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.configDir, configFileName)
}

// StateDB returns the path of the bbolt sync-state database
func (p *Paths) StateDB() string {
	return filepath.Join(p.dataDir, stateDBName)
}

// SteamCmdDir returns the directory holding the steamcmd installation
func (p *Paths) SteamCmdDir() string {
	return filepath.Join(p.dataDir, steamCmdDirName)
}

// SteamCmdExe returns the path of the steamcmd executable for this platform
func (p *Paths) SteamCmdExe() string {
	name := "steamcmd.sh"
	if runtime.GOOS == "windows" {
		name = "steamcmd.exe"
	}
	return filepath.Join(p.SteamCmdDir(), name)
}

// CollectionDir resolves the configured collection path. Relative paths live
// under the data dir. The directory is created if it does not exist.
func (p *Paths) CollectionDir(configured string) (string, error) {
	dir := configured
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(p.dataDir, dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrInternal, "failed to create collection directory %s", dir)
	}
	return dir, nil
}
