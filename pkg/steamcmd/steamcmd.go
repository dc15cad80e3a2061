// Package steamcmd manages the steamcmd download helper: installing it,
// driving per-item downloads through the process supervisor, and moving
// finished downloads into the managed collection.
package steamcmd

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/logging"
	"github.com/arthur-debert/modsync/pkg/paths"
	"github.com/arthur-debert/modsync/pkg/worker"
)

// Archive locations published by Valve, per platform.
const (
	windowsArchiveURL = "https://steamcdn-a.akamaihd.net/client/installer/steamcmd.zip"
	linuxArchiveURL   = "https://steamcdn-a.akamaihd.net/client/installer/steamcmd_linux.tar.gz"
	darwinArchiveURL  = "https://steamcdn-a.akamaihd.net/client/installer/steamcmd_osx.tar.gz"
)

// Manager locates and drives the steamcmd installation for one app id.
type Manager struct {
	paths *paths.Paths
	appID string
}

// NewManager creates a Manager over the given paths and workshop app id.
func NewManager(p *paths.Paths, appID string) *Manager {
	return &Manager{paths: p, appID: appID}
}

// EnsureInstalled fails with NOT_INITIALIZED when the steamcmd executable
// is absent. Operations that need the helper call this first so the user
// gets pointed at `modsync init` instead of a spawn error.
func (m *Manager) EnsureInstalled() error {
	exe := m.paths.SteamCmdExe()
	if info, err := os.Stat(exe); err != nil || info.IsDir() {
		return errors.Newf(errors.ErrNotInitialized, "steamcmd not found at %s, run `modsync init` first", exe)
	}
	return nil
}

// Install removes any existing steamcmd installation, downloads and
// extracts a fresh one, and spawns `steamcmd +quit` so it can self-update.
// The returned process is live; the caller streams its output and waits.
func (m *Manager) Install(ctx context.Context) (*worker.Process, error) {
	logger := logging.GetLogger("steamcmd")

	dir := m.paths.SteamCmdDir()
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		logger.Trace().Str("dir", dir).Msg("Removing existing steamcmd installation")
		if err := os.RemoveAll(dir); err != nil {
			return nil, errors.Wrapf(err, errors.ErrInternal, "failed to remove existing installation at %s", dir)
		}
	}

	if err := downloadAndExtract(ctx, archiveURL(), dir); err != nil {
		return nil, err
	}

	return worker.Spawn([]string{m.paths.SteamCmdExe(), "+quit"})
}

// DownloadItem spawns a steamcmd run that downloads one workshop item.
func (m *Manager) DownloadItem(id string) (*worker.Process, error) {
	if err := m.EnsureInstalled(); err != nil {
		return nil, err
	}
	return worker.Spawn([]string{
		m.paths.SteamCmdExe(),
		"+login", "anonymous",
		"+workshop_download_item", m.appID, id,
		"+quit",
	})
}

// DownloadedPath is where steamcmd leaves a finished workshop download.
func (m *Manager) DownloadedPath(id string) string {
	return filepath.Join(m.paths.SteamCmdDir(), "steamapps", "workshop", "content", m.appID, id)
}

// CopyDownloaded moves the finished download for id into the collection,
// replacing any pre-existing destination. The copy is staged into a temp
// sibling and swapped in, so the destination is never observable
// half-written.
func (m *Manager) CopyDownloaded(id, collectionDir string) error {
	logger := logging.GetLogger("steamcmd")

	source := m.DownloadedPath(id)
	if info, err := os.Stat(source); err != nil || !info.IsDir() {
		return errors.Newf(errors.ErrFileNotFound, "directory %s not found", source)
	}

	dest := filepath.Join(collectionDir, id)
	staging := filepath.Join(collectionDir, ".staging-"+id)
	logger.Trace().Str("source", source).Str("dest", dest).Msg("Copying downloaded item")

	_ = os.RemoveAll(staging)
	if err := copyTree(source, staging); err != nil {
		_ = os.RemoveAll(staging)
		return errors.Wrapf(err, errors.ErrCopy, "failed to stage copy of %s", id)
	}
	if err := os.RemoveAll(dest); err != nil {
		_ = os.RemoveAll(staging)
		return errors.Wrapf(err, errors.ErrCopy, "failed to replace destination %s", dest)
	}
	if err := os.Rename(staging, dest); err != nil {
		_ = os.RemoveAll(staging)
		return errors.Wrapf(err, errors.ErrCopy, "failed to move %s into place", id)
	}
	return nil
}

// PurgeCache removes steamcmd's per-app workshop caches. steamcmd keeps
// downloaded content around for its own dependency checking; once items
// are copied out, the cache only costs disk space.
func (m *Manager) PurgeCache() error {
	for _, sub := range []string{"content", "downloads"} {
		dir := filepath.Join(m.paths.SteamCmdDir(), "steamapps", "workshop", sub, m.appID)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "failed to remove cache directory %s", dir)
		}
	}
	return nil
}

func archiveURL() string {
	switch runtime.GOOS {
	case "windows":
		return windowsArchiveURL
	case "darwin":
		return darwinArchiveURL
	default:
		return linuxArchiveURL
	}
}
