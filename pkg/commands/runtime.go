// Package commands wires the shared environment every modsync command
// operates in: resolved paths, validated configuration, the collection
// directory, the sync-state store and the steamcmd manager.
package commands

import (
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/modsync/pkg/checksum"
	"github.com/arthur-debert/modsync/pkg/config"
	"github.com/arthur-debert/modsync/pkg/paths"
	"github.com/arthur-debert/modsync/pkg/reconcile"
	"github.com/arthur-debert/modsync/pkg/state"
	"github.com/arthur-debert/modsync/pkg/steamcmd"
	"github.com/arthur-debert/modsync/pkg/ui"
)

// Runtime is the assembled environment for one command invocation.
type Runtime struct {
	Paths         *paths.Paths
	Config        *config.Config
	CollectionDir string
	Store         *state.Store
	SteamCmd      *steamcmd.Manager
}

// NewRuntime resolves paths, loads (or creates) the config, opens the
// state store and prepares the steamcmd manager. Configuration errors are
// fatal here, before any operation starts.
func NewRuntime() (*Runtime, error) {
	p, err := paths.New()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(p.ConfigFile())
	if err != nil {
		return nil, err
	}
	collectionDir, err := p.CollectionDir(cfg.CollectionPath)
	if err != nil {
		return nil, err
	}
	store, err := state.Open(p.StateDB())
	if err != nil {
		return nil, err
	}

	return &Runtime{
		Paths:         p,
		Config:        cfg,
		CollectionDir: collectionDir,
		Store:         store,
		SteamCmd:      steamcmd.NewManager(p, cfg.AppID),
	}, nil
}

// Close releases the runtime's resources.
func (r *Runtime) Close() {
	if r.Store != nil {
		_ = r.Store.Close()
	}
}

// ItemDir returns the collection folder of an item id.
func (r *Runtime) ItemDir(id string) string {
	return filepath.Join(r.CollectionDir, id)
}

// LocalChecksum computes the tree checksum of a local item copy,
// reporting exists=false when the item has no folder.
func (r *Runtime) LocalChecksum(id string) (string, bool, error) {
	dir := r.ItemDir(id)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", false, nil
	}
	sum, err := checksum.Tree(dir)
	if err != nil {
		return "", false, err
	}
	return sum, true, nil
}

// LocalCreated reports the recorded download time of an item, ok=false
// when nothing is on record.
func (r *Runtime) LocalCreated(id string) (time.Time, bool, error) {
	rec, ok, err := r.Store.Get(id)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	return rec.DownloadedAt, true, nil
}

// ExecDeps builds the execution dependencies for reconcile.Execute over
// this runtime.
func (r *Runtime) ExecDeps(skipVerify bool) reconcile.ExecDeps {
	return reconcile.ExecDeps{
		Spawn: func(id string) (reconcile.Handle, error) {
			return r.SteamCmd.DownloadItem(id)
		},
		Copy: func(id string) error {
			return r.SteamCmd.CopyDownloaded(id, r.CollectionDir)
		},
		Checksum: func(id string) (string, error) {
			return checksum.Tree(r.ItemDir(id))
		},
		Record: func(id, sum string, at time.Time) error {
			return r.Store.Put(id, state.Record{DownloadedAt: at, Checksum: sum})
		},
		SkipVerify: skipVerify,
		Printf:     ui.Printf,
	}
}
