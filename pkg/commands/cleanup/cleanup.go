// Package cleanup implements `modsync cleanup`: purging steamcmd's
// workshop download cache.
package cleanup

import (
	"github.com/arthur-debert/modsync/pkg/commands"
	"github.com/arthur-debert/modsync/pkg/ui"
)

// Options holds options for the cleanup command.
type Options struct{}

// Run removes the per-app workshop caches under the steamcmd directory.
func Run(_ Options) error {
	rt, err := commands.NewRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ui.Printf("Clearing steamcmd workshop cache")
	if err := rt.SteamCmd.PurgeCache(); err != nil {
		return err
	}
	ui.Success("Done")
	return nil
}
