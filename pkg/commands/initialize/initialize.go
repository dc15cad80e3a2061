// Package initialize implements `modsync init`: a fresh steamcmd
// installation in the managed data directory.
package initialize

import (
	"context"

	"github.com/arthur-debert/modsync/pkg/commands"
	"github.com/arthur-debert/modsync/pkg/logging"
	"github.com/arthur-debert/modsync/pkg/ui"
)

// Options holds options for the init command.
type Options struct{}

// Run installs (or reinstalls) steamcmd and lets it self-update once,
// streaming its output to the log.
func Run(ctx context.Context, _ Options) error {
	logger := logging.GetLogger("commands.initialize")

	rt, err := commands.NewRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ui.Printf("Installing steamcmd")
	proc, err := rt.SteamCmd.Install(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = proc.Close()
	}()

	lines := proc.TakeOutput()
	go func() {
		for line := range lines {
			logger.Info().Msg(line)
		}
	}()

	if err := proc.Wait(); err != nil {
		return err
	}

	ui.Success("steamcmd installed")
	return nil
}
