// Package importcmd implements `modsync import`: reconciling the local
// collection against a manifest and downloading what differs.
package importcmd

import (
	"github.com/arthur-debert/modsync/pkg/commands"
	"github.com/arthur-debert/modsync/pkg/logging"
	"github.com/arthur-debert/modsync/pkg/manifest"
	"github.com/arthur-debert/modsync/pkg/reconcile"
	"github.com/arthur-debert/modsync/pkg/ui"
)

// Options holds options for the import command.
type Options struct {
	// ManifestPath is the manifest to import.
	ManifestPath string

	// AssumeYes skips the confirmation prompt.
	AssumeYes bool

	// SkipVerify disables post-download checksum verification.
	SkipVerify bool
}

// Run reconciles and downloads. The returned count is the number of
// per-item errors; a nonzero count is reported, not an error return.
func Run(opts Options) (int, error) {
	logger := logging.GetLogger("commands.import")

	rt, err := commands.NewRuntime()
	if err != nil {
		return 0, err
	}
	defer rt.Close()

	m, err := manifest.Load(opts.ManifestPath)
	if err != nil {
		return 0, err
	}

	plan, err := reconcile.PlanImport(m.Mods, rt.LocalChecksum)
	if err != nil {
		return 0, err
	}

	ui.Printf("%d items match and %d items to be downloaded",
		len(m.Mods)-len(plan.Download), len(plan.Download))
	if len(plan.Download) == 0 {
		ui.Printf("Nothing to be done, exiting")
		return 0, nil
	}

	ui.Printf("%s", ui.RenderPlan(plan))
	ok, err := ui.Confirm("Download these items?", opts.AssumeYes)
	if err != nil {
		return 0, err
	}
	if !ok {
		ui.Printf("Aborting")
		return 0, nil
	}

	errCount := reconcile.Execute(plan.Download, rt.ExecDeps(opts.SkipVerify))
	if errCount != 0 {
		logger.Error().Int("errors", errCount).Msg("Import finished with errors")
		ui.Failure("Done with %d errors", errCount)
	} else {
		ui.Success("Done")
	}
	return errCount, nil
}
