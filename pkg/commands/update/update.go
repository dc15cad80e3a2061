// Package update implements `modsync update`: downloading the freshest
// remote version of everything already present locally, dependencies
// included.
package update

import (
	"context"

	"github.com/arthur-debert/modsync/pkg/commands"
	"github.com/arthur-debert/modsync/pkg/descriptor"
	"github.com/arthur-debert/modsync/pkg/logging"
	"github.com/arthur-debert/modsync/pkg/reconcile"
	"github.com/arthur-debert/modsync/pkg/ui"
	"github.com/arthur-debert/modsync/pkg/workshop"
)

// Options holds options for the update command.
type Options struct {
	// AssumeYes skips the confirmation prompt.
	AssumeYes bool

	// SkipVerify disables post-download checksum verification.
	SkipVerify bool
}

// Run resolves the dependency closure of the local collection, schedules
// whatever is newer upstream, and downloads it. The returned count is the
// number of per-item errors (including unresolvable items).
func Run(ctx context.Context, opts Options) (int, error) {
	logger := logging.GetLogger("commands.update")

	rt, err := commands.NewRuntime()
	if err != nil {
		return 0, err
	}
	defer rt.Close()

	descriptors, err := descriptor.LoadAll(rt.CollectionDir)
	if err != nil {
		return 0, err
	}
	if len(descriptors) == 0 {
		ui.Printf("No local items, nothing to update")
		return 0, nil
	}

	roots := make([]string, 0, len(descriptors))
	for id, d := range descriptors {
		// The folder name is the workshop id; a descriptor may also pin one
		// explicitly.
		if d.RemoteFileID != "" {
			roots = append(roots, d.RemoteFileID)
		} else {
			roots = append(roots, id)
		}
	}
	logger.Info().Int("roots", len(roots)).Msg("Resolving dependency closure")

	client := workshop.NewClient(rt.Config.SteamWebAPIKey, rt.Config.AppID)
	items, err := workshop.ResolveClosure(ctx, roots, client.GetDetails)
	if err != nil {
		return 0, err
	}

	plan, err := reconcile.PlanUpdate(items, rt.LocalCreated)
	if err != nil {
		return 0, err
	}

	ui.Printf("%d items up to date, %d items to be downloaded",
		len(plan.Skipped), len(plan.Download))
	if len(plan.Download) == 0 && len(plan.Missing) == 0 {
		ui.Printf("Nothing to be done, exiting")
		return 0, nil
	}
	ui.Printf("%s", ui.RenderPlan(plan))

	errCount := len(plan.Missing)
	if len(plan.Download) > 0 {
		ok, err := ui.Confirm("Download these items?", opts.AssumeYes)
		if err != nil {
			return errCount, err
		}
		if !ok {
			ui.Printf("Aborting")
			return 0, nil
		}
		errCount += reconcile.Execute(plan.Download, rt.ExecDeps(opts.SkipVerify))
	}

	if errCount != 0 {
		logger.Error().Int("errors", errCount).Msg("Update finished with errors")
		ui.Failure("Done with %d errors", errCount)
	} else {
		ui.Success("Done")
	}
	return errCount, nil
}
