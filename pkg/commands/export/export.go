// Package export implements `modsync export`: writing a manifest of the
// local collection with freshly computed checksums.
package export

import (
	"sort"

	"github.com/arthur-debert/modsync/pkg/checksum"
	"github.com/arthur-debert/modsync/pkg/commands"
	"github.com/arthur-debert/modsync/pkg/descriptor"
	"github.com/arthur-debert/modsync/pkg/logging"
	"github.com/arthur-debert/modsync/pkg/manifest"
	"github.com/arthur-debert/modsync/pkg/ui"
)

// Options holds options for the export command.
type Options struct {
	// ManifestPath is where the manifest is written.
	ManifestPath string
}

// Run scans the collection, computes a checksum per item and writes the
// manifest.
func Run(opts Options) error {
	logger := logging.GetLogger("commands.export")

	rt, err := commands.NewRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	descriptors, err := descriptor.LoadAll(rt.CollectionDir)
	if err != nil {
		return err
	}
	ui.Printf("Found %d local items", len(descriptors))
	if len(descriptors) > 0 {
		ui.Printf("Calculating checksums ...")
	}

	ids := make([]string, 0, len(descriptors))
	for id := range descriptors {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var mods []manifest.Mod
	for _, id := range ids {
		sum, err := checksum.Tree(rt.ItemDir(id))
		if err != nil {
			return err
		}
		logger.Debug().Str("id", id).Str("checksum", sum).Msg("Checksummed item")
		mods = append(mods, manifest.Mod{
			ID:       id,
			Name:     descriptors[id].Name,
			Checksum: sum,
		})
	}

	ui.Printf("Writing manifest to %s", opts.ManifestPath)
	if err := manifest.Save(opts.ManifestPath, &manifest.Manifest{Mods: mods}); err != nil {
		return err
	}
	ui.Success("Done")
	return nil
}
