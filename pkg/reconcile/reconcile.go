// Package reconcile turns desired, local and remote state into a download
// plan and executes it with partial-failure tolerance.
package reconcile

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/modsync/pkg/logging"
	"github.com/arthur-debert/modsync/pkg/manifest"
	"github.com/arthur-debert/modsync/pkg/workshop"
)

// Action is what the engine decided to do with one item.
type Action int

const (
	// ActionDownload schedules the item for download.
	ActionDownload Action = iota
	// ActionSkip leaves the item alone (checksum match or up to date).
	ActionSkip
	// ActionIgnore excludes the item from the run (unresolvable remotely).
	ActionIgnore
)

// Decision pairs an item with an action and a human-readable rationale.
// Decisions are transient; they are never persisted.
type Decision struct {
	ID       string
	Name     string
	Checksum string // expected checksum for post-download verification, if known
	Action   Action
	Reason   string
}

// DisplayName is what plan listings show for the decision.
func (d Decision) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// Plan is the outcome of a reconciliation pass.
type Plan struct {
	Download []Decision
	Skipped  []Decision
	Missing  []workshop.MissingItem
}

// LocalChecksum reports the tree checksum of a local item copy, with
// exists=false when there is no local copy at all.
type LocalChecksum func(id string) (sum string, exists bool, err error)

// LocalCreated reports when a local item copy was downloaded, with ok=false
// when no creation time is on record.
type LocalCreated func(id string) (created time.Time, ok bool, err error)

// PlanImport reconciles a manifest against the local collection. Entries
// without a comparison checksum are always scheduled; entries with one are
// skipped only when a local copy exists and matches.
func PlanImport(mods []manifest.Mod, local LocalChecksum) (*Plan, error) {
	logger := logging.GetLogger("reconcile")

	plan := &Plan{}
	for _, mod := range mods {
		if mod.Checksum == "" {
			plan.Download = append(plan.Download, Decision{
				ID: mod.ID, Name: mod.Name,
				Action: ActionDownload,
				Reason: "No comparison checksum",
			})
			continue
		}

		logger.Info().Str("id", mod.ID).Str("name", mod.Name).Str("checksum", mod.Checksum).
			Msg("Looking for local copy")
		localSum, exists, err := local(mod.ID)
		if err != nil {
			return nil, err
		}
		switch {
		case !exists:
			logger.Info().Str("id", mod.ID).Msg("No local version")
			plan.Download = append(plan.Download, Decision{
				ID: mod.ID, Name: mod.Name, Checksum: mod.Checksum,
				Action: ActionDownload,
				Reason: "No local version",
			})
		case localSum == mod.Checksum:
			logger.Info().Str("id", mod.ID).Msg("Local version has matching checksum, skipping")
			plan.Skipped = append(plan.Skipped, Decision{
				ID: mod.ID, Name: mod.Name, Checksum: mod.Checksum,
				Action: ActionSkip,
				Reason: "Checksum match",
			})
		default:
			logger.Info().Str("id", mod.ID).Msg("Local version has checksum mismatch, will redownload")
			plan.Download = append(plan.Download, Decision{
				ID: mod.ID, Name: mod.Name, Checksum: mod.Checksum,
				Action: ActionDownload,
				Reason: fmt.Sprintf("Checksum mismatch - %s local <=> import %s", localSum, mod.Checksum),
			})
		}
	}

	plan.sort()
	return plan, nil
}

// PlanUpdate reconciles a resolved dependency closure against the local
// collection: anything with no recorded local creation time, or remotely
// updated strictly after it, is scheduled. Missing items are collected
// separately and excluded from both lists.
func PlanUpdate(items map[string]workshop.Item, created LocalCreated) (*Plan, error) {
	logger := logging.GetLogger("reconcile")

	plan := &Plan{}
	for _, item := range items {
		if item.IsMissing() {
			logger.Warn().Str("id", item.Missing.ID).Int("result", item.Missing.Result).
				Msg("Remote item is missing")
			plan.Missing = append(plan.Missing, *item.Missing)
			continue
		}
		details := item.Details

		localTime, ok, err := created(details.ID)
		if err != nil {
			return nil, err
		}
		remoteTime := details.Updated()
		switch {
		case !ok:
			plan.Download = append(plan.Download, Decision{
				ID: details.ID, Name: details.Title,
				Action: ActionDownload,
				Reason: "No local creation time on record",
			})
		case remoteTime.After(localTime.UTC()):
			plan.Download = append(plan.Download, Decision{
				ID: details.ID, Name: details.Title,
				Action: ActionDownload,
				Reason: fmt.Sprintf("Remote updated %s, local from %s",
					remoteTime.Format(time.RFC3339), localTime.UTC().Format(time.RFC3339)),
			})
		default:
			plan.Skipped = append(plan.Skipped, Decision{
				ID: details.ID, Name: details.Title,
				Action: ActionSkip,
				Reason: "Up to date",
			})
		}
	}

	plan.sort()
	sort.Slice(plan.Missing, func(i, j int) bool { return plan.Missing[i].ID < plan.Missing[j].ID })
	return plan, nil
}

// sort orders both lists case-insensitively by display title (id when no
// title is known). The ordering is a presentation contract, relied on by
// golden-output tests.
func (p *Plan) sort() {
	for _, list := range [][]Decision{p.Download, p.Skipped} {
		sort.SliceStable(list, func(i, j int) bool {
			a := strings.ToLower(list[i].DisplayName())
			b := strings.ToLower(list[j].DisplayName())
			if a == b {
				return list[i].ID < list[j].ID
			}
			return a < b
		})
	}
}
