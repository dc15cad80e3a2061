package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modsync/pkg/manifest"
	"github.com/arthur-debert/modsync/pkg/workshop"
)

func localChecksums(sums map[string]string) LocalChecksum {
	return func(id string) (string, bool, error) {
		sum, ok := sums[id]
		return sum, ok, nil
	}
}

func TestPlanImport(t *testing.T) {
	mods := []manifest.Mod{
		{ID: "1", Name: "Match", Checksum: "X"},
		{ID: "2", Name: "Mismatch", Checksum: "X"},
		{ID: "3", Name: "NoChecksum"},
		{ID: "4", Name: "NotLocal", Checksum: "X"},
	}
	plan, err := PlanImport(mods, localChecksums(map[string]string{
		"1": "X",
		"2": "Y",
	}))
	require.NoError(t, err)

	require.Len(t, plan.Skipped, 1)
	assert.Equal(t, "1", plan.Skipped[0].ID)
	assert.Equal(t, ActionSkip, plan.Skipped[0].Action)

	require.Len(t, plan.Download, 3)
	byID := make(map[string]Decision)
	for _, d := range plan.Download {
		byID[d.ID] = d
		assert.Equal(t, ActionDownload, d.Action)
	}

	assert.Contains(t, byID["2"].Reason, "Checksum mismatch")
	assert.Contains(t, byID["2"].Reason, "Y")
	assert.Contains(t, byID["2"].Reason, "X")
	assert.Equal(t, "No comparison checksum", byID["3"].Reason)
	assert.Equal(t, "No local version", byID["4"].Reason)
}

func TestPlanImportKeepsExpectedChecksum(t *testing.T) {
	plan, err := PlanImport([]manifest.Mod{{ID: "4", Checksum: "X"}}, localChecksums(nil))
	require.NoError(t, err)
	require.Len(t, plan.Download, 1)
	// The expected checksum rides along for post-download verification.
	assert.Equal(t, "X", plan.Download[0].Checksum)
}

func details(id, title string, updated time.Time) workshop.Item {
	return workshop.Item{Details: &workshop.FileDetails{
		ID: id, Title: title, TimeUpdated: updated.Unix(),
	}}
}

func TestPlanUpdate(t *testing.T) {
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	items := map[string]workshop.Item{
		"1": details("1", "Newer", t0.Add(time.Hour)),
		"2": details("2", "Older", t0.Add(-time.Hour)),
		"3": details("3", "Equal", t0),
		"4": details("4", "NoRecord", t0),
		"5": {Missing: &workshop.MissingItem{ID: "5", Result: 9}},
	}
	created := func(id string) (time.Time, bool, error) {
		if id == "4" {
			return time.Time{}, false, nil
		}
		return t0, true, nil
	}

	plan, err := PlanUpdate(items, created)
	require.NoError(t, err)

	downloadIDs := make([]string, 0, len(plan.Download))
	for _, d := range plan.Download {
		downloadIDs = append(downloadIDs, d.ID)
	}
	assert.ElementsMatch(t, []string{"1", "4"}, downloadIDs)

	skippedIDs := make([]string, 0, len(plan.Skipped))
	for _, d := range plan.Skipped {
		skippedIDs = append(skippedIDs, d.ID)
	}
	// A remote timestamp equal to the local one is not "strictly newer".
	assert.ElementsMatch(t, []string{"2", "3"}, skippedIDs)

	require.Len(t, plan.Missing, 1)
	assert.Equal(t, "5", plan.Missing[0].ID)
	assert.Equal(t, 9, plan.Missing[0].Result)
}

func TestPlanOrderingCaseInsensitiveByTitle(t *testing.T) {
	items := map[string]workshop.Item{
		"10": details("10", "banana", time.Unix(100, 0)),
		"20": details("20", "Apple", time.Unix(100, 0)),
		"30": details("30", "cherry", time.Unix(100, 0)),
		"40": {Details: &workshop.FileDetails{ID: "40", Title: "", TimeUpdated: 100}},
	}
	noRecord := func(string) (time.Time, bool, error) { return time.Time{}, false, nil }

	plan, err := PlanUpdate(items, noRecord)
	require.NoError(t, err)

	got := make([]string, 0, len(plan.Download))
	for _, d := range plan.Download {
		got = append(got, d.DisplayName())
	}
	// Untitled entries sort by their id.
	assert.Equal(t, []string{"40", "Apple", "banana", "cherry"}, got)
}
