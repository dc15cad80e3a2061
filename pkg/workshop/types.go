// Package workshop talks to the Steam Web API published-file service and
// resolves transitive dependency closures over it.
package workshop

import (
	"encoding/json"
	"time"

	"github.com/arthur-debert/modsync/pkg/errors"
)

// FileDetails is the full metadata the service returns for a known item.
type FileDetails struct {
	ID          string
	Title       string
	TimeUpdated int64
	Children    []string
}

// Updated returns the last-updated timestamp normalized to UTC.
func (d *FileDetails) Updated() time.Time {
	return time.Unix(d.TimeUpdated, 0).UTC()
}

// MissingItem marks an id the service could not resolve, carrying the
// numeric result code it reported.
type MissingItem struct {
	ID     string
	Result int
}

// Item is the tagged union of the two response shapes: exactly one of
// Details or Missing is set. The two cases are discriminated by structure
// (a full record carries a title), not by the result code alone.
type Item struct {
	Details *FileDetails
	Missing *MissingItem
}

// IsMissing reports whether this item resolved to a missing-item marker.
func (it Item) IsMissing() bool {
	return it.Missing != nil
}

// ID returns the item id regardless of which arm is set.
func (it Item) ID() string {
	if it.Details != nil {
		return it.Details.ID
	}
	if it.Missing != nil {
		return it.Missing.ID
	}
	return ""
}

// UnmarshalJSON decodes a publishedfiledetails element into whichever arm
// its shape matches.
func (it *Item) UnmarshalJSON(data []byte) error {
	var probe struct {
		PublishedFileID string  `json:"publishedfileid"`
		Result          int     `json:"result"`
		Title           *string `json:"title"`
		TimeUpdated     int64   `json:"time_updated"`
		Children        []struct {
			PublishedFileID string `json:"publishedfileid"`
		} `json:"children"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return errors.Wrap(err, errors.ErrWebAPIParse, "failed to decode published file details element")
	}
	if probe.PublishedFileID == "" {
		return errors.New(errors.ErrWebAPIParse, "published file details element has no publishedfileid")
	}

	if probe.Title == nil {
		it.Details = nil
		it.Missing = &MissingItem{ID: probe.PublishedFileID, Result: probe.Result}
		return nil
	}

	details := &FileDetails{
		ID:          probe.PublishedFileID,
		Title:       *probe.Title,
		TimeUpdated: probe.TimeUpdated,
	}
	for _, c := range probe.Children {
		details.Children = append(details.Children, c.PublishedFileID)
	}
	it.Details = details
	it.Missing = nil
	return nil
}
