// Package manifest reads and writes the portable mod list used to
// reproduce a collection elsewhere.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/modsync/pkg/errors"
)

// Mod is one desired item: a stable workshop id plus an optional display
// name and an optional tree checksum to compare against.
type Mod struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Checksum string `json:"checksum,omitempty" yaml:"checksum,omitempty"`
}

// Manifest is the document: a flat list of mods.
type Manifest struct {
	Mods []Mod `json:"mods" yaml:"mods"`
}

// Load reads a manifest from path. JSON is the native format; files ending
// in .yaml or .yml are parsed as YAML. Duplicate ids are a caller error and
// rejected here so later stages can assume id uniqueness.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "failed to read manifest %s", path)
	}

	var m Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	default:
		err = json.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "failed to parse manifest %s", path)
	}

	seen := make(map[string]bool, len(m.Mods))
	for _, mod := range m.Mods {
		if mod.ID == "" {
			return nil, errors.Newf(errors.ErrManifestParse, "manifest %s has an entry without an id", path)
		}
		if seen[mod.ID] {
			return nil, errors.Newf(errors.ErrManifestParse, "manifest %s lists id %q more than once", path, mod.ID)
		}
		seen[mod.ID] = true
	}
	return &m, nil
}

// Save writes the manifest to path as pretty-printed JSON, entries sorted
// by id for stable diffs.
func Save(path string, m *Manifest) error {
	mods := make([]Mod, len(m.Mods))
	copy(mods, m.Mods)
	sort.Slice(mods, func(i, j int) bool { return mods[i].ID < mods[j].ID })

	data, err := json.MarshalIndent(Manifest{Mods: mods}, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to serialize manifest")
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to write manifest %s", path)
	}
	return nil
}
