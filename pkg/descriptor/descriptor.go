// Package descriptor reads the descriptor.mod metadata file that Paradox
// games place inside each workshop item folder. Descriptors are read-only
// input; modsync never writes them.
package descriptor

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/logging"
)

// FileName is the descriptor file looked up inside each item folder.
const FileName = "descriptor.mod"

// Descriptor is the per-item metadata from a descriptor.mod file.
type Descriptor struct {
	Name             string
	Dependencies     []string
	RemoteFileID     string
	SupportedVersion string
	Tags             []string
	Version          string
}

// Parse reads a descriptor from its Clausewitz-style key=value text. The
// subset understood is top-level `key="value"` assignments and
// `key={ "a" "b" }` quoted-string list blocks, which covers every field a
// descriptor.mod carries.
func Parse(data []byte) (*Descriptor, error) {
	var d Descriptor
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var listKey string
	var listItems []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if listKey != "" {
			if strings.HasPrefix(line, "}") {
				d.setList(listKey, listItems)
				listKey, listItems = "", nil
				continue
			}
			listItems = append(listItems, quotedStrings(line)...)
			continue
		}

		key, rest, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		rest = strings.TrimSpace(rest)

		if strings.HasPrefix(rest, "{") {
			body := strings.TrimPrefix(rest, "{")
			if end := strings.Index(body, "}"); end >= 0 {
				d.setList(key, quotedStrings(body[:end]))
			} else {
				listKey = key
				listItems = quotedStrings(body)
			}
			continue
		}

		d.setScalar(key, unquote(rest))
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrDescriptorParse, "failed to scan descriptor")
	}
	if listKey != "" {
		return nil, errors.Newf(errors.ErrDescriptorParse, "unterminated list block %q", listKey)
	}
	if d.Name == "" {
		return nil, errors.New(errors.ErrDescriptorParse, "descriptor has no name field")
	}
	return &d, nil
}

// Load reads and parses the descriptor file inside dir.
func Load(dir string) (*Descriptor, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrFileNotFound, "no descriptor at %s", path)
		}
		return nil, errors.Wrapf(err, errors.ErrDescriptorParse, "failed to read %s", path)
	}
	return Parse(data)
}

// LoadAll scans the first level of collectionDir and returns a map of item
// id (the folder name) to descriptor, in deterministic order of discovery.
// Folders without a readable descriptor are logged and skipped; that is not
// an error for the scan as a whole.
func LoadAll(collectionDir string) (map[string]*Descriptor, error) {
	logger := logging.GetLogger("descriptor")

	entries, err := os.ReadDir(collectionDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal, "failed to read collection directory %s", collectionDir)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	found := make(map[string]*Descriptor)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id := entry.Name()
		d, err := Load(filepath.Join(collectionDir, id))
		if err != nil {
			logger.Warn().Err(err).Str("id", id).Msg("Skipping folder without usable descriptor")
			continue
		}
		found[id] = d
	}
	return found, nil
}

func (d *Descriptor) setScalar(key, value string) {
	switch key {
	case "name":
		d.Name = value
	case "remote_file_id":
		d.RemoteFileID = value
	case "supported_version":
		d.SupportedVersion = value
	case "version":
		d.Version = value
	}
}

func (d *Descriptor) setList(key string, items []string) {
	switch key {
	case "dependencies":
		d.Dependencies = items
	case "tags":
		d.Tags = items
	}
}

// quotedStrings extracts every "..." token from a line fragment.
func quotedStrings(s string) []string {
	var out []string
	for {
		start := strings.IndexByte(s, '"')
		if start < 0 {
			return out
		}
		end := strings.IndexByte(s[start+1:], '"')
		if end < 0 {
			return out
		}
		out = append(out, s[start+1:start+1+end])
		s = s[start+end+2:]
	}
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
