package workshop

import (
	"context"
	"sort"

	"github.com/arthur-debert/modsync/pkg/logging"
)

// BatchSize is the number of ids per metadata request. Each id adds an
// indexed query parameter, so the batch size bounds the query-string length
// against service limits.
const BatchSize = 5

// FetchFunc fetches metadata for one batch of ids.
type FetchFunc func(ctx context.Context, ids []string) (map[string]Item, error)

// ResolveClosure expands the root id set across the metadata service until
// the full transitive child closure is known. Batches are issued
// sequentially; each id is queried at most once per call, so shared
// children and reference cycles terminate. MissingItem results are stored
// like any other result — interpreting them is the caller's concern.
func ResolveClosure(ctx context.Context, roots []string, fetch FetchFunc) (map[string]Item, error) {
	logger := logging.GetLogger("workshop.resolver")

	result := make(map[string]Item)
	queried := make(map[string]bool, len(roots))

	frontier := make([]string, 0, len(roots))
	for _, id := range roots {
		if !queried[id] {
			queried[id] = true
			frontier = append(frontier, id)
		}
	}

	for len(frontier) > 0 {
		// Sorted frontier keeps request order deterministic.
		sort.Strings(frontier)
		logger.Debug().Int("frontier", len(frontier)).Msg("Resolving dependency frontier")

		var discovered []string
		for start := 0; start < len(frontier); start += BatchSize {
			end := start + BatchSize
			if end > len(frontier) {
				end = len(frontier)
			}
			batch, err := fetch(ctx, frontier[start:end])
			if err != nil {
				return nil, err
			}

			for id, item := range batch {
				result[id] = item
			}
			for _, item := range batch {
				if item.Details == nil {
					continue
				}
				for _, child := range item.Details.Children {
					if queried[child] {
						continue
					}
					if _, known := result[child]; known {
						continue
					}
					queried[child] = true
					discovered = append(discovered, child)
				}
			}
		}

		frontier = discovered
	}

	logger.Debug().Int("resolved", len(result)).Msg("Dependency closure complete")
	return result, nil
}
