package workshop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService builds a FetchFunc over a static graph, counting how often
// each id is requested.
type fakeService struct {
	graph   map[string]Item
	fetched map[string]int
	batches [][]string
}

func newFakeService() *fakeService {
	return &fakeService{
		graph:   make(map[string]Item),
		fetched: make(map[string]int),
	}
}

func (s *fakeService) details(id, title string, children ...string) {
	s.graph[id] = Item{Details: &FileDetails{ID: id, Title: title, Children: children}}
}

func (s *fakeService) missing(id string, result int) {
	s.graph[id] = Item{Missing: &MissingItem{ID: id, Result: result}}
}

func (s *fakeService) fetch(_ context.Context, ids []string) (map[string]Item, error) {
	s.batches = append(s.batches, append([]string(nil), ids...))
	out := make(map[string]Item, len(ids))
	for _, id := range ids {
		s.fetched[id]++
		if item, ok := s.graph[id]; ok {
			out[id] = item
		} else {
			out[id] = Item{Missing: &MissingItem{ID: id, Result: 9}}
		}
	}
	return out, nil
}

func TestResolveClosureCycleTerminates(t *testing.T) {
	svc := newFakeService()
	svc.details("A", "a", "B")
	svc.details("B", "b", "A")

	result, err := ResolveClosure(context.Background(), []string{"A"}, svc.fetch)
	require.NoError(t, err)

	require.Len(t, result, 2)
	assert.Contains(t, result, "A")
	assert.Contains(t, result, "B")
	assert.Equal(t, 1, svc.fetched["A"])
	assert.Equal(t, 1, svc.fetched["B"])
}

func TestResolveClosureSharedChildFetchedOnce(t *testing.T) {
	svc := newFakeService()
	svc.details("A", "a", "C")
	svc.details("B", "b", "C")
	svc.details("C", "c")

	result, err := ResolveClosure(context.Background(), []string{"A", "B"}, svc.fetch)
	require.NoError(t, err)

	assert.Len(t, result, 3)
	for id, count := range svc.fetched {
		assert.Equalf(t, 1, count, "id %s fetched %d times", id, count)
	}
}

func TestResolveClosureMissingStoredNotError(t *testing.T) {
	svc := newFakeService()
	svc.details("A", "a", "GONE")
	svc.missing("GONE", 9)

	result, err := ResolveClosure(context.Background(), []string{"A"}, svc.fetch)
	require.NoError(t, err)

	require.Contains(t, result, "GONE")
	assert.True(t, result["GONE"].IsMissing())
	assert.Equal(t, 9, result["GONE"].Missing.Result)
}

func TestResolveClosureBatching(t *testing.T) {
	svc := newFakeService()
	roots := []string{"a", "b", "c", "d", "e", "f", "g"}
	for _, id := range roots {
		svc.details(id, id)
	}

	result, err := ResolveClosure(context.Background(), roots, svc.fetch)
	require.NoError(t, err)
	assert.Len(t, result, len(roots))

	require.Len(t, svc.batches, 2)
	assert.Len(t, svc.batches[0], BatchSize)
	assert.Len(t, svc.batches[1], 2)
	// Sorted frontier makes request order deterministic.
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, svc.batches[0])
	assert.Equal(t, []string{"f", "g"}, svc.batches[1])
}

func TestResolveClosureDuplicateRoots(t *testing.T) {
	svc := newFakeService()
	svc.details("A", "a")

	result, err := ResolveClosure(context.Background(), []string{"A", "A"}, svc.fetch)
	require.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, 1, svc.fetched["A"])
}

func TestResolveClosureEmptyRoots(t *testing.T) {
	svc := newFakeService()
	result, err := ResolveClosure(context.Background(), nil, svc.fetch)
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.Empty(t, svc.batches)
}
