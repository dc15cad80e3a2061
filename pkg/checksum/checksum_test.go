package checksum

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestTreeDeterminism(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")
	writeFile(t, dir, "sub/b.txt", "beta")

	first, err := Tree(dir)
	require.NoError(t, err)
	second, err := Tree(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTreeIndependentOfCreationOrder(t *testing.T) {
	forward := t.TempDir()
	writeFile(t, forward, "a.txt", "alpha")
	writeFile(t, forward, "b.txt", "beta")
	writeFile(t, forward, "sub/c.txt", "gamma")

	reverse := t.TempDir()
	writeFile(t, reverse, "sub/c.txt", "gamma")
	writeFile(t, reverse, "b.txt", "beta")
	writeFile(t, reverse, "a.txt", "alpha")

	sumForward, err := Tree(forward)
	require.NoError(t, err)
	sumReverse, err := Tree(reverse)
	require.NoError(t, err)
	assert.Equal(t, sumForward, sumReverse)
}

func TestTreeSensitivity(t *testing.T) {
	base := func(t *testing.T) string {
		dir := t.TempDir()
		writeFile(t, dir, "a.txt", "alpha")
		writeFile(t, dir, "b.txt", "beta")
		return dir
	}

	dir := base(t)
	original, err := Tree(dir)
	require.NoError(t, err)

	t.Run("content change", func(t *testing.T) {
		dir := base(t)
		writeFile(t, dir, "a.txt", "alphb")
		sum, err := Tree(dir)
		require.NoError(t, err)
		assert.NotEqual(t, original, sum)
	})

	t.Run("added file", func(t *testing.T) {
		dir := base(t)
		writeFile(t, dir, "c.txt", "gamma")
		sum, err := Tree(dir)
		require.NoError(t, err)
		assert.NotEqual(t, original, sum)
	})

	t.Run("removed file", func(t *testing.T) {
		dir := base(t)
		require.NoError(t, os.Remove(filepath.Join(dir, "b.txt")))
		sum, err := Tree(dir)
		require.NoError(t, err)
		assert.NotEqual(t, original, sum)
	})

	t.Run("renamed file", func(t *testing.T) {
		dir := base(t)
		require.NoError(t, os.Rename(filepath.Join(dir, "b.txt"), filepath.Join(dir, "z.txt")))
		sum, err := Tree(dir)
		require.NoError(t, err)
		// The per-file digests are order-sensitive, so moving a file in the
		// sorted traversal changes the result even with identical content.
		assert.NotEqual(t, original, sum)
	})
}

func TestTreeEmptyDirectory(t *testing.T) {
	sum, err := Tree(t.TempDir())
	require.NoError(t, err)

	// SHA256 of an empty buffer, base64 with padding.
	assert.Equal(t, "47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=", sum)

	other, err := Tree(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, sum, other)
}

func TestTreeMissingRoot(t *testing.T) {
	_, err := Tree(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestTreeUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits do not apply to root")
	}

	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")
	writeFile(t, dir, "locked.txt", "secret")
	require.NoError(t, os.Chmod(filepath.Join(dir, "locked.txt"), 0000))
	t.Cleanup(func() {
		_ = os.Chmod(filepath.Join(dir, "locked.txt"), 0644)
	})

	skipped, err := TreeWithPolicy(dir, SkipUnreadable)
	require.NoError(t, err)

	readable := t.TempDir()
	writeFile(t, readable, "a.txt", "alpha")
	onlyReadable, err := Tree(readable)
	require.NoError(t, err)
	// The skipped file is left out of the digest entirely.
	assert.Equal(t, onlyReadable, skipped)

	_, err = TreeWithPolicy(dir, FailOnUnreadable)
	assert.Error(t, err)
}
