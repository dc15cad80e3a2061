// Package checksum computes content-addressed fingerprints of directory
// trees. The digest of a tree is b64(SHA256(concat(SHA256(file) for each
// regular file))), with files visited in lexical order at every directory
// level so the result is independent of filesystem enumeration order.
package checksum

import (
	"crypto/sha256"
	"encoding/base64"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/logging"
)

// Policy controls what happens when a file under the tree cannot be read.
type Policy int

const (
	// SkipUnreadable logs a warning and leaves the file out of the digest.
	// Note that a skipped file changes the resulting checksum relative to a
	// tree where the same file is readable.
	SkipUnreadable Policy = iota

	// FailOnUnreadable aborts the computation with the read error.
	FailOnUnreadable
)

// Tree computes the checksum of the directory at root using the
// SkipUnreadable policy.
func Tree(root string) (string, error) {
	return TreeWithPolicy(root, SkipUnreadable)
}

// TreeWithPolicy computes the checksum of the directory at root. It fails
// only if the root itself cannot be traversed (or, under FailOnUnreadable,
// if any file cannot be read). An empty tree yields the digest of an empty
// buffer, which is a valid, deterministic result.
func TreeWithPolicy(root string, policy Policy) (string, error) {
	logger := logging.GetLogger("checksum")

	combined := make([]byte, 0, sha256.Size*16)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if policy == FailOnUnreadable {
				return err
			}
			logger.Warn().Err(err).Str("path", path).Msg("Cannot traverse entry, skipping")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		digest, err := fileDigest(path)
		if err != nil {
			if policy == FailOnUnreadable {
				return err
			}
			logger.Warn().Err(err).Str("path", path).Msg("Cannot read file, skipping")
			return nil
		}
		combined = append(combined, digest...)
		return nil
	})
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrChecksum, "failed to checksum %s", root)
	}

	final := sha256.Sum256(combined)
	return base64.StdEncoding.EncodeToString(final[:]), nil
}

// fileDigest returns the SHA256 digest of the file's full byte content.
func fileDigest(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return nil, err
	}
	return hash.Sum(nil), nil
}
