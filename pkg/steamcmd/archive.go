package steamcmd

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/logging"
)

// downloadAndExtract fetches the archive at url into memory and unpacks it
// under dest. The installer archives are a few megabytes, so buffering
// whole keeps the extraction logic format-agnostic.
func downloadAndExtract(ctx context.Context, url, dest string) error {
	logger := logging.GetLogger("steamcmd")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to build archive request")
	}
	logger.Trace().Str("url", url).Msg("Downloading steamcmd archive")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to download %s", url)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return errors.Newf(errors.ErrInternal, "archive download returned status %d", resp.StatusCode)
	}

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to read archive from %s", url)
	}
	logger.Trace().Int("bytes", len(buf)).Msg("Archive downloaded")

	if err := os.MkdirAll(dest, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to create %s", dest)
	}

	if strings.HasSuffix(url, ".zip") {
		err = extractZip(buf, dest)
	} else {
		err = extractTarGz(buf, dest)
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to extract archive into %s", dest)
	}
	logger.Trace().Str("dest", dest).Msg("Archive extracted")
	return nil
}

func extractZip(buf []byte, dest string) error {
	archive, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return err
	}
	for _, file := range archive.File {
		target, err := securePath(dest, file.Name)
		if err != nil {
			return err
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		src, err := file.Open()
		if err != nil {
			return err
		}
		err = writeFile(target, src, file.Mode())
		_ = src.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func extractTarGz(buf []byte, dest string) error {
	gz, err := gzip.NewReader(bytes.NewReader(buf))
	if err != nil {
		return err
	}
	defer func() {
		_ = gz.Close()
	}()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		target, err := securePath(dest, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			if err := writeFile(target, tr, os.FileMode(hdr.Mode)); err != nil {
				return err
			}
		}
	}
}

// securePath rejects archive entries that would escape dest. An entry
// resolving to dest itself (tarballs commonly carry a leading "./") is a
// harmless no-op, not an escape.
func securePath(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	cleaned := filepath.Clean(dest)
	if target != cleaned && !strings.HasPrefix(target, cleaned+string(os.PathSeparator)) {
		return "", errors.Newf(errors.ErrInternal, "archive entry %q escapes destination", name)
	}
	return target, nil
}

func writeFile(target string, src io.Reader, mode os.FileMode) error {
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode.Perm())
	if err != nil {
		return err
	}
	_, err = io.Copy(out, src)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	return err
}
