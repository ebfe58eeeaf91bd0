package github

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	rlerrors "github.com/matzehuels/repolens/pkg/errors"
)

// Archive limits.
const (
	DefaultMaxArchiveBytes = 100 << 20
	maxExtractedBytes      = 400 << 20
	maxArchiveEntries      = 50_000
)

// DownloadArchive downloads the zipball of ref (the default branch when
// empty), extracts it under dest and returns the top-level directory GitHub
// wraps the tree in. dest must exist; the caller owns its removal.
func (c *Client) DownloadArchive(ctx context.Context, owner, repo, ref, dest string) (string, error) {
	u := c.repoURL(owner, repo, "/zipball")
	if ref != "" {
		u += "/" + escapePath(ref)
	}

	tmp, err := os.CreateTemp(dest, "*.zip")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	limit := c.MaxArchiveBytes
	if limit <= 0 {
		limit = DefaultMaxArchiveBytes
	}
	_, err = c.Download(ctx, u, tmp, limit)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("download %s/%s: %w", owner, repo, err)
	}

	if err := extractZip(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("extract %s/%s: %w", owner, repo, err)
	}
	return topDir(dest, filepath.Base(tmp.Name()))
}

func extractZip(archive, dest string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	if len(r.File) > maxArchiveEntries {
		return fmt.Errorf("archive has %d entries", len(r.File))
	}
	var total uint64
	for _, f := range r.File {
		name := strings.TrimSuffix(f.Name, "/")
		if name == "" {
			continue
		}
		if rlerrors.ValidatePath(name) != nil {
			// Traversal or otherwise unsafe names are dropped.
			continue
		}
		target := filepath.Join(dest, filepath.FromSlash(name))

		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		case !mode.IsRegular():
			// Symlinks could point outside dest.
			continue
		}

		total += f.UncompressedSize64
		if total > maxExtractedBytes {
			return fmt.Errorf("archive expands beyond %d bytes", maxExtractedBytes)
		}
		if err := writeEntry(f, target); err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, io.LimitReader(rc, int64(f.UncompressedSize64)))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}

// topDir returns the first directory in dest, or dest itself.
func topDir(dest, skip string) (string, error) {
	entries, err := os.ReadDir(dest)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.IsDir() && e.Name() != skip {
			return filepath.Join(dest, e.Name()), nil
		}
	}
	return dest, nil
}
