// Package fixtures unpacks the test-data archive (cases, models, reference
// pictures) into a suite directory once, guarded by a marker file.
package fixtures

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	ferrors "github.com/AndreyAkinshin/fieldcheck/internal/errors"
)

const (
	// Marker records a completed extraction.
	Marker = ".data_extracted"
	// StagingDir is the archive's top-level directory; its children are
	// moved up into the target directory.
	StagingDir = "unzip_for_pytest"
	// DefaultArchive is the archive name looked up in the suite directory.
	DefaultArchive = "data.tar.gz"
)

// Extracted reports whether dir already holds extracted data.
func Extracted(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, Marker))
	return err == nil
}

// Extract unpacks archive into dir unless the marker is present. It returns
// true when it extracted. Children of the staging directory replace
// same-named entries in dir; the marker is written last so an interrupted
// extraction runs again.
func Extract(ctx context.Context, archive, dir string) (bool, error) {
	if Extracted(dir) {
		return false, nil
	}

	f, err := os.Open(archive)
	if err != nil {
		if os.IsNotExist(err) {
			return false, ferrors.Environmentf("test data archive not found: %s", archive)
		}
		return false, err
	}
	defer func() { _ = f.Close() }()

	if err := extractTarGz(ctx, f, dir); err != nil {
		return false, ferrors.Wrap(err, fmt.Sprintf("failed to extract test data: %v", err))
	}
	if err := promote(filepath.Join(dir, StagingDir), dir); err != nil {
		return false, err
	}

	m, err := os.Create(filepath.Join(dir, Marker))
	if err != nil {
		return false, err
	}
	return true, m.Close()
}

func extractTarGz(ctx context.Context, r io.Reader, targetDir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("gzip.NewReader failed: %w", err)
	}
	defer func() { _ = gz.Close() }()

	root := filepath.Clean(targetDir)
	tr := tar.NewReader(gz)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target := filepath.Join(root, filepath.FromSlash(header.Name))
		if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
			return fmt.Errorf("invalid file path: '%s'", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, header.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		}
	}
}

func writeFile(path string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0o200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// promote moves each child of staging into dir, replacing what is there,
// then removes staging. A missing staging directory is not an error.
func promote(staging, dir string) error {
	entries, err := os.ReadDir(staging)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		dest := filepath.Join(dir, e.Name())
		if err := os.RemoveAll(dest); err != nil {
			return err
		}
		if err := os.Rename(filepath.Join(staging, e.Name()), dest); err != nil {
			return err
		}
	}
	return os.Remove(staging)
}
