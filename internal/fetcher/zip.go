package fetcher

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ExtractZIP extracts all files from a ZIP archive to the destination directory.
// Returns the list of extracted file paths in archive order. On failure the
// paths extracted so far are returned alongside the error.
func ExtractZIP(zipPath, destDir string, budget *Budget) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	var extracted []string
	for _, f := range r.File {
		path, err := extractZIPEntry(f, destDir, budget)
		if err != nil {
			return extracted, err
		}
		if path != "" {
			extracted = append(extracted, path)
		}
	}

	return extracted, nil
}

// ReadZIPFile returns the contents of a single named entry of a ZIP archive.
func ReadZIPFile(zipPath, fileName string) ([]byte, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if f.Name == fileName {
			return readZIPEntry(f)
		}
	}

	return nil, eris.Wrapf(ErrEntryNotFound, "zip: file %q", fileName)
}

// ZIPEntryNames lists the entry names of a ZIP archive in archive order.
func ZIPEntryNames(zipPath string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names, nil
}

func readZIPEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, eris.Wrap(err, "zip: open entry")
	}
	defer rc.Close() //nolint:errcheck

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, eris.Wrap(err, "zip: read entry")
	}
	return data, nil
}

// extractZIPEntry extracts a single zip.File to the destination directory.
// Returns the extracted file path, or empty string for directories.
func extractZIPEntry(f *zip.File, destDir string, budget *Budget) (string, error) {
	destPath, err := safeJoin(destDir, f.Name)
	if err != nil {
		return "", err
	}

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(destPath, 0o755); err != nil {
			return "", eris.Wrap(err, "zip: create directory")
		}
		return "", nil
	}

	if err := budget.TakeEntry(); err != nil {
		return "", err
	}

	rc, err := f.Open()
	if err != nil {
		return "", eris.Wrap(err, "zip: open entry")
	}
	defer rc.Close() //nolint:errcheck

	if err := writeEntry(destPath, rc, budget); err != nil {
		return "", eris.Wrapf(err, "zip: extract %q", f.Name)
	}

	return destPath, nil
}

// safeJoin joins an archive entry name onto destDir, rejecting names that
// would escape it (zip slip).
func safeJoin(destDir, name string) (string, error) {
	destPath := filepath.Join(destDir, name)
	if !strings.HasPrefix(filepath.Clean(destPath), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", eris.Errorf("archive: illegal path %q (zip slip attempt)", name)
	}
	return destPath, nil
}

// writeEntry copies r into a new file at destPath, charging the bytes
// against budget.
func writeEntry(destPath string, r io.Reader, budget *Budget) error {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return eris.Wrap(err, "create parent directory")
	}

	out, err := os.Create(destPath)
	if err != nil {
		return eris.Wrap(err, "create file")
	}
	defer out.Close() //nolint:errcheck

	if _, err := budget.Copy(out, r); err != nil {
		return err
	}
	return nil
}
