package fetcher

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ExtractZIP extracts every file in the archive under destDir and returns the
// extracted paths in archive order.
func ExtractZIP(zipPath, destDir string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	var extracted []string
	for _, f := range r.File {
		path, err := extractZIPEntry(f, destDir)
		if err != nil {
			return extracted, err
		}
		if path != "" {
			extracted = append(extracted, path)
		}
	}
	return extracted, nil
}

// FindByExt returns the first path with the given extension (case-insensitive).
func FindByExt(paths []string, ext string) (string, bool) {
	for _, p := range paths {
		if strings.EqualFold(filepath.Ext(p), ext) {
			return p, true
		}
	}
	return "", false
}

// extractZIPEntry writes one entry under destDir. Directories return "".
func extractZIPEntry(f *zip.File, destDir string) (string, error) {
	destPath := filepath.Join(destDir, f.Name)
	if !strings.HasPrefix(filepath.Clean(destPath), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", eris.Errorf("zip: illegal path %q", f.Name)
	}

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(destPath, 0o755); err != nil {
			return "", eris.Wrap(err, "zip: create directory")
		}
		return "", nil
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", eris.Wrap(err, "zip: create parent directory")
	}

	rc, err := f.Open()
	if err != nil {
		return "", eris.Wrap(err, "zip: open entry")
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(destPath)
	if err != nil {
		return "", eris.Wrap(err, "zip: create file")
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, rc); err != nil {
		return "", eris.Wrap(err, "zip: write file")
	}
	return destPath, nil
}

// RenameStem renames every path that shares the stem of the first file with
// extension ext, so that a shapefile set (.shp, .shx, .dbf, .prj) takes the
// stem of target. It returns the updated path list.
func RenameStem(paths []string, ext, target string) ([]string, error) {
	anchor, ok := FindByExt(paths, ext)
	if !ok {
		return paths, eris.Errorf("zip: no %s file to rename", ext)
	}
	oldStem := strings.TrimSuffix(anchor, filepath.Ext(anchor))
	newStem := strings.TrimSuffix(target, filepath.Ext(target))

	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p
		stem := strings.TrimSuffix(p, filepath.Ext(p))
		if stem != oldStem || oldStem == newStem {
			continue
		}
		dest := newStem + strings.ToLower(filepath.Ext(p))
		if err := os.Rename(p, dest); err != nil {
			return out, eris.Wrapf(err, "zip: rename %s", p)
		}
		out[i] = dest
	}
	return out, nil
}
