package fetcher

import (
	"archive/zip"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// PreferredPropertyFile is picked over any other pattern match.
const PreferredPropertyFile = "PROP.TXT"

// FindZIPEntry returns the name of the entry whose base name matches
// pattern case-insensitively. PROP.TXT wins when present; otherwise the
// first match in archive order; otherwise the first PROP*.TXT entry.
func FindZIPEntry(zipPath, pattern string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	name, ok := matchEntry(r.File, pattern)
	if !ok {
		names := make([]string, 0, len(r.File))
		for _, f := range r.File {
			names = append(names, f.Name)
		}
		return "", eris.Errorf("zip: no entry matching %q (entries: %s)", pattern, strings.Join(names, ", "))
	}
	return name, nil
}

func matchEntry(files []*zip.File, pattern string) (string, bool) {
	pattern = strings.ToUpper(pattern)

	var first, fallback string
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		base := strings.ToUpper(path.Base(f.Name))
		if base == PreferredPropertyFile {
			return f.Name, true
		}
		if ok, _ := path.Match(pattern, base); ok && first == "" {
			first = f.Name
		}
		if fallback == "" && strings.HasPrefix(base, "PROP") && strings.HasSuffix(base, ".TXT") {
			fallback = f.Name
		}
	}
	if first != "" {
		return first, true
	}
	return fallback, fallback != ""
}

// ExtractZIPFile extracts a single file from a ZIP archive by name.
// Returns the path to the extracted file.
func ExtractZIPFile(zipPath, fileName, destDir string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if f.Name == fileName {
			return extractZIPEntry(f, destDir)
		}
	}

	return "", eris.Errorf("zip: file %q not found in archive", fileName)
}

// ResolveInput returns a readable path for a fixed-width input. A ZIP is
// searched with pattern and the matching entry extracted into a fresh temp
// directory under tempDir; cleanup removes it. Any other file is used as is.
func ResolveInput(inputPath, pattern, tempDir string) (string, func(), error) {
	noop := func() {}
	if _, err := os.Stat(inputPath); err != nil {
		return "", noop, eris.Wrapf(err, "input: %s", inputPath)
	}
	if !strings.EqualFold(filepath.Ext(inputPath), ".zip") {
		return inputPath, noop, nil
	}

	entry, err := FindZIPEntry(inputPath, pattern)
	if err != nil {
		return "", noop, err
	}

	dir, err := os.MkdirTemp(tempDir, "note-leads-")
	if err != nil {
		return "", noop, eris.Wrap(err, "zip: create temp dir")
	}
	cleanup := func() { os.RemoveAll(dir) } //nolint:errcheck

	extracted, err := ExtractZIPFile(inputPath, entry, dir)
	if err != nil {
		cleanup()
		return "", noop, err
	}
	return extracted, cleanup, nil
}

// extractZIPEntry extracts a single zip.File to the destination directory.
// Returns the extracted file path, or empty string for directories.
func extractZIPEntry(f *zip.File, destDir string) (string, error) {
	destPath := filepath.Join(destDir, f.Name)
	if !strings.HasPrefix(filepath.Clean(destPath), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", eris.Errorf("zip: illegal path %q (zip slip attempt)", f.Name)
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
