package rrf

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/biomed-index/umls-search/errs"
)

// maxRecurseDepth bounds how many directory levels Open descends looking
// for the RRF data directory.
const maxRecurseDepth = 2

// Extract extracts a UMLS distribution archive (a top-level zip, whose
// contents are typically one or more *-meta.nlm containers) into destDir,
// then extracts any *-meta.nlm containers found there too, leaving destDir
// holding the plain *RRF.gz files. It is exposed standalone so a caller can
// pre-extract once and point multiple builds at destDir via Open, matching
// the original toolkit's separate extract step.
func Extract(archivePath, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return errs.From(errs.Config, destDir, err)
	}
	if err := extractZip(archivePath, destDir); err != nil {
		return err
	}

	entries, err := os.ReadDir(destDir)
	if err != nil {
		return errs.From(errs.Config, destDir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), "-meta.nlm") {
			continue
		}
		if err := extractZip(filepath.Join(destDir, e.Name()), destDir); err != nil {
			return err
		}
	}
	return nil
}

// resolveDataDir turns basePath — a directory, an already-extracted tree,
// or a single archive file — into the concrete directory holding the
// `*RRF.gz` files.
func resolveDataDir(basePath string) (string, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return "", errs.From(errs.Config, basePath, err)
	}

	root := basePath
	if !info.IsDir() {
		extracted, err := os.MkdirTemp("", "umls-search-")
		if err != nil {
			return "", errs.From(errs.Config, basePath, err)
		}
		if err := extractZip(basePath, extracted); err != nil {
			return "", err
		}
		root = extracted
	}

	dir, err := findRRFDir(root, 0)
	if err != nil {
		return "", err
	}
	if dir == "" {
		return "", errs.Newf(errs.Config, "no UMLS RRF files found in or under %s", basePath)
	}
	return dir, nil
}

// findRRFDir searches dir, and up to maxRecurseDepth levels below it, for a
// directory containing `*RRF.gz` files. A directory holding `*-meta.nlm`
// containers instead is transparently extracted and searched in their
// place, at the same depth.
func findRRFDir(dir string, depth int) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errs.From(errs.Config, dir, err)
	}

	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), "RRF.gz") {
			return dir, nil
		}
	}

	var containers []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), "-meta.nlm") {
			containers = append(containers, filepath.Join(dir, e.Name()))
		}
	}
	if len(containers) > 0 {
		extracted, err := os.MkdirTemp("", "umls-search-meta-")
		if err != nil {
			return "", errs.From(errs.Config, dir, err)
		}
		for _, c := range containers {
			if err := extractZip(c, extracted); err != nil {
				return "", err
			}
		}
		return findRRFDir(extracted, depth)
	}

	if depth >= maxRecurseDepth {
		return "", nil
	}

	var subdirs []string
	for _, e := range entries {
		if e.IsDir() {
			subdirs = append(subdirs, e.Name())
		}
	}
	sort.Strings(subdirs)

	for _, name := range subdirs {
		found, err := findRRFDir(filepath.Join(dir, name), depth+1)
		if err != nil {
			return "", err
		}
		if found != "" {
			return found, nil
		}
	}

	return "", nil
}

// extractZip extracts the archive at path into dest, rejecting any entry
// whose name would escape dest.
func extractZip(path, dest string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return errs.From(errs.Config, path, err)
	}
	defer r.Close()

	for _, f := range r.File {
		target := filepath.Join(dest, f.Name)
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
			return errs.Newf(errs.Config, "archive entry %q escapes destination", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errs.From(errs.Config, path, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errs.From(errs.Config, path, err)
		}
		if err := extractZipEntry(f, target); err != nil {
			return errs.From(errs.Config, f.Name, err)
		}
	}

	return nil
}

func extractZipEntry(f *zip.File, target string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
