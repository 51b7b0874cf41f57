// Package rrf reads the UMLS Metathesaurus distribution: a set of
// gzip-compressed, pipe-delimited files (collectively "RRF") spread across
// one or more nested archive containers. It presents the distribution as
// named record streams with named columns, independent of how it is
// packaged on disk.
package rrf

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/biomed-index/umls-search/errs"
)

// Files is a discovered and schema-bound RRF distribution: every logical
// file key mapped to its sorted, possibly multi-part, gzip files on disk,
// plus the column layout bootstrapped from MRFILES.
type Files struct {
	dir     string
	parts   map[string][]string
	columns map[string][]string
}

// Open locates the RRF distribution under basePath — a directory, an
// already-extracted tree, or a single archive file — and bootstraps the
// column layout for every file key it finds. Discovery recurses up to two
// directory levels looking for a directory of `*RRF.gz` files; an archive
// file is extracted first, and any `*-meta.nlm` containers found along the
// way are themselves extracted and searched in turn. Semantic-type
// definitions under a NET subdirectory (SRDEF) are merged in as an
// additional file key when present.
func Open(basePath string) (*Files, error) {
	dataDir, err := resolveDataDir(basePath)
	if err != nil {
		return nil, err
	}

	parts, err := scanParts(dataDir)
	if err != nil {
		return nil, err
	}

	if netParts, err := scanParts(filepath.Join(dataDir, "NET")); err == nil {
		for key, paths := range netParts {
			if _, exists := parts[key]; !exists {
				parts[key] = paths
			}
		}
	}

	if _, ok := parts["MRFILES"]; !ok {
		return nil, errs.Newf(errs.Config, "no MRFILES.RRF.gz found in %s", dataDir)
	}

	f := &Files{dir: dataDir, parts: parts, columns: make(map[string][]string)}

	if err := f.bootstrapColumns(); err != nil {
		return nil, err
	}

	return f, nil
}

// Dir returns the resolved data directory backing this Files set.
func (f *Files) Dir() string { return f.dir }

// Columns returns the bootstrapped column names for key, in file order.
func (f *Files) Columns(key string) ([]string, bool) {
	cols, ok := f.columns[key]
	return cols, ok
}

// Keys returns every file key discovered on disk, sorted.
func (f *Files) Keys() []string {
	keys := make([]string, 0, len(f.parts))
	for k := range f.parts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// scanParts groups the *.gz files directly inside dir by file key — the
// basename up to its first '.' — and sorts each key's part paths so
// Files.Stream concatenates them in a deterministic order.
func scanParts(dir string) (map[string][]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errs.From(errs.Config, dir, err)
	}

	parts := make(map[string][]string)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".gz") {
			continue
		}
		key := strings.SplitN(e.Name(), ".", 2)[0]
		parts[key] = append(parts[key], filepath.Join(dir, e.Name()))
	}
	for _, paths := range parts {
		sort.Strings(paths)
	}
	return parts, nil
}

// bootstrapColumns reads MRFILES, which lists every file's column names as
// a comma-separated list in column index 2, keyed by column index 0 (the
// data filename, e.g. "MRCONSO.RRF"). It uses rawStream because no column
// layout — including MRFILES' own — is known yet.
func (f *Files) bootstrapColumns() error {
	items, err := f.rawStream("MRFILES")
	if err != nil {
		return err
	}
	for item := range items {
		if item.Err != nil {
			return item.Err
		}
		if len(item.Rec.fields) < 3 {
			continue
		}
		filename := item.Rec.fields[0]
		key := strings.SplitN(filename, ".", 2)[0]
		f.columns[key] = strings.Split(item.Rec.fields[2], ",")
	}
	return nil
}
