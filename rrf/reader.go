package rrf

import (
	"bufio"
	"os"
	"strings"

	"github.com/klauspost/pgzip"

	"github.com/biomed-index/umls-search/errs"
)

// identityColumns lists, for the three files that use row-run-length
// carryover, the columns (in the documented canonical order) that a
// continuation row inherits from the last full row.
var identityColumns = map[string][]string{
	"MRSAT":  {"CUI", "METAUI", "STYPE", "SAB"},
	"MRHIER": {"CUI", "AUI", "SAB", "RELA"},
	"MRREL":  {"CUI1", "AUI1", "STYPE1", "STYPE2", "SAB"},
}

// Record is one parsed RRF row with carryover and PTR compression already
// resolved, so Get is a plain, allocation-free index into fields.
type Record struct {
	fields []string
}

// Get returns the value of the column at idx, or the empty string if idx is
// out of range. Column indices come from Files.Columns.
func (r *Record) Get(idx int) string {
	if idx < 0 || idx >= len(r.fields) {
		return ""
	}
	return r.fields[idx]
}

// Stream opens a lazy, non-restartable sequence of Records for the named
// logical file. Part files are decoded and concatenated in the sort order
// established when the Files set was built. The returned channel is closed
// after the last record, or after a single Item carrying a Data error.
func (f *Files) Stream(key string) (<-chan Item, error) {
	paths, ok := f.parts[key]
	if !ok {
		return nil, errs.Newf(errs.Config, "unknown file key %q", key)
	}

	columns, ok := f.columns[key]
	if !ok {
		return nil, errs.Newf(errs.Config, "no column layout known for %q", key)
	}

	identityIdx := resolveIdentityIndexes(key, columns)
	ptrIdx := -1
	if key == "MRHIER" {
		ptrIdx = indexOf(columns, "PTR")
	}

	out := make(chan Item, chanDepth)

	go streamParts(paths, len(columns), identityIdx, ptrIdx, out)

	return out, nil
}

// StreamRaw reads a file key as plain pipe-split rows, by field position
// rather than bound column name. It is for files that never appear in
// MRFILES' own catalog — SRDEF under the NET subdirectory is the only one
// in this distribution — so no column binding is ever available for them.
func (f *Files) StreamRaw(key string) (<-chan Item, error) {
	return f.rawStream(key)
}

// rawStream reads a file key as plain pipe-split rows, with no column
// binding, carryover decompression, or PTR synthesis. It bootstraps the
// column layout itself (see Files.bootstrapColumns), before Stream has
// anything to bind column names against, and also backs StreamRaw and the
// MRFILES/MRCOLS reads of ReadSchema.
func (f *Files) rawStream(key string) (<-chan Item, error) {
	paths, ok := f.parts[key]
	if !ok {
		return nil, errs.Newf(errs.Config, "unknown file key %q", key)
	}
	out := make(chan Item, chanDepth)
	go streamParts(paths, -1, nil, -1, out)
	return out, nil
}

func resolveIdentityIndexes(key string, columns []string) []int {
	names, ok := identityColumns[key]
	if !ok {
		return nil
	}
	idx := make([]int, len(names))
	for i, n := range names {
		idx[i] = indexOf(columns, n)
	}
	return idx
}

func indexOf(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}

// streamParts decodes each part file in order, splitting rows on '|' and
// applying identity-column carryover and MRHIER's PTR compression as it
// goes. Carryover state is local to this goroutine: it persists across part
// boundaries within one stream (a single record must never straddle two
// parts, but the carried identity values do carry across the seam) and is
// discarded when the stream ends.
func streamParts(paths []string, numCols int, identityIdx []int, ptrIdx int, out chan<- Item) {
	defer close(out)

	carry := make([]string, len(identityIdx))
	lastPTR := ""

	for _, path := range paths {
		if err := streamOnePart(path, numCols, identityIdx, ptrIdx, &carry, &lastPTR, out); err != nil {
			out <- Item{Err: err}
			return
		}
	}
}

func streamOnePart(path string, numCols int, identityIdx []int, ptrIdx int, carry *[]string, lastPTR *string, out chan<- Item) error {
	file, err := os.Open(path)
	if err != nil {
		return errs.From(errs.Data, path, err)
	}
	defer file.Close()

	zr, err := pgzip.NewReader(bufio.NewReaderSize(file, 64*1024))
	if err != nil {
		return errs.From(errs.Data, path, err)
	}
	defer zr.Close()

	scanner := bufio.NewScanner(zr)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		fields := splitRow(line, numCols)

		continuation := false
		if len(identityIdx) > 0 {
			first := identityIdx[0]
			continuation = first >= 0 && fields[first] == ""
		}

		if continuation {
			for i, ci := range identityIdx {
				if ci >= 0 {
					fields[ci] = (*carry)[i]
				}
			}
		} else if len(identityIdx) > 0 {
			for i, ci := range identityIdx {
				if ci >= 0 {
					(*carry)[i] = fields[ci]
				}
			}
		}

		if ptrIdx >= 0 {
			if continuation {
				token := fields[ptrIdx]
				if len(token) >= 2 {
					token = token[2:]
				}
				fields[ptrIdx] = *lastPTR + "." + token
			} else {
				*lastPTR = firstPTRPrefix(fields[ptrIdx])
			}
		}

		out <- Item{Rec: &Record{fields: fields}}
	}

	if err := scanner.Err(); err != nil {
		return errs.From(errs.Data, path, err)
	}

	return nil
}

// firstPTRPrefix computes the saved PTR prefix for a full MRHIER row: empty
// with no dots, the whole string with one dot, otherwise the substring up
// to (not including) the second dot.
func firstPTRPrefix(ptr string) string {
	first := strings.IndexByte(ptr, '.')
	if first < 0 {
		return ""
	}
	second := strings.IndexByte(ptr[first+1:], '.')
	if second < 0 {
		return ptr
	}
	return ptr[:first+1+second]
}

// splitRow splits a pipe-delimited RRF line, dropping the trailing empty
// field produced by the format's terminating '|'. When numCols is
// non-negative the result is padded or trimmed to exactly that many fields;
// a negative numCols (used while bootstrapping the schema itself, before
// any column count is known) returns the fields as split.
func splitRow(line string, numCols int) []string {
	parts := strings.Split(line, "|")
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	if numCols < 0 || len(parts) == numCols {
		return parts
	}
	fields := make([]string, numCols)
	copy(fields, parts)
	return fields
}
