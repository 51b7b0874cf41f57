package rrf

import "strconv"

// Column describes one column of one RRF file, for the list/diagnostic
// surface only — indexing never needs descriptions, only names (see
// Files.Columns).
type Column struct {
	Name        string
	Description string
}

// FileDescription is one row of the schema catalog: a file's name, a short
// description, and its columns in order.
type FileDescription struct {
	Filename    string
	Description string
	Columns     []Column
	NumRows     int
	NumBytes    int64
}

// ReadSchema streams MRCOLS and MRFILES to build the full schema catalog.
// It is independent of the column layout Open already bootstrapped: MRCOLS
// is not required for indexing, only for this diagnostic view.
func (f *Files) ReadSchema() ([]FileDescription, error) {
	descriptions, err := f.readColumnDescriptions()
	if err != nil {
		return nil, err
	}

	items, err := f.rawStream("MRFILES")
	if err != nil {
		return nil, err
	}

	var files []FileDescription
	for item := range items {
		if item.Err != nil {
			return nil, item.Err
		}
		fields := item.Rec.fields
		if len(fields) < 6 {
			continue
		}

		filename := fields[0]
		names := splitNonEmpty(fields[2], ',')

		columns := make([]Column, len(names))
		for i, name := range names {
			columns[i] = Column{
				Name:        name,
				Description: descriptions[fileColumnKey{filename, name}],
			}
		}

		numRows, _ := strconv.Atoi(fields[4])
		numBytes, _ := strconv.ParseInt(fields[5], 10, 64)

		files = append(files, FileDescription{
			Filename:    filename,
			Description: fields[1],
			Columns:     columns,
			NumRows:     numRows,
			NumBytes:    numBytes,
		})
	}

	return files, nil
}

type fileColumnKey struct {
	filename string
	column   string
}

func (f *Files) readColumnDescriptions() (map[fileColumnKey]string, error) {
	items, err := f.rawStream("MRCOLS")
	if err != nil {
		return nil, err
	}

	descriptions := make(map[fileColumnKey]string)
	for item := range items {
		if item.Err != nil {
			return nil, item.Err
		}
		fields := item.Rec.fields
		if len(fields) < 7 {
			continue
		}
		key := fileColumnKey{filename: fields[6], column: fields[0]}
		descriptions[key] = fields[1]
	}

	return descriptions, nil
}

func splitNonEmpty(s string, sep byte) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
