package rrf

// Source is one row of the MRSAB source metadata table.
type Source struct {
	Abbreviation string
	Language     string
	Family       string
	Name         string
}

// ReadSources streams MRSAB and returns every source's metadata.
func (f *Files) ReadSources() ([]Source, error) {
	items, err := f.Stream("MRSAB")
	if err != nil {
		return nil, err
	}

	columns, _ := f.Columns("MRSAB")
	rsab := indexOf(columns, "RSAB")
	lat := indexOf(columns, "LAT")
	sf := indexOf(columns, "SF")
	son := indexOf(columns, "SON")

	var sources []Source
	for item := range items {
		if item.Err != nil {
			return nil, item.Err
		}
		sources = append(sources, Source{
			Abbreviation: item.Rec.Get(rsab),
			Language:     item.Rec.Get(lat),
			Family:       item.Rec.Get(sf),
			Name:         item.Rec.Get(son),
		})
	}

	return sources, nil
}
