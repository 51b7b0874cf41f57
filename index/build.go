package index

import (
	"sort"
	"strconv"
	"strings"

	"github.com/biomed-index/umls-search/errs"
	"github.com/biomed-index/umls-search/rrf"
)

type rankKey struct {
	sab string
	tty string
}

// Build runs the five RRF join passes (ranks, semantic-type definitions,
// concept semantic types, concepts, relations) and writes the four output
// artifacts to opts.OutputDir, in the order FST, semantic types, concepts,
// metadata.
func Build(files *rrf.Files, opts Options) error {
	ranks, err := readRanks(files)
	if err != nil {
		return err
	}

	semanticTypes, err := readSemanticTypeDefs(files)
	if err != nil {
		return err
	}

	cuiTypes, err := readConceptTypes(files, semanticTypes, opts.SemanticTypes)
	if err != nil {
		return err
	}

	b := &builder{
		opts:    opts,
		ranks:   ranks,
		cuiToId: make(map[string]ConceptId),
		strings: make(map[string]ConceptId),
	}

	if err := b.readConcepts(files, cuiTypes); err != nil {
		return err
	}
	if err := b.readRelations(files); err != nil {
		return err
	}

	for i := range b.concepts {
		codes := b.concepts[i].Codes
		sort.Slice(codes, func(x, y int) bool { return codes[x].Less(codes[y]) })
	}

	return writeArtifacts(opts, b.concepts, semanticTypes, b.strings)
}

// builder accumulates the in-memory structures across passes 4 and 5. It
// is not reused across builds.
type builder struct {
	opts     Options
	ranks    map[rankKey]uint32
	cuiToId  map[string]ConceptId
	strings  map[string]ConceptId
	concepts []Concept
}

func readRanks(files *rrf.Files) (map[rankKey]uint32, error) {
	items, err := files.Stream("MRRANK")
	if err != nil {
		return nil, err
	}
	columns, _ := files.Columns("MRRANK")
	sabIdx := columnIndex(columns, "SAB")
	ttyIdx := columnIndex(columns, "TTY")
	rankIdx := columnIndex(columns, "RANK")

	ranks := make(map[rankKey]uint32)
	for item := range items {
		if item.Err != nil {
			return nil, item.Err
		}
		r, err := strconv.ParseUint(item.Rec.Get(rankIdx), 10, 32)
		if err != nil {
			return nil, errs.From(errs.Data, "MRRANK", err)
		}
		ranks[rankKey{sab: item.Rec.Get(sabIdx), tty: item.Rec.Get(ttyIdx)}] = uint32(r)
	}
	return ranks, nil
}

// readSemanticTypeDefs reads SRDEF positionally: it is never listed in
// MRFILES, so no column binding exists for it, and rows for anything other
// than a "STY" record (column 0) are ignored.
func readSemanticTypeDefs(files *rrf.Files) (map[uint16]SemanticType, error) {
	items, err := files.StreamRaw("SRDEF")
	if err != nil {
		return nil, err
	}

	defs := make(map[uint16]SemanticType)
	for item := range items {
		if item.Err != nil {
			return nil, item.Err
		}
		if item.Rec.Get(0) != "STY" {
			continue
		}
		tui, err := parseTUI(item.Rec.Get(1))
		if err != nil {
			return nil, err
		}
		defs[tui] = SemanticType{
			TUI:         tui,
			Name:        item.Rec.Get(2),
			TreeNumber:  item.Rec.Get(3),
			Description: item.Rec.Get(4),
		}
	}
	return defs, nil
}

func readConceptTypes(files *rrf.Files, defs map[uint16]SemanticType, filter []string) (map[string][]uint16, error) {
	items, err := files.Stream("MRSTY")
	if err != nil {
		return nil, err
	}
	columns, _ := files.Columns("MRSTY")
	cuiIdx := columnIndex(columns, "CUI")
	tuiIdx := columnIndex(columns, "TUI")

	cuiTypes := make(map[string][]uint16)
	for item := range items {
		if item.Err != nil {
			return nil, item.Err
		}

		tui, err := parseTUI(item.Rec.Get(tuiIdx))
		if err != nil {
			return nil, err
		}

		if len(filter) > 0 {
			def, ok := defs[tui]
			if !ok || !matchesAnyPrefix(def.TreeNumber, filter) {
				continue
			}
		}

		cui := item.Rec.Get(cuiIdx)
		cuiTypes[cui] = append(cuiTypes[cui], tui)
	}
	return cuiTypes, nil
}

func (b *builder) readConcepts(files *rrf.Files, cuiTypes map[string][]uint16) error {
	items, err := files.Stream("MRCONSO")
	if err != nil {
		return err
	}
	columns, _ := files.Columns("MRCONSO")
	cuiIdx := columnIndex(columns, "CUI")
	latIdx := columnIndex(columns, "LAT")
	strIdx := columnIndex(columns, "STR")
	ttyIdx := columnIndex(columns, "TTY")
	sabIdx := columnIndex(columns, "SAB")
	codeIdx := columnIndex(columns, "CODE")

	for item := range items {
		if item.Err != nil {
			return item.Err
		}
		rec := item.Rec

		cui := rec.Get(cuiIdx)
		lat := rec.Get(latIdx)
		str := rec.Get(strIdx)
		tty := rec.Get(ttyIdx)
		sab := rec.Get(sabIdx)
		code := rec.Get(codeIdx)

		if len(b.opts.Languages) > 0 && !contains(b.opts.Languages, lat) {
			continue
		}
		if len(b.opts.Sources) > 0 && !contains(b.opts.Sources, sab) {
			continue
		}
		types, ok := cuiTypes[cui]
		if !ok {
			continue
		}

		rank := b.ranks[rankKey{sab: sab, tty: tty}]

		id, known := b.cuiToId[cui]
		if !known {
			id = ConceptId(len(b.concepts))
			b.cuiToId[cui] = id

			c := Concept{CUI: cui, PreferredName: str, Types: types, rank: rank}
			if code != "" {
				c.Codes = append(c.Codes, ConceptCode{Source: sab, Code: code})
			}
			b.concepts = append(b.concepts, c)
		} else {
			c := &b.concepts[id]
			if code != "" {
				addCode(c, ConceptCode{Source: sab, Code: code})
			}
			if rank > c.rank {
				c.PreferredName = str
				c.rank = rank
			}
		}

		b.claimString(b.searchKey(cui), id)
		b.claimString(b.searchKey(str), id)
	}
	return nil
}

func (b *builder) readRelations(files *rrf.Files) error {
	items, err := files.Stream("MRREL")
	if err != nil {
		return err
	}
	columns, _ := files.Columns("MRREL")
	cui1Idx := columnIndex(columns, "CUI1")
	relIdx := columnIndex(columns, "REL")
	cui2Idx := columnIndex(columns, "CUI2")

	for item := range items {
		if item.Err != nil {
			return item.Err
		}

		cui1 := item.Rec.Get(cui1Idx)
		cui2 := item.Rec.Get(cui2Idx)
		if cui1 == cui2 {
			continue
		}

		id1, ok1 := b.cuiToId[cui1]
		id2, ok2 := b.cuiToId[cui2]
		if !ok1 || !ok2 {
			continue
		}

		switch item.Rec.Get(relIdx) {
		case "PAR", "RB":
			addSet(&b.concepts[id1].Parents, id2)
			addSet(&b.concepts[id2].Children, id1)
		case "CHD", "RN":
			addSet(&b.concepts[id1].Children, id2)
			addSet(&b.concepts[id2].Parents, id1)
		case "RL":
			addSet(&b.concepts[id1].Similar, id2)
		case "SY":
			addSet(&b.concepts[id1].Synonym, id2)
		case "RO":
			addSet(&b.concepts[id1].OtherRelationship, id2)
		case "RQ":
			addSet(&b.concepts[id1].RelatedPossiblySynonym, id2)
		case "AQ":
			addSet(&b.concepts[id1].AllowedQualifier, id2)
		case "QB":
			addSet(&b.concepts[id1].QualifiedBy, id2)
		}
	}
	return nil
}

func (b *builder) searchKey(s string) string {
	if b.opts.CaseInsensitive {
		return strings.ToLower(s)
	}
	return s
}

func (b *builder) claimString(key string, id ConceptId) {
	if _, exists := b.strings[key]; !exists {
		b.strings[key] = id
	}
}

func addCode(c *Concept, code ConceptCode) {
	for _, existing := range c.Codes {
		if existing == code {
			return
		}
	}
	c.Codes = append(c.Codes, code)
}

func addSet(set *[]ConceptId, id ConceptId) {
	for _, existing := range *set {
		if existing == id {
			return
		}
	}
	*set = append(*set, id)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func matchesAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func columnIndex(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}

func parseTUI(s string) (uint16, error) {
	s = strings.TrimPrefix(s, "T")
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, errs.From(errs.Data, "TUI", err)
	}
	return uint16(v), nil
}
