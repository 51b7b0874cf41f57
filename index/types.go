// Package index builds and queries the compact on-disk concept index: a
// finite-state transducer from searchable string to ConceptId, a dense
// concept array, and a semantic-type table, joined from the UMLS RRF
// stream by the five passes in build.go.
package index

import "github.com/blevesearch/vellum"

// ConceptId is a dense, 0-based, 32-bit index into an Index's Concepts
// array, assigned in order of first sighting during build.
type ConceptId = uint32

// ConceptCode is a (source, code) pair, orderable lexicographically.
type ConceptCode struct {
	Source string `json:"source"`
	Code   string `json:"code"`
}

// Less orders codes by (source, code).
func (c ConceptCode) Less(other ConceptCode) bool {
	if c.Source != other.Source {
		return c.Source < other.Source
	}
	return c.Code < other.Code
}

// SemanticType is one UMLS semantic type, keyed by its numeric TUI.
type SemanticType struct {
	TUI         uint16 `json:"tui"`
	Name        string `json:"name"`
	TreeNumber  string `json:"tree_number"`
	Description string `json:"description"`
}

// Concept is one biomedical meaning, built up across the MRCONSO and MRREL
// passes. Every relation field is a set (no duplicates, no self-reference).
type Concept struct {
	CUI                    string        `json:"cui"`
	PreferredName          string        `json:"preferred_name"`
	Types                  []uint16      `json:"types,omitempty"`
	Codes                  []ConceptCode `json:"codes,omitempty"`
	Parents                []ConceptId   `json:"parents,omitempty"`
	Children               []ConceptId   `json:"children,omitempty"`
	Similar                []ConceptId   `json:"rl,omitempty"`
	Synonym                []ConceptId   `json:"sy,omitempty"`
	OtherRelationship      []ConceptId   `json:"ro,omitempty"`
	RelatedPossiblySynonym []ConceptId   `json:"rq,omitempty"`
	AllowedQualifier       []ConceptId   `json:"aq,omitempty"`
	QualifiedBy            []ConceptId   `json:"qb,omitempty"`

	rank uint32 // highest (SAB,TTY) rank seen so far; not persisted
}

// Options configures a build: empty filter lists mean "accept all".
type Options struct {
	OutputDir       string   `json:"-"`
	CaseInsensitive bool     `json:"case_insensitive"`
	Languages       []string `json:"languages"`
	Sources         []string `json:"sources"`
	SemanticTypes   []string `json:"semantic_types"`
}

// Index is the immutable, loaded snapshot backing all queries.
type Index struct {
	Meta          Options
	Concepts      []Concept
	SemanticTypes map[uint16]SemanticType

	fstBytes []byte
	fst      *vellum.FST
}
