package index

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/blevesearch/vellum"
	"github.com/blevesearch/vellum/levenshtein"
	vregexp "github.com/blevesearch/vellum/regexp"

	"github.com/biomed-index/umls-search/errs"
)

// Open reads and validates the four output artifacts from indexDir. The
// FST is loaded as a single memory-resident byte buffer; the concept list
// is fully decompressed and parsed.
func Open(indexDir string) (*Index, error) {
	meta, err := readMetadata(indexDir)
	if err != nil {
		return nil, err
	}

	fstBytes, fst, err := readFST(indexDir)
	if err != nil {
		return nil, err
	}

	concepts, err := readConcepts(indexDir)
	if err != nil {
		return nil, err
	}

	semanticTypes, err := readSemanticTypes(indexDir)
	if err != nil {
		return nil, err
	}

	return &Index{
		Meta:          meta,
		Concepts:      concepts,
		SemanticTypes: semanticTypes,
		fstBytes:      fstBytes,
		fst:           fst,
	}, nil
}

// Search resolves word to a ConceptId. A case-insensitive index does an
// exact lowercase FST lookup; otherwise an anchored case-insensitive DFA is
// built from word and matched against the FST.
func (idx *Index) Search(word string) (ConceptId, bool, error) {
	if idx.Meta.CaseInsensitive {
		val, exists, err := idx.fst.Get([]byte(strings.ToLower(word)))
		if err != nil {
			return 0, false, errs.From(errs.Query, word, err)
		}
		return ConceptId(val), exists, nil
	}
	return idx.SearchRegex(caseInsensitivePattern(word))
}

// SearchRegex finds the first FST key (in lexicographic order) matching
// pattern and returns its ConceptId.
func (idx *Index) SearchRegex(pattern string) (ConceptId, bool, error) {
	aut, err := vregexp.New(pattern)
	if err != nil {
		return 0, false, errs.From(errs.Query, pattern, err)
	}

	itr, err := idx.fst.Search(aut, nil, nil)
	if err == vellum.ErrIteratorDone {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errs.From(errs.Query, pattern, err)
	}

	_, val := itr.Current()
	return ConceptId(val), true, nil
}

// caseInsensitivePattern builds an anchored regex matching word under any
// letter casing, escaping every non-letter rune.
func caseInsensitivePattern(word string) string {
	var b strings.Builder
	for _, r := range word {
		if unicode.IsLetter(r) {
			b.WriteByte('[')
			b.WriteRune(unicode.ToLower(r))
			b.WriteRune(unicode.ToUpper(r))
			b.WriteByte(']')
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	return b.String()
}

// FuzzySearch builds a Levenshtein automaton at the given edit distance and
// returns a pull-based iterator over matching FST keys, in FST (byte
// lexicographic) order. The query is lowercased first when and only when
// the index is case-insensitive.
func (idx *Index) FuzzySearch(word string, edits uint8) (*FuzzyIterator, error) {
	query := word
	if idx.Meta.CaseInsensitive {
		query = strings.ToLower(word)
	}

	lev, err := levenshtein.New(query, edits)
	if err != nil {
		return nil, errs.From(errs.Query, word, err)
	}

	itr, err := idx.fst.Search(lev, nil, nil)
	if err != nil && err != vellum.ErrIteratorDone {
		return nil, errs.From(errs.Query, word, err)
	}
	return newFuzzyIterator(itr, err), nil
}

// FuzzyIterator is a single-owner, pull-based cursor over fuzzy-search
// candidates. It holds no resource beyond the in-memory FST iterator state;
// abandoning it without calling Next again simply releases that memory.
type FuzzyIterator struct {
	itr     *vellum.FSTIterator
	key     []byte
	val     uint64
	err     error
	started bool
	done    bool
}

func newFuzzyIterator(itr *vellum.FSTIterator, err error) *FuzzyIterator {
	if err == vellum.ErrIteratorDone {
		return &FuzzyIterator{done: true}
	}
	if err != nil {
		return &FuzzyIterator{err: err, done: true}
	}
	return &FuzzyIterator{itr: itr}
}

// Next advances to the next candidate and reports whether one is
// available. Call Key/ConceptId after a true result.
func (it *FuzzyIterator) Next() bool {
	if it.done {
		return false
	}

	if !it.started {
		it.started = true
		it.key, it.val = it.itr.Current()
		return true
	}

	if err := it.itr.Next(); err != nil {
		if err != vellum.ErrIteratorDone {
			it.err = errs.From(errs.Query, "fuzzy search", err)
		}
		it.done = true
		return false
	}
	it.key, it.val = it.itr.Current()
	return true
}

func (it *FuzzyIterator) Key() []byte          { return it.key }
func (it *FuzzyIterator) ConceptId() ConceptId { return ConceptId(it.val) }
func (it *FuzzyIterator) Err() error            { return it.err }

// CodeResult is one code emitted by a DownstreamIterator, attributed to the
// concept it was visited from.
type CodeResult struct {
	ConceptId ConceptId
	Code      ConceptCode
}

// DownstreamCodes returns a pull-based depth-first traversal starting at
// start, following only the children relation and visiting each concept at
// most once. codeSources filters which codes are emitted (empty means
// all).
func (idx *Index) DownstreamCodes(start ConceptId, codeSources []string) *DownstreamIterator {
	sources := make(map[string]struct{}, len(codeSources))
	for _, s := range codeSources {
		sources[s] = struct{}{}
	}
	return &DownstreamIterator{
		idx:     idx,
		sources: sources,
		stack:   []ConceptId{start},
		seen:    make(map[ConceptId]struct{}),
	}
}

// DownstreamIterator is a single-owner DFS cursor. It holds no resource
// beyond its own stack and seen-set; abandoning it releases only memory.
type DownstreamIterator struct {
	idx     *Index
	sources map[string]struct{}
	stack   []ConceptId
	seen    map[ConceptId]struct{}
	pending []CodeResult
}

// Next returns the next (concept, code) pair in visit order, or false when
// the traversal is exhausted.
func (it *DownstreamIterator) Next() (CodeResult, bool) {
	for {
		if len(it.pending) > 0 {
			r := it.pending[0]
			it.pending = it.pending[1:]
			return r, true
		}

		if len(it.stack) == 0 {
			return CodeResult{}, false
		}

		id := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]
		if _, visited := it.seen[id]; visited {
			continue
		}
		it.seen[id] = struct{}{}

		c := &it.idx.Concepts[id]
		for _, code := range c.Codes {
			if len(it.sources) > 0 {
				if _, ok := it.sources[code.Source]; !ok {
					continue
				}
			}
			it.pending = append(it.pending, CodeResult{ConceptId: id, Code: code})
		}

		for _, child := range c.Children {
			it.stack = append(it.stack, child)
		}
	}
}
