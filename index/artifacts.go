package index

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/blevesearch/vellum"
	"github.com/klauspost/pgzip"

	"github.com/biomed-index/umls-search/errs"
)

const (
	metadataFile      = "umls_search.metadata.json"
	stringsFSTFile    = "umls_search.strings.fst"
	conceptsFile      = "umls_search.concepts.ndjson.gz"
	semanticTypesFile = "umls_search.semantic_types.ndjson"
)

// writeArtifacts writes the four output files in the well-defined order
// required by the resource-ownership contract: FST first, then semantic
// types, then concepts, then metadata.
func writeArtifacts(opts Options, concepts []Concept, semanticTypes map[uint16]SemanticType, strTable map[string]ConceptId) error {
	if err := writeFST(opts.OutputDir, strTable); err != nil {
		return err
	}
	if err := writeSemanticTypes(opts.OutputDir, semanticTypes); err != nil {
		return err
	}
	if err := writeConcepts(opts.OutputDir, concepts); err != nil {
		return err
	}
	return writeMetadata(opts.OutputDir, opts)
}

func writeFST(dir string, strTable map[string]ConceptId) error {
	keys := make([]string, 0, len(strTable))
	for k := range strTable {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	path := filepath.Join(dir, stringsFSTFile)
	f, err := os.Create(path)
	if err != nil {
		return errs.From(errs.Serialize, path, err)
	}
	defer f.Close()

	builder, err := vellum.New(f, nil)
	if err != nil {
		return errs.From(errs.Serialize, path, err)
	}

	for _, k := range keys {
		if err := builder.Insert([]byte(k), uint64(strTable[k])); err != nil {
			return errs.From(errs.Serialize, path, err)
		}
	}

	if err := builder.Close(); err != nil {
		return errs.From(errs.Serialize, path, err)
	}
	return nil
}

func writeSemanticTypes(dir string, semanticTypes map[uint16]SemanticType) error {
	path := filepath.Join(dir, semanticTypesFile)
	f, err := os.Create(path)
	if err != nil {
		return errs.From(errs.Serialize, path, err)
	}
	defer f.Close()

	tuis := make([]int, 0, len(semanticTypes))
	for tui := range semanticTypes {
		tuis = append(tuis, int(tui))
	}
	sort.Ints(tuis)

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, tui := range tuis {
		if err := enc.Encode(semanticTypes[uint16(tui)]); err != nil {
			return errs.From(errs.Serialize, path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return errs.From(errs.Serialize, path, err)
	}
	return nil
}

func writeConcepts(dir string, concepts []Concept) error {
	path := filepath.Join(dir, conceptsFile)
	f, err := os.Create(path)
	if err != nil {
		return errs.From(errs.Serialize, path, err)
	}
	defer f.Close()

	zw := pgzip.NewWriter(f)
	enc := json.NewEncoder(zw)
	for i := range concepts {
		if err := enc.Encode(&concepts[i]); err != nil {
			return errs.From(errs.Serialize, path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return errs.From(errs.Serialize, path, err)
	}
	return nil
}

func writeMetadata(dir string, opts Options) error {
	path := filepath.Join(dir, metadataFile)
	data, err := json.MarshalIndent(opts, "", "  ")
	if err != nil {
		return errs.From(errs.Serialize, path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.From(errs.Serialize, path, err)
	}
	return nil
}

func readMetadata(dir string) (Options, error) {
	path := filepath.Join(dir, metadataFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, errs.From(errs.Config, path, err)
	}
	var opts Options
	if err := json.Unmarshal(data, &opts); err != nil {
		return Options{}, errs.From(errs.Serialize, path, err)
	}
	opts.OutputDir = dir
	return opts, nil
}

func readFST(dir string) ([]byte, *vellum.FST, error) {
	path := filepath.Join(dir, stringsFSTFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errs.From(errs.Config, path, err)
	}
	fst, err := vellum.Load(data)
	if err != nil {
		return nil, nil, errs.From(errs.Serialize, path, err)
	}
	return data, fst, nil
}

func readConcepts(dir string) ([]Concept, error) {
	path := filepath.Join(dir, conceptsFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.From(errs.Config, path, err)
	}
	defer f.Close()

	zr, err := pgzip.NewReader(bufio.NewReaderSize(f, 64*1024))
	if err != nil {
		return nil, errs.From(errs.Serialize, path, err)
	}
	defer zr.Close()

	var concepts []Concept
	dec := json.NewDecoder(zr)
	for dec.More() {
		var c Concept
		if err := dec.Decode(&c); err != nil {
			return nil, errs.From(errs.Serialize, path, err)
		}
		concepts = append(concepts, c)
	}
	return concepts, nil
}

func readSemanticTypes(dir string) (map[uint16]SemanticType, error) {
	path := filepath.Join(dir, semanticTypesFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.From(errs.Config, path, err)
	}
	defer f.Close()

	types := make(map[uint16]SemanticType)
	dec := json.NewDecoder(bufio.NewReaderSize(f, 64*1024))
	for dec.More() {
		var st SemanticType
		if err := dec.Decode(&st); err != nil {
			return nil, errs.From(errs.Serialize, path, err)
		}
		types[st.TUI] = st
	}
	return types, nil
}
