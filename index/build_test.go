package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomed-index/umls-search/rrf"
)

func writeGzPart(t *testing.T, dir, name string, lines []string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o755))
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()

	zw := pgzip.NewWriter(f)
	for _, line := range lines {
		_, err := zw.Write([]byte(line + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func buildFixture(t *testing.T) *rrf.Files {
	dir := t.TempDir()

	writeGzPart(t, dir, "MRFILES.RRF.gz", []string{
		"MRCONSO.RRF|Concepts|CUI,LAT,STR,TTY,SAB,CODE|7|0|0|",
		"MRRANK.RRF|Ranks|SAB,TTY,RANK|3|0|0|",
		"MRSTY.RRF|Semantic types|CUI,TUI|3|0|0|",
		"MRREL.RRF|Relations|CUI1,REL,CUI2|2|0|0|",
	})
	writeGzPart(t, dir, "NET/SRDEF.gz", []string{
		"STY|T047|Disease or Syndrome|A1.2|a disease or syndrome|",
	})
	writeGzPart(t, dir, "MRCONSO.RRF.gz", []string{
		"C0000001|ENG|alpha|X|A||",
		"C0000001|ENG|Alpha|Y|B||",
		"C0000001|ENG|Alpha|Y|MSH|D01|",
		"C0000001|ENG|Alpha|Y|ICD10|A00|",
		"C0000001|ENG|Alpha|Y|MSH|D01|",
		"C0000002|ENG|beta|X|A|B01|",
		"C0000003|ENG|gamma|X|G|G01|",
	})
	writeGzPart(t, dir, "MRRANK.RRF.gz", []string{
		"A|X|1|",
		"B|Y|5|",
	})
	writeGzPart(t, dir, "MRSTY.RRF.gz", []string{
		"C0000001|T047|",
		"C0000002|T047|",
		"C0000003|T047|",
	})
	writeGzPart(t, dir, "MRREL.RRF.gz", []string{
		"C0000001|PAR|C0000002|",
		"C0000001|CHD|C0000003|",
	})

	files, err := rrf.Open(dir)
	require.NoError(t, err)
	return files
}

func TestBuildPreferredNameCodesAndRelations(t *testing.T) {
	files := buildFixture(t)
	outDir := t.TempDir()

	opts := Options{OutputDir: outDir, CaseInsensitive: true}
	require.NoError(t, Build(files, opts))

	idx, err := Open(outDir)
	require.NoError(t, err)
	require.Len(t, idx.Concepts, 3)

	id1, found, err := idx.Search("alpha")
	require.NoError(t, err)
	require.True(t, found)

	c1 := idx.Concepts[id1]
	assert.Equal(t, "Alpha", c1.PreferredName)
	assert.Equal(t, []ConceptCode{{Source: "ICD10", Code: "A00"}, {Source: "MSH", Code: "D01"}}, c1.Codes)

	id2, found, err := idx.Search("beta")
	require.NoError(t, err)
	require.True(t, found)

	assert.Contains(t, c1.Parents, id2)
	c2 := idx.Concepts[id2]
	assert.Contains(t, c2.Children, id1)
	assert.NotContains(t, c2.Parents, id1)
	assert.NotContains(t, c1.Children, id2)
}

func TestSearchByCUIResolvesEveryConcept(t *testing.T) {
	files := buildFixture(t)
	outDir := t.TempDir()

	require.NoError(t, Build(files, Options{OutputDir: outDir, CaseInsensitive: true}))

	idx, err := Open(outDir)
	require.NoError(t, err)

	for i, c := range idx.Concepts {
		id, found, err := idx.Search(c.CUI)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, ConceptId(i), id)
	}
}
