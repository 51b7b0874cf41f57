package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownstreamCodesVisitsChildrenDepthFirst(t *testing.T) {
	files := buildFixture(t)
	outDir := t.TempDir()

	require.NoError(t, Build(files, Options{OutputDir: outDir, CaseInsensitive: true}))

	idx, err := Open(outDir)
	require.NoError(t, err)

	parentID, found, err := idx.Search("alpha")
	require.NoError(t, err)
	require.True(t, found)

	it := idx.DownstreamCodes(parentID, nil)

	var results []CodeResult
	for {
		r, ok := it.Next()
		if !ok {
			break
		}
		results = append(results, r)
	}

	// alpha's own codes (ICD10/A00, MSH/D01, sorted) come first, then gamma's
	// code (G/G01) once alpha's children (set via the CHD relation) are
	// visited. beta is alpha's parent, not its child, so it never appears.
	require.Len(t, results, 3)
	assert.Equal(t, "A00", results[0].Code.Code)
	assert.Equal(t, "D01", results[1].Code.Code)
	assert.Equal(t, "G01", results[2].Code.Code)
}

func TestDownstreamCodesFiltersBySource(t *testing.T) {
	files := buildFixture(t)
	outDir := t.TempDir()

	require.NoError(t, Build(files, Options{OutputDir: outDir, CaseInsensitive: true}))

	idx, err := Open(outDir)
	require.NoError(t, err)

	parentID, _, err := idx.Search("alpha")
	require.NoError(t, err)

	it := idx.DownstreamCodes(parentID, []string{"MSH"})

	var codes []string
	for {
		r, ok := it.Next()
		if !ok {
			break
		}
		codes = append(codes, r.Code.Code)
	}
	assert.Equal(t, []string{"D01"}, codes)
}

func TestFuzzySearchFindsNearMisspelling(t *testing.T) {
	files := buildFixture(t)
	outDir := t.TempDir()

	require.NoError(t, Build(files, Options{OutputDir: outDir, CaseInsensitive: true}))

	idx, err := Open(outDir)
	require.NoError(t, err)

	it, err := idx.FuzzySearch("alphx", 1)
	require.NoError(t, err)

	var found bool
	for it.Next() {
		if string(it.Key()) == "alpha" {
			found = true
		}
	}
	require.NoError(t, it.Err())
	assert.True(t, found)
}
