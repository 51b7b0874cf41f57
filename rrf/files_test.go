package rrf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGzPart(t *testing.T, dir, name string, lines []string) {
	t.Helper()
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

func TestOpenAndStream(t *testing.T) {
	dir := t.TempDir()

	writeGzPart(t, dir, "MRFILES.RRF.gz", []string{
		"MRCONSO.RRF|Concepts|CUI,LAT,STR|3|0|0|",
		"MRSAT.RRF|Attributes|CUI,METAUI,STYPE,SAB,ATN,ATV|6|0|0|",
	})
	writeGzPart(t, dir, "MRCONSO.RRF.gz", []string{
		"C0000001|ENG|HEART|",
		"C0000002|ENG|LUNG|",
	})
	writeGzPart(t, dir, "MRSAT.RRF.gz", []string{
		"C0000001|A0|AUI|SAB1|ATN|ATV1|",
		"||||ATN|ATV2|",
	})

	files, err := Open(dir)
	require.NoError(t, err)

	conCols, ok := files.Columns("MRCONSO")
	require.True(t, ok)
	assert.Equal(t, []string{"CUI", "LAT", "STR"}, conCols)

	items, err := files.Stream("MRCONSO")
	require.NoError(t, err)

	var strs []string
	for item := range items {
		require.NoError(t, item.Err)
		strs = append(strs, item.Rec.Get(2))
	}
	assert.Equal(t, []string{"HEART", "LUNG"}, strs)

	satItems, err := files.Stream("MRSAT")
	require.NoError(t, err)

	var rows []*Record
	for item := range satItems {
		require.NoError(t, item.Err)
		rows = append(rows, item.Rec)
	}
	require.Len(t, rows, 2)
	assert.Equal(t, "C0000001", rows[1].Get(0))
	assert.Equal(t, "A0", rows[1].Get(1))
	assert.Equal(t, "AUI", rows[1].Get(2))
	assert.Equal(t, "SAB1", rows[1].Get(3))
	assert.Equal(t, "ATV2", rows[1].Get(5))
}

func TestOpenMissingMRFILES(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(dir)
	assert.Error(t, err)
}
