package rrf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstPTRPrefix(t *testing.T) {
	cases := []struct {
		ptr  string
		want string
	}{
		{"", ""},
		{"A0", ""},
		{"A0.A1", "A0.A1"},
		{"A0.A1.A2", "A0.A1"},
		{"A0.A1.A2.A3", "A0.A1"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, firstPTRPrefix(c.ptr), "ptr=%q", c.ptr)
	}
}

func TestSplitRow(t *testing.T) {
	fields := splitRow("a|b|c|", 3)
	assert.Equal(t, []string{"a", "b", "c"}, fields)

	short := splitRow("a|b|", 4)
	assert.Equal(t, []string{"a", "b", "", ""}, short)

	raw := splitRow("a|b|c|", -1)
	assert.Equal(t, []string{"a", "b", "c"}, raw)
}

func TestStreamOnePartCarryoverAndPTR(t *testing.T) {
	// Mirrors spec scenario 6: a full MRSAT row followed by a continuation
	// row that must inherit CUI/METAUI/STYPE/SAB from it.
	columns := []string{"CUI", "METAUI", "STYPE", "SAB", "ATN", "ATV"}
	identityIdx := resolveIdentityIndexes("MRSAT", columns)

	rows := [][]string{
		{"C0000001", "A0", "AUI", "SAB1", "ATN", "ATV1"},
		{"", "", "", "", "ATN", "ATV2"},
	}

	carry := make([]string, len(identityIdx))
	var got [][]string
	for _, raw := range rows {
		fields := append([]string(nil), raw...)

		continuation := fields[identityIdx[0]] == ""
		if continuation {
			for i, ci := range identityIdx {
				fields[ci] = carry[i]
			}
		} else {
			for i, ci := range identityIdx {
				carry[i] = fields[ci]
			}
		}
		got = append(got, fields)
	}

	assert.Equal(t, "C0000001", got[1][0])
	assert.Equal(t, "A0", got[1][1])
	assert.Equal(t, "AUI", got[1][2])
	assert.Equal(t, "SAB1", got[1][3])
	assert.Equal(t, "ATV2", got[1][5])
}
