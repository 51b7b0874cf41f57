package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrigramsLengths(t *testing.T) {
	one, err := Trigrams("w")
	require.NoError(t, err)
	assert.Equal(t, []string{"w"}, one)

	two, err := Trigrams("ab")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "ab", "b"}, two)

	six, err := Trigrams("abcdef")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "ab", "abc", "bcd", "cde", "def", "ef", "f"}, six)
}

func TestTrigramsRejectsNonASCII(t *testing.T) {
	_, err := Trigrams("héart")
	assert.Error(t, err)
}

func TestJaccardSelfAndSymmetry(t *testing.T) {
	a, err := Trigrams("asthma")
	require.NoError(t, err)
	b, err := Trigrams("asthna")
	require.NoError(t, err)

	assert.Equal(t, 1.0, Jaccard(a, a))
	assert.Equal(t, Jaccard(a, b), Jaccard(b, a))
	assert.GreaterOrEqual(t, Jaccard(a, b), 0.5)
}
