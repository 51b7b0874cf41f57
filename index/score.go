package index

import "github.com/biomed-index/umls-search/errs"

// Trigrams returns the padded 1/2/3-gram sequence for word, as specified:
// a leading 1-gram and 2-gram, the full sliding trigram window, then a
// trailing 2-gram and 1-gram. Short words (length 1 or 2) are special-cased
// since the sliding window degenerates.
//
// word must be ASCII; callers normalize to ASCII before scoring.
func Trigrams(word string) ([]string, error) {
	for i := 0; i < len(word); i++ {
		if word[i] >= 0x80 {
			return nil, errs.Newf(errs.Data, "trigram input %q is not ASCII", word)
		}
	}

	n := len(word)
	switch {
	case n == 0:
		return nil, nil
	case n == 1:
		return []string{word}, nil
	case n == 2:
		return []string{word[0:1], word[0:2], word[1:2]}, nil
	}

	grams := make([]string, 0, n+2)
	grams = append(grams, word[0:1], word[0:2])
	for i := 0; i <= n-3; i++ {
		grams = append(grams, word[i:i+3])
	}
	grams = append(grams, word[n-2:n], word[n-1:n])
	return grams, nil
}

// Jaccard computes the Jaccard similarity between the trigram sequences of
// a and b, treating each as a set (duplicates collapsed).
func Jaccard(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)

	intersection := 0
	for g := range setA {
		if _, ok := setB[g]; ok {
			intersection++
		}
	}

	union := len(setA)
	for g := range setB {
		if _, ok := setA[g]; !ok {
			union++
		}
	}

	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func toSet(grams []string) map[string]struct{} {
	set := make(map[string]struct{}, len(grams))
	for _, g := range grams {
		set[g] = struct{}{}
	}
	return set
}
