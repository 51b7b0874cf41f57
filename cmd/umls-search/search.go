package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"

	"github.com/biomed-index/umls-search/index"
	"github.com/biomed-index/umls-search/internal/cliutil"
)

func runSearch(args []string) {
	indexDir := ""
	query := ""
	fuzzyEdits := -1
	graph := false
	var codeSources []string

	for len(args) > 0 {
		switch args[0] {
		case "-index":
			indexDir = cliutil.GetStringArg(args, "-index")
			args = args[1:]
		case "-query":
			query = cliutil.GetStringArg(args, "-query")
			args = args[1:]
		case "-fuzzy":
			fuzzyEdits = cliutil.GetNumericArg(args, "-fuzzy", 1, 0, 2)
			args = args[1:]
		case "-graph":
			graph = true
		case "-sources":
			codeSources = cliutil.GetCSVArg(args, "-sources")
			args = args[1:]
		default:
			cliutil.Fatalf("unrecognized search argument %q", args[0])
		}
		args = args[1:]
	}

	if indexDir == "" {
		cliutil.Fatalf("-index is required")
	}
	if query == "" {
		cliutil.Fatalf("-query is required")
	}

	idx, err := index.Open(indexDir)
	if err != nil {
		cliutil.Fatalf("opening index: %s", err)
	}

	if fuzzyEdits >= 0 {
		searchFuzzy(idx, query, uint8(fuzzyEdits))
		return
	}

	id, found, err := idx.Search(query)
	if err != nil {
		cliutil.Fatalf("search failed: %s", err)
	}
	if !found {
		fmt.Fprintf(os.Stderr, "no match for %q\n", query)
		return
	}

	printConcept(idx, id)

	if graph {
		printDownstream(idx, id, codeSources)
	}
}

type scoredFuzzyResult struct {
	key   string
	id    index.ConceptId
	score float64
}

func searchFuzzy(idx *index.Index, query string, edits uint8) {
	results, err := idx.FuzzySearch(query, edits)
	if err != nil {
		cliutil.Fatalf("fuzzy search failed: %s", err)
	}

	queryGrams, err := index.Trigrams(query)
	if err != nil {
		cliutil.Fatalf("scoring failed: %s", err)
	}

	var scored []scoredFuzzyResult
	for results.Next() {
		key := string(results.Key())
		candidateGrams, err := index.Trigrams(key)
		if err != nil {
			continue
		}
		scored = append(scored, scoredFuzzyResult{
			key:   key,
			id:    results.ConceptId(),
			score: index.Jaccard(queryGrams, candidateGrams),
		})
	}
	if err := results.Err(); err != nil {
		cliutil.Fatalf("fuzzy search failed: %s", err)
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	for _, r := range scored {
		fmt.Printf("%s\t%d\t%.3f\n", r.key, r.id, r.score)
	}
}

func printConcept(idx *index.Index, id index.ConceptId) {
	c := idx.Concepts[id]
	green := color.New(color.FgGreen, color.Bold)
	green.Printf("%s", c.CUI)
	fmt.Printf("\t%s\t%d codes\t%d types\n", c.PreferredName, len(c.Codes), len(c.Types))
}

func printDownstream(idx *index.Index, id index.ConceptId, codeSources []string) {
	it := idx.DownstreamCodes(id, codeSources)
	for {
		result, ok := it.Next()
		if !ok {
			break
		}
		fmt.Printf("  %d\t%s\t%s\n", result.ConceptId, result.Code.Source, result.Code.Code)
	}
}
