package main

import (
	"fmt"
	"sort"

	"github.com/biomed-index/umls-search/index"
	"github.com/biomed-index/umls-search/internal/cliutil"
	"github.com/biomed-index/umls-search/rrf"
)

func runListFiles(args []string) {
	dataPath := requireDataArg(args)

	files, err := rrf.Open(dataPath)
	if err != nil {
		cliutil.Fatalf("opening RRF distribution: %s", err)
	}

	schema, err := files.ReadSchema()
	if err != nil {
		cliutil.Fatalf("reading schema: %s", err)
	}

	for _, fd := range schema {
		fmt.Printf("%s\t%s\t%d rows\t%d bytes\n", fd.Filename, fd.Description, fd.NumRows, fd.NumBytes)
		for _, col := range fd.Columns {
			fmt.Printf("  %s\t%s\n", col.Name, col.Description)
		}
	}
}

func runListSources(args []string) {
	dataPath := requireDataArg(args)

	files, err := rrf.Open(dataPath)
	if err != nil {
		cliutil.Fatalf("opening RRF distribution: %s", err)
	}

	sources, err := files.ReadSources()
	if err != nil {
		cliutil.Fatalf("reading sources: %s", err)
	}

	for _, s := range sources {
		fmt.Printf("%s\t%s\t%s\t%s\n", s.Abbreviation, s.Language, s.Family, s.Name)
	}
}

func runListTypes(args []string) {
	indexDir := ""
	indexedOnly := false
	for len(args) > 0 {
		switch args[0] {
		case "-index":
			indexDir = cliutil.GetStringArg(args, "-index")
			args = args[1:]
		case "-indexed-only":
			indexedOnly = true
		default:
			cliutil.Fatalf("unrecognized argument %q", args[0])
		}
		args = args[1:]
	}
	if indexDir == "" {
		cliutil.Fatalf("-index is required")
	}

	idx, err := index.Open(indexDir)
	if err != nil {
		cliutil.Fatalf("opening index: %s", err)
	}

	var used map[uint16]struct{}
	if indexedOnly {
		used = make(map[uint16]struct{})
		for _, c := range idx.Concepts {
			for _, tui := range c.Types {
				used[tui] = struct{}{}
			}
		}
	}

	tuis := make([]uint16, 0, len(idx.SemanticTypes))
	for tui := range idx.SemanticTypes {
		if indexedOnly {
			if _, ok := used[tui]; !ok {
				continue
			}
		}
		tuis = append(tuis, tui)
	}
	sort.Slice(tuis, func(i, j int) bool { return tuis[i] < tuis[j] })

	for _, tui := range tuis {
		st := idx.SemanticTypes[tui]
		fmt.Printf("T%03d\t%s\t%s\t%s\n", st.TUI, st.Name, st.TreeNumber, st.Description)
	}
}

func runStats(args []string) {
	indexDir := ""
	for len(args) > 0 {
		switch args[0] {
		case "-index":
			indexDir = cliutil.GetStringArg(args, "-index")
			args = args[1:]
		default:
			cliutil.Fatalf("unrecognized argument %q", args[0])
		}
		args = args[1:]
	}
	if indexDir == "" {
		cliutil.Fatalf("-index is required")
	}

	idx, err := index.Open(indexDir)
	if err != nil {
		cliutil.Fatalf("opening index: %s", err)
	}

	counts := make(map[string]int)
	for _, c := range idx.Concepts {
		for _, code := range c.Codes {
			counts[code.Source]++
		}
	}

	sources := make([]string, 0, len(counts))
	for source := range counts {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	fmt.Printf("%d concepts\n", len(idx.Concepts))
	for _, source := range sources {
		fmt.Printf("%s\t%d codes\n", source, counts[source])
	}
}

func requireDataArg(args []string) string {
	dataPath := ""
	for len(args) > 0 {
		switch args[0] {
		case "-data":
			dataPath = cliutil.GetStringArg(args, "-data")
			args = args[1:]
		default:
			cliutil.Fatalf("unrecognized argument %q", args[0])
		}
		args = args[1:]
	}
	if dataPath == "" {
		cliutil.Fatalf("-data is required")
	}
	return dataPath
}
