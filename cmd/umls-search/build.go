package main

import (
	"fmt"
	"os"

	"github.com/pbnjay/memory"

	"github.com/biomed-index/umls-search/index"
	"github.com/biomed-index/umls-search/internal/cliutil"
	"github.com/biomed-index/umls-search/rrf"
)

func runBuild(args []string) {
	dataPath := ""
	outDir := ""
	caseInsensitive := false
	var languages, sources, semanticTypes []string

	for len(args) > 0 {
		switch args[0] {
		case "-data":
			dataPath = cliutil.GetStringArg(args, "-data")
			args = args[1:]
		case "-out":
			outDir = cliutil.GetStringArg(args, "-out")
			args = args[1:]
		case "-ci", "-case-insensitive":
			caseInsensitive = true
		case "-languages":
			languages = cliutil.GetCSVArg(args, "-languages")
			args = args[1:]
		case "-sources":
			sources = cliutil.GetCSVArg(args, "-sources")
			args = args[1:]
		case "-semantic-types":
			semanticTypes = cliutil.GetCSVArg(args, "-semantic-types")
			args = args[1:]
		default:
			cliutil.Fatalf("unrecognized build argument %q", args[0])
		}
		args = args[1:]
	}

	if dataPath == "" {
		cliutil.Fatalf("-data is required")
	}
	if outDir == "" {
		cliutil.Fatalf("-out is required")
	}

	fmt.Fprintf(os.Stderr, "Mmry %d GiB\n", memory.TotalMemory()/(1024*1024*1024))

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		cliutil.Fatalf("creating output directory: %s", err)
	}

	files, err := rrf.Open(dataPath)
	if err != nil {
		cliutil.Fatalf("opening RRF distribution: %s", err)
	}

	opts := index.Options{
		OutputDir:       outDir,
		CaseInsensitive: caseInsensitive,
		Languages:       languages,
		Sources:         sources,
		SemanticTypes:   semanticTypes,
	}

	fmt.Fprintf(os.Stderr, "Building index in %s\n", outDir)
	if err := index.Build(files, opts); err != nil {
		cliutil.Fatalf("build failed: %s", err)
	}

	cliutil.PrintDuration("build", 0)
}
