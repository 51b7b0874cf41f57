package main

import (
	"fmt"

	"github.com/biomed-index/umls-search/internal/cliutil"
	"github.com/biomed-index/umls-search/rrf"
)

func runExtract(args []string) {
	archivePath := ""
	outDir := ""

	for len(args) > 0 {
		switch args[0] {
		case "-archive":
			archivePath = cliutil.GetStringArg(args, "-archive")
			args = args[1:]
		case "-out":
			outDir = cliutil.GetStringArg(args, "-out")
			args = args[1:]
		default:
			cliutil.Fatalf("unrecognized extract argument %q", args[0])
		}
		args = args[1:]
	}

	if archivePath == "" {
		cliutil.Fatalf("-archive is required")
	}
	if outDir == "" {
		cliutil.Fatalf("-out is required")
	}

	if err := rrf.Extract(archivePath, outDir); err != nil {
		cliutil.Fatalf("extract failed: %s", err)
	}

	fmt.Printf("extracted %s to %s\n", archivePath, outDir)
}
