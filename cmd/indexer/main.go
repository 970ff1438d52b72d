// Command indexer builds an inverted index over a relational document
// corpus: tokenize each row's content, accumulate (term, doc_id, tf)
// entries, spill sorted chunks once chunk_limit is reached, and k-way
// merge the chunks into a lexicon, postings file, and doc-store.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"docidx/internal/cliutil"
	"docidx/internal/corpus"
	"docidx/internal/index"
	"docidx/internal/sysinfo"
)

func main() {
	args := os.Args[1:]

	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "\nERROR: No command-line arguments supplied to indexer\n")
		usage()
		os.Exit(1)
	}

	sourceURI := ""
	outDir := ""
	chunkLimit := 0

	for len(args) > 0 {
		switch args[0] {
		case "--source":
			sourceURI = cliutil.GetStringArg(args, "Source URI")
			args = args[1:]
		case "--out":
			outDir = cliutil.GetStringArg(args, "Output directory")
			args = args[1:]
		case "--chunk":
			chunkLimit = cliutil.GetNumericArg(args, "Chunk limit")
			args = args[1:]
		default:
			fmt.Fprintf(os.Stderr, "\nERROR: Unrecognized option %s\n", args[0])
			usage()
			os.Exit(1)
		}
		args = args[1:]
	}

	if sourceURI == "" {
		fmt.Fprintf(os.Stderr, "\nERROR: --source is required\n")
		os.Exit(1)
	}
	if outDir == "" {
		fmt.Fprintf(os.Stderr, "\nERROR: --out is required\n")
		os.Exit(1)
	}

	tune := sysinfo.Tuning(0)
	diag := color.New(color.FgCyan)
	diag.Fprintf(os.Stderr, "indexer: %d CPU, AVX2=%v, %d MiB RAM\n", tune.NumCPU, tune.HasAVX2, tune.TotalRAMMiB)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "\nERROR: Unable to create output directory: %s\n", err)
		os.Exit(1)
	}

	src, err := corpus.Open(sourceURI)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nERROR: Unable to open source: %s\n", err)
		os.Exit(1)
	}
	defer src.Close()

	p := message.NewPrinter(language.English)

	stats, err := index.Build(src, outDir, index.Options{
		ChunkLimit: chunkLimit,
		SourceTag:  sourceURI,
		OnProgress: func(docsIndexed uint64) {
			p.Fprintf(os.Stderr, "Indexed %d docs...\n", docsIndexed)
		},
		ProgressStep: 5000,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nERROR: Index build failed: %s\n", err)
		os.Exit(1)
	}

	good := color.New(color.FgGreen)
	good.Fprintf(os.Stderr, "Index build complete. Docs: %s, chunks: %d, %dms\n",
		p.Sprintf("%d", stats.DocCount), stats.ChunkCount, stats.BuildDurationMs)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: indexer --source sqlite://<path> --out <dir> [--chunk N]\n")
}
