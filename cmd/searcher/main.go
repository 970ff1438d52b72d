// Command searcher answers boolean and BM25-ranked queries against an
// index built by indexer.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"docidx/internal/cliutil"
	"docidx/internal/search"
)

type indexMeta struct {
	DocCount  uint64  `json:"doc_count"`
	AvgDocLen float64 `json:"avg_doc_len"`
	SourceDB  string  `json:"source_db"`
}

func main() {
	args := os.Args[1:]

	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "\nERROR: No command-line arguments supplied to searcher\n")
		usage()
		os.Exit(1)
	}

	indexDir := ""
	mode := "boolean"
	query := ""
	limit := 10

	for len(args) > 0 {
		switch args[0] {
		case "--index":
			indexDir = cliutil.GetStringArg(args, "Index directory")
			args = args[1:]
		case "--mode":
			mode = cliutil.GetStringArg(args, "Mode")
			args = args[1:]
		case "--limit":
			limit = cliutil.GetNumericArg(args, "Result limit")
			args = args[1:]
		case "--query":
			query = cliutil.GetStringArg(args, "Query string")
			args = args[1:]
		default:
			fmt.Fprintf(os.Stderr, "\nERROR: Unrecognized option %s\n", args[0])
			usage()
			os.Exit(1)
		}
		args = args[1:]
	}

	if indexDir == "" {
		fmt.Fprintf(os.Stderr, "\nERROR: --index is required\n")
		os.Exit(1)
	}
	if query == "" {
		fmt.Fprintf(os.Stderr, "\nERROR: Query is empty.\n")
		os.Exit(1)
	}

	var searchMode search.Mode
	switch mode {
	case "boolean":
		searchMode = search.Boolean
	case "full":
		searchMode = search.Ranked
	default:
		fmt.Fprintf(os.Stderr, "\nERROR: Unknown mode: %s\n", mode)
		os.Exit(1)
	}

	meta, err := loadMeta(filepath.Join(indexDir, "index_meta.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nERROR: Unable to load index metadata: %s\n", err)
		os.Exit(1)
	}

	s, err := search.Open(indexDir, meta.DocCount, meta.AvgDocLen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nERROR: Unable to open index: %s\n", err)
		os.Exit(1)
	}
	defer s.Close()

	results, err := s.Query(query, searchMode, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nERROR: Query failed: %s\n", err)
		os.Exit(1)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	for _, r := range results {
		if searchMode == search.Ranked {
			fmt.Fprintf(w, "%v\t%s\t%s\n", r.Score, r.DocKey, r.FilePath)
		} else {
			fmt.Fprintf(w, "%s\t%s\n", r.DocKey, r.FilePath)
		}
	}
}

func loadMeta(path string) (indexMeta, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return indexMeta{}, err
	}
	var m indexMeta
	if err := json.Unmarshal(b, &m); err != nil {
		return indexMeta{}, err
	}
	return m, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: searcher --index <dir> --mode boolean|full --limit N --query \"...\"\n")
}
