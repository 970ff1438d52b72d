package index

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"docidx/internal/corpus"
)

// TestDeterministicBuild verifies that two builds over the same source
// sequence produce byte-identical output files, independent of Go's
// randomized map iteration order during Phase A.
func TestDeterministicBuild(t *testing.T) {
	rows := func() []corpus.Row {
		return []corpus.Row{
			{DocKey: "a", FilePath: "/x", Content: "the quick brown fox jumps over the lazy dog"},
			{DocKey: "b", FilePath: "/y", Content: "pack my box with five dozen liquor jugs"},
			{DocKey: "c", FilePath: "/z", Content: "the five boxing wizards jump quickly"},
		}
	}

	names := []string{
		"docstore_data.bin", "docstore_offsets.bin", "docstore_doclen.bin",
		"postings.bin", "lexicon.bin",
	}

	dirA := t.TempDir()
	if _, err := Build(corpus.NewSliceSource(rows()), dirA, Options{ChunkLimit: 3}); err != nil {
		t.Fatalf("Build A: %v", err)
	}
	dirB := t.TempDir()
	if _, err := Build(corpus.NewSliceSource(rows()), dirB, Options{ChunkLimit: 3}); err != nil {
		t.Fatalf("Build B: %v", err)
	}

	for _, name := range names {
		a, err := os.ReadFile(filepath.Join(dirA, name))
		if err != nil {
			t.Fatalf("read %s (A): %v", name, err)
		}
		b, err := os.ReadFile(filepath.Join(dirB, name))
		if err != nil {
			t.Fatalf("read %s (B): %v", name, err)
		}
		if !bytes.Equal(a, b) {
			t.Errorf("%s differs between identical builds", name)
		}
	}
}
