package search

import (
	"math"
	"testing"

	"docidx/internal/bm25"
	"docidx/internal/corpus"
	"docidx/internal/index"
)

// TestScenarioS1TinyCorpusBooleanHit mirrors spec scenario S1.
func TestScenarioS1TinyCorpusBooleanHit(t *testing.T) {
	rows := []corpus.Row{
		{DocKey: "a", FilePath: "/x", Content: "Hello World"},
		{DocKey: "b", FilePath: "/x", Content: "hello there"},
		{DocKey: "c", FilePath: "/x", Content: "goodbye"},
	}
	src := corpus.NewSliceSource(rows)
	outDir := t.TempDir()
	stats, err := index.Build(src, outDir, index.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	s, err := Open(outDir, stats.DocCount, stats.AvgDocLen)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	results, err := s.Query("hello", Boolean, 10)
	if err != nil {
		t.Fatalf("Query(hello): %v", err)
	}
	if len(results) != 2 || results[0].DocKey != "a" || results[1].DocKey != "b" {
		t.Fatalf("Query(hello): got %+v, want [a b] in that order", results)
	}

	results, err = s.Query("hello there", Boolean, 10)
	if err != nil {
		t.Fatalf("Query(hello there): %v", err)
	}
	if len(results) != 1 || results[0].DocKey != "b" {
		t.Fatalf("Query(hello there): got %+v, want [b]", results)
	}

	results, err = s.Query("missing", Boolean, 10)
	if err != nil {
		t.Fatalf("Query(missing): %v", err)
	}
	if results != nil {
		t.Fatalf("Query(missing): got %+v, want nil (No results.)", results)
	}
}

// TestScenarioS4MergeAcrossSpills mirrors spec scenario S4: a small
// chunk_limit forces multiple chunk spills, and the merged posting list
// for a shared term must still be strictly ascending by doc-id.
func TestScenarioS4MergeAcrossSpills(t *testing.T) {
	rows := []corpus.Row{
		{DocKey: "d0", FilePath: "/x", Content: "alpha beta"},
		{DocKey: "d1", FilePath: "/x", Content: "alpha gamma"},
		{DocKey: "d2", FilePath: "/x", Content: "alpha delta"},
		{DocKey: "d3", FilePath: "/x", Content: "alpha epsilon"},
		{DocKey: "d4", FilePath: "/x", Content: "alpha zeta"},
	}
	src := corpus.NewSliceSource(rows)
	outDir := t.TempDir()
	stats, err := index.Build(src, outDir, index.Options{ChunkLimit: 2})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if stats.ChunkCount < 2 {
		t.Fatalf("expected multiple chunks with chunk_limit=2, got %d", stats.ChunkCount)
	}

	s, err := Open(outDir, stats.DocCount, stats.AvgDocLen)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	results, err := s.Query("alpha", Boolean, 10)
	if err != nil {
		t.Fatalf("Query(alpha): %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("Query(alpha): got %d results, want 5", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].DocID <= results[i-1].DocID {
			t.Fatalf("results not in ascending doc-id order: %+v", results)
		}
	}
}

// TestScenarioS5BM25Ranking mirrors spec scenario S5.
func TestScenarioS5BM25Ranking(t *testing.T) {
	rows := []corpus.Row{
		{DocKey: "short", FilePath: "/x", Content: "quantum quantum computing"},
		{DocKey: "long", FilePath: "/x", Content: "quantum computing is a broad and deep field of study"},
	}
	src := corpus.NewSliceSource(rows)
	outDir := t.TempDir()
	stats, err := index.Build(src, outDir, index.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	s, err := Open(outDir, stats.DocCount, stats.AvgDocLen)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	results, err := s.Query("quantum", Ranked, 10)
	if err != nil {
		t.Fatalf("Query(quantum): %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Query(quantum): got %d results, want 2", len(results))
	}
	if results[0].DocKey != "short" {
		t.Fatalf("expected doc with higher tf/shorter length to rank first, got %+v", results)
	}

	idf := bm25.IDF(stats.DocCount, 2)
	wantShort := bm25.Score(idf, 2, 3, stats.AvgDocLen)
	wantLong := bm25.Score(idf, 1, 10, stats.AvgDocLen)
	if math.Abs(results[0].Score-wantShort) > 1e-9 {
		t.Errorf("short doc score: got %v, want %v", results[0].Score, wantShort)
	}
	if math.Abs(results[1].Score-wantLong) > 1e-9 {
		t.Errorf("long doc score: got %v, want %v", results[1].Score, wantLong)
	}
}

// TestScenarioS6EmptyCorpus mirrors spec scenario S6.
func TestScenarioS6EmptyCorpus(t *testing.T) {
	src := corpus.NewSliceSource(nil)
	outDir := t.TempDir()
	stats, err := index.Build(src, outDir, index.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if stats.DocCount != 0 || stats.AvgDocLen != 0 {
		t.Fatalf("empty build: got DocCount=%d AvgDocLen=%v, want 0, 0", stats.DocCount, stats.AvgDocLen)
	}

	s, err := Open(outDir, stats.DocCount, stats.AvgDocLen)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	results, err := s.Query("anything", Boolean, 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if results != nil {
		t.Fatalf("Query against empty index: got %+v, want nil", results)
	}

	results, err = s.Query("anything", Ranked, 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if results != nil {
		t.Fatalf("Query against empty index (ranked): got %+v, want nil", results)
	}
}
