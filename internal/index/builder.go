package index

import (
	"container/heap"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"docidx/internal/corpus"
	"docidx/internal/docstore"
	"docidx/internal/lexicon"
	"docidx/internal/postings"
	"docidx/internal/tokenize"
)

// DefaultChunkLimit is the maximum number of (term, doc_id, tf) entries
// retained in memory before a chunk is spilled, matching the reference
// indexer's default.
const DefaultChunkLimit = 1_000_000

// Stats summarizes one completed build, mirroring the ambient fields
// index_meta.json carries alongside the required doc_count/avg_doc_len.
type Stats struct {
	DocCount        uint64
	AvgDocLen       float64
	SourceDB        string
	BuildDurationMs int64
	ChunkCount      int
}

// Progress is called after every Options.ProgressStep documents during
// Phase A (never when ProgressStep is 0),
// letting a caller (the CLI) print a diagnostic without the builder
// itself depending on any particular output sink.
type Progress func(docsIndexed uint64)

// Options configures one Build call.
type Options struct {
	ChunkLimit   int
	SourceTag    string
	OnProgress   Progress
	ProgressStep uint64
}

// Build consumes source in order, assigning dense doc-ids, and writes a
// complete index into outDir, which must not already contain index
// files (a caller is expected to have created a fresh or emptied
// directory). It implements spec §4.2 Phase A (ingest with interleaved
// spill), Phase B (final spill) and Phase C (k-way merge).
func Build(source corpus.RowSource, outDir string, opts Options) (Stats, error) {
	start := time.Now()

	chunkLimit := opts.ChunkLimit
	if chunkLimit <= 0 {
		chunkLimit = DefaultChunkLimit
	}

	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return Stats{}, fmt.Errorf("index: create tmp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	docDataPath := filepath.Join(outDir, "docstore_data.bin")
	docOffsetsPath := filepath.Join(outDir, "docstore_offsets.bin")
	docLenPath := filepath.Join(outDir, "docstore_doclen.bin")
	postingsPath := filepath.Join(outDir, "postings.bin")
	lexiconPath := filepath.Join(outDir, "lexicon.bin")
	metaPath := filepath.Join(outDir, "index_meta.json")

	dsw, err := docstore.NewWriter(docDataPath)
	if err != nil {
		return Stats{}, err
	}

	var (
		entries     []Entry
		chunkPaths  []string
		docLens     []uint32
		totalTokens uint64
		docID       uint32
	)

	flush := func() error {
		if len(entries) == 0 {
			return nil
		}
		chunkPath := filepath.Join(tmpDir, fmt.Sprintf("chunk_%d.bin", len(chunkPaths)))
		if err := writeChunk(entries, chunkPath); err != nil {
			return err
		}
		chunkPaths = append(chunkPaths, chunkPath)
		entries = make([]Entry, 0, chunkLimit)
		return nil
	}

	for {
		row, ok, err := source.Next()
		if err != nil {
			dsw.Close()
			return Stats{}, fmt.Errorf("index: read source row: %w", err)
		}
		if !ok {
			break
		}

		if _, err := dsw.Append(row.DocKey, row.FilePath); err != nil {
			dsw.Close()
			return Stats{}, err
		}

		counts, tokenCount := tokenize.Counts(row.Content)
		docLens = append(docLens, tokenCount)
		totalTokens += uint64(tokenCount)

		for term, tf := range counts {
			entries = append(entries, Entry{Term: term, DocID: docID, TF: tf})
			if len(entries) >= chunkLimit {
				if err := flush(); err != nil {
					dsw.Close()
					return Stats{}, err
				}
			}
		}

		docID++
		if opts.OnProgress != nil && opts.ProgressStep > 0 && uint64(docID)%opts.ProgressStep == 0 {
			opts.OnProgress(uint64(docID))
		}
	}

	// Phase B: spill whatever remains.
	if err := flush(); err != nil {
		dsw.Close()
		return Stats{}, err
	}

	if err := dsw.Close(); err != nil {
		return Stats{}, err
	}
	if err := docstore.WriteOffsets(docOffsetsPath, dsw.Offsets()); err != nil {
		return Stats{}, err
	}
	if err := docstore.WriteDocLens(docLenPath, docLens); err != nil {
		return Stats{}, err
	}

	// Phase C: k-way merge every chunk into postings + lexicon.
	chunkCount, err := mergeChunks(chunkPaths, postingsPath, lexiconPath)
	if err != nil {
		return Stats{}, err
	}

	docCount := uint64(len(docLens))
	avgDocLen := 0.0
	if docCount > 0 {
		avgDocLen = float64(totalTokens) / float64(docCount)
	}

	stats := Stats{
		DocCount:        docCount,
		AvgDocLen:       avgDocLen,
		SourceDB:        opts.SourceTag,
		BuildDurationMs: time.Since(start).Milliseconds(),
		ChunkCount:      chunkCount,
	}
	if err := writeMeta(metaPath, stats); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// mergeChunks performs the Phase C k-way merge and returns the number of
// chunks merged.
func mergeChunks(chunkPaths []string, postingsPath, lexiconPath string) (int, error) {
	pw, err := postings.NewWriter(postingsPath)
	if err != nil {
		return 0, err
	}
	defer pw.Close()

	var readers []*chunkReader
	defer func() {
		for _, r := range readers {
			r.close()
		}
	}()

	h := &mergeHeap{}
	heap.Init(h)
	for _, path := range chunkPaths {
		r, err := openChunkReader(path)
		if err != nil {
			return 0, err
		}
		readers = append(readers, r)
		if r.valid {
			heap.Push(h, r)
		}
	}

	var lex []lexicon.Entry
	var (
		currentTerm string
		haveTerm    bool
		currentList []postings.Posting
	)

	flushTerm := func() error {
		if !haveTerm {
			return nil
		}
		off, err := pw.WriteList(currentList)
		if err != nil {
			return err
		}
		lex = append(lex, lexicon.Entry{
			Term:           currentTerm,
			PostingsOffset: off,
			PostingsCount:  uint32(len(currentList)),
		})
		currentList = currentList[:0]
		return nil
	}

	for h.Len() > 0 {
		r := heap.Pop(h).(*chunkReader)
		e := r.current

		if !haveTerm || e.Term != currentTerm {
			if err := flushTerm(); err != nil {
				return 0, err
			}
			currentTerm = e.Term
			haveTerm = true
		}
		currentList = append(currentList, postings.Posting{DocID: e.DocID, TF: e.TF})

		if err := r.advance(); err != nil {
			return 0, err
		}
		if r.valid {
			heap.Push(h, r)
		}
	}
	if err := flushTerm(); err != nil {
		return 0, err
	}

	if err := lexicon.WriteEntries(lexiconPath, lex); err != nil {
		return 0, err
	}
	if err := pw.Close(); err != nil {
		return 0, err
	}
	return len(chunkPaths), nil
}

func writeMeta(path string, s Stats) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("index: create %s: %w", path, err)
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "{\n  \"doc_count\": %d,\n  \"avg_doc_len\": %v,\n  \"source_db\": %q,\n  \"build_duration_ms\": %d,\n  \"chunk_count\": %d\n}\n",
		s.DocCount, s.AvgDocLen, s.SourceDB, s.BuildDurationMs, s.ChunkCount)
	if err != nil {
		return fmt.Errorf("index: write %s: %w", path, err)
	}
	return nil
}
