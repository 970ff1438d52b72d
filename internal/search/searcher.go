// Package search implements the query pipeline over a built index:
// tokenize, resolve terms against the lexicon, intersect posting lists
// rarest-term-first, then either stream boolean matches or rank them
// with BM25.
package search

import (
	"container/heap"
	"fmt"
	"path/filepath"
	"sort"

	"docidx/internal/bm25"
	"docidx/internal/docstore"
	"docidx/internal/lexicon"
	"docidx/internal/postings"
	"docidx/internal/tokenize"
)

// Mode selects the two query execution paths spec defines.
type Mode int

const (
	// Boolean streams surviving doc-ids in ascending doc-id order with
	// no ranking.
	Boolean Mode = iota
	// Ranked scores surviving docs with BM25 and returns the top-k.
	Ranked
)

// Result is one output row: doc-id resolved to its stored metadata, plus
// a score (0 in Boolean mode).
type Result struct {
	DocID    uint32
	DocKey   string
	FilePath string
	Score    float64
}

// Searcher holds the opened index handles needed to answer queries.
type Searcher struct {
	lex       *lexicon.Lexicon
	postings  *postings.Reader
	docs      *docstore.Reader
	docCount  uint64
	avgDocLen float64
}

// Open loads the lexicon into memory and opens the postings and docstore
// files for random access.
func Open(indexDir string, docCount uint64, avgDocLen float64) (*Searcher, error) {
	lex, err := lexicon.Load(filepath.Join(indexDir, "lexicon.bin"))
	if err != nil {
		return nil, err
	}
	pr, err := postings.OpenReader(filepath.Join(indexDir, "postings.bin"))
	if err != nil {
		return nil, err
	}
	ds, err := docstore.OpenReader(
		filepath.Join(indexDir, "docstore_data.bin"),
		filepath.Join(indexDir, "docstore_offsets.bin"),
		filepath.Join(indexDir, "docstore_doclen.bin"),
	)
	if err != nil {
		pr.Close()
		return nil, err
	}
	return &Searcher{lex: lex, postings: pr, docs: ds, docCount: docCount, avgDocLen: avgDocLen}, nil
}

// Close releases the underlying file handles.
func (s *Searcher) Close() error {
	err := s.postings.Close()
	if cerr := s.docs.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

type termList struct {
	term     string
	df       uint32
	postings []postings.Posting
}

// Query executes one query string in the given mode, returning up to
// limit results. A query with no valid terms, or where any distinct
// term is absent from the lexicon, or whose intersection is empty,
// yields a nil result slice with no error — "No results." is purely a
// presentation-layer decision made by the CLI.
func (s *Searcher) Query(query string, mode Mode, limit int) ([]Result, error) {
	if limit < 1 {
		return nil, fmt.Errorf("search: limit must be >= 1, got %d", limit)
	}

	terms := dedupeSorted(tokenize.List(query))
	if len(terms) == 0 {
		return nil, nil
	}

	lists := make([]termList, 0, len(terms))
	for _, term := range terms {
		entry, found := s.lex.Find(term)
		if !found {
			return nil, nil
		}
		list, err := s.postings.ReadList(entry.PostingsOffset, entry.PostingsCount)
		if err != nil {
			return nil, fmt.Errorf("search: load postings for %q: %w", term, err)
		}
		lists = append(lists, termList{term: term, df: entry.PostingsCount, postings: list})
	}

	sort.Slice(lists, func(i, j int) bool { return len(lists[i].postings) < len(lists[j].postings) })

	candidate := docIDsOf(lists[0].postings)
	for _, tl := range lists[1:] {
		candidate = intersectSorted(candidate, docIDsOf(tl.postings))
		if len(candidate) == 0 {
			return nil, nil
		}
	}

	switch mode {
	case Boolean:
		return s.resolveBoolean(candidate, limit)
	case Ranked:
		return s.resolveRanked(candidate, lists, limit)
	default:
		return nil, fmt.Errorf("search: unknown mode %v", mode)
	}
}

func dedupeSorted(terms []string) []string {
	if len(terms) == 0 {
		return nil
	}
	sorted := append([]string(nil), terms...)
	sort.Strings(sorted)
	out := sorted[:1]
	for _, t := range sorted[1:] {
		if t != out[len(out)-1] {
			out = append(out, t)
		}
	}
	return out
}

func docIDsOf(list []postings.Posting) []uint32 {
	ids := make([]uint32, len(list))
	for i, p := range list {
		ids[i] = p.DocID
	}
	return ids
}

// intersectSorted merges two ascending doc-id slices via the standard
// two-pointer walk.
func intersectSorted(a, b []uint32) []uint32 {
	out := make([]uint32, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func (s *Searcher) resolveBoolean(candidate []uint32, limit int) ([]Result, error) {
	n := limit
	if n > len(candidate) {
		n = len(candidate)
	}
	out := make([]Result, 0, n)
	for _, docID := range candidate[:n] {
		key, path, err := s.docs.Get(docID)
		if err != nil {
			return nil, fmt.Errorf("search: resolve doc %d: %w", docID, err)
		}
		out = append(out, Result{DocID: docID, DocKey: key, FilePath: path})
	}
	return out, nil
}

func (s *Searcher) resolveRanked(candidate []uint32, lists []termList, limit int) ([]Result, error) {
	scores := make([]float64, len(candidate))

	for _, tl := range lists {
		idf := bm25.IDF(s.docCount, uint64(tl.df))
		i, j := 0, 0
		for i < len(candidate) && j < len(tl.postings) {
			docID := candidate[i]
			p := tl.postings[j]
			switch {
			case docID == p.DocID:
				dl, err := s.docs.DocLen(docID)
				if err != nil {
					return nil, fmt.Errorf("search: doc length for %d: %w", docID, err)
				}
				scores[i] += bm25.Score(idf, p.TF, dl, s.avgDocLen)
				i++
				j++
			case docID < p.DocID:
				i++
			default:
				j++
			}
		}
	}

	top := selectTopK(candidate, scores, limit)

	out := make([]Result, 0, len(top))
	for _, sd := range top {
		key, path, err := s.docs.Get(sd.docID)
		if err != nil {
			return nil, fmt.Errorf("search: resolve doc %d: %w", sd.docID, err)
		}
		out = append(out, Result{DocID: sd.docID, DocKey: key, FilePath: path, Score: sd.score})
	}
	return out, nil
}

type scoredDoc struct {
	docID uint32
	score float64
}

// scoreHeap is a min-heap on score, with ties broken by descending
// doc-id so the element evicted first when over capacity is the lowest
// score, and among equal scores the highest doc-id — leaving ascending
// doc-id as the stable tie-break among survivors once sorted downstream.
type scoreHeap []scoredDoc

func (h scoreHeap) Len() int { return len(h) }
func (h scoreHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score < h[j].score
	}
	return h[i].docID > h[j].docID
}
func (h scoreHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *scoreHeap) Push(x interface{}) {
	*h = append(*h, x.(scoredDoc))
}
func (h *scoreHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// selectTopK keeps the k highest-scoring docs using a bounded min-heap,
// then returns them sorted by descending score with ascending doc-id as
// the tie-break, per spec step 8.
func selectTopK(docIDs []uint32, scores []float64, k int) []scoredDoc {
	h := &scoreHeap{}
	heap.Init(h)
	for i, docID := range docIDs {
		sd := scoredDoc{docID: docID, score: scores[i]}
		if h.Len() < k {
			heap.Push(h, sd)
		} else if sd.score > (*h)[0].score {
			heap.Pop(h)
			heap.Push(h, sd)
		}
	}

	out := make([]scoredDoc, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(scoredDoc)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].docID < out[j].docID
	})
	return out
}
