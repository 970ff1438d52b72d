// Package index implements the external sort-merge indexer: Phase A
// ingests source rows and spills sorted (term, doc_id, tf) chunks once
// chunk_limit entries have accumulated, Phase B spills the final partial
// chunk, and Phase C k-way merges every chunk into the lexicon and
// postings files.
package index

import (
	"bufio"
	"container/heap"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/klauspost/pgzip"
)

// Entry is one (term, doc_id, tf) triple as it sits in a chunk file
// before the final merge.
type Entry struct {
	Term  string
	DocID uint32
	TF    uint32
}

func entryLess(a, b Entry) bool {
	if a.Term != b.Term {
		return a.Term < b.Term
	}
	return a.DocID < b.DocID
}

// writeChunk sorts entries by (term, doc_id) and writes them to path as a
// pgzip-compressed stream of raw records: u32 term_len,
// term bytes, u32 doc_id, u32 tf. Chunk files are a pure implementation
// detail internal to one indexer run; they are removed after the merge.
func writeChunk(entries []Entry, path string) error {
	sort.Slice(entries, func(i, j int) bool { return entryLess(entries[i], entries[j]) })

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("index: create chunk %s: %w", path, err)
	}
	defer f.Close()

	zw, err := pgzip.NewWriterLevel(f, pgzip.BestSpeed)
	if err != nil {
		return fmt.Errorf("index: create chunk compressor: %w", err)
	}
	bw := bufio.NewWriter(zw)

	var hdr [4]byte
	for _, e := range entries {
		putUint32LE(hdr[:], uint32(len(e.Term)))
		if _, err := bw.Write(hdr[:]); err != nil {
			return fmt.Errorf("index: write chunk term length: %w", err)
		}
		if _, err := bw.WriteString(e.Term); err != nil {
			return fmt.Errorf("index: write chunk term: %w", err)
		}
		putUint32LE(hdr[:], e.DocID)
		if _, err := bw.Write(hdr[:]); err != nil {
			return fmt.Errorf("index: write chunk doc_id: %w", err)
		}
		putUint32LE(hdr[:], e.TF)
		if _, err := bw.Write(hdr[:]); err != nil {
			return fmt.Errorf("index: write chunk tf: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("index: flush chunk: %w", err)
	}
	return zw.Close()
}

func putUint32LE(b []byte, v uint32) {
	for i := 0; i < 4; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func uint32LE(b []byte) uint32 {
	var v uint32
	for i := 0; i < 4; i++ {
		v |= uint32(b[i]) << (8 * i)
	}
	return v
}

// chunkReader streams entries back out of one chunk file in the order
// they were written (already sorted by writeChunk).
type chunkReader struct {
	f       *os.File
	zr      *pgzip.Reader
	r       *bufio.Reader
	current Entry
	valid   bool
}

func openChunkReader(path string) (*chunkReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("index: open chunk %s: %w", path, err)
	}
	zr, err := pgzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("index: open chunk decompressor %s: %w", path, err)
	}
	cr := &chunkReader{f: f, zr: zr, r: bufio.NewReader(zr)}
	if err := cr.advance(); err != nil {
		cr.close()
		return nil, err
	}
	return cr, nil
}

func (c *chunkReader) advance() error {
	var hdr [4]byte
	if _, err := io.ReadFull(c.r, hdr[:]); err != nil {
		if err == io.EOF {
			c.valid = false
			return nil
		}
		return fmt.Errorf("index: read chunk term length: %w", err)
	}
	termLen := uint32LE(hdr[:])
	termBuf := make([]byte, termLen)
	if _, err := io.ReadFull(c.r, termBuf); err != nil {
		return fmt.Errorf("index: read chunk term: %w", err)
	}
	var docIDBuf, tfBuf [4]byte
	if _, err := io.ReadFull(c.r, docIDBuf[:]); err != nil {
		return fmt.Errorf("index: read chunk doc_id: %w", err)
	}
	if _, err := io.ReadFull(c.r, tfBuf[:]); err != nil {
		return fmt.Errorf("index: read chunk tf: %w", err)
	}
	c.current = Entry{Term: string(termBuf), DocID: uint32LE(docIDBuf[:]), TF: uint32LE(tfBuf[:])}
	c.valid = true
	return nil
}

func (c *chunkReader) close() error {
	c.zr.Close()
	return c.f.Close()
}

// mergeHeap is a min-heap of chunk readers ordered by (term, doc_id)
// ascending: a heap.Interface over the current head element of each
// chunk's input stream.
type mergeHeap []*chunkReader

func (h mergeHeap) Len() int { return len(h) }
func (h mergeHeap) Less(i, j int) bool {
	return entryLess(h[i].current, h[j].current)
}
func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *mergeHeap) Push(x interface{}) {
	*h = append(*h, x.(*chunkReader))
}

func (h *mergeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

var _ heap.Interface = (*mergeHeap)(nil)
