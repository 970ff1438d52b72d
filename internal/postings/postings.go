// Package postings implements the delta-coded posting list reader and
// writer used by postings.bin: each posting is varint(doc_id_delta)
// followed by varint(tf), with doc-ids reconstructed as a running sum.
package postings

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"docidx/internal/varint"
)

// Posting is one decoded (doc_id, tf) pair.
type Posting struct {
	DocID uint32
	TF    uint32
}

// Writer appends posting lists to postings.bin and tracks the byte
// offset at which each list begins.
type Writer struct {
	f      *os.File
	w      *bufio.Writer
	offset uint64
}

// NewWriter creates the postings file at path.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("postings: create %s: %w", path, err)
	}
	return &Writer{f: f, w: bufio.NewWriter(f)}, nil
}

// Offset returns the current write offset, i.e. the offset a posting
// list started next would be written at.
func (w *Writer) Offset() uint64 {
	return w.offset
}

// WriteList writes one term's full posting list (already sorted by
// ascending doc-id) and returns the offset it started at.
func (w *Writer) WriteList(list []Posting) (offset uint64, err error) {
	offset = w.offset
	var prevDocID uint32
	for i, p := range list {
		var delta uint32
		if i == 0 {
			delta = p.DocID
		} else {
			delta = p.DocID - prevDocID
		}
		n, err := writeVarintPair(w.w, uint64(delta), uint64(p.TF))
		if err != nil {
			return 0, fmt.Errorf("postings: write posting: %w", err)
		}
		w.offset += uint64(n)
		prevDocID = p.DocID
	}
	return offset, nil
}

func writeVarintPair(w io.Writer, a, b uint64) (int, error) {
	var buf [2 * varint.MaxBytes]byte
	n := varint.Put(buf[:], a)
	n += varint.Put(buf[n:], b)
	if _, err := w.Write(buf[:n]); err != nil {
		return 0, err
	}
	return n, nil
}

// Flush flushes buffered writes.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Close flushes and closes the postings file.
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("postings: flush: %w", err)
	}
	return w.f.Close()
}

// Reader provides seeked, decoded access to posting lists.
type Reader struct {
	f *os.File
}

// OpenReader opens postings.bin for random access reads.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("postings: open %s: %w", path, err)
	}
	return &Reader{f: f}, nil
}

// ReadList seeks to offset and decodes exactly count postings,
// reconstructing doc-ids from the delta encoding.
func (r *Reader) ReadList(offset uint64, count uint32) ([]Posting, error) {
	if _, err := r.f.Seek(int64(offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("postings: seek: %w", err)
	}
	br := bufio.NewReader(r.f)
	out := make([]Posting, 0, count)
	var docID uint32
	for i := uint32(0); i < count; i++ {
		delta, err := varint.Read(br)
		if err != nil {
			return nil, fmt.Errorf("postings: read doc-id delta: %w", err)
		}
		tf, err := varint.Read(br)
		if err != nil {
			return nil, fmt.Errorf("postings: read tf: %w", err)
		}
		docID += uint32(delta)
		out = append(out, Posting{DocID: docID, TF: uint32(tf)})
	}
	return out, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}
