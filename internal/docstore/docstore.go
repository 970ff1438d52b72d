// Package docstore implements the append-only doc-id -> (doc_key,
// file_path) binary store described in the index format: a sequential
// data stream of varint-length-prefixed pairs plus a dense offset table
// for O(1) random access.
package docstore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"docidx/internal/varint"
)

// ErrNotFound is returned when a doc-id falls outside [0, count).
var ErrNotFound = errors.New("docstore: doc-id out of range")

// Writer appends (doc_key, file_path) pairs to the data stream and
// records each entry's starting offset.
type Writer struct {
	f       *os.File
	w       *bufio.Writer
	offset  uint64
	offsets []uint64
}

// NewWriter creates the data file at path for append-only writes.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("docstore: create %s: %w", path, err)
	}
	return &Writer{f: f, w: bufio.NewWriter(f)}, nil
}

// Append writes one (doc_key, file_path) pair and returns the assigned
// doc-id (its index in offsets, equal to the dense insertion order).
func (w *Writer) Append(docKey, filePath string) (docID uint32, err error) {
	start := w.offset
	n, err := writeLenPrefixed(w.w, docKey)
	if err != nil {
		return 0, fmt.Errorf("docstore: write doc_key: %w", err)
	}
	w.offset += uint64(n)
	n, err = writeLenPrefixed(w.w, filePath)
	if err != nil {
		return 0, fmt.Errorf("docstore: write file_path: %w", err)
	}
	w.offset += uint64(n)

	docID = uint32(len(w.offsets))
	w.offsets = append(w.offsets, start)
	return docID, nil
}

func writeLenPrefixed(w io.Writer, s string) (int, error) {
	var hdr [varint.MaxBytes]byte
	n := varint.Put(hdr[:], uint64(len(s)))
	if _, err := w.Write(hdr[:n]); err != nil {
		return 0, err
	}
	if len(s) > 0 {
		if _, err := io.WriteString(w, s); err != nil {
			return 0, err
		}
	}
	return n + len(s), nil
}

// Offsets returns the dense, doc-id-indexed array of starting byte
// offsets accumulated so far.
func (w *Writer) Offsets() []uint64 {
	return w.offsets
}

// Flush flushes buffered writes without closing the underlying file.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Close flushes and closes the data file.
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("docstore: flush: %w", err)
	}
	return w.f.Close()
}

// WriteOffsets writes a dense array of little-endian u64 offsets to path,
// one entry per doc-id.
func WriteOffsets(path string, offsets []uint64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("docstore: create %s: %w", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	var buf [8]byte
	for _, off := range offsets {
		putUint64LE(buf[:], off)
		if _, err := w.Write(buf[:]); err != nil {
			return fmt.Errorf("docstore: write offset: %w", err)
		}
	}
	return w.Flush()
}

// WriteDocLens writes a dense array of little-endian u32 doc lengths to
// path, one entry per doc-id.
func WriteDocLens(path string, lens []uint32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("docstore: create %s: %w", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	var buf [4]byte
	for _, l := range lens {
		putUint32LE(buf[:], l)
		if _, err := w.Write(buf[:]); err != nil {
			return fmt.Errorf("docstore: write doclen: %w", err)
		}
	}
	return w.Flush()
}

func putUint64LE(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func putUint32LE(b []byte, v uint32) {
	for i := 0; i < 4; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func uint64LE(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}

func uint32LE(b []byte) uint32 {
	var v uint32
	for i := 0; i < 4; i++ {
		v |= uint32(b[i]) << (8 * i)
	}
	return v
}

// Reader provides O(1) random access to docstore entries by doc-id.
type Reader struct {
	data    *os.File
	offsets []uint64
	docLens []uint32
}

// OpenReader loads the offsets and doc-length tables into memory and
// opens the data file for seeked reads.
func OpenReader(dataPath, offsetsPath, docLenPath string) (*Reader, error) {
	data, err := os.Open(dataPath)
	if err != nil {
		return nil, fmt.Errorf("docstore: open %s: %w", dataPath, err)
	}
	offsets, err := readUint64Array(offsetsPath)
	if err != nil {
		data.Close()
		return nil, err
	}
	docLens, err := readUint32Array(docLenPath)
	if err != nil {
		data.Close()
		return nil, err
	}
	return &Reader{data: data, offsets: offsets, docLens: docLens}, nil
}

func readUint64Array(path string) ([]uint64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("docstore: read %s: %w", path, err)
	}
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("docstore: %s: truncated u64 array (%d bytes)", path, len(b))
	}
	out := make([]uint64, len(b)/8)
	for i := range out {
		out[i] = uint64LE(b[i*8:])
	}
	return out, nil
}

func readUint32Array(path string) ([]uint32, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("docstore: read %s: %w", path, err)
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("docstore: %s: truncated u32 array (%d bytes)", path, len(b))
	}
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = uint32LE(b[i*4:])
	}
	return out, nil
}

// Count returns the number of documents in the store.
func (r *Reader) Count() int {
	return len(r.offsets)
}

// DocLen returns the token count recorded for docID.
func (r *Reader) DocLen(docID uint32) (uint32, error) {
	if int(docID) >= len(r.docLens) {
		return 0, ErrNotFound
	}
	return r.docLens[docID], nil
}

// Get resolves docID to its (doc_key, file_path) pair.
func (r *Reader) Get(docID uint32) (docKey, filePath string, err error) {
	if int(docID) >= len(r.offsets) {
		return "", "", ErrNotFound
	}
	off := int64(r.offsets[docID])
	if _, err := r.data.Seek(off, io.SeekStart); err != nil {
		return "", "", fmt.Errorf("docstore: seek: %w", err)
	}
	br := bufio.NewReader(r.data)
	docKey, err = readLenPrefixed(br)
	if err != nil {
		return "", "", fmt.Errorf("docstore: read doc_key: %w", err)
	}
	filePath, err = readLenPrefixed(br)
	if err != nil {
		return "", "", fmt.Errorf("docstore: read file_path: %w", err)
	}
	return docKey, filePath, nil
}

func readLenPrefixed(r *bufio.Reader) (string, error) {
	n, err := varint.Read(r)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// Close closes the underlying data file.
func (r *Reader) Close() error {
	return r.data.Close()
}
