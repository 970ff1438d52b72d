// Package lexicon implements the sorted term directory: on disk a linear
// sequence of (term, postings_offset, postings_count) entries sorted by
// term; in memory a slice that supports binary-search lookup.
package lexicon

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

// MaxTermLen bounds a single lexicon term defensively against
// pathological input; the on-disk format itself allows up to 2^32-1
// bytes per the length prefix.
const MaxTermLen = 1024

// Entry is one lexicon record: a term and the location of its posting
// list within postings.bin.
type Entry struct {
	Term           string
	PostingsOffset uint64
	PostingsCount  uint32
}

// WriteEntries writes entries, which must already be sorted by Term, to
// path in the on-disk lexicon format.
func WriteEntries(path string, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("lexicon: create %s: %w", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, e := range entries {
		if err := writeEntry(w, e); err != nil {
			return fmt.Errorf("lexicon: write entry %q: %w", e.Term, err)
		}
	}
	return w.Flush()
}

func writeEntry(w *bufio.Writer, e Entry) error {
	var lenBuf [4]byte
	putUint32LE(lenBuf[:], uint32(len(e.Term)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := w.WriteString(e.Term); err != nil {
		return err
	}
	var offBuf [8]byte
	putUint64LE(offBuf[:], e.PostingsOffset)
	if _, err := w.Write(offBuf[:]); err != nil {
		return err
	}
	var cntBuf [4]byte
	putUint32LE(cntBuf[:], e.PostingsCount)
	if _, err := w.Write(cntBuf[:]); err != nil {
		return err
	}
	return nil
}

func putUint32LE(b []byte, v uint32) {
	for i := 0; i < 4; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func putUint64LE(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
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

func uint64LE(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}

// Lexicon is the in-memory, binary-searchable form of the on-disk term
// directory.
type Lexicon struct {
	entries []Entry
}

// Load reads the whole lexicon file into memory. Entries are expected to
// already be sorted by term (the merger guarantees this); Load does not
// re-sort but will behave incorrectly under Find if the file is not
// actually sorted.
func Load(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon: open %s: %w", path, err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var entries []Entry
	for {
		var lenBuf [4]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("lexicon: read term length: %w", err)
		}
		termLen := uint32LE(lenBuf[:])
		if termLen > MaxTermLen {
			return nil, fmt.Errorf("lexicon: term length %d exceeds %d-byte limit", termLen, MaxTermLen)
		}
		termBuf := make([]byte, termLen)
		if _, err := io.ReadFull(r, termBuf); err != nil {
			return nil, fmt.Errorf("lexicon: read term bytes: %w", err)
		}
		var offBuf [8]byte
		if _, err := io.ReadFull(r, offBuf[:]); err != nil {
			return nil, fmt.Errorf("lexicon: read postings offset: %w", err)
		}
		var cntBuf [4]byte
		if _, err := io.ReadFull(r, cntBuf[:]); err != nil {
			return nil, fmt.Errorf("lexicon: read postings count: %w", err)
		}
		entries = append(entries, Entry{
			Term:           string(termBuf),
			PostingsOffset: uint64LE(offBuf[:]),
			PostingsCount:  uint32LE(cntBuf[:]),
		})
	}
	return &Lexicon{entries: entries}, nil
}

// Find looks up term via binary search. A missing term reports found=false
// with no error — this is the expected "zero postings" outcome, not a
// failure.
func (l *Lexicon) Find(term string) (entry Entry, found bool) {
	i := sort.Search(len(l.entries), func(i int) bool {
		return l.entries[i].Term >= term
	})
	if i < len(l.entries) && l.entries[i].Term == term {
		return l.entries[i], true
	}
	return Entry{}, false
}

// Len returns the number of entries in the lexicon.
func (l *Lexicon) Len() int {
	return len(l.entries)
}
