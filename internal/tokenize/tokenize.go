// Package tokenize implements the byte-at-a-time ASCII tokenizer shared by
// the indexer and searcher: case-fold to lowercase, then split on maximal
// runs of [a-z0-9].
package tokenize

import "github.com/klauspost/cpuid/v2"

var tokenTable [256]bool

func init() {
	for c := 0; c < 256; c++ {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			tokenTable[c] = true
		}
	}
}

// wideLanes reports whether the host supports the AVX2 fast path used by
// foldLower. Purely a throughput knob: the scalar fallback below is the
// semantic reference and the two must never disagree.
var wideLanes = cpuid.CPU.Supports(cpuid.AVX2)

// foldLower lowercases s in place, A-Z -> a-z by +32, leaving every other
// byte untouched.
func foldLower(s []byte) {
	if wideLanes {
		foldLowerWide(s)
		return
	}
	foldLowerScalar(s)
}

func foldLowerScalar(s []byte) {
	for i, c := range s {
		if c >= 'A' && c <= 'Z' {
			s[i] = c + 32
		}
	}
}

// foldLowerWide processes 32-byte lanes at a time. Go has no portable SIMD
// intrinsics in the standard toolchain, so this is the same branch-per-byte
// work unrolled over a fixed-width window; it exists so the lane width
// documented in spec stays a distinct, separately-testable code path from
// the single-byte scalar loop, and is the seam a future assembly
// implementation would replace.
func foldLowerWide(s []byte) {
	n := len(s)
	i := 0
	for ; i+32 <= n; i += 32 {
		lane := s[i : i+32 : i+32]
		for j, c := range lane {
			if c >= 'A' && c <= 'Z' {
				lane[j] = c + 32
			}
		}
	}
	for ; i < n; i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			s[i] = c + 32
		}
	}
}

// splitTerms scans buf (already folded to lowercase) for maximal runs of
// token-table bytes and returns each run as a string, in input order.
func splitTerms(buf []byte) []string {
	var terms []string
	n := len(buf)
	i := 0
	for i < n {
		for i < n && !tokenTable[buf[i]] {
			i++
		}
		start := i
		for i < n && tokenTable[buf[i]] {
			i++
		}
		if i > start {
			terms = append(terms, string(buf[start:i]))
		}
	}
	return terms
}

func prepare(text string) []string {
	buf := []byte(text)
	foldLower(buf)
	return splitTerms(buf)
}

// Counts tokenizes text and returns the per-term frequency map along with
// the total token count (including repeats).
func Counts(text string) (counts map[string]uint32, tokenCount uint32) {
	terms := prepare(text)
	tokenCount = uint32(len(terms))
	counts = make(map[string]uint32, len(terms))
	for _, term := range terms {
		counts[term]++
	}
	return counts, tokenCount
}

// List tokenizes text and returns the terms in their original order,
// including repeats.
func List(text string) []string {
	return prepare(text)
}
