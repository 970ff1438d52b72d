// Package bm25 implements Okapi BM25 scoring over a single query term's
// posting list, parameterized the way spec's ranked search mode requires.
package bm25

import "math"

// K1 and B are the fixed Okapi BM25 parameters used throughout.
const (
	K1 = 1.2
	B  = 0.75
)

// IDF computes the inverse document frequency contribution for a term
// with document frequency df across a corpus of docCount documents.
func IDF(docCount, df uint64) float64 {
	n := float64(docCount)
	d := float64(df)
	return math.Log((n-d+0.5)/(d+0.5) + 1.0)
}

// Score computes one query term's contribution to a document's BM25
// score given the term's idf, its term frequency tf in that document,
// the document's length dl, and the corpus's average document length.
func Score(idf float64, tf, dl uint32, avgDocLen float64) float64 {
	if avgDocLen <= 0 {
		avgDocLen = 1
	}
	tfF := float64(tf)
	denom := tfF + K1*(1-B+B*float64(dl)/avgDocLen)
	return idf * (tfF * (K1 + 1) / denom)
}
