package cluster

import (
	"math"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/floats"
)

// embeddingDims is the dimensionality of the local fallback embedding.
const embeddingDims = 64

// localEmbedding computes a deterministic embedding for text: lowercase
// alphanumeric tokens longer than two characters are hashed into one of 64
// fixed dimensions with a polynomial string hash, a log-weighted term
// frequency is accumulated per dimension, and the vector is L2-normalized.
//
// The result depends only on the input text, so clustering without an
// external provider is fully reproducible.
func localEmbedding(text string) []float64 {
	vec := make([]float64, embeddingDims)

	counts := make(map[string]int)
	for _, tok := range tokenize(text) {
		counts[tok]++
	}
	for tok, tf := range counts {
		dim := polyHash(tok) % embeddingDims
		vec[dim] += 1 + math.Log(float64(tf))
	}

	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}
	return vec
}

// tokenize splits text into lowercase alphanumeric words of length > 2.
func tokenize(text string) []string {
	var toks []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 2 {
			toks = append(toks, b.String())
		}
		b.Reset()
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return toks
}

// polyHash is a 31-multiplier polynomial string hash.
func polyHash(s string) int {
	h := 0
	for _, r := range s {
		h = h*31 + int(r)
		h &= 0x7fffffff // keep it positive
	}
	return h
}
