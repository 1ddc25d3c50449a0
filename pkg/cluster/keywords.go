package cluster

import (
	"sort"
)

// maxKeywords is how many terms describe a cluster.
const maxKeywords = 10

// stopWords are excluded from keyword extraction: English filler plus
// keywords common to the languages the indexer feeds us.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true,
	"this": true, "that": true, "with": true, "from": true, "have": true,
	"was": true, "his": true, "they": true, "one": true, "will": true,
	"would": true, "there": true, "their": true, "what": true, "out": true,
	"use": true, "new": true, "get": true, "set": true, "let": true,
	"var": true, "const": true, "function": true, "return": true,
	"import": true, "export": true, "class": true, "interface": true,
	"type": true, "void": true, "null": true, "undefined": true,
	"true": true, "false": true, "public": true, "private": true,
	"static": true, "async": true, "await": true, "func": true,
	"package": true, "def": true, "self": true, "else": true,
}

// topKeywords returns the most frequent non-stop-word tokens across the
// given texts, most frequent first, capped at maxKeywords. Ties break
// alphabetically so output is deterministic.
func topKeywords(texts []string) []string {
	counts := make(map[string]int)
	for _, text := range texts {
		for _, tok := range tokenize(text) {
			if !stopWords[tok] {
				counts[tok]++
			}
		}
	}

	terms := make([]string, 0, len(counts))
	for t := range counts {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if len(terms) > maxKeywords {
		terms = terms[:maxKeywords]
	}
	return terms
}
