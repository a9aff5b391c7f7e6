package embedding

import (
	"strings"
	"unicode"
)

// Tokenizer produces model inputs for BERT-style models (input_ids, attention_mask,
// token_type_ids), each padded to maxTokens.
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64, err error)
}

// SimpleTokenizer is a word-split tokenizer with hash-based token IDs. The IDs are not
// vocabulary IDs, so it only suits models trained on the same hashing.
type SimpleTokenizer struct{}

// Tokenize splits text into words and produces padded token IDs up to maxTokens.
func (t *SimpleTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64, err error) {
	ids := []int{clsTokenID}
	for _, word := range SplitWords(text) {
		ids = append(ids, HashString(word)%29000+1000)
	}
	ids = append(ids, sepTokenID)
	inputIDs, attentionMask, tokenTypeIDs = padTokens(ids, maxTokens, sepTokenID)
	return inputIDs, attentionMask, tokenTypeIDs, nil
}

// Fixed BERT special-token IDs used by SimpleTokenizer.
const (
	clsTokenID = 101
	sepTokenID = 102
)

// padTokens truncates ids (which end with sep) to maxTokens, keeping sep as the last
// real token, and zero-pads the rest.
func padTokens(ids []int, maxTokens, sep int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)
	if len(ids) > maxTokens {
		ids = append(ids[:maxTokens-1:maxTokens-1], sep)
	}
	for i, id := range ids {
		inputIDs[i] = int64(id)
		attentionMask[i] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

// SplitWords lowercases text and splits it into words, dropping punctuation at word edges.
func SplitWords(text string) []string {
	var words []string
	for _, f := range strings.Fields(strings.ToLower(text)) {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// HashString returns a deterministic non-negative hash for use as a simple token ID.
func HashString(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	if h < 0 {
		h = 0
	}
	return h
}
