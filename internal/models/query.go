package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultTopK is the result count used when a request does not specify one.
	DefaultTopK = 5
	// MaxTopK is the largest accepted result count.
	MaxTopK = 200
	// MaxQueryLength is the largest accepted query, in characters.
	MaxQueryLength = 200
)

// SearchQuery is a semantic search request with optional attribute filters.
type SearchQuery struct {
	Query   string   `json:"query"`
	TopK    int      `json:"top_k"`
	Filters *Filters `json:"filters,omitempty"`
}

// QueryLimits bounds what a SearchQuery may ask for. Zero fields fall back to package defaults.
type QueryLimits struct {
	MaxTopK        int
	MaxQueryLength int
}

// Validate rejects empty or oversized query text and a top_k outside [1, MaxTopK].
// It does not substitute defaults; callers that accept an absent top_k set DefaultTopK first.
func (q *SearchQuery) Validate(limits QueryLimits) error {
	maxTopK := limits.MaxTopK
	if maxTopK <= 0 {
		maxTopK = MaxTopK
	}
	maxLen := limits.MaxQueryLength
	if maxLen <= 0 {
		maxLen = MaxQueryLength
	}
	if strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("%w: query cannot be empty", ErrInvalidQuery)
	}
	if !utf8.ValidString(q.Query) {
		return fmt.Errorf("%w: query must be valid UTF-8 text", ErrInvalidQuery)
	}
	if n := utf8.RuneCountInString(q.Query); n > maxLen {
		return fmt.Errorf("%w: query is %d characters, max %d", ErrInvalidQuery, n, maxLen)
	}
	if q.TopK < 1 || q.TopK > maxTopK {
		return fmt.Errorf("%w: top_k must be between 1 and %d, got %d", ErrInvalidQuery, maxTopK, q.TopK)
	}
	return nil
}
