// Package keyword provides a lexical index over transaction text for exact-term lookups.
package keyword

import (
	"context"

	"github.com/hyperjump/ledgerlens/internal/models"
)

// SearchOptions optional parameters for keyword search. Nil means use defaults.
type SearchOptions struct {
	// DescriptionBoost multiplies the score of matches in the description field relative to
	// category and method. Use 1.0 for no boost.
	DescriptionBoost float64
	// FuzzyEnabled enables fuzzy matching for typo tolerance.
	FuzzyEnabled bool
	// Fuzziness is the maximum Levenshtein edit distance for fuzzy matching (1 or 2).
	// Default is 1 when FuzzyEnabled is true.
	Fuzziness int
	// UserID restricts hits to one owner when non-empty.
	UserID string
}

// KeywordIndex defines keyword search operations.
type KeywordIndex interface {
	ReplaceAll(ctx context.Context, records []models.Transaction) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error)
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single keyword search hit. ID is the transaction id.
type KeywordResult struct {
	ID    string
	Score float64
}
