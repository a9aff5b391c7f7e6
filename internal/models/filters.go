package models

import "strings"

// Filters are post-retrieval attribute predicates. A nil field imposes no constraint;
// all non-nil fields must pass (AND semantics).
type Filters struct {
	MinAmount           *float64   `json:"min_amount,omitempty"`
	MaxAmount           *float64   `json:"max_amount,omitempty"`
	Type                *Direction `json:"type,omitempty"`
	Category            *string    `json:"category,omitempty"`
	UserID              *string    `json:"user_id,omitempty"`
	Month               *string    `json:"month,omitempty"`
	DescriptionContains *string    `json:"description_contains,omitempty"`
}

// Empty reports whether no predicate is set.
func (f *Filters) Empty() bool {
	return f == nil || (f.MinAmount == nil && f.MaxAmount == nil && f.Type == nil &&
		f.Category == nil && f.UserID == nil && f.Month == nil && f.DescriptionContains == nil)
}

// Match reports whether t passes every set predicate. A nil receiver matches everything.
func (f *Filters) Match(t *Transaction) bool {
	if f == nil {
		return true
	}
	amount := t.Amount.Float64()
	if f.MinAmount != nil && amount < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && amount > *f.MaxAmount {
		return false
	}
	if f.Type != nil && t.Type != *f.Type {
		return false
	}
	if f.Category != nil && t.Category != *f.Category {
		return false
	}
	if f.UserID != nil && t.UserID != *f.UserID {
		return false
	}
	if f.Month != nil && !strings.HasPrefix(t.Date, *f.Month) {
		return false
	}
	if f.DescriptionContains != nil &&
		!strings.Contains(strings.ToLower(t.Description), strings.ToLower(*f.DescriptionContains)) {
		return false
	}
	return true
}
