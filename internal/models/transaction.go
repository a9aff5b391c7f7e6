// Package models defines core data structures for transactions, queries, and search results.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Direction is the side of a transaction relative to its owner.
type Direction string

const (
	Credit Direction = "Credit"
	Debit  Direction = "Debit"
)

// Amount is a non-negative monetary value. It decodes from JSON numbers as well as
// numeric strings ("1250.50") so hand-edited or exported data files still load.
type Amount float64

// UnmarshalJSON accepts a number, a numeric string, or null (zero).
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*a = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%w: amount %q is not numeric", ErrInvalidInput, s)
		}
		*a = Amount(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: amount: %v", ErrInvalidInput, err)
	}
	*a = Amount(v)
	return nil
}

// Float64 returns the amount as a float64.
func (a Amount) Float64() float64 {
	return float64(a)
}

// Transaction is a single financial record. Records are read-only once generated or loaded.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	Amount      Amount    `json:"amount"`
	Type        Direction `json:"type"`
	Category    string    `json:"category"`
	Method      string    `json:"method,omitempty"`
	Balance     *float64  `json:"balance,omitempty"`
}

// Validate checks the fields every record must carry.
func (t *Transaction) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: transaction id is required", ErrInvalidInput)
	}
	if t.Amount < 0 {
		return fmt.Errorf("%w: transaction %s has negative amount", ErrInvalidInput, t.ID)
	}
	return nil
}

// Signed returns the amount with the sign applied by direction (credits positive).
func (t *Transaction) Signed() float64 {
	if t.Type == Credit {
		return t.Amount.Float64()
	}
	return -t.Amount.Float64()
}
