package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// SearchResult is a transaction augmented with its similarity to the query.
// The transaction fields are flattened into the JSON object.
type SearchResult struct {
	Transaction
	SimilarityScore float64 `json:"similarity_score"`
}

// CategoryAmount is one entry of a category breakdown.
type CategoryAmount struct {
	Category string
	Amount   float64
}

// CategoryBreakdown is ordered by amount descending. It encodes as a JSON object whose
// keys keep that order.
type CategoryBreakdown []CategoryAmount

// MarshalJSON writes the breakdown as an ordered JSON object.
func (b CategoryBreakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Category)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.Amount)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object, keeping key order.
func (b *CategoryBreakdown) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	out := CategoryBreakdown{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var v float64
		if err := dec.Decode(&v); err != nil {
			return err
		}
		out = append(out, CategoryAmount{Category: key, Amount: v})
	}
	*b = out
	return nil
}

// Get returns the amount for category and whether it is present.
func (b CategoryBreakdown) Get(category string) (float64, bool) {
	for _, c := range b {
		if c.Category == category {
			return c.Amount, true
		}
	}
	return 0, false
}

// Summary aggregates a result set. It is derived per query and never persisted.
type Summary struct {
	Query             string             `json:"query"`
	TotalTransactions int                `json:"total_transactions"`
	TotalAmount       float64            `json:"total_amount"`
	AverageAmount     float64            `json:"average_amount"`
	CategoryBreakdown CategoryBreakdown  `json:"category_breakdown"`
	MonthlySummary    map[string]float64 `json:"monthly_summary"`
	TopCategory       *string            `json:"top_category"`
	Insights          []string           `json:"insights"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Query        string          `json:"query"`
	TopK         int             `json:"top_k"`
	ResultsFound int             `json:"results_found"`
	Results      []*SearchResult `json:"results"`
	Summary      *Summary        `json:"summary"`
	QueryTime    int64           `json:"query_time_ms"`
}

// IndexInfo describes the index currently serving queries.
type IndexInfo struct {
	Ready            bool      `json:"is_loaded"`
	TransactionCount int       `json:"transaction_count"`
	IndexSize        int       `json:"index_size"`
	Dimension        int       `json:"index_dimension"`
	IndexType        string    `json:"index_type"`
	BuildID          string    `json:"build_id,omitempty"`
	BuiltAt          time.Time `json:"built_at"`
}
