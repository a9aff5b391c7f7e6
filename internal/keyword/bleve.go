// Package keyword provides Bleve implementation of KeywordIndex.
package keyword

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	keywordanalyzer "github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/hyperjump/ledgerlens/internal/models"
)

const batchSize = 500

// document is the indexed form of a transaction.
type document struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Method      string  `json:"method"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
}

// BleveIndex implements KeywordIndex with an in-memory Bleve index. The record set is
// re-derived from the data file on every start, so nothing is persisted.
type BleveIndex struct {
	index bleve.Index
	mu    sync.RWMutex
}

// NewBleveIndex creates an empty in-memory index.
func NewBleveIndex() (*BleveIndex, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

func buildMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so "swiggy" matches "Swiggy" exactly.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("description", textFieldMapping)
	docMapping.AddFieldMappingsAt("category", textFieldMapping)
	docMapping.AddFieldMappingsAt("method", textFieldMapping)

	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	keywordFieldMapping.Analyzer = keywordanalyzer.Name
	docMapping.AddFieldMappingsAt("id", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("user_id", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("type", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("date", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("amount", bleve.NewNumericFieldMapping())

	im.AddDocumentMapping("transaction", docMapping)
	im.DefaultType = "transaction"
	im.DefaultMapping = docMapping
	return im
}

// ReplaceAll builds a fresh index from records and swaps it in.
func (b *BleveIndex) ReplaceAll(ctx context.Context, records []models.Transaction) error {
	next, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return fmt.Errorf("failed to create Bleve index: %w", err)
	}
	batch := next.NewBatch()
	for i := range records {
		if err := ctx.Err(); err != nil {
			_ = next.Close()
			return err
		}
		r := &records[i]
		doc := document{
			ID:          r.ID,
			UserID:      r.UserID,
			Date:        r.Date,
			Description: r.Description,
			Category:    r.Category,
			Method:      r.Method,
			Type:        string(r.Type),
			Amount:      r.Amount.Float64(),
		}
		if err := batch.Index(r.ID, doc); err != nil {
			_ = next.Close()
			return fmt.Errorf("failed to index transaction %s: %w", r.ID, err)
		}
		if batch.Size() >= batchSize {
			if err := next.Batch(batch); err != nil {
				_ = next.Close()
				return fmt.Errorf("failed to apply batch: %w", err)
			}
			batch.Reset()
		}
	}
	if batch.Size() > 0 {
		if err := next.Batch(batch); err != nil {
			_ = next.Close()
			return fmt.Errorf("failed to apply batch: %w", err)
		}
	}

	b.mu.Lock()
	prev := b.index
	b.index = next
	b.mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

// Search matches query against description, category and method and returns up to limit hits.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error) {
	if limit <= 0 {
		return []*KeywordResult{}, nil
	}
	descBoost := 2.0
	fuzzyEnabled := false
	fuzziness := 1
	userID := ""
	if opts != nil {
		if opts.DescriptionBoost > 0 {
			descBoost = opts.DescriptionBoost
		}
		fuzzyEnabled = opts.FuzzyEnabled
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
		userID = opts.UserID
	}

	fields := []struct {
		name  string
		boost float64
	}{
		{"description", descBoost},
		{"category", 1},
		{"method", 1},
	}
	disjuncts := make([]blevequery.Query, 0, len(fields))
	for _, f := range fields {
		disjuncts = append(disjuncts, buildFieldQuery(query, f.name, f.boost, fuzzyEnabled, fuzziness))
	}
	var q blevequery.Query = bleve.NewDisjunctionQuery(disjuncts...)
	if userID != "" {
		uq := bleve.NewTermQuery(userID)
		uq.SetField("user_id")
		q = bleve.NewConjunctionQuery(q, uq)
	}

	req := bleve.NewSearchRequest(q)
	req.Size = limit

	b.mu.RLock()
	defer b.mu.RUnlock()
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*KeywordResult, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &KeywordResult{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// buildFieldQuery creates a match query on field, or a disjunction of per-term fuzzy queries
// when fuzzy matching is enabled.
func buildFieldQuery(queryStr, field string, boost float64, fuzzyEnabled bool, fuzziness int) blevequery.Query {
	terms := tokenizeQuery(queryStr)
	if !fuzzyEnabled || len(terms) == 0 {
		mq := bleve.NewMatchQuery(queryStr)
		mq.SetField(field)
		mq.SetBoost(boost)
		return mq
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField(field)
		fq.SetBoost(boost)
		queries = append(queries, fq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// tokenizeQuery splits query into lowercase terms, filtering out empty strings.
func tokenizeQuery(query string) []string {
	words := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Trim(w, ".,;:!?\"'()")
		if w != "" {
			terms = append(terms, w)
		}
	}
	return terms
}

// DocCount returns the total number of documents in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.index.Close()
}
