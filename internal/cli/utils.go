// Package cli provides CLI output helpers for LedgerLens.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/hyperjump/ledgerlens/internal/models"
	"github.com/hyperjump/ledgerlens/pkg/utils"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputJSON is the API response shape, for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

const descriptionWidth = 60

// ParseOutputFormat accepts "text" or "json" (case-insensitive).
func ParseOutputFormat(s string) (SearchOutputFormat, error) {
	switch SearchOutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown output format %q (want text or json)", models.ErrInvalidInput, s)
	}
}

// WriteSearchResults writes a search response to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\nFound %d results for %q in %dms\n\n", response.ResultsFound, response.Query, response.QueryTime)
	for i, r := range response.Results {
		writeOneResult(w, i+1, r)
	}
	if response.Summary != nil {
		writeSummary(w, response.Summary)
	}
}

func writeOneResult(w io.Writer, rank int, r *models.SearchResult) {
	fmt.Fprintf(w, "%2d. [%.4f] %s  %s  %-6s %12.2f  %-13s %s\n",
		rank, r.SimilarityScore, r.ID, r.Date, r.Type, r.Amount.Float64(), r.Category,
		utils.Truncate(r.Description, descriptionWidth))
}

func writeSummary(w io.Writer, s *models.Summary) {
	fmt.Fprintln(w, "\n─────────────────────────────────────────────────────────")
	fmt.Fprintf(w, "Transactions: %d  Total: %.2f  Average: %.2f\n", s.TotalTransactions, s.TotalAmount, s.AverageAmount)
	if len(s.CategoryBreakdown) > 0 {
		fmt.Fprintln(w, "\nBy category:")
		for _, c := range s.CategoryBreakdown {
			fmt.Fprintf(w, "  %-15s %12.2f\n", c.Category, c.Amount)
		}
	}
	if len(s.MonthlySummary) > 0 {
		fmt.Fprintln(w, "\nBy month:")
		for _, m := range sortedKeys(s.MonthlySummary) {
			fmt.Fprintf(w, "  %-15s %12.2f\n", m, s.MonthlySummary[m])
		}
	}
	if len(s.Insights) > 0 {
		fmt.Fprintln(w, "\nInsights:")
		for _, in := range s.Insights {
			fmt.Fprintf(w, "  • %s\n", in)
		}
	}
	fmt.Fprintln(w)
}

// WriteIndexInfo writes the serving index description.
func WriteIndexInfo(w io.Writer, info models.IndexInfo, format SearchOutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, info)
	}
	if !info.Ready {
		fmt.Fprintln(w, "Index: not loaded")
		return nil
	}
	fmt.Fprintf(w, "Index:        loaded\n")
	fmt.Fprintf(w, "Transactions: %d\n", info.TransactionCount)
	fmt.Fprintf(w, "Vectors:      %d\n", info.IndexSize)
	fmt.Fprintf(w, "Dimension:    %d\n", info.Dimension)
	fmt.Fprintf(w, "Type:         %s\n", info.IndexType)
	if info.BuildID != "" {
		fmt.Fprintf(w, "Build:        %s\n", info.BuildID)
	}
	if !info.BuiltAt.IsZero() {
		fmt.Fprintf(w, "Built at:     %s\n", info.BuiltAt.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}

// PrintSearchResults prints search results to stdout in text format.
func PrintSearchResults(response *models.SearchResponse) {
	_ = WriteSearchResults(os.Stdout, response, OutputText)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
