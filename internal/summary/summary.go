// Package summary aggregates a result set into totals, breakdowns and plain-language insights.
// Everything here is a pure function of its inputs.
package summary

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hyperjump/ledgerlens/internal/models"
	"github.com/hyperjump/ledgerlens/pkg/utils"
)

const (
	// NoTransactionsInsight is the only insight of an empty summary.
	NoTransactionsInsight = "No transactions found."
	// UnknownMonth buckets records whose date cannot be parsed.
	UnknownMonth = "unknown"
	// DefaultCategory labels records with no category.
	DefaultCategory = "Others"
)

// Options tunes aggregation. Zero values take the defaults from DefaultOptions.
type Options struct {
	TopCategories             int
	LargeTransactionThreshold float64
	HighVolumeThreshold       int
	FrequentPayeeMin          int
	// DebitsOnly restricts aggregation to Debit records (spending summaries).
	DebitsOnly bool
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		TopCategories:             5,
		LargeTransactionThreshold: 5000,
		HighVolumeThreshold:       50,
		FrequentPayeeMin:          3,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TopCategories <= 0 {
		o.TopCategories = d.TopCategories
	}
	if o.LargeTransactionThreshold <= 0 {
		o.LargeTransactionThreshold = d.LargeTransactionThreshold
	}
	if o.HighVolumeThreshold <= 0 {
		o.HighVolumeThreshold = d.HighVolumeThreshold
	}
	if o.FrequentPayeeMin <= 0 {
		o.FrequentPayeeMin = d.FrequentPayeeMin
	}
	return o
}

// Summarize aggregates txns for query. An empty selection yields a zero summary with a single
// "No transactions found." insight.
func Summarize(txns []*models.Transaction, query string, opts Options) *models.Summary {
	opts = opts.withDefaults()
	if opts.DebitsOnly {
		txns = debits(txns)
	}
	if len(txns) == 0 {
		return &models.Summary{
			Query:             query,
			CategoryBreakdown: models.CategoryBreakdown{},
			MonthlySummary:    map[string]float64{},
			Insights:          []string{NoTransactionsInsight},
		}
	}

	var total float64
	categories := make(map[string]float64)
	var catOrder []string
	monthly := make(map[string]float64)
	for _, t := range txns {
		amt := t.Amount.Float64()
		total += amt

		cat := t.Category
		if cat == "" {
			cat = DefaultCategory
		}
		if _, ok := categories[cat]; !ok {
			catOrder = append(catOrder, cat)
		}
		categories[cat] += amt

		monthly[YearMonth(t.Date)] += amt
	}

	ranked := make(models.CategoryBreakdown, len(catOrder))
	for i, cat := range catOrder {
		ranked[i] = models.CategoryAmount{Category: cat, Amount: categories[cat]}
	}
	// stable: equal amounts keep first-seen order
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Amount > ranked[j].Amount })

	breakdown := make(models.CategoryBreakdown, 0, opts.TopCategories)
	for i, c := range ranked {
		if i >= opts.TopCategories {
			break
		}
		breakdown = append(breakdown, models.CategoryAmount{Category: c.Category, Amount: utils.Round2(c.Amount)})
	}

	monthlyOut := make(map[string]float64, len(monthly))
	for k, v := range monthly {
		monthlyOut[k] = utils.Round2(v)
	}

	top := ranked[0].Category
	return &models.Summary{
		Query:             query,
		TotalTransactions: len(txns),
		TotalAmount:       utils.Round2(total),
		AverageAmount:     utils.Round2(total / float64(len(txns))),
		CategoryBreakdown: breakdown,
		MonthlySummary:    monthlyOut,
		TopCategory:       &top,
		Insights:          insights(txns, ranked, total, opts),
	}
}

// insights builds the conditional insight lines in fixed order.
func insights(txns []*models.Transaction, ranked models.CategoryBreakdown, total float64, opts Options) []string {
	out := []string{}

	if len(ranked) > 0 {
		pct := 0.0
		if total > 0 {
			pct = ranked[0].Amount / total * 100
		}
		out = append(out, fmt.Sprintf("Highest spending category: %s (%.1f%% of total).", ranked[0].Category, pct))
	}

	largest := txns[0]
	for _, t := range txns[1:] {
		if t.Amount > largest.Amount {
			largest = t
		}
	}
	if largest.Amount.Float64() >= opts.LargeTransactionThreshold {
		desc := largest.Description
		if desc == "" {
			desc = "unknown"
		}
		out = append(out, fmt.Sprintf("Largest transaction: %.2f on %s — %s.", largest.Amount.Float64(), largest.Date, desc))
	}

	if payee, n := frequentPayee(txns); payee != "" && n >= opts.FrequentPayeeMin {
		out = append(out, fmt.Sprintf("Frequent payee: %s (%d transactions).", payee, n))
	}

	if len(txns) > opts.HighVolumeThreshold {
		out = append(out, fmt.Sprintf("High transaction volume: %d transactions in selection.", len(txns)))
	}
	return out
}

// frequentPayee returns the most common case-folded description; ties go to the first seen.
func frequentPayee(txns []*models.Transaction) (string, int) {
	counts := make(map[string]int)
	var order []string
	for _, t := range txns {
		d := strings.ToLower(t.Description)
		if _, ok := counts[d]; !ok {
			order = append(order, d)
		}
		counts[d]++
	}
	best, bestN := "", 0
	for _, d := range order {
		if counts[d] > bestN {
			best, bestN = d, counts[d]
		}
	}
	return best, bestN
}

// YearMonth returns "YYYY-MM" for an ISO date or timestamp, or "unknown".
func YearMonth(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return UnknownMonth
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Format("2006-01")
		}
	}
	if len(date) >= 8 && date[4] == '-' && (date[7] == '-' || date[7] == 'T' || date[7] == ' ') {
		if _, err := time.Parse("2006-01", date[:7]); err == nil {
			return date[:7]
		}
	}
	return UnknownMonth
}

func debits(txns []*models.Transaction) []*models.Transaction {
	out := make([]*models.Transaction, 0, len(txns))
	for _, t := range txns {
		if strings.EqualFold(string(t.Type), string(models.Debit)) {
			out = append(out, t)
		}
	}
	return out
}
