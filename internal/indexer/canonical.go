package indexer

import (
	"strconv"
	"strings"

	"github.com/hyperjump/ledgerlens/internal/models"
)

// DefaultCurrencySymbol prefixes amounts in rendered text.
const DefaultCurrencySymbol = "₹"

const unknown = "Unknown"

// Render returns the canonical text embedded for t, e.g.
// "Debit of ₹250 on 2024-01-05 for Swiggy order under Food category via UPI user user_1."
// Empty fields render as "Unknown"; method and owner are omitted when empty.
// The output depends only on the record's fields.
func Render(t *models.Transaction, currency string) (text string) {
	if t == nil {
		return "Transaction unknown"
	}
	defer func() {
		if r := recover(); r != nil {
			text = "Transaction " + orDefault(t.ID, "unknown")
		}
	}()

	parts := make([]string, 0, 6)
	parts = append(parts,
		orDefault(string(t.Type), unknown)+" of "+currency+formatAmount(t.Amount.Float64()),
		"on "+orDefault(t.Date, unknown),
		"for "+orDefault(t.Description, unknown),
		"under "+orDefault(t.Category, unknown)+" category",
	)
	if m := strings.TrimSpace(t.Method); m != "" {
		parts = append(parts, "via "+m)
	}
	if u := strings.TrimSpace(t.UserID); u != "" {
		parts = append(parts, "user "+u)
	}
	return strings.Join(parts, " ") + "."
}

// RenderAll renders records in order.
func RenderAll(records []models.Transaction, currency string) []string {
	texts := make([]string, len(records))
	for i := range records {
		texts[i] = Render(&records[i], currency)
	}
	return texts
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
