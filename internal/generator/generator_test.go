package generator

import (
	"math"
	"testing"
	"time"

	"github.com/hyperjump/ledgerlens/internal/config"
	"github.com/hyperjump/ledgerlens/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
}

func newGen(seed int64) *Generator {
	g := New(config.GeneratorConfig{NumUsers: 3, MinTransactions: 20, MaxTransactions: 40, DaysBack: 90, Seed: seed})
	g.Now = fixedNow
	return g
}

func TestGenerate_Deterministic(t *testing.T) {
	a := newGen(42).Generate()
	b := newGen(42).Generate()
	assert.Equal(t, a, b)

	c := newGen(43).Generate()
	assert.NotEqual(t, a, c)
}

func TestGenerate_Invariants(t *testing.T) {
	txns := newGen(7).Generate()
	require.NotEmpty(t, txns)

	perUser := map[string][]models.Transaction{}
	seen := map[string]bool{}
	for i, tx := range txns {
		require.NoError(t, tx.Validate())
		assert.False(t, seen[tx.ID], "duplicate id %s", tx.ID)
		seen[tx.ID] = true
		if i == 0 {
			assert.Equal(t, "txn_1001", tx.ID)
		}
		assert.Contains(t, Categories, tx.Category)
		assert.Equal(t, InferMethod(tx.Description, tx.Type), tx.Method)
		require.NotNil(t, tx.Balance)

		d, err := time.Parse("2006-01-02", tx.Date)
		require.NoError(t, err)
		assert.True(t, !d.After(fixedNow()) && d.After(fixedNow().AddDate(0, 0, -91)), "date %s out of range", tx.Date)

		if tx.Type == models.Debit {
			assert.NotEqual(t, "Salary", tx.Category)
			r := debitRanges[tx.Category]
			assert.True(t, tx.Amount >= models.Amount(r.min) && tx.Amount <= models.Amount(r.max), "%s amount %v", tx.Category, tx.Amount)
		} else {
			assert.Contains(t, []string{"Salary", "Others"}, tx.Category)
		}
		perUser[tx.UserID] = append(perUser[tx.UserID], tx)
	}

	require.Len(t, perUser, 3)
	for user, list := range perUser {
		assert.True(t, len(list) >= 20 && len(list) <= 40, "%s has %d records", user, len(list))
		for i := 1; i < len(list); i++ {
			assert.LessOrEqual(t, list[i-1].Date, list[i].Date, "%s not chronological", user)
			// each balance is the previous one moved by this record's signed amount
			want := *list[i-1].Balance + list[i].Signed()
			assert.True(t, math.Abs(want-*list[i].Balance) < 1e-9, "%s balance drift at %s", user, list[i].ID)
		}
		opening := *list[0].Balance - list[0].Signed()
		assert.True(t, opening >= minOpening && opening <= maxOpening, "%s opening balance %v", user, opening)
	}
}

func TestGenerate_ZeroTransactions(t *testing.T) {
	g := New(config.GeneratorConfig{NumUsers: 2, MinTransactions: 0, MaxTransactions: 0, Seed: 1})
	txns := g.Generate()
	assert.NotNil(t, txns)
	assert.Empty(t, txns)
}

func TestInferMethod(t *testing.T) {
	tests := []struct {
		desc string
		dir  models.Direction
		want string
	}{
		{"UPI payment to Swiggy", models.Debit, "UPI"},
		{"Card payment at Amazon", models.Debit, "Card"},
		{"Online payment to Netflix", models.Debit, "Online"},
		{"Cash at ATM", models.Debit, "Cash"},
		{"Refund from Amazon", models.Credit, "Refund"},
		{"Refund from Amazon", models.Debit, "Other"},
		{"Salary credit from Company XYZ", models.Credit, "Other"},
	}
	for _, tt := range tests {
		if got := InferMethod(tt.desc, tt.dir); got != tt.want {
			t.Errorf("InferMethod(%q, %s) = %q, want %q", tt.desc, tt.dir, got, tt.want)
		}
	}
}
