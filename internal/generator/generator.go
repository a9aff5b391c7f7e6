// Package generator produces synthetic transaction histories for development and demos.
package generator

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/hyperjump/ledgerlens/internal/config"
	"github.com/hyperjump/ledgerlens/internal/models"
)

// Categories lists every category a generated record can carry.
var Categories = []string{"Food", "Shopping", "Rent", "Salary", "Utilities", "Entertainment", "Travel", "Others"}

var merchants = map[string][]string{
	"Food":          {"Swiggy", "Zomato", "McDonald's", "Domino's", "Local Restaurant"},
	"Shopping":      {"Amazon", "Flipkart", "Myntra", "Shopping Mall"},
	"Rent":          {"Landlord", "Property Manager"},
	"Salary":        {"Company XYZ", "Employer Corp"},
	"Utilities":     {"Electricity Co", "Internet Provider", "Water Dept"},
	"Entertainment": {"Netflix", "Movie Theater", "Concert"},
	"Travel":        {"Uber", "IRCTC", "Hotel Booking"},
	"Others":        {"ATM", "Bank Transfer", "Friend"},
}

type amountRange struct{ min, max int }

var debitRanges = map[string]amountRange{
	"Food":          {50, 1500},
	"Shopping":      {100, 5000},
	"Rent":          {8000, 20000},
	"Utilities":     {500, 3000},
	"Entertainment": {200, 2000},
	"Travel":        {1000, 10000},
	"Others":        {50, 2000},
}

var (
	paymentPrefixes = []string{"UPI payment to", "Card payment at", "Online payment to", "Cash at"}
	refundSources   = []string{"Amazon", "Swiggy", "Utility"}
)

const (
	firstID      = 1001
	creditRate   = 0.15
	salaryShare  = 0.7
	minOpening   = 20000
	maxOpening   = 50000
	dateLayout   = "2006-01-02"
	defaultUsers = 5
)

// Generator creates transactions for NumUsers owners. Each owner gets a random number of
// records in [MinTransactions, MaxTransactions], dated within DaysBack days before Now,
// oldest first, with a running balance.
type Generator struct {
	NumUsers        int
	MinTransactions int
	MaxTransactions int
	DaysBack        int
	Now             func() time.Time
	rng             *rand.Rand
}

// New returns a generator for cfg. A zero seed seeds from the clock.
func New(cfg config.GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Generator{
		NumUsers:        cfg.NumUsers,
		MinTransactions: cfg.MinTransactions,
		MaxTransactions: cfg.MaxTransactions,
		DaysBack:        cfg.DaysBack,
		Now:             time.Now,
		rng:             rand.New(rand.NewSource(seed)),
	}
	if g.NumUsers <= 0 {
		g.NumUsers = defaultUsers
	}
	if g.MinTransactions < 0 {
		g.MinTransactions = 0
	}
	if g.MaxTransactions < g.MinTransactions {
		g.MaxTransactions = g.MinTransactions
	}
	if g.DaysBack <= 0 {
		g.DaysBack = 180
	}
	return g
}

// Generate returns the full record set, grouped by owner and chronological within each owner.
func (g *Generator) Generate() []models.Transaction {
	now := g.Now()
	next := firstID
	var txns []models.Transaction

	for u := 1; u <= g.NumUsers; u++ {
		userID := fmt.Sprintf("user_%d", u)
		balance := float64(g.between(minOpening, maxOpening))
		count := g.between(g.MinTransactions, g.MaxTransactions)

		daysAgo := make([]int, count)
		for i := range daysAgo {
			daysAgo[i] = g.between(1, g.DaysBack)
		}
		// oldest first so the running balance follows the calendar
		sort.Sort(sort.Reverse(sort.IntSlice(daysAgo)))

		for _, d := range daysAgo {
			t := g.record(userID)
			t.ID = fmt.Sprintf("txn_%d", next)
			t.Date = now.AddDate(0, 0, -d).Format(dateLayout)
			next++

			balance += t.Signed()
			b := balance
			t.Balance = &b
			txns = append(txns, t)
		}
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	return txns
}

func (g *Generator) record(userID string) models.Transaction {
	t := models.Transaction{UserID: userID}
	if g.rng.Float64() < creditRate {
		t.Type = models.Credit
		if g.rng.Float64() < salaryShare {
			t.Category = "Salary"
			t.Amount = models.Amount(g.between(2000, 15000))
		} else {
			t.Category = "Others"
			t.Amount = models.Amount(g.between(500, 2000))
		}
	} else {
		t.Type = models.Debit
		t.Category = g.debitCategory()
		r := debitRanges[t.Category]
		t.Amount = models.Amount(g.between(r.min, r.max))
	}
	t.Description = g.description(t.Category, t.Type)
	t.Method = InferMethod(t.Description, t.Type)
	return t
}

func (g *Generator) debitCategory() string {
	for {
		c := Categories[g.rng.Intn(len(Categories))]
		if c != "Salary" {
			return c
		}
	}
}

func (g *Generator) description(category string, dir models.Direction) string {
	switch {
	case dir == models.Credit && category == "Salary":
		return "Salary credit from " + g.pick(merchants["Salary"])
	case dir == models.Credit:
		return "Refund from " + g.pick(refundSources)
	default:
		return g.pick(paymentPrefixes) + " " + g.pick(merchants[category])
	}
}

// InferMethod derives a payment method from a description.
func InferMethod(description string, dir models.Direction) string {
	d := strings.ToLower(description)
	switch {
	case strings.Contains(d, "upi"):
		return "UPI"
	case strings.Contains(d, "card"):
		return "Card"
	case strings.Contains(d, "online"):
		return "Online"
	case strings.Contains(d, "cash"):
		return "Cash"
	case dir == models.Credit && strings.Contains(d, "refund"):
		return "Refund"
	default:
		return "Other"
	}
}

// between returns a uniform integer in [lo, hi].
func (g *Generator) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rng.Intn(hi-lo+1)
}

func (g *Generator) pick(options []string) string {
	return options[g.rng.Intn(len(options))]
}
