package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/ledgerlens/internal/models"
)

func testRecords() []models.Transaction {
	bal := 4200.0
	return []models.Transaction{
		{ID: "txn_1001", UserID: "user_1", Date: "2024-01-05", Description: "Swiggy order", Amount: 250, Type: models.Debit, Category: "Food", Method: "UPI", Balance: &bal},
		{ID: "txn_1002", UserID: "user_2", Date: "2024-01-06", Description: "Uber ride", Amount: 180, Type: models.Debit, Category: "Travel"},
		{ID: "txn_1003", UserID: "user_1", Date: "2024-01-31", Description: "Salary credited", Amount: 50000, Type: models.Credit, Category: "Salary"},
	}
}

func TestSQLiteStorage_ReplaceAllAndQuery(t *testing.T) {
	dir := t.TempDir()
	store, err := NewSQLiteStorage(filepath.Join(dir, "db", "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	if err := store.ReplaceAll(ctx, testRecords()); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetTransaction(ctx, "txn_1001")
	if err != nil {
		t.Fatal(err)
	}
	if got.Description != "Swiggy order" || got.Amount != 250 || got.Type != models.Debit || got.Method != "UPI" {
		t.Errorf("got %+v", got)
	}
	if got.Balance == nil || *got.Balance != 4200 {
		t.Errorf("balance not preserved: %v", got.Balance)
	}

	other, err := store.GetTransaction(ctx, "txn_1002")
	if err != nil {
		t.Fatal(err)
	}
	if other.Balance != nil {
		t.Errorf("expected nil balance, got %v", *other.Balance)
	}

	list, err := store.ListTransactions(ctx, ListOptions{UserID: "user_1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "txn_1001" || list[1].ID != "txn_1003" {
		t.Errorf("user_1 list in record order: got %v", ids(list))
	}

	page, err := store.ListTransactions(ctx, ListOptions{Offset: 1, Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 1 || page[0].ID != "txn_1002" {
		t.Errorf("page: got %v", ids(page))
	}

	n, err := store.CountTransactions(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("count: got %d", n)
	}
	n, _ = store.CountTransactions(ctx, "user_2")
	if n != 1 {
		t.Errorf("user_2 count: got %d", n)
	}
}

func TestSQLiteStorage_ReplaceAllReplaces(t *testing.T) {
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	if err := store.ReplaceAll(ctx, testRecords()); err != nil {
		t.Fatal(err)
	}
	if err := store.ReplaceAll(ctx, testRecords()[:1]); err != nil {
		t.Fatal(err)
	}
	n, _ := store.CountTransactions(ctx, "")
	if n != 1 {
		t.Errorf("expected 1 after replace, got %d", n)
	}
	_, err = store.GetTransaction(ctx, "txn_1003")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStorage_EmptyList(t *testing.T) {
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	list, err := store.ListTransactions(context.Background(), ListOptions{UserID: "nobody"})
	if err != nil {
		t.Fatal(err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("expected empty non-nil list, got %v", list)
	}
}

func ids(txns []*models.Transaction) []string {
	out := make([]string, len(txns))
	for i, t := range txns {
		out[i] = t.ID
	}
	return out
}
