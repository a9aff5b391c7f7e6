// Package storage defines persistence for the transaction record set.
package storage

import (
	"context"

	"github.com/hyperjump/ledgerlens/internal/models"
)

// ListOptions filters and pages ListTransactions.
type ListOptions struct {
	UserID string
	Offset int
	Limit  int
}

// Store is a queryable mirror of the record set.
type Store interface {
	// ReplaceAll atomically replaces every stored record with records, keeping their order.
	ReplaceAll(ctx context.Context, records []models.Transaction) error
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, opts ListOptions) ([]*models.Transaction, error)
	CountTransactions(ctx context.Context, userID string) (int64, error)
	Close() error
}
