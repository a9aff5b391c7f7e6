// Package storage provides SQLite implementation of the Store interface.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/ledgerlens/internal/models"
)

// SQLiteStorage implements Store using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		user_id TEXT,
		date TEXT,
		description TEXT,
		amount REAL NOT NULL,
		type TEXT,
		category TEXT,
		method TEXT,
		balance REAL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_position ON transactions(position);
	CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id, position);
	`
	_, err := db.Exec(schema)
	return err
}

const selectColumns = `SELECT id, user_id, date, description, amount, type, category, method, balance FROM transactions`

// ReplaceAll deletes every row and inserts records in one transaction. Later duplicates of an id win.
func (s *SQLiteStorage) ReplaceAll(ctx context.Context, records []models.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("failed to clear transactions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO transactions (id, position, user_id, date, description, amount, type, category, method, balance)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		var balance sql.NullFloat64
		if r.Balance != nil {
			balance = sql.NullFloat64{Float64: *r.Balance, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, r.ID, i, r.UserID, r.Date, r.Description, r.Amount.Float64(),
			string(r.Type), r.Category, r.Method, balance); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// GetTransaction returns a transaction by ID, or an error wrapping models.ErrNotFound.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTransactions returns transactions in record order, optionally for one owner.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, opts ListOptions) ([]*models.Transaction, error) {
	if opts.Limit <= 0 {
		opts.Limit = -1 // no limit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	var (
		rows *sql.Rows
		err  error
	)
	if opts.UserID != "" {
		rows, err = s.db.QueryContext(ctx,
			selectColumns+` WHERE user_id = ? ORDER BY position LIMIT ? OFFSET ?`,
			opts.UserID, opts.Limit, opts.Offset)
	} else {
		rows, err = s.db.QueryContext(ctx,
			selectColumns+` ORDER BY position LIMIT ? OFFSET ?`,
			opts.Limit, opts.Offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := []*models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// CountTransactions returns the number of stored transactions, optionally for one owner.
func (s *SQLiteStorage) CountTransactions(ctx context.Context, userID string) (int64, error) {
	var count int64
	var err error
	if userID != "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE user_id = ?`, userID).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count)
	}
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (*models.Transaction, error) {
	var (
		t       models.Transaction
		amount  float64
		typ     string
		balance sql.NullFloat64
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Date, &t.Description, &amount, &typ, &t.Category, &t.Method, &balance); err != nil {
		return nil, err
	}
	t.Amount = models.Amount(amount)
	t.Type = models.Direction(typ)
	if balance.Valid {
		b := balance.Float64
		t.Balance = &b
	}
	return &t, nil
}
