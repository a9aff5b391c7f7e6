package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperjump/ledgerlens/internal/models"
)

// LoadTransactions reads a JSON array of transactions. A missing file yields an error wrapping
// models.ErrNotFound; malformed content or an invalid record wraps models.ErrInvalidInput.
func LoadTransactions(path string) ([]models.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: data file %s", models.ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	var txns []models.Transaction
	if err := json.NewDecoder(f).Decode(&txns); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", models.ErrInvalidInput, path, err)
	}
	for i := range txns {
		if err := txns[i].Validate(); err != nil {
			return nil, fmt.Errorf("record %d in %s: %w", i, path, err)
		}
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	return txns, nil
}

// SaveTransactions writes txns as an indented JSON array. The file is written to path+".tmp"
// and renamed over path so readers never see a partial file.
func SaveTransactions(path string, txns []models.Transaction) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(txns); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to encode transactions: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// JSONSource is a record set backed by a JSON file.
type JSONSource struct {
	Path string
}

// Load reads the record set.
func (s JSONSource) Load(_ context.Context) ([]models.Transaction, error) {
	return LoadTransactions(s.Path)
}

// Save replaces the record set.
func (s JSONSource) Save(_ context.Context, txns []models.Transaction) error {
	return SaveTransactions(s.Path, txns)
}
