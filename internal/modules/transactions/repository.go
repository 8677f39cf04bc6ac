// Package transactions creates transactions and drives their settlement.
package transactions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/aristath/portfolio/internal/database"
	"github.com/aristath/portfolio/internal/domain"
	"github.com/rs/zerolog"
)

// Repository handles transaction documents in portfolio.db
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new transaction repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "transaction").Logger(),
	}
}

// Insert stores a new transaction. (Owner, Code) is unique.
func (r *Repository) Insert(ctx context.Context, tx *domain.Transaction) error {
	doc, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to encode transaction %s: %w", tx.Code, err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO transactions (owner, code, status, created_at, document) VALUES (?, ?, ?, ?, ?)",
		tx.Owner, tx.Code, string(tx.Status), tx.CreatedAt.UnixNano(), string(doc),
	)
	if database.IsUniqueViolation(err) {
		return domain.Conflictf("Transaction with code %s already exists.", tx.Code)
	}
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", tx.Code, err)
	}
	return nil
}

// Get returns the transaction (owner, code)
func (r *Repository) Get(ctx context.Context, owner, code string) (*domain.Transaction, error) {
	var doc string
	err := r.db.QueryRowContext(ctx,
		"SELECT document FROM transactions WHERE owner = ? AND code = ?", owner, code,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, transactionNotFound(code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", code, err)
	}
	return decodeTransaction(doc)
}

// List returns the owner's transactions newest first, optionally filtered by status
func (r *Repository) List(ctx context.Context, owner string, status *domain.TransactionStatus) ([]domain.Transaction, error) {
	query := "SELECT document FROM transactions WHERE owner = ?"
	args := []interface{}{owner}
	if status != nil {
		query += " AND status = ?"
		args = append(args, string(*status))
	}
	query += " ORDER BY created_at DESC, code DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Transaction, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx, err := decodeTransaction(doc)
		if err != nil {
			return nil, err
		}
		result = append(result, *tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return result, nil
}

// SetEntryStatus updates the status of the entry at index
func (r *Repository) SetEntryStatus(ctx context.Context, owner, code string, index int, status domain.TransactionStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET document = json_set(document, ?, ?)
		WHERE owner = ? AND code = ? AND json_array_length(document, '$.entries') > ?`,
		fmt.Sprintf("$.entries[%d].status", index), string(status), owner, code, index,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry %d of transaction %s: %w", index, code, err)
	}
	return requireRow(result, func() error {
		return domain.NotFoundf("Transaction %s has no entry %d.", code, index)
	})
}

// SetStatus updates the top-level status of a transaction
func (r *Repository) SetStatus(ctx context.Context, owner, code string, status domain.TransactionStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET status = ?, document = json_set(document, '$.status', ?)
		WHERE owner = ? AND code = ?`,
		string(status), string(status), owner, code,
	)
	if err != nil {
		return fmt.Errorf("failed to update status of transaction %s: %w", code, err)
	}
	return requireRow(result, func() error { return transactionNotFound(code) })
}

func requireRow(result sql.Result, notFound func() error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return notFound()
	}
	return nil
}

func transactionNotFound(code string) error {
	return domain.NotFoundf("Transaction with code %s not found.", code)
}

func decodeTransaction(doc string) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := json.Unmarshal([]byte(doc), &tx); err != nil {
		return nil, fmt.Errorf("failed to decode transaction document: %w", err)
	}
	return &tx, nil
}
