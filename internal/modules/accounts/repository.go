// Package accounts stores user accounts and their asset balances.
package accounts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/aristath/portfolio/internal/database"
	"github.com/aristath/portfolio/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repository handles account documents in portfolio.db.
// Asset updates touch a single slot of a single document.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new account repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "account").Logger(),
	}
}

// Create stores a new account. Codes are unique per owner.
func (r *Repository) Create(ctx context.Context, account domain.Account) error {
	if account.Assets == nil {
		account.Assets = []domain.Balance{}
	}

	doc, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to encode account %s: %w", account.Code, err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO accounts (owner, code, type, document) VALUES (?, ?, ?, ?)",
		account.Owner, account.Code, string(account.Type), string(doc),
	)
	if database.IsUniqueViolation(err) {
		return domain.Validationf("Account with code %s already exists.", account.Code)
	}
	if err != nil {
		return fmt.Errorf("failed to insert account %s: %w", account.Code, err)
	}

	r.log.Info().Str("owner", account.Owner).Str("code", account.Code).Msg("Account created")
	return nil
}

// Get returns the account (owner, code)
func (r *Repository) Get(ctx context.Context, owner, code string) (*domain.Account, error) {
	var doc string
	err := r.db.QueryRowContext(ctx,
		"SELECT document FROM accounts WHERE owner = ? AND code = ?", owner, code,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, accountNotFound(code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", code, err)
	}
	return decodeAccount(doc)
}

// List returns the owner's accounts ordered by code, optionally filtered by type
func (r *Repository) List(ctx context.Context, owner string, t *domain.AccountType) ([]domain.Account, error) {
	query := "SELECT document FROM accounts WHERE owner = ?"
	args := []interface{}{owner}
	if t != nil {
		query += " AND type = ?"
		args = append(args, string(*t))
	}
	query += " ORDER BY code"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Account, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		account, err := decodeAccount(doc)
		if err != nil {
			return nil, err
		}
		result = append(result, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return result, nil
}

// Replace overwrites the descriptive fields of an account. Assets are kept.
// The code cannot change while a pending or completed transaction still
// refers to the account by its old code.
func (r *Repository) Replace(ctx context.Context, owner, code string, account domain.Account) error {
	account.Owner = owner
	account.Assets = []domain.Balance{}

	doc, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to encode account %s: %w", account.Code, err)
	}

	return database.WithTransactionContext(ctx, r.db, func(tx *sql.Tx) error {
		if account.Code != code {
			referenced, err := referencedByOpenTransaction(ctx, tx, owner, code)
			if err != nil {
				return err
			}
			if referenced {
				return domain.Conflictf("Account with code %s is used by transactions that are not cancelled.", code)
			}
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE accounts
			SET code = ?, type = ?, document = json_set(?, '$.assets', json(json_extract(document, '$.assets')))
			WHERE owner = ? AND code = ?`,
			account.Code, string(account.Type), string(doc), owner, code,
		)
		if database.IsUniqueViolation(err) {
			return domain.Validationf("Account with code %s already exists.", account.Code)
		}
		if err != nil {
			return fmt.Errorf("failed to replace account %s: %w", code, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return accountNotFound(code)
		}
		return nil
	})
}

// Delete removes an account. Deleting a missing account is not an error.
func (r *Repository) Delete(ctx context.Context, owner, code string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM accounts WHERE owner = ? AND code = ?", owner, code); err != nil {
		return fmt.Errorf("failed to delete account %s: %w", code, err)
	}
	return nil
}

// HasAsset reports whether the account holds a slot for instrumentCode
func (r *Repository) HasAsset(ctx context.Context, owner, account, instrumentCode string) (bool, error) {
	return hasAsset(ctx, r.db, owner, account, instrumentCode)
}

// IncrementAsset adds delta to the quantity of one asset slot
func (r *Repository) IncrementAsset(ctx context.Context, owner, account, instrumentCode string, delta decimal.Decimal) error {
	return database.WithTransactionContext(ctx, r.db, func(tx *sql.Tx) error {
		var index int
		var raw string
		err := tx.QueryRowContext(ctx, `
			SELECT asset.key, json_extract(asset.value, '$.quantity')
			FROM accounts, json_each(accounts.document, '$.assets') AS asset
			WHERE accounts.owner = ? AND accounts.code = ?
			  AND json_extract(asset.value, '$.instrument.code') = ?`,
			owner, account, instrumentCode,
		).Scan(&index, &raw)
		if err == sql.ErrNoRows {
			if _, err := hasAsset(ctx, tx, owner, account, instrumentCode); err != nil {
				return err
			}
			return domain.NotFoundf("Account %s has no asset %s.", account, instrumentCode)
		}
		if err != nil {
			return fmt.Errorf("failed to read asset %s of account %s: %w", instrumentCode, account, err)
		}

		current, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("failed to parse quantity of asset %s: %w", instrumentCode, err)
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE accounts SET document = json_set(document, ?, ?) WHERE owner = ? AND code = ?",
			fmt.Sprintf("$.assets[%d].quantity", index), current.Add(delta).String(), owner, account,
		)
		if err != nil {
			return fmt.Errorf("failed to update asset %s of account %s: %w", instrumentCode, account, err)
		}
		return nil
	})
}

// AppendAsset adds a new asset slot to the account
func (r *Repository) AppendAsset(ctx context.Context, owner, account string, balance domain.Balance) error {
	slot, err := json.Marshal(balance)
	if err != nil {
		return fmt.Errorf("failed to encode asset %s: %w", balance.Instrument.Code, err)
	}

	return database.WithTransactionContext(ctx, r.db, func(tx *sql.Tx) error {
		exists, err := hasAsset(ctx, tx, owner, account, balance.Instrument.Code)
		if err != nil {
			return err
		}
		if exists {
			return domain.Conflictf("Account %s already has asset %s.", account, balance.Instrument.Code)
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE accounts SET document = json_insert(document, '$.assets[#]', json(?)) WHERE owner = ? AND code = ?",
			string(slot), owner, account,
		)
		if err != nil {
			return fmt.Errorf("failed to append asset %s to account %s: %w", balance.Instrument.Code, account, err)
		}
		return nil
	})
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func hasAsset(ctx context.Context, q queryer, owner, account, instrumentCode string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `
		SELECT (
			SELECT COUNT(*) FROM json_each(accounts.document, '$.assets') AS asset
			WHERE json_extract(asset.value, '$.instrument.code') = ?
		)
		FROM accounts WHERE owner = ? AND code = ?`,
		instrumentCode, owner, account,
	).Scan(&count)
	if err == sql.ErrNoRows {
		return false, accountNotFound(account)
	}
	if err != nil {
		return false, fmt.Errorf("failed to check asset %s of account %s: %w", instrumentCode, account, err)
	}
	return count > 0, nil
}

func referencedByOpenTransaction(ctx context.Context, q queryer, owner, account string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM transactions, json_each(transactions.document, '$.entries') AS entry
		WHERE transactions.owner = ? AND transactions.status != ?
		  AND json_extract(entry.value, '$.account.code') = ?`,
		owner, string(domain.StatusCancelled), account,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check transactions of account %s: %w", account, err)
	}
	return count > 0, nil
}

func accountNotFound(code string) error {
	return domain.NotFoundf("Account with code %s does not exist.", code)
}

func decodeAccount(doc string) (*domain.Account, error) {
	var account domain.Account
	if err := json.Unmarshal([]byte(doc), &account); err != nil {
		return nil, fmt.Errorf("failed to decode account document: %w", err)
	}
	return &account, nil
}
