// Package instruments stores the currency, index and security catalog.
package instruments

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/aristath/portfolio/internal/database"
	"github.com/aristath/portfolio/internal/domain"
	"github.com/rs/zerolog"
)

// Repository handles instrument documents in portfolio.db
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new instrument repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "instrument").Logger(),
	}
}

// Create stores a resolved instrument. Codes are unique.
func (r *Repository) Create(ctx context.Context, instrument domain.Instrument) error {
	doc, err := json.Marshal(instrument)
	if err != nil {
		return fmt.Errorf("failed to encode instrument %s: %w", instrument.Code, err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO instruments (code, type, document) VALUES (?, ?, ?)",
		instrument.Code, string(instrument.Type), string(doc),
	)
	if database.IsUniqueViolation(err) {
		return domain.Validationf("Instrument with code %s already exists.", instrument.Code)
	}
	if err != nil {
		return fmt.Errorf("failed to insert instrument %s: %w", instrument.Code, err)
	}

	r.log.Info().Str("code", instrument.Code).Str("type", string(instrument.Type)).Msg("Instrument created")
	return nil
}

// Get returns the instrument with the given code
func (r *Repository) Get(ctx context.Context, code string) (*domain.Instrument, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, "SELECT document FROM instruments WHERE code = ?", code).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, domain.NotFoundf("Instrument with code %s does not exist.", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get instrument %s: %w", code, err)
	}
	return decodeInstrument(doc)
}

// List returns instruments ordered by type then code, optionally filtered by type
func (r *Repository) List(ctx context.Context, t *domain.InstrumentType) ([]domain.Instrument, error) {
	query := "SELECT document FROM instruments"
	var args []interface{}
	if t != nil {
		query += " WHERE type = ?"
		args = append(args, string(*t))
	}
	query += " ORDER BY type, code"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query instruments: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Instrument, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan instrument: %w", err)
		}
		instrument, err := decodeInstrument(doc)
		if err != nil {
			return nil, err
		}
		result = append(result, *instrument)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating instruments: %w", err)
	}

	return result, nil
}

// Replace overwrites the instrument stored under code
func (r *Repository) Replace(ctx context.Context, code string, instrument domain.Instrument) error {
	doc, err := json.Marshal(instrument)
	if err != nil {
		return fmt.Errorf("failed to encode instrument %s: %w", instrument.Code, err)
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE instruments SET code = ?, type = ?, document = ? WHERE code = ?",
		instrument.Code, string(instrument.Type), string(doc), code,
	)
	if database.IsUniqueViolation(err) {
		return domain.Validationf("Instrument with code %s already exists.", instrument.Code)
	}
	if err != nil {
		return fmt.Errorf("failed to replace instrument %s: %w", code, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.NotFoundf("Instrument with code %s does not exist.", code)
	}
	return nil
}

// Delete removes an instrument. Deleting a missing code is not an error.
func (r *Repository) Delete(ctx context.Context, code string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM instruments WHERE code = ?", code); err != nil {
		return fmt.Errorf("failed to delete instrument %s: %w", code, err)
	}
	return nil
}

func decodeInstrument(doc string) (*domain.Instrument, error) {
	var instrument domain.Instrument
	if err := json.Unmarshal([]byte(doc), &instrument); err != nil {
		return nil, fmt.Errorf("failed to decode instrument document: %w", err)
	}
	return &instrument, nil
}
