// Package institutions stores the bank, broker and exchange catalog.
package institutions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/aristath/portfolio/internal/database"
	"github.com/aristath/portfolio/internal/domain"
	"github.com/rs/zerolog"
)

// Repository handles institution documents in portfolio.db
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new institution repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "institution").Logger(),
	}
}

// Create stores a new institution. Codes are unique.
func (r *Repository) Create(ctx context.Context, inst domain.Institution) error {
	if err := inst.Validate(); err != nil {
		return err
	}

	doc, err := json.Marshal(inst)
	if err != nil {
		return fmt.Errorf("failed to encode institution %s: %w", inst.Code, err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO institutions (code, type, document) VALUES (?, ?, ?)",
		inst.Code, string(inst.Type), string(doc),
	)
	if database.IsUniqueViolation(err) {
		return domain.Validationf("Institution with code %s already exists.", inst.Code)
	}
	if err != nil {
		return fmt.Errorf("failed to insert institution %s: %w", inst.Code, err)
	}

	r.log.Info().Str("code", inst.Code).Str("type", string(inst.Type)).Msg("Institution created")
	return nil
}

// Get returns the institution with the given code
func (r *Repository) Get(ctx context.Context, code string) (*domain.Institution, error) {
	row := r.db.QueryRowContext(ctx, "SELECT document FROM institutions WHERE code = ?", code)
	inst, err := scanInstitution(row)
	if err == sql.ErrNoRows {
		return nil, domain.NotFoundf("Institution with code %s does not exist.", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get institution %s: %w", code, err)
	}
	return inst, nil
}

// GetByType returns the institution with the given code only if it has type t
func (r *Repository) GetByType(ctx context.Context, t domain.InstitutionType, code string) (*domain.Institution, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT document FROM institutions WHERE code = ? AND type = ?", code, string(t))
	inst, err := scanInstitution(row)
	if err == sql.ErrNoRows {
		return nil, domain.NotFoundf("Institution of type %s with code %s does not exist.", t, code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get institution %s: %w", code, err)
	}
	return inst, nil
}

// List returns all institutions ordered by code
func (r *Repository) List(ctx context.Context) ([]domain.Institution, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT document FROM institutions ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("failed to query institutions: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Institution, 0)
	for rows.Next() {
		inst, err := scanInstitution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan institution: %w", err)
		}
		result = append(result, *inst)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating institutions: %w", err)
	}

	return result, nil
}

// Replace overwrites the institution stored under code
func (r *Repository) Replace(ctx context.Context, code string, inst domain.Institution) error {
	if err := inst.Validate(); err != nil {
		return err
	}

	doc, err := json.Marshal(inst)
	if err != nil {
		return fmt.Errorf("failed to encode institution %s: %w", inst.Code, err)
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE institutions SET code = ?, type = ?, document = ? WHERE code = ?",
		inst.Code, string(inst.Type), string(doc), code,
	)
	if database.IsUniqueViolation(err) {
		return domain.Validationf("Institution with code %s already exists.", inst.Code)
	}
	if err != nil {
		return fmt.Errorf("failed to replace institution %s: %w", code, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.NotFoundf("Institution with code %s does not exist.", code)
	}

	return nil
}

// Delete removes an institution. Deleting a missing code is not an error.
func (r *Repository) Delete(ctx context.Context, code string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM institutions WHERE code = ?", code); err != nil {
		return fmt.Errorf("failed to delete institution %s: %w", code, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInstitution(row rowScanner) (*domain.Institution, error) {
	var doc string
	if err := row.Scan(&doc); err != nil {
		return nil, err
	}
	var inst domain.Institution
	if err := json.Unmarshal([]byte(doc), &inst); err != nil {
		return nil, fmt.Errorf("failed to decode institution document: %w", err)
	}
	return &inst, nil
}
