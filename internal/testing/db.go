// Package testing provides testing utilities and helpers for the portfolio project.
package testing

import (
	"encoding/json"
	"fmt"
	"os"
	"testing"

	"github.com/aristath/portfolio/internal/database"
	"github.com/aristath/portfolio/internal/domain"
	"github.com/shopspring/decimal"
)

// NewTestDB creates a temporary-file SQLite database for testing with automatic schema migration.
// Returns the database instance and a cleanup function that closes the connection.
//
// Supported schema names:
//   - "portfolio" - applies portfolio_schema.sql
//   - Unknown names - creates empty database (no schema applied)
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	// Temporary files give each test its own isolated database
	tmpFile, err := os.CreateTemp("", fmt.Sprintf("test_%s_*.db", name))
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %v", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	db, err := database.New(database.Config{
		Path:    tmpPath,
		Profile: database.ProfileStandard,
		Name:    name,
	})
	if err != nil {
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	return db, func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
		for _, suffix := range []string{"", "-wal", "-shm"} {
			_ = os.Remove(tmpPath + suffix)
		}
	}
}

// NewPortfolioDB is NewTestDB("portfolio") with cleanup registered on t
func NewPortfolioDB(t *testing.T) *database.DB {
	t.Helper()
	db, cleanup := NewTestDB(t, "portfolio")
	t.Cleanup(cleanup)
	return db
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal fixture: %v", err)
	}
	return string(data)
}

// SeedInstitution writes an institution document directly
func SeedInstitution(t *testing.T, db *database.DB, inst domain.Institution) domain.Institution {
	t.Helper()
	_, err := db.Conn().Exec(
		"INSERT INTO institutions (code, type, document) VALUES (?, ?, ?)",
		inst.Code, string(inst.Type), mustJSON(t, inst),
	)
	if err != nil {
		t.Fatalf("Failed to seed institution %s: %v", inst.Code, err)
	}
	return inst
}

// SeedInstrument writes an instrument document directly
func SeedInstrument(t *testing.T, db *database.DB, instrument domain.Instrument) domain.Instrument {
	t.Helper()
	_, err := db.Conn().Exec(
		"INSERT INTO instruments (code, type, document) VALUES (?, ?, ?)",
		instrument.Code, string(instrument.Type), mustJSON(t, instrument),
	)
	if err != nil {
		t.Fatalf("Failed to seed instrument %s: %v", instrument.Code, err)
	}
	return instrument
}

// SeedAccount writes an account document directly
func SeedAccount(t *testing.T, db *database.DB, account domain.Account) domain.Account {
	t.Helper()
	if account.Assets == nil {
		account.Assets = []domain.Balance{}
	}
	_, err := db.Conn().Exec(
		"INSERT INTO accounts (owner, code, type, document) VALUES (?, ?, ?, ?)",
		account.Owner, account.Code, string(account.Type), mustJSON(t, account),
	)
	if err != nil {
		t.Fatalf("Failed to seed account %s: %v", account.Code, err)
	}
	return account
}

// Euro is the currency fixture used across tests
func Euro() domain.Instrument {
	return domain.Instrument{
		Type:        domain.InstrumentCurrency,
		Description: "Euro",
		Symbol:      "EUR",
		Code:        "EUR",
	}
}

// Dec parses a decimal literal, failing the test on bad input
func Dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("Bad decimal %q: %v", s, err)
	}
	return d
}
