// Package di provides dependency injection for the document store and journal.
package di

import (
	"fmt"

	"github.com/aristath/portfolio/internal/config"
	"github.com/aristath/portfolio/internal/database"
	"github.com/aristath/portfolio/internal/journal"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens portfolio.db, applies its schema and opens the settlement journal
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// portfolio.db - institutions, instruments, accounts, transactions and users
	portfolioDB, err := database.New(database.Config{
		Path:    cfg.StorePath(),
		Profile: database.ProfileLedger, // Balances live here
		Name:    "portfolio",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize portfolio database: %w", err)
	}

	if err := portfolioDB.Migrate(); err != nil {
		portfolioDB.Close()
		return nil, fmt.Errorf("failed to migrate portfolio database: %w", err)
	}
	container.PortfolioDB = portfolioDB

	// Settlement journal - append-only log of ledger movements
	j, err := journal.Open(journal.Config{
		Dir:        cfg.JournalDir,
		SyncToDisk: !cfg.DevMode,
	}, log)
	if err != nil {
		portfolioDB.Close()
		return nil, fmt.Errorf("failed to open settlement journal: %w", err)
	}
	container.Journal = j

	log.Info().Str("path", portfolioDB.Path()).Msg("Store initialized")

	return container, nil
}
