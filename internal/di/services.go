// Package di provides dependency injection for service implementations.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/portfolio/internal/config"
	"github.com/aristath/portfolio/internal/modules/accounts"
	"github.com/aristath/portfolio/internal/modules/auth"
	"github.com/aristath/portfolio/internal/modules/catalog"
	"github.com/aristath/portfolio/internal/modules/instruments"
	"github.com/aristath/portfolio/internal/modules/ledger"
	"github.com/aristath/portfolio/internal/modules/transactions"
	"github.com/rs/zerolog"
)

// InitializeServices creates all services and runs startup bootstrapping
// (catalog seed and admin account)
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	// Catalog and accounts
	container.InstrumentService = instruments.NewService(container.InstrumentRepo, container.InstitutionRepo, log)
	container.AccountService = accounts.NewService(container.AccountRepo, container.InstitutionRepo, log)

	// Auth
	container.AuthService = auth.NewService(container.UserRepo, cfg.AuthSecret, cfg.TokenTTL, log)
	container.AuthMiddleware = auth.NewMiddleware(container.AuthService, log)

	// Settlement: every ledger movement is journaled
	var recorder ledger.Recorder
	if container.Journal != nil {
		recorder = container.Journal
	}
	container.Ledger = ledger.New(container.AccountRepo, recorder, log)
	container.TransactionBuilder = transactions.NewBuilder(
		container.AccountRepo,
		container.InstrumentRepo,
		transactions.NewCodeGenerator(),
	)
	container.TransactionService = transactions.NewService(
		container.TransactionBuilder,
		container.TransactionRepo,
		container.Ledger,
		log,
	)

	container.CatalogSeeder = catalog.NewSeeder(container.InstitutionRepo, container.InstrumentService, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.CatalogFile != "" {
		seed, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			return fmt.Errorf("failed to load catalog seed: %w", err)
		}
		result, err := container.CatalogSeeder.Apply(ctx, seed)
		if err != nil {
			return fmt.Errorf("failed to apply catalog seed: %w", err)
		}
		log.Info().
			Str("file", cfg.CatalogFile).
			Int("created", result.Created).
			Int("skipped", result.Skipped).
			Msg("Catalog seed applied")
	}

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if err := container.AuthService.EnsureAdmin(ctx, auth.Credentials{
			Username: cfg.AdminUsername,
			Password: cfg.AdminPassword,
		}); err != nil {
			return fmt.Errorf("failed to bootstrap admin user: %w", err)
		}
	}

	log.Info().Msg("Services initialized")

	return nil
}
