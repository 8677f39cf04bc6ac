// Package di provides dependency injection for repository implementations.
package di

import (
	"fmt"

	"github.com/aristath/portfolio/internal/modules/accounts"
	"github.com/aristath/portfolio/internal/modules/auth"
	"github.com/aristath/portfolio/internal/modules/institutions"
	"github.com/aristath/portfolio/internal/modules/instruments"
	"github.com/aristath/portfolio/internal/modules/transactions"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates all repositories over portfolio.db
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil || container.PortfolioDB == nil {
		return fmt.Errorf("container has no portfolio database")
	}

	conn := container.PortfolioDB.Conn()

	container.InstitutionRepo = institutions.NewRepository(conn, log)
	container.InstrumentRepo = instruments.NewRepository(conn, log)
	container.AccountRepo = accounts.NewRepository(conn, log)
	container.TransactionRepo = transactions.NewRepository(conn, log)
	container.UserRepo = auth.NewRepository(conn, log)

	log.Info().Msg("Repositories initialized")

	return nil
}
