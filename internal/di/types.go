/**
 * Package di provides dependency injection type definitions.
 *
 * The Container holds every long-lived dependency of the service. It is
 * created by Wire() and handed to the HTTP server and the scheduler.
 */
package di

import (
	"github.com/aristath/portfolio/internal/database"
	"github.com/aristath/portfolio/internal/journal"
	"github.com/aristath/portfolio/internal/modules/accounts"
	"github.com/aristath/portfolio/internal/modules/auth"
	"github.com/aristath/portfolio/internal/modules/catalog"
	"github.com/aristath/portfolio/internal/modules/institutions"
	"github.com/aristath/portfolio/internal/modules/instruments"
	"github.com/aristath/portfolio/internal/modules/ledger"
	"github.com/aristath/portfolio/internal/modules/transactions"
	"github.com/aristath/portfolio/internal/reliability"
	"github.com/aristath/portfolio/internal/scheduler"
)

/**
 * Container holds all dependencies for the application.
 *
 * Architecture:
 * - Store: portfolio.db document store plus the settlement journal
 * - Repositories: one per document collection
 * - Services: catalog, account, auth and transaction logic
 * - Scheduler: maintenance and backup jobs
 */
type Container struct {
	// Store
	PortfolioDB *database.DB
	Journal     *journal.Journal

	// Repositories
	InstitutionRepo *institutions.Repository
	InstrumentRepo  *instruments.Repository
	AccountRepo     *accounts.Repository
	TransactionRepo *transactions.Repository
	UserRepo        *auth.Repository

	// Services
	InstrumentService  *instruments.Service
	AccountService     *accounts.Service
	AuthService        *auth.Service
	AuthMiddleware     *auth.Middleware
	Ledger             *ledger.Ledger
	TransactionBuilder *transactions.Builder
	TransactionService *transactions.Service
	CatalogSeeder      *catalog.Seeder

	// Background jobs
	Scheduler *scheduler.Scheduler
}

// JobInstances holds the registered jobs so they can be triggered manually
type JobInstances struct {
	Maintenance *reliability.MaintenanceJob
	Backup      *reliability.BackupJob // nil when backups are disabled
}
