package transactions

import (
	"context"
	"time"

	"github.com/aristath/portfolio/internal/domain"
	"github.com/aristath/portfolio/internal/modules/ledger"
	"github.com/aristath/portfolio/internal/utils"
	"github.com/rs/zerolog"
)

// slowSettlement is the duration above which a settlement run is logged as slow
const slowSettlement = 2 * time.Second

// Settler moves entry balances in and out of accounts
type Settler interface {
	Apply(ctx context.Context, owner, account string, balance domain.Balance) error
	Revert(ctx context.Context, owner, account string, balance domain.Balance) error
}

// Service runs the transaction lifecycle: pending -> completed -> cancelled,
// or pending -> cancelled.
//
// Completion and cancellation advance one entry at a time and persist each
// entry status right after its ledger update. A failure stops the loop and
// leaves earlier entries advanced, so calling the operation again resumes
// from the first entry that has not reached the target status.
type Service struct {
	builder *Builder
	store   domain.TransactionStore
	settler Settler
	log     zerolog.Logger
}

// NewService creates a new transaction service
func NewService(builder *Builder, store domain.TransactionStore, settler Settler, log zerolog.Logger) *Service {
	return &Service{
		builder: builder,
		store:   store,
		settler: settler,
		log:     log.With().Str("service", "transaction").Logger(),
	}
}

// Create builds and stores a pending transaction. Accounts are not touched.
func (s *Service) Create(ctx context.Context, owner string, proposal domain.TransactionProposal) (*domain.Transaction, error) {
	tx, err := s.builder.Build(ctx, owner, proposal)
	if err != nil {
		return nil, err
	}

	if err := s.store.Insert(ctx, tx); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("owner", owner).
		Str("code", tx.Code).
		Int("entries", len(tx.Entries)).
		Msg("Transaction created")
	return tx, nil
}

// Get returns one of the owner's transactions
func (s *Service) Get(ctx context.Context, owner, code string) (*domain.Transaction, error) {
	return s.store.Get(ctx, owner, code)
}

// List returns the owner's transactions, optionally filtered by status
func (s *Service) List(ctx context.Context, owner string, status *domain.TransactionStatus) ([]domain.Transaction, error) {
	return s.store.List(ctx, owner, status)
}

// Complete applies every pending entry to its account and marks the transaction completed
func (s *Service) Complete(ctx context.Context, owner, code string) (*domain.Transaction, error) {
	tx, err := s.store.Get(ctx, owner, code)
	if err != nil {
		return nil, err
	}

	switch tx.Status {
	case domain.StatusCompleted:
		return nil, domain.Conflictf("Transaction %s is already completed.", code)
	case domain.StatusCancelled:
		return nil, domain.Conflictf("Transaction %s is cancelled and cannot be completed.", code)
	}

	defer utils.OperationTimer("transaction_complete", slowSettlement, s.log)()

	ctx = ledger.WithTransaction(ctx, code)
	for i := range tx.Entries {
		entry := &tx.Entries[i]
		if entry.Status == domain.StatusCompleted {
			continue
		}

		if err := s.settler.Apply(ctx, owner, entry.Account.Code, entry.Balance); err != nil {
			s.logStopped(err, "complete", owner, code, i)
			return nil, err
		}
		if err := s.store.SetEntryStatus(ctx, owner, code, i, domain.StatusCompleted); err != nil {
			s.logStopped(err, "complete", owner, code, i)
			return nil, err
		}
		entry.Status = domain.StatusCompleted
	}

	if err := s.store.SetStatus(ctx, owner, code, domain.StatusCompleted); err != nil {
		return nil, err
	}
	tx.Status = domain.StatusCompleted

	s.log.Info().Str("owner", owner).Str("code", code).Msg("Transaction completed")
	return tx, nil
}

// Cancel reverts every completed entry and marks the transaction cancelled
func (s *Service) Cancel(ctx context.Context, owner, code string) (*domain.Transaction, error) {
	tx, err := s.store.Get(ctx, owner, code)
	if err != nil {
		return nil, err
	}

	if tx.Status == domain.StatusCancelled {
		return nil, domain.Conflictf("Transaction %s is already cancelled.", code)
	}

	defer utils.OperationTimer("transaction_cancel", slowSettlement, s.log)()

	ctx = ledger.WithTransaction(ctx, code)
	for i := range tx.Entries {
		entry := &tx.Entries[i]
		if entry.Status == domain.StatusCancelled {
			continue
		}

		if entry.Status == domain.StatusCompleted {
			if err := s.settler.Revert(ctx, owner, entry.Account.Code, entry.Balance); err != nil {
				s.logStopped(err, "cancel", owner, code, i)
				return nil, err
			}
		}
		if err := s.store.SetEntryStatus(ctx, owner, code, i, domain.StatusCancelled); err != nil {
			s.logStopped(err, "cancel", owner, code, i)
			return nil, err
		}
		entry.Status = domain.StatusCancelled
	}

	if err := s.store.SetStatus(ctx, owner, code, domain.StatusCancelled); err != nil {
		return nil, err
	}
	tx.Status = domain.StatusCancelled

	s.log.Info().Str("owner", owner).Str("code", code).Msg("Transaction cancelled")
	return tx, nil
}

func (s *Service) logStopped(err error, op, owner, code string, entry int) {
	s.log.Warn().
		Err(err).
		Str("op", op).
		Str("owner", owner).
		Str("code", code).
		Int("entry", entry).
		Msg("Settlement stopped; retry resumes from this entry")
}
