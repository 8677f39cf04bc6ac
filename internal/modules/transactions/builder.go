package transactions

import (
	"context"

	"github.com/aristath/portfolio/internal/domain"
)

// Builder turns a proposal into a pending transaction by resolving every
// account and instrument code. It persists nothing.
type Builder struct {
	accounts    domain.AccountStore
	instruments domain.InstrumentStore
	codes       *CodeGenerator
}

// NewBuilder creates a transaction builder
func NewBuilder(accounts domain.AccountStore, instruments domain.InstrumentStore, codes *CodeGenerator) *Builder {
	return &Builder{
		accounts:    accounts,
		instruments: instruments,
		codes:       codes,
	}
}

// Build validates the proposal, then resolves entries in order.
// The first unknown account or instrument aborts the build.
func (b *Builder) Build(ctx context.Context, owner string, proposal domain.TransactionProposal) (*domain.Transaction, error) {
	if err := proposal.Validate(); err != nil {
		return nil, err
	}

	entries := make([]domain.TransactionEntry, 0, len(proposal.Entries))
	for _, p := range proposal.Entries {
		account, err := b.accounts.Get(ctx, owner, p.Account)
		if domain.IsNotFound(err) {
			return nil, domain.NotFoundf("Account with code %s not found.", p.Account)
		}
		if err != nil {
			return nil, err
		}

		balance, err := b.resolveBalance(ctx, p.Balance)
		if err != nil {
			return nil, err
		}

		entries = append(entries, domain.TransactionEntry{
			Account: account.Ref(),
			Balance: balance,
			Status:  domain.StatusPending,
		})
	}

	total, err := b.resolveBalance(ctx, proposal.Total)
	if err != nil {
		return nil, err
	}

	code, createdAt := b.codes.Next()
	return &domain.Transaction{
		Owner:       owner,
		Code:        code,
		Description: proposal.Description,
		Status:      domain.StatusPending,
		Total:       total,
		Entries:     entries,
		CreatedAt:   createdAt,
	}, nil
}

func (b *Builder) resolveBalance(ctx context.Context, p domain.BalanceProposal) (domain.Balance, error) {
	instrument, err := b.instruments.Get(ctx, p.Instrument)
	if domain.IsNotFound(err) {
		return domain.Balance{}, domain.NotFoundf("Instrument with code %s not found.", p.Instrument)
	}
	if err != nil {
		return domain.Balance{}, err
	}
	return domain.Balance{Instrument: *instrument, Quantity: p.Quantity}, nil
}
