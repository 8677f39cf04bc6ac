package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// InstitutionStore resolves catalog institutions
type InstitutionStore interface {
	Get(ctx context.Context, code string) (*Institution, error)
	GetByType(ctx context.Context, t InstitutionType, code string) (*Institution, error)
}

// InstrumentStore resolves catalog instruments by code
type InstrumentStore interface {
	Get(ctx context.Context, code string) (*Instrument, error)
}

// AccountStore resolves accounts by (owner, code)
type AccountStore interface {
	Get(ctx context.Context, owner, code string) (*Account, error)
}

// AssetStore mutates a single asset slot of an account.
// Each call is one atomic single-document update.
type AssetStore interface {
	// HasAsset reports whether the account holds a slot for instrumentCode.
	// Returns a not found error if the account does not exist.
	HasAsset(ctx context.Context, owner, account, instrumentCode string) (bool, error)

	// IncrementAsset adds delta to the slot for instrumentCode.
	// Returns a not found error if the account or the slot does not exist.
	IncrementAsset(ctx context.Context, owner, account, instrumentCode string, delta decimal.Decimal) error

	// AppendAsset adds a new slot. Returns a conflict error if the slot already exists.
	AppendAsset(ctx context.Context, owner, account string, balance Balance) error
}

// TransactionStore persists transactions as single documents
type TransactionStore interface {
	// Insert stores a new transaction. (Owner, Code) must be unique.
	Insert(ctx context.Context, tx *Transaction) error
	Get(ctx context.Context, owner, code string) (*Transaction, error)
	List(ctx context.Context, owner string, status *TransactionStatus) ([]Transaction, error)
	SetEntryStatus(ctx context.Context, owner, code string, index int, status TransactionStatus) error
	SetStatus(ctx context.Context, owner, code string, status TransactionStatus) error
}
