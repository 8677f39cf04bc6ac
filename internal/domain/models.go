// Package domain holds the portfolio model shared by stores, services and handlers.
// It has no infrastructure dependencies.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InstitutionType classifies an institution
type InstitutionType string

const (
	InstitutionBank     InstitutionType = "bank"
	InstitutionBroker   InstitutionType = "broker"
	InstitutionExchange InstitutionType = "exchange"
)

// Valid reports whether t is a known institution type
func (t InstitutionType) Valid() bool {
	switch t {
	case InstitutionBank, InstitutionBroker, InstitutionExchange:
		return true
	}
	return false
}

// Institution is a bank, broker or exchange from the shared catalog
type Institution struct {
	Type InstitutionType `json:"type"`
	Name string          `json:"name"`
	Code string          `json:"code"`
}

// InstrumentType classifies an instrument. It is immutable once stored.
type InstrumentType string

const (
	InstrumentCurrency InstrumentType = "currency"
	InstrumentIndex    InstrumentType = "index"
	InstrumentSecurity InstrumentType = "security"
)

// Valid reports whether t is a known instrument type
func (t InstrumentType) Valid() bool {
	switch t {
	case InstrumentCurrency, InstrumentIndex, InstrumentSecurity:
		return true
	}
	return false
}

// Instrument is a currency, index or security from the shared catalog.
// Securities carry the exchange they are listed on.
type Instrument struct {
	Type        InstrumentType `json:"type"`
	Description string         `json:"description"`
	Symbol      string         `json:"symbol"`
	Code        string         `json:"code"`
	Exchange    *Institution   `json:"exchange,omitempty"`
}

// InstrumentCode derives the catalog code: the bare symbol, or
// "exchange:symbol" for securities.
func InstrumentCode(t InstrumentType, symbol, exchangeCode string) string {
	if t == InstrumentSecurity {
		return exchangeCode + ":" + symbol
	}
	return symbol
}

// SplitInstrumentCode is the inverse of InstrumentCode. exchange is empty
// for bare symbols.
func SplitInstrumentCode(code string) (exchange, symbol string) {
	if i := strings.Index(code, ":"); i >= 0 {
		return code[:i], code[i+1:]
	}
	return "", code
}

// AccountType classifies an account
type AccountType string

const (
	AccountCash       AccountType = "cash"
	AccountBank       AccountType = "bank"
	AccountInvestment AccountType = "investment"
)

// Valid reports whether t is a known account type
func (t AccountType) Valid() bool {
	_, _, ok := holderType(t)
	return ok
}

// HolderType returns the institution type that must hold an account of type t.
// required is false for accounts without a holder (cash).
func HolderType(t AccountType) (holder InstitutionType, required bool) {
	holder, required, _ = holderType(t)
	return holder, required
}

func holderType(t AccountType) (InstitutionType, bool, bool) {
	switch t {
	case AccountCash:
		return "", false, true
	case AccountBank:
		return InstitutionBank, true, true
	case AccountInvestment:
		return InstitutionBroker, true, true
	}
	return "", false, false
}

// Balance is a signed quantity of an instrument.
// The sign encodes direction relative to the owning account.
type Balance struct {
	Instrument Instrument      `json:"instrument"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// AccountRef is the account snapshot embedded in transaction entries
type AccountRef struct {
	Type        AccountType `json:"type"`
	Code        string      `json:"code"`
	Description string      `json:"description"`
}

// Account is owned by exactly one user. Assets is the current balance state
// and holds at most one entry per instrument code.
type Account struct {
	Owner       string       `json:"owner"`
	Type        AccountType  `json:"type"`
	Code        string       `json:"code"`
	Description string       `json:"description"`
	Holder      *Institution `json:"holder,omitempty"`
	Assets      []Balance    `json:"assets"`
}

// Ref returns the snapshot stored inside transaction entries
func (a *Account) Ref() AccountRef {
	return AccountRef{Type: a.Type, Code: a.Code, Description: a.Description}
}

// Asset returns the asset slot for an instrument code
func (a *Account) Asset(instrumentCode string) (Balance, bool) {
	for _, asset := range a.Assets {
		if asset.Instrument.Code == instrumentCode {
			return asset, true
		}
	}
	return Balance{}, false
}

// TransactionStatus is the lifecycle state of a transaction or one of its entries
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusCancelled TransactionStatus = "cancelled"
)

// Valid reports whether s is a known status
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a transaction may move from one status to another.
// Allowed: pending -> completed, pending -> cancelled, completed -> cancelled.
func CanTransition(from, to TransactionStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusCompleted || to == StatusCancelled
	case StatusCompleted:
		return to == StatusCancelled
	}
	return false
}

// TransactionEntry is one (account, balance) line of a transaction.
// Account and Balance are fixed at creation; Status advances on its own.
type TransactionEntry struct {
	Account AccountRef        `json:"account"`
	Balance Balance           `json:"balance"`
	Status  TransactionStatus `json:"status"`
}

// Transaction is identified by (Owner, Code)
type Transaction struct {
	Owner       string             `json:"owner"`
	Code        string             `json:"code"`
	Description string             `json:"description"`
	Status      TransactionStatus  `json:"status"`
	Total       Balance            `json:"total"`
	Entries     []TransactionEntry `json:"entries"`
	CreatedAt   time.Time          `json:"created_at"`
}

// User is an authenticated principal. Accounts and transactions are owned by Username.
type User struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}
