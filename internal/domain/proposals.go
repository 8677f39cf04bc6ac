package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BalanceProposal references an instrument by code
type BalanceProposal struct {
	Instrument string          `json:"instrument"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// EntryProposal references an account by code
type EntryProposal struct {
	Account string          `json:"account"`
	Balance BalanceProposal `json:"balance"`
}

// TransactionProposal is the unresolved input of a new transaction
type TransactionProposal struct {
	Description string          `json:"description"`
	Total       BalanceProposal `json:"total"`
	Entries     []EntryProposal `json:"entries"`
}

// Validate rejects malformed proposals before any lookup happens
func (p TransactionProposal) Validate() error {
	if strings.TrimSpace(p.Description) == "" {
		return Validationf("transaction description is required")
	}
	if p.Total.Instrument == "" {
		return Validationf("transaction total instrument is required")
	}
	if len(p.Entries) == 0 {
		return Validationf("transaction must have at least one entry")
	}
	for i, entry := range p.Entries {
		if entry.Account == "" {
			return Validationf("entry %d: account is required", i)
		}
		if entry.Balance.Instrument == "" {
			return Validationf("entry %d: instrument is required", i)
		}
	}
	return nil
}

// AccountInput is the unresolved input of an account. Holder is an institution code.
type AccountInput struct {
	Type        AccountType `json:"type"`
	Code        string      `json:"code"`
	Description string      `json:"description"`
	Holder      string      `json:"holder,omitempty"`
}

// Validate checks the fields that do not need a lookup
func (in AccountInput) Validate() error {
	if !in.Type.Valid() {
		return Validationf("unknown account type %q", in.Type)
	}
	if in.Code == "" {
		return Validationf("account code is required")
	}
	return nil
}

// InstrumentInput is the unresolved input of an instrument. Exchange is an institution code.
type InstrumentInput struct {
	Type        InstrumentType `json:"type"`
	Description string         `json:"description"`
	Symbol      string         `json:"symbol"`
	Exchange    string         `json:"exchange,omitempty"`
}

// Validate checks the fields that do not need a lookup
func (in InstrumentInput) Validate() error {
	if !in.Type.Valid() {
		return Validationf("unknown instrument type %q", in.Type)
	}
	if in.Symbol == "" {
		return Validationf("instrument symbol is required")
	}
	if strings.Contains(in.Symbol, ":") {
		return Validationf("instrument symbol %q must not contain ':'", in.Symbol)
	}
	if in.Type == InstrumentSecurity && in.Exchange == "" {
		return Validationf("instrument of type security must have an exchange")
	}
	return nil
}

// Validate checks an institution before it is stored
func (i Institution) Validate() error {
	if !i.Type.Valid() {
		return Validationf("unknown institution type %q", i.Type)
	}
	if i.Code == "" {
		return Validationf("institution code is required")
	}
	if i.Name == "" {
		return Validationf("institution name is required")
	}
	return nil
}
