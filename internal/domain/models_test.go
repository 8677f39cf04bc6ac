package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolderType(t *testing.T) {
	testCases := []struct {
		accountType AccountType
		holder      InstitutionType
		required    bool
	}{
		{AccountCash, "", false},
		{AccountBank, InstitutionBank, true},
		{AccountInvestment, InstitutionBroker, true},
		{AccountType("savings"), "", false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.accountType), func(t *testing.T) {
			holder, required := HolderType(tc.accountType)
			assert.Equal(t, tc.holder, holder)
			assert.Equal(t, tc.required, required)
		})
	}

	assert.True(t, AccountCash.Valid())
	assert.False(t, AccountType("savings").Valid())
}

func TestCanTransition(t *testing.T) {
	allowed := map[[2]TransactionStatus]bool{
		{StatusPending, StatusCompleted}:   true,
		{StatusPending, StatusCancelled}:   true,
		{StatusCompleted, StatusCancelled}: true,
	}

	statuses := []TransactionStatus{StatusPending, StatusCompleted, StatusCancelled}
	for _, from := range statuses {
		for _, to := range statuses {
			name := fmt.Sprintf("%s->%s", from, to)
			assert.Equal(t, allowed[[2]TransactionStatus{from, to}], CanTransition(from, to), name)
		}
	}
}

func TestInstrumentCode(t *testing.T) {
	assert.Equal(t, "EUR", InstrumentCode(InstrumentCurrency, "EUR", ""))
	assert.Equal(t, "SPX", InstrumentCode(InstrumentIndex, "SPX", "NDQ"))
	assert.Equal(t, "NDQ:AMZN", InstrumentCode(InstrumentSecurity, "AMZN", "NDQ"))

	exchange, symbol := SplitInstrumentCode("NDQ:AMZN")
	assert.Equal(t, "NDQ", exchange)
	assert.Equal(t, "AMZN", symbol)

	exchange, symbol = SplitInstrumentCode("EUR")
	assert.Empty(t, exchange)
	assert.Equal(t, "EUR", symbol)
}

func TestAccountAsset(t *testing.T) {
	account := Account{
		Code: "WALLET",
		Assets: []Balance{
			{Instrument: Instrument{Code: "EUR"}, Quantity: decimal.RequireFromString("3.14")},
		},
	}

	asset, ok := account.Asset("EUR")
	require.True(t, ok)
	assert.True(t, asset.Quantity.Equal(decimal.RequireFromString("3.14")))

	_, ok = account.Asset("USD")
	assert.False(t, ok)

	assert.Equal(t, AccountRef{Code: "WALLET"}, account.Ref())
}

func TestTransactionProposalValidate(t *testing.T) {
	valid := TransactionProposal{
		Description: "Coffee",
		Total:       BalanceProposal{Instrument: "EUR", Quantity: decimal.RequireFromString("3.14")},
		Entries: []EntryProposal{
			{Account: "WALLET", Balance: BalanceProposal{Instrument: "EUR", Quantity: decimal.RequireFromString("-3.14")}},
		},
	}
	assert.NoError(t, valid.Validate())

	noEntries := valid
	noEntries.Entries = nil
	assert.True(t, IsValidation(noEntries.Validate()))

	noDescription := valid
	noDescription.Description = "  "
	assert.True(t, IsValidation(noDescription.Validate()))

	noAccount := valid
	noAccount.Entries = []EntryProposal{{Balance: BalanceProposal{Instrument: "EUR"}}}
	assert.True(t, IsValidation(noAccount.Validate()))
}

func TestInstrumentInputValidate(t *testing.T) {
	assert.NoError(t, InstrumentInput{Type: InstrumentCurrency, Symbol: "EUR"}.Validate())
	assert.True(t, IsValidation(InstrumentInput{Type: InstrumentSecurity, Symbol: "AMZN"}.Validate()))
	assert.True(t, IsValidation(InstrumentInput{Type: "bond", Symbol: "X"}.Validate()))
	assert.True(t, IsValidation(InstrumentInput{Type: InstrumentCurrency, Symbol: "A:B"}.Validate()))
}

func TestBalanceJSONAcceptsNumbers(t *testing.T) {
	var proposal BalanceProposal
	require.NoError(t, json.Unmarshal([]byte(`{"instrument":"EUR","quantity":-3.14}`), &proposal))
	assert.True(t, proposal.Quantity.Equal(decimal.RequireFromString("-3.14")))
}

func TestErrorCategories(t *testing.T) {
	err := NotFoundf("account with code %s not found", "WALLET")
	assert.Equal(t, "account with code WALLET not found", err.Error())
	assert.True(t, IsNotFound(err))
	assert.False(t, IsConflict(err))

	wrapped := fmt.Errorf("complete: %w", Conflictf("already completed"))
	assert.True(t, IsConflict(wrapped))
	assert.True(t, errors.Is(wrapped, ErrConflict))
	assert.True(t, errors.Is(Authenticationf("bad"), ErrAuthentication))
	assert.True(t, errors.Is(Authorizationf("nope"), ErrAuthorization))
}
