package accounts

import (
	"context"
	"testing"

	"github.com/aristath/portfolio/internal/domain"
	"github.com/aristath/portfolio/internal/modules/institutions"
	testingpkg "github.com/aristath/portfolio/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	boi     = domain.Institution{Type: domain.InstitutionBank, Name: "Bank of Ireland", Code: "BOI"}
	degiro  = domain.Institution{Type: domain.InstitutionBroker, Name: "Degiro", Code: "DEGIRO"}
	nasdaqX = domain.Institution{Type: domain.InstitutionExchange, Name: "Nasdaq", Code: "NDQ"}
)

func newTestService(t *testing.T) *Service {
	db := testingpkg.NewPortfolioDB(t)
	for _, inst := range []domain.Institution{boi, degiro, nasdaqX} {
		testingpkg.SeedInstitution(t, db, inst)
	}
	log := zerolog.Nop()
	return NewService(NewRepository(db.Conn(), log), institutions.NewRepository(db.Conn(), log), log)
}

func TestService_CreateResolvesHolder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		in     domain.AccountInput
		holder *domain.Institution
	}{
		{"cash drops holder", domain.AccountInput{Type: domain.AccountCash, Code: "WALLET", Holder: "BOI"}, nil},
		{"bank held by bank", domain.AccountInput{Type: domain.AccountBank, Code: "BOICA", Holder: "BOI"}, &boi},
		{"investment held by broker", domain.AccountInput{Type: domain.AccountInvestment, Code: "MSIP01", Holder: "DEGIRO"}, &degiro},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := svc.Create(ctx, "alice", tt.in)
			require.NoError(t, err)
			assert.Equal(t, "alice", account.Owner)
			assert.Equal(t, tt.holder, account.Holder)
			assert.Empty(t, account.Assets)

			stored, err := svc.Get(ctx, "alice", tt.in.Code)
			require.NoError(t, err)
			assert.Equal(t, tt.holder, stored.Holder)
		})
	}
}

func TestService_CreateRejectsBadHolder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   domain.AccountInput
	}{
		{"bank without holder", domain.AccountInput{Type: domain.AccountBank, Code: "X"}},
		{"bank held by broker", domain.AccountInput{Type: domain.AccountBank, Code: "X", Holder: "DEGIRO"}},
		{"investment held by exchange", domain.AccountInput{Type: domain.AccountInvestment, Code: "X", Holder: "NDQ"}},
		{"unknown holder", domain.AccountInput{Type: domain.AccountBank, Code: "X", Holder: "AIB"}},
		{"unknown type", domain.AccountInput{Type: "crypto", Code: "X"}},
		{"missing code", domain.AccountInput{Type: domain.AccountCash}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "alice", tt.in)
			assert.True(t, domain.IsValidation(err), "got %v", err)
		})
	}
}

func TestService_ReplaceAndOwnership(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", domain.AccountInput{Type: domain.AccountCash, Code: "WALLET"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, "bob", "WALLET")
	assert.True(t, domain.IsNotFound(err))

	updated, err := svc.Replace(ctx, "alice", "WALLET", domain.AccountInput{Type: domain.AccountCash, Code: "WALLET", Description: "Pocket money"})
	require.NoError(t, err)
	assert.Equal(t, "Pocket money", updated.Description)

	_, err = svc.Replace(ctx, "bob", "WALLET", domain.AccountInput{Type: domain.AccountCash, Code: "WALLET"})
	assert.True(t, domain.IsNotFound(err))

	list, err := svc.List(ctx, "bob", nil)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, svc.Delete(ctx, "alice", "WALLET"))
}
