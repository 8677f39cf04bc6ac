package instruments

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

var nasdaq = domain.Institution{Type: domain.InstitutionExchange, Name: "Nasdaq", Code: "NDQ"}

func newTestService(t *testing.T) *Service {
	db := testingpkg.NewPortfolioDB(t)
	testingpkg.SeedInstitution(t, db, nasdaq)
	testingpkg.SeedInstitution(t, db, domain.Institution{Type: domain.InstitutionBank, Name: "Bank of Ireland", Code: "BOI"})

	log := zerolog.Nop()
	return NewService(NewRepository(db.Conn(), log), institutions.NewRepository(db.Conn(), log), log)
}

func TestService_CreateCurrency(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	eur, err := svc.Create(ctx, domain.InstrumentInput{Type: domain.InstrumentCurrency, Description: "Euro", Symbol: "EUR"})
	require.NoError(t, err)
	assert.Equal(t, "EUR", eur.Code)
	assert.Nil(t, eur.Exchange)

	got, err := svc.Get(ctx, "EUR")
	require.NoError(t, err)
	assert.Equal(t, *eur, *got)
}

func TestService_CreateSecurityDerivesCode(t *testing.T) {
	svc := newTestService(t)

	aapl, err := svc.Create(context.Background(), domain.InstrumentInput{
		Type: domain.InstrumentSecurity, Description: "Apple", Symbol: "AAPL", Exchange: "NDQ",
	})
	require.NoError(t, err)
	assert.Equal(t, "NDQ:AAPL", aapl.Code)
	require.NotNil(t, aapl.Exchange)
	assert.Equal(t, nasdaq, *aapl.Exchange)
}

func TestService_CreateSecurityRequiresExchange(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		exchange string
	}{
		{"missing", ""},
		{"unknown", "LSE"},
		{"wrong type", "BOI"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, domain.InstrumentInput{
				Type: domain.InstrumentSecurity, Symbol: "AAPL", Exchange: tt.exchange,
			})
			assert.True(t, domain.IsValidation(err), "got %v", err)
		})
	}
}

func TestService_CreateDuplicate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	in := domain.InstrumentInput{Type: domain.InstrumentCurrency, Description: "Euro", Symbol: "EUR"}
	_, err := svc.Create(ctx, in)
	require.NoError(t, err)

	_, err = svc.Create(ctx, in)
	assert.True(t, domain.IsValidation(err))
}

func TestService_ListFilterAndOrder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, in := range []domain.InstrumentInput{
		{Type: domain.InstrumentSecurity, Description: "Apple", Symbol: "AAPL", Exchange: "NDQ"},
		{Type: domain.InstrumentCurrency, Description: "US Dollar", Symbol: "USD"},
		{Type: domain.InstrumentCurrency, Description: "Euro", Symbol: "EUR"},
		{Type: domain.InstrumentIndex, Description: "S&P 500", Symbol: "SPX"},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, nil)
	require.NoError(t, err)
	codes := make([]string, 0, len(all))
	for _, i := range all {
		codes = append(codes, i.Code)
	}
	assert.Equal(t, []string{"EUR", "USD", "SPX", "NDQ:AAPL"}, codes)

	currency := domain.InstrumentCurrency
	currencies, err := svc.List(ctx, &currency)
	require.NoError(t, err)
	assert.Len(t, currencies, 2)
}

func TestService_ReplaceKeepsType(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.InstrumentInput{Type: domain.InstrumentCurrency, Description: "Euro", Symbol: "EUR"})
	require.NoError(t, err)

	updated, err := svc.Replace(ctx, "EUR", domain.InstrumentInput{Type: domain.InstrumentCurrency, Description: "Euro (EMU)", Symbol: "EUR"})
	require.NoError(t, err)
	assert.Equal(t, "Euro (EMU)", updated.Description)

	_, err = svc.Replace(ctx, "EUR", domain.InstrumentInput{Type: domain.InstrumentIndex, Symbol: "EUR"})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.Replace(ctx, "GBP", domain.InstrumentInput{Type: domain.InstrumentCurrency, Symbol: "GBP"})
	assert.True(t, domain.IsNotFound(err))

	require.NoError(t, svc.Delete(ctx, "EUR"))
	_, err = svc.Get(ctx, "EUR")
	assert.True(t, domain.IsNotFound(err))
}
