package transactions

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aristath/portfolio/internal/database"
	"github.com/aristath/portfolio/internal/domain"
	"github.com/aristath/portfolio/internal/modules/accounts"
	"github.com/aristath/portfolio/internal/modules/instruments"
	"github.com/aristath/portfolio/internal/modules/ledger"
	testingpkg "github.com/aristath/portfolio/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const owner = "alice"

var (
	boi    = domain.Institution{Type: domain.InstitutionBank, Name: "Bank of Ireland", Code: "BOI"}
	degiro = domain.Institution{Type: domain.InstitutionBroker, Name: "Degiro", Code: "DEGIRO"}
)

// env is a settlement stack over a temp-file store with three accounts:
// BOICA (bank, 1000 EUR), WALLET (cash, 3.14 EUR) and MSIP01 (investment, empty).
type env struct {
	db       *database.DB
	accounts *accounts.Repository
	txs      *Repository
	service  *Service
	clock    time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testingpkg.NewPortfolioDB(t)
	log := zerolog.Nop()

	testingpkg.SeedInstitution(t, db, boi)
	testingpkg.SeedInstitution(t, db, degiro)
	testingpkg.SeedInstrument(t, db, testingpkg.Euro())
	testingpkg.SeedAccount(t, db, domain.Account{
		Owner: owner, Type: domain.AccountBank, Code: "BOICA", Holder: &boi,
		Assets: []domain.Balance{{Instrument: testingpkg.Euro(), Quantity: testingpkg.Dec(t, "1000")}},
	})
	testingpkg.SeedAccount(t, db, domain.Account{
		Owner: owner, Type: domain.AccountCash, Code: "WALLET",
		Assets: []domain.Balance{{Instrument: testingpkg.Euro(), Quantity: testingpkg.Dec(t, "3.14")}},
	})
	testingpkg.SeedAccount(t, db, domain.Account{
		Owner: owner, Type: domain.AccountInvestment, Code: "MSIP01", Holder: &degiro,
	})

	e := &env{
		db:       db,
		accounts: accounts.NewRepository(db.Conn(), log),
		txs:      NewRepository(db.Conn(), log),
		clock:    time.Date(2020, 4, 20, 4, 20, 0, 0, time.UTC),
	}

	seq := 0
	codes := &CodeGenerator{
		now: func() time.Time { return e.clock },
		suffix: func() string {
			seq++
			return fmt.Sprintf("%08x", seq)
		},
	}

	builder := NewBuilder(e.accounts, instruments.NewRepository(db.Conn(), log), codes)
	e.service = NewService(builder, e.txs, ledger.New(e.accounts, nil, log), log)
	return e
}

// quantity returns the account's EUR quantity, or "" when it has no EUR slot
func (e *env) quantity(t *testing.T, account string) string {
	t.Helper()
	acc, err := e.accounts.Get(context.Background(), owner, account)
	require.NoError(t, err)
	slot, ok := acc.Asset("EUR")
	if !ok {
		return ""
	}
	return slot.Quantity.String()
}

func (e *env) assetCount(t *testing.T, account string) int {
	t.Helper()
	acc, err := e.accounts.Get(context.Background(), owner, account)
	require.NoError(t, err)
	return len(acc.Assets)
}

func proposal(t *testing.T, entries ...string) domain.TransactionProposal {
	t.Helper()
	require.True(t, len(entries)%2 == 0, "entries are account/quantity pairs")

	p := domain.TransactionProposal{
		Description: "Transfer",
		Total:       domain.BalanceProposal{Instrument: "EUR", Quantity: testingpkg.Dec(t, "0")},
	}
	for i := 0; i < len(entries); i += 2 {
		p.Entries = append(p.Entries, domain.EntryProposal{
			Account: entries[i],
			Balance: domain.BalanceProposal{Instrument: "EUR", Quantity: testingpkg.Dec(t, entries[i+1])},
		})
	}
	return p
}
