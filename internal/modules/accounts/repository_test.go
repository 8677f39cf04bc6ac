package accounts

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aristath/portfolio/internal/domain"
	testingpkg "github.com/aristath/portfolio/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	db := testingpkg.NewPortfolioDB(t)
	return NewRepository(db.Conn(), zerolog.Nop())
}

func wallet() domain.Account {
	return domain.Account{Owner: "alice", Type: domain.AccountCash, Code: "WALLET", Description: "Wallet"}
}

func TestRepository_CreateGetList(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, wallet()))
	require.NoError(t, repo.Create(ctx, domain.Account{Owner: "alice", Type: domain.AccountBank, Code: "BOICA"}))
	require.NoError(t, repo.Create(ctx, domain.Account{Owner: "bob", Type: domain.AccountCash, Code: "WALLET"}))

	got, err := repo.Get(ctx, "alice", "WALLET")
	require.NoError(t, err)
	assert.Equal(t, "Wallet", got.Description)
	assert.Empty(t, got.Assets)
	assert.NotNil(t, got.Assets)

	list, err := repo.List(ctx, "alice", nil)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "BOICA", list[0].Code)
	assert.Equal(t, "WALLET", list[1].Code)

	cash := domain.AccountCash
	list, err = repo.List(ctx, "alice", &cash)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = repo.Get(ctx, "carol", "WALLET")
	assert.True(t, domain.IsNotFound(err))

	err = repo.Create(ctx, wallet())
	assert.True(t, domain.IsValidation(err))
}

func TestRepository_AssetSlots(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, wallet()))

	has, err := repo.HasAsset(ctx, "alice", "WALLET", "EUR")
	require.NoError(t, err)
	assert.False(t, has)

	err = repo.IncrementAsset(ctx, "alice", "WALLET", "EUR", testingpkg.Dec(t, "1"))
	assert.True(t, domain.IsNotFound(err))

	require.NoError(t, repo.AppendAsset(ctx, "alice", "WALLET",
		domain.Balance{Instrument: testingpkg.Euro(), Quantity: testingpkg.Dec(t, "3.14")}))

	has, err = repo.HasAsset(ctx, "alice", "WALLET", "EUR")
	require.NoError(t, err)
	assert.True(t, has)

	err = repo.AppendAsset(ctx, "alice", "WALLET", domain.Balance{Instrument: testingpkg.Euro()})
	assert.True(t, domain.IsConflict(err))

	require.NoError(t, repo.IncrementAsset(ctx, "alice", "WALLET", "EUR", testingpkg.Dec(t, "-3.14")))

	got, err := repo.Get(ctx, "alice", "WALLET")
	require.NoError(t, err)
	require.Len(t, got.Assets, 1)
	assert.True(t, got.Assets[0].Quantity.IsZero(), "got %s", got.Assets[0].Quantity)
}

func TestRepository_AssetOpsOnMissingAccount(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.HasAsset(ctx, "alice", "NOPE", "EUR")
	assert.True(t, domain.IsNotFound(err))

	err = repo.IncrementAsset(ctx, "alice", "NOPE", "EUR", testingpkg.Dec(t, "1"))
	assert.True(t, domain.IsNotFound(err))

	err = repo.AppendAsset(ctx, "alice", "NOPE", domain.Balance{Instrument: testingpkg.Euro()})
	assert.True(t, domain.IsNotFound(err))
}

func TestRepository_IncrementTargetsOneSlot(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, wallet()))

	usd := domain.Instrument{Type: domain.InstrumentCurrency, Symbol: "USD", Code: "USD"}
	require.NoError(t, repo.AppendAsset(ctx, "alice", "WALLET", domain.Balance{Instrument: usd, Quantity: testingpkg.Dec(t, "10")}))
	require.NoError(t, repo.AppendAsset(ctx, "alice", "WALLET", domain.Balance{Instrument: testingpkg.Euro(), Quantity: testingpkg.Dec(t, "5")}))

	require.NoError(t, repo.IncrementAsset(ctx, "alice", "WALLET", "EUR", testingpkg.Dec(t, "0.25")))

	got, err := repo.Get(ctx, "alice", "WALLET")
	require.NoError(t, err)
	eur, ok := got.Asset("EUR")
	require.True(t, ok)
	assert.Equal(t, "5.25", eur.Quantity.String())
	dollars, ok := got.Asset("USD")
	require.True(t, ok)
	assert.Equal(t, "10", dollars.Quantity.String())
}

func TestRepository_ReplaceKeepsAssets(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, wallet()))
	require.NoError(t, repo.AppendAsset(ctx, "alice", "WALLET",
		domain.Balance{Instrument: testingpkg.Euro(), Quantity: testingpkg.Dec(t, "7")}))

	renamed := domain.Account{Type: domain.AccountCash, Code: "POCKET", Description: "Pocket"}
	require.NoError(t, repo.Replace(ctx, "alice", "WALLET", renamed))

	got, err := repo.Get(ctx, "alice", "POCKET")
	require.NoError(t, err)
	assert.Equal(t, "Pocket", got.Description)
	assert.Equal(t, "alice", got.Owner)
	require.Len(t, got.Assets, 1)
	assert.Equal(t, "7", got.Assets[0].Quantity.String())

	err = repo.Replace(ctx, "alice", "WALLET", renamed)
	assert.True(t, domain.IsNotFound(err))

	require.NoError(t, repo.Delete(ctx, "alice", "POCKET"))
	_, err = repo.Get(ctx, "alice", "POCKET")
	assert.True(t, domain.IsNotFound(err))
}

func insertTransaction(t *testing.T, repo *Repository, code string, status domain.TransactionStatus, account string) {
	t.Helper()
	tx := domain.Transaction{
		Owner: "alice", Code: code, Description: "Coffee", Status: status,
		Entries: []domain.TransactionEntry{{
			Account: domain.AccountRef{Type: domain.AccountCash, Code: account},
			Balance: domain.Balance{Instrument: testingpkg.Euro(), Quantity: testingpkg.Dec(t, "-1")},
			Status:  status,
		}},
	}
	doc, err := json.Marshal(tx)
	require.NoError(t, err)
	_, err = repo.db.Exec(
		"INSERT INTO transactions (owner, code, status, created_at, document) VALUES (?, ?, ?, ?, ?)",
		tx.Owner, tx.Code, string(status), 1, string(doc),
	)
	require.NoError(t, err)
}

func TestRepository_ReplaceKeepsCodeUsedByTransactions(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, wallet()))
	insertTransaction(t, repo, "2020-04-20T04:20:00-00000001", domain.StatusPending, "WALLET")

	renamed := domain.Account{Type: domain.AccountCash, Code: "POCKET", Description: "Pocket"}
	err := repo.Replace(ctx, "alice", "WALLET", renamed)
	assert.True(t, domain.IsConflict(err), "got %v", err)

	_, err = repo.Get(ctx, "alice", "WALLET")
	require.NoError(t, err)

	// Descriptive changes that keep the code are allowed
	kept := domain.Account{Type: domain.AccountCash, Code: "WALLET", Description: "Pocket"}
	require.NoError(t, repo.Replace(ctx, "alice", "WALLET", kept))
}

func TestRepository_ReplaceIgnoresCancelledTransactions(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, wallet()))
	insertTransaction(t, repo, "2020-04-20T04:20:00-00000001", domain.StatusCancelled, "WALLET")
	insertTransaction(t, repo, "2020-04-20T04:20:00-00000002", domain.StatusPending, "BOICA")

	renamed := domain.Account{Type: domain.AccountCash, Code: "POCKET", Description: "Pocket"}
	require.NoError(t, repo.Replace(ctx, "alice", "WALLET", renamed))

	_, err := repo.Get(ctx, "alice", "POCKET")
	assert.NoError(t, err)
}
