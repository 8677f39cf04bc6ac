// Package ledger applies and reverts signed balances against account asset slots.
package ledger

import (
	"context"

	"github.com/aristath/portfolio/internal/domain"
	"github.com/aristath/portfolio/internal/journal"
	"github.com/rs/zerolog"
)

// Recorder receives every movement written to an account
type Recorder interface {
	Append(rec journal.Record) (uint64, error)
}

type transactionKey struct{}

// WithTransaction tags movements made with ctx with a transaction code
func WithTransaction(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, transactionKey{}, code)
}

func transactionFrom(ctx context.Context) string {
	code, _ := ctx.Value(transactionKey{}).(string)
	return code
}

// Ledger adds and removes balances from account assets.
// Apply followed by Revert of the same balance leaves the quantity unchanged;
// a slot created by Apply is not removed.
type Ledger struct {
	assets   domain.AssetStore
	recorder Recorder
	log      zerolog.Logger
}

// New creates a ledger over assets. recorder may be nil.
func New(assets domain.AssetStore, recorder Recorder, log zerolog.Logger) *Ledger {
	return &Ledger{
		assets:   assets,
		recorder: recorder,
		log:      log.With().Str("component", "ledger").Logger(),
	}
}

// Apply adds balance to the account's slot for its instrument, creating the slot if needed
func (l *Ledger) Apply(ctx context.Context, owner, account string, balance domain.Balance) error {
	code := balance.Instrument.Code

	exists, err := l.assets.HasAsset(ctx, owner, account, code)
	if err != nil {
		return err
	}

	if exists {
		err = l.assets.IncrementAsset(ctx, owner, account, code, balance.Quantity)
	} else {
		err = l.assets.AppendAsset(ctx, owner, account, balance)
	}
	if err != nil {
		return err
	}

	l.record(ctx, journal.KindApply, owner, account, balance.Instrument.Code, balance)
	return nil
}

// Revert subtracts balance from the account's slot. The slot must exist.
func (l *Ledger) Revert(ctx context.Context, owner, account string, balance domain.Balance) error {
	delta := balance.Quantity.Neg()
	if err := l.assets.IncrementAsset(ctx, owner, account, balance.Instrument.Code, delta); err != nil {
		return err
	}

	l.record(ctx, journal.KindRevert, owner, account, balance.Instrument.Code, domain.Balance{
		Instrument: balance.Instrument,
		Quantity:   delta,
	})
	return nil
}

// record journals a movement. The account is already updated, so failures are only logged.
func (l *Ledger) record(ctx context.Context, kind journal.Kind, owner, account, instrument string, delta domain.Balance) {
	if l.recorder == nil {
		return
	}

	_, err := l.recorder.Append(journal.Record{
		Kind:        kind,
		Owner:       owner,
		Account:     account,
		Instrument:  instrument,
		Quantity:    delta.Quantity,
		Transaction: transactionFrom(ctx),
	})
	if err != nil {
		l.log.Error().
			Err(err).
			Str("kind", string(kind)).
			Str("owner", owner).
			Str("account", account).
			Str("instrument", instrument).
			Msg("Failed to journal movement")
	}
}
