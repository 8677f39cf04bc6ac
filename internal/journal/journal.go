// Package journal keeps an append-only log of every balance movement applied
// to or reverted from an account.
package journal

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/gowal"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	keyPrefix        = "movement_"
	segmentThreshold = 1000
	maxSegments      = 100
)

// Kind tells whether a movement was applied or reverted
type Kind string

const (
	KindApply  Kind = "apply"
	KindRevert Kind = "revert"
)

// Record is one balance movement. Quantity is the signed delta written to the account.
type Record struct {
	ID          string          `json:"id" msgpack:"id"`
	Kind        Kind            `json:"kind" msgpack:"kind"`
	Owner       string          `json:"owner" msgpack:"owner"`
	Account     string          `json:"account" msgpack:"account"`
	Instrument  string          `json:"instrument" msgpack:"instrument"`
	Quantity    decimal.Decimal `json:"quantity" msgpack:"quantity"`
	Transaction string          `json:"transaction,omitempty" msgpack:"transaction,omitempty"`
	Time        time.Time       `json:"time" msgpack:"time"`
}

// Entry is a record with its position in the journal
type Entry struct {
	Index  uint64 `json:"index"`
	Record Record `json:"record"`
}

// Config holds journal settings
type Config struct {
	Dir        string
	SyncToDisk bool
}

// Journal is a WAL-backed movement log. It is safe for concurrent use.
type Journal struct {
	wal *gowal.Wal
	mu  sync.RWMutex
	now func() time.Time
	log zerolog.Logger
}

// Open opens or creates the journal under cfg.Dir
func Open(cfg Config, log zerolog.Logger) (*Journal, error) {
	if cfg.Dir == "" {
		return nil, errors.New("journal directory is required")
	}

	wal, err := gowal.NewWAL(gowal.Config{
		Dir:              cfg.Dir,
		Prefix:           "journal_",
		SegmentThreshold: segmentThreshold,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: cfg.SyncToDisk,
	})
	if err != nil {
		return nil, errors.Wrap(err, "init settlement journal")
	}

	j := &Journal{
		wal: wal,
		now: time.Now,
		log: log.With().Str("component", "journal").Logger(),
	}
	j.log.Info().Str("dir", cfg.Dir).Uint64("index", wal.CurrentIndex()).Msg("Journal opened")
	return j, nil
}

// Append writes a record and returns its index. ID and Time are filled in when empty.
func (j *Journal) Append(rec Record) (uint64, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Time.IsZero() {
		rec.Time = j.now().UTC()
	}

	payload, err := msgpack.Marshal(&rec)
	if err != nil {
		return 0, errors.Wrap(err, "encode journal record")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	index := j.wal.CurrentIndex() + 1
	if err := j.wal.Write(index, keyPrefix+rec.ID, payload); err != nil {
		return 0, errors.Wrapf(err, "write journal record %d", index)
	}
	return index, nil
}

// After returns up to limit entries written after index, oldest first.
// A limit of zero or less returns everything.
func (j *Journal) After(index uint64, limit int) ([]Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	current := j.wal.CurrentIndex()
	if current <= index {
		return []Entry{}, nil
	}

	entries := make([]Entry, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		if limit > 0 && len(entries) >= limit {
			break
		}
		key, payload, err := j.wal.Get(idx)
		if err != nil {
			return nil, errors.Wrapf(err, "read journal record %d", idx)
		}
		if payload == nil || !strings.HasPrefix(key, keyPrefix) {
			continue
		}
		var rec Record
		if err := msgpack.Unmarshal(payload, &rec); err != nil {
			return nil, errors.Wrapf(err, "decode journal record %d", idx)
		}
		entries = append(entries, Entry{Index: idx, Record: rec})
	}

	return entries, nil
}

// CurrentIndex returns the index of the last written record
func (j *Journal) CurrentIndex() uint64 {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.wal.CurrentIndex()
}

// Close closes the underlying WAL
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.wal.Close()
}
