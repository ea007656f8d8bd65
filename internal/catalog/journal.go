// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// JournalConfig configures the batch journal.
type JournalConfig struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps the journal in RAM (tests only).
	InMemory bool

	// SyncWrites fsyncs every journal write.
	SyncWrites bool

	// Compression enables Snappy compression of journal values.
	Compression bool

	// Retention is how long confirmed entries are kept before compaction
	// removes them.
	Retention time.Duration

	// CloseTimeout bounds how long Close waits for badger.
	CloseTimeout time.Duration
}

// DefaultJournalConfig returns production defaults.
func DefaultJournalConfig() JournalConfig {
	return JournalConfig{
		Path:         "data/journal",
		SyncWrites:   true,
		Compression:  true,
		Retention:    24 * time.Hour,
		CloseTimeout: 30 * time.Second,
	}
}

// JournalEntry is one catalog batch recorded before it is applied.
type JournalEntry struct {
	ID          string     `json:"id"`
	Records     []Record   `json:"records"`
	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

const (
	prefixPending   = "pending:"
	prefixConfirmed = "confirmed:"
)

// Journal is a badger-backed write-ahead record of catalog batches. A batch is
// written as pending before the catalog touches its artifacts and confirmed
// once all three artifacts are on disk, so a crash in between is repaired by
// replaying pending batches on the next Load.
type Journal struct {
	db     *badger.DB
	config JournalConfig
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// OpenJournal opens (or creates) the journal.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func OpenJournal(cfg JournalConfig, logger zerolog.Logger) (*Journal, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("journal path is required")
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	if cfg.Compression {
		opts.Compression = options.Snappy
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	logger = logger.With().Str("component", "catalog-journal").Logger()
	logger.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("Journal opened")

	return &Journal{db: db, config: cfg, logger: logger}, nil
}

func (j *Journal) isClosed() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.closed
}

// Begin records a batch as pending and returns its entry id. Ids are UUIDv7,
// so key order is creation order.
func (j *Journal) Begin(ctx context.Context, records []Record) (string, error) {
	if j.isClosed() {
		return "", ErrJournalClosed
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate entry id: %w", err)
	}
	entry := JournalEntry{ID: id.String(), Records: records, CreatedAt: time.Now().UTC()}
	data, err := json.Marshal(&entry)
	if err != nil {
		return "", fmt.Errorf("marshal entry: %w", err)
	}

	err = j.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefixPending+entry.ID), data)
	})
	if err != nil {
		return "", fmt.Errorf("write pending entry: %w", err)
	}
	return entry.ID, nil
}

// Confirm moves an entry from pending to confirmed in one transaction.
func (j *Journal) Confirm(ctx context.Context, id string) error {
	if j.isClosed() {
		return ErrJournalClosed
	}
	if id == "" {
		return ErrEntryNotFound
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	pendingKey := []byte(prefixPending + id)
	return j.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(pendingKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrEntryNotFound
		}
		if err != nil {
			return fmt.Errorf("get pending entry: %w", err)
		}

		var entry JournalEntry
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &entry) }); err != nil {
			return fmt.Errorf("unmarshal entry: %w", err)
		}
		now := time.Now().UTC()
		entry.ConfirmedAt = &now
		// The confirmed copy only needs to prove the batch happened.
		entry.Records = nil

		data, err := json.Marshal(&entry)
		if err != nil {
			return fmt.Errorf("marshal confirmed entry: %w", err)
		}
		if err := txn.Set([]byte(prefixConfirmed+id), data); err != nil {
			return fmt.Errorf("set confirmed entry: %w", err)
		}
		if err := txn.Delete(pendingKey); err != nil {
			return fmt.Errorf("delete pending entry: %w", err)
		}
		return nil
	})
}

// Abandon drops a pending entry whose batch was rejected, so Load does not
// replay it.
func (j *Journal) Abandon(ctx context.Context, id string) error {
	if j.isClosed() {
		return ErrJournalClosed
	}
	if id == "" {
		return ErrEntryNotFound
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	pendingKey := []byte(prefixPending + id)
	return j.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(pendingKey); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrEntryNotFound
		} else if err != nil {
			return fmt.Errorf("get pending entry: %w", err)
		}
		if err := txn.Delete(pendingKey); err != nil {
			return fmt.Errorf("delete pending entry: %w", err)
		}
		return nil
	})
}

// Pending returns unconfirmed entries oldest first.
func (j *Journal) Pending(ctx context.Context) ([]JournalEntry, error) {
	if j.isClosed() {
		return nil, ErrJournalClosed
	}

	var entries []JournalEntry
	err := j.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixPending)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var entry JournalEntry
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &entry) }); err != nil {
				j.logger.Warn().Err(err).Str("key", string(item.Key())).Msg("Skipping unreadable journal entry")
				continue
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate pending entries: %w", err)
	}
	return entries, nil
}

// Compact deletes confirmed entries confirmed before cutoff and runs value
// log GC. It returns the number of deleted entries.
func (j *Journal) Compact(ctx context.Context, cutoff time.Time) (int, error) {
	if j.isClosed() {
		return 0, ErrJournalClosed
	}

	var stale [][]byte
	err := j.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixConfirmed)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var entry JournalEntry
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &entry) }); err != nil {
				stale = append(stale, item.KeyCopy(nil))
				continue
			}
			if entry.ConfirmedAt == nil || entry.ConfirmedAt.Before(cutoff) {
				stale = append(stale, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan confirmed entries: %w", err)
	}

	if len(stale) > 0 {
		wb := j.db.NewWriteBatch()
		defer wb.Cancel()
		for _, key := range stale {
			if err := wb.Delete(key); err != nil {
				return 0, fmt.Errorf("delete confirmed entry: %w", err)
			}
		}
		if err := wb.Flush(); err != nil {
			return 0, fmt.Errorf("flush deletes: %w", err)
		}
	}

	if !j.config.InMemory {
		for {
			err := j.db.RunValueLogGC(0.5)
			if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
				break
			}
			if err != nil {
				return len(stale), fmt.Errorf("value log gc: %w", err)
			}
		}
	}

	if len(stale) > 0 {
		j.logger.Debug().Int("deleted", len(stale)).Msg("Journal compacted")
	}
	return len(stale), nil
}

// Retention returns the configured confirmed-entry retention.
func (j *Journal) Retention() time.Duration {
	return j.config.Retention
}

// Close closes badger, giving up after CloseTimeout.
func (j *Journal) Close() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return nil
	}
	j.closed = true
	j.mu.Unlock()

	timeout := j.config.CloseTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	done := make(chan error, 1)
	go func() { done <- j.db.Close() }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("close badger: %w", err)
		}
		j.logger.Info().Msg("Journal closed")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("close badger: timed out after %v", timeout)
	}
}
