// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenJournal(JournalConfig{InMemory: true, Retention: time.Hour}, testLogger())
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournalBeginConfirm(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	ctx := context.Background()

	first, err := j.Begin(ctx, []Record{testRecord("a", 1)})
	if err != nil {
		t.Fatal(err)
	}
	second, err := j.Begin(ctx, []Record{testRecord("b", 2)})
	if err != nil {
		t.Fatal(err)
	}

	pending, err := j.Pending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 || pending[0].ID != first || pending[1].ID != second {
		t.Fatalf("pending = %+v", pending)
	}
	if len(pending[0].Records) != 1 || len(pending[0].Records[0].Embedding) != TextDim {
		t.Errorf("records not round-tripped: %+v", pending[0].Records)
	}

	if err := j.Confirm(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := j.Confirm(ctx, first); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("second confirm err = %v, want ErrEntryNotFound", err)
	}

	pending, err = j.Pending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ID != second {
		t.Errorf("pending after confirm = %+v", pending)
	}
}

func TestJournalCompact(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	ctx := context.Background()

	id, err := j.Begin(ctx, []Record{testRecord("a", 1)})
	if err != nil {
		t.Fatal(err)
	}
	if err := j.Confirm(ctx, id); err != nil {
		t.Fatal(err)
	}

	n, err := j.Compact(ctx, time.Now().Add(-time.Hour))
	if err != nil || n != 0 {
		t.Errorf("compact with old cutoff = %d, %v; want 0", n, err)
	}
	n, err = j.Compact(ctx, time.Now().Add(time.Minute))
	if err != nil || n != 1 {
		t.Errorf("compact with future cutoff = %d, %v; want 1", n, err)
	}
}

func TestJournalClosed(t *testing.T) {
	t.Parallel()

	j, err := OpenJournal(JournalConfig{InMemory: true}, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := j.Begin(context.Background(), nil); !errors.Is(err, ErrJournalClosed) {
		t.Errorf("Begin err = %v, want ErrJournalClosed", err)
	}
	if err := j.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestAddBatchConfirmsJournal(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	c := New(Options{Dir: t.TempDir(), Journal: j, Logger: testLogger()})
	if _, err := c.AddBatch(context.Background(), []Record{testRecord("a", 1)}); err != nil {
		t.Fatal(err)
	}
	pending, err := j.Pending(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0", len(pending))
	}
}

func TestAddBatchPersistFailureAbandonsJournal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j := openTestJournal(t)

	// A regular file where the data directory should be makes every write fail.
	blocked := filepath.Join(t.TempDir(), "catalog")
	if err := os.WriteFile(blocked, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	c := New(Options{Dir: blocked, Journal: j, Logger: testLogger()})
	res, err := c.AddBatch(ctx, []Record{testRecord("a", 1)})
	if err == nil {
		t.Fatal("AddBatch into a non-directory should fail")
	}
	if res.Added != 0 || c.Len() != 0 {
		t.Errorf("Added = %d, Len = %d after failure", res.Added, c.Len())
	}

	pending, err := j.Pending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0", len(pending))
	}

	// Nothing is replayed later and the same record can be retried.
	dir := t.TempDir()
	restarted := newDiskCatalog(t, dir, j)
	if restarted.Len() != 0 {
		t.Errorf("Len after Load = %d, want 0", restarted.Len())
	}
	if res, err := restarted.AddBatch(ctx, []Record{testRecord("a", 1)}); err != nil || res.Added != 1 {
		t.Errorf("retry = %+v, %v", res, err)
	}
}

func TestJournalAbandon(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j := openTestJournal(t)
	id, err := j.Begin(ctx, []Record{testRecord("a", 1)})
	if err != nil {
		t.Fatal(err)
	}
	if err := j.Abandon(ctx, id); err != nil {
		t.Fatalf("Abandon: %v", err)
	}
	if err := j.Abandon(ctx, id); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("second Abandon = %v, want ErrEntryNotFound", err)
	}
	if err := j.Confirm(ctx, id); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Confirm after Abandon = %v, want ErrEntryNotFound", err)
	}
}

func TestLoadReplaysPendingBatches(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j := openTestJournal(t)
	ctx := context.Background()

	c := newDiskCatalog(t, dir, j)
	if _, err := c.AddBatch(ctx, []Record{testRecord("a", 1)}); err != nil {
		t.Fatal(err)
	}

	// A batch that was journaled but never reached disk, plus one that
	// repeats an id already stored.
	if _, err := j.Begin(ctx, []Record{testRecord("b", 2), testRecord("c", 3)}); err != nil {
		t.Fatal(err)
	}
	if _, err := j.Begin(ctx, []Record{testRecord("a", 4)}); err != nil {
		t.Fatal(err)
	}

	restarted := newDiskCatalog(t, dir, j)
	if restarted.Len() != 3 {
		t.Fatalf("Len = %d, want 3", restarted.Len())
	}
	pending, err := j.Pending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after replay = %d", len(pending))
	}

	// Replay was persisted, so a plain reload sees it too.
	plain := newDiskCatalog(t, dir, nil)
	if plain.Len() != 3 {
		t.Errorf("reload without journal Len = %d, want 3", plain.Len())
	}
}
