// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdiddy/citecheck/pkg/types"
)

func testRecord() *types.FetchedRecord {
	return &types.FetchedRecord{
		Source:  "arxiv",
		Title:   "Attention Is All You Need",
		Authors: []string{"Ashish Vaswani", "Noam Shazeer"},
		Year:    "2017",
		ArxivID: "1706.03762",
		URL:     "https://arxiv.org/abs/1706.03762",
	}
}

func TestStorePutGet(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	key := "arxiv|id|1706.03762"

	if err := s.Put(ctx, key, testRecord()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for a cached key")
	}
	if got.Title != "Attention Is All You Need" || got.Year != "2017" {
		t.Errorf("record = %+v", got)
	}
	if len(got.Authors) != 2 || got.Authors[1] != "Noam Shazeer" {
		t.Errorf("Authors = %v", got.Authors)
	}
}

func TestStoreGetMiss(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	got, err := s.Get(context.Background(), "crossref|doi|10.1/none")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected miss, got %+v", got)
	}
}

func TestStoreExpiry(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"), 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Put(ctx, "k", testRecord()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	time.Sleep(25 * time.Millisecond)

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected expired entry to miss, got %+v", got)
	}
}

func TestStoreZeroTTLKeepsEntries(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"), 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Put(ctx, "k", testRecord()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Error("zero TTL must never expire entries")
	}

	if n, err := s.Purge(ctx); err != nil || n != 0 {
		t.Errorf("Purge = %d, %v; want 0, nil", n, err)
	}
}

func TestStorePurge(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"), 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	for _, key := range []string{"a", "b"} {
		if err := s.Put(ctx, key, testRecord()); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	time.Sleep(25 * time.Millisecond)

	n, err := s.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n != 2 {
		t.Errorf("Purge removed %d rows, want 2", n)
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := Open(path, time.Hour)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Put(context.Background(), "k", testRecord()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	s.Close()

	s2, err := Open(path, time.Hour)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	got, err := s2.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.ArxivID != "1706.03762" {
		t.Errorf("record = %+v", got)
	}
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.db")

	s, err := Open(path, time.Hour)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file missing: %v", err)
	}
}
