package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/redis/go-redis/v9"

	"github.com/nao1215/shopaudit/internal/model"
)

// newResult returns a small audit result for url.
func newResult(url string, score int) *model.AuditResult {
	return &model.AuditResult{
		URL:       url,
		Timestamp: time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
		Score:     score,
		Summary:   model.AuditSummary{Passed: 24, Warnings: 1},
		Issues: []model.SEOIssue{{
			ID: "title-too-long", Category: model.CategoryMetaTags, Title: "Title too long",
			Description: "The title is 80 characters long.", Severity: model.SeverityWarning, Impact: model.ImpactMedium,
		}},
		ActionPlan: []model.ActionPlanItem{{
			Priority: model.PriorityMedium, Title: "Title too long", Description: "Shorten it.",
			Timeframe: "within two weeks", Difficulty: model.DifficultyMedium,
		}},
	}
}

// setupTestDB creates a temporary SQLite database for testing.
func setupTestDB(t *testing.T) *AuditDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// setupRedis creates a RedisStore backed by miniredis.
func setupRedis(t *testing.T) *RedisStore {
	t.Helper()

	mr := miniredis.RunT(t)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// stores returns one fresh instance of every Store implementation.
func stores(t *testing.T) map[string]Store {
	t.Helper()

	memory := NewMemoryStore()
	t.Cleanup(func() { _ = memory.Close() })
	return map[string]Store{
		"memory": memory,
		"sqlite": setupTestDB(t),
		"redis":  setupRedis(t),
	}
}

var ignoreSavedAt = cmpopts.IgnoreFields(model.StoredAudit{}, "SavedAt")

// TestStoreContract runs the same behavior checks against every store.
func TestStoreContract(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			t.Run("save and get", func(t *testing.T) {
				result := newResult("https://a.example", 80)
				saved, err := store.Save(ctx, result)
				if err != nil {
					t.Fatalf("Save: %v", err)
				}
				if saved.ID <= 0 {
					t.Errorf("expected positive id, got %d", saved.ID)
				}
				if saved.SavedAt.IsZero() {
					t.Error("expected save time")
				}

				got, err := store.GetByID(ctx, saved.ID)
				if err != nil {
					t.Fatalf("GetByID: %v", err)
				}
				if diff := cmp.Diff(saved, got, ignoreSavedAt); diff != "" {
					t.Errorf("stored audit mismatch (-saved +got):\n%s", diff)
				}
				if !got.SavedAt.Equal(saved.SavedAt) {
					t.Errorf("SavedAt = %v, want %v", got.SavedAt, saved.SavedAt)
				}
				if diff := cmp.Diff(*result, got.AuditResult); diff != "" {
					t.Errorf("embedded result mismatch (-want +got):\n%s", diff)
				}
			})

			t.Run("input is not aliased", func(t *testing.T) {
				result := newResult("https://alias.example", 50)
				saved, err := store.Save(ctx, result)
				if err != nil {
					t.Fatal(err)
				}
				result.Issues[0].Title = "changed"
				saved.Issues[0].Title = "changed too"

				got, err := store.GetByID(ctx, saved.ID)
				if err != nil {
					t.Fatal(err)
				}
				if got.Issues[0].Title != "Title too long" {
					t.Errorf("stored copy was mutated: %q", got.Issues[0].Title)
				}
			})

			t.Run("unknown id", func(t *testing.T) {
				if _, err := store.GetByID(ctx, 999999); !errors.Is(err, ErrNotFound) {
					t.Errorf("expected ErrNotFound, got %v", err)
				}
			})

			t.Run("nil result", func(t *testing.T) {
				if _, err := store.Save(ctx, nil); !errors.Is(err, ErrNilResult) {
					t.Errorf("expected ErrNilResult, got %v", err)
				}
			})
		})
	}
}

// TestStoreRecent tests ordering, limits and ids of GetRecent and History.
func TestStoreRecent(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			if recent, err := store.GetRecent(ctx, 5); err != nil || len(recent) != 0 {
				t.Fatalf("empty store: %v, %v", recent, err)
			}

			var ids []int64
			for i := range 12 {
				url := "https://even.example"
				if i%2 == 1 {
					url = "https://odd.example"
				}
				saved, err := store.Save(ctx, newResult(url, i))
				if err != nil {
					t.Fatal(err)
				}
				if len(ids) > 0 && saved.ID <= ids[len(ids)-1] {
					t.Errorf("ids must increase: %d after %d", saved.ID, ids[len(ids)-1])
				}
				ids = append(ids, saved.ID)
			}

			recent, err := store.GetRecent(ctx, 0)
			if err != nil {
				t.Fatal(err)
			}
			if len(recent) != DefaultRecentLimit {
				t.Fatalf("limit 0 returned %d audits, want %d", len(recent), DefaultRecentLimit)
			}
			for i, a := range recent {
				if want := ids[len(ids)-1-i]; a.ID != want {
					t.Errorf("recent[%d].ID = %d, want %d", i, a.ID, want)
				}
			}

			if recent, _ := store.GetRecent(ctx, 3); len(recent) != 3 || recent[0].Score != 11 {
				t.Errorf("GetRecent(3) = %d audits, first score %d", len(recent), recent[0].Score)
			}
			if recent, _ := store.GetRecent(ctx, 100); len(recent) != 12 {
				t.Errorf("GetRecent(100) = %d audits, want 12", len(recent))
			}

			history, err := store.History(ctx, "https://odd.example", 2)
			if err != nil {
				t.Fatal(err)
			}
			var scores []int
			for _, a := range history {
				scores = append(scores, a.Score)
			}
			if diff := cmp.Diff([]int{11, 9}, scores); diff != "" {
				t.Errorf("history mismatch (-want +got):\n%s", diff)
			}

			if none, _ := store.History(ctx, "https://never.example", 0); len(none) != 0 {
				t.Errorf("expected no history, got %d", len(none))
			}
		})
	}
}

// TestMemoryStore_ConcurrentSave tests that concurrent saves get distinct ids.
func TestMemoryStore_ConcurrentSave(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	var wg sync.WaitGroup
	ids := make([]int64, 50)
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			saved, err := store.Save(context.Background(), newResult(fmt.Sprintf("https://%d.example", i), i))
			if err != nil {
				t.Error(err)
				return
			}
			ids[i] = saved.ID
		}()
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if recent, _ := store.GetRecent(context.Background(), 100); len(recent) != len(ids) {
		t.Errorf("stored %d audits, want %d", len(recent), len(ids))
	}
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("Path() = %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("reopen keeps audits", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		saved, err := db.Save(context.Background(), newResult("https://keep.example", 70))
		if err != nil {
			t.Fatal(err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()

		got, err := db.GetByID(context.Background(), saved.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.URL != "https://keep.example" || got.Score != 70 {
			t.Errorf("unexpected audit %+v", got)
		}
		urls, err := db.ListAuditedURLs(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"https://keep.example"}, urls); diff != "" {
			t.Errorf("urls mismatch (-want +got):\n%s", diff)
		}
	})
}

// TestOpenRedis tests connecting through a URL.
func TestOpenRedis(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	store, err := OpenRedis(context.Background(), "redis://"+mr.Addr()+"/0", WithKeyPrefix("test:"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	saved, err := store.Save(context.Background(), newResult("https://r.example", 90))
	if err != nil {
		t.Fatal(err)
	}
	if !mr.Exists(fmt.Sprintf("test:audit:%d", saved.ID)) {
		t.Error("expected the prefixed key to exist")
	}

	if _, err := OpenRedis(context.Background(), "not a url"); err == nil {
		t.Error("expected error for invalid url")
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, s := range []string{"2026-01-02T03:04:05Z", "2026-01-02 03:04:05", "2026-01-02T03:04:05"} {
		if got := parseTimestamp(s); !got.Equal(want) {
			t.Errorf("parseTimestamp(%q) = %v", s, got)
		}
	}
	if !parseTimestamp("garbage").IsZero() {
		t.Error("expected zero time")
	}
}
