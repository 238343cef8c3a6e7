package store

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

// newTestStore creates an in-memory store for testing.
func newTestStore(t *testing.T) Store {
	t.Helper()
	s, err := NewStore(StoreConfig{DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore(t *testing.T) {
	s, err := NewStore(StoreConfig{DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer s.Close()

	ss := s.(*SQLiteStore)
	for _, table := range []string{"preferences", "rolls", "meta"} {
		var name string
		err := ss.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}

	latest := strconv.Itoa(migrations[len(migrations)-1].version)
	v, err := ss.getMetaValue("schema_version")
	if err != nil || v != latest {
		t.Fatalf("schema_version = %q, %v", v, err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factdice.db")
	s1, err := Open(StoreConfig{DBPath: path})
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	ctx := context.Background()
	if err := s1.SetPreference(ctx, PrefTheme, "light"); err != nil {
		t.Fatalf("SetPreference: %v", err)
	}
	s1.Close()

	s2, err := Open(StoreConfig{DBPath: path})
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s2.Close()
	v, ok, err := s2.GetPreference(ctx, PrefTheme)
	if err != nil || !ok || v != "light" {
		t.Fatalf("theme after reopen = %q, %v, %v", v, ok, err)
	}
}

func TestPreferences(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.GetPreference(ctx, PrefTheme); err != nil || ok {
		t.Fatalf("unset preference: ok=%v err=%v", ok, err)
	}
	if err := s.SetPreference(ctx, PrefTheme, "dark"); err != nil {
		t.Fatalf("SetPreference: %v", err)
	}
	if err := s.SetPreference(ctx, PrefTheme, "light"); err != nil {
		t.Fatalf("SetPreference overwrite: %v", err)
	}
	v, ok, err := s.GetPreference(ctx, PrefTheme)
	if err != nil || !ok || v != "light" {
		t.Fatalf("got %q, %v, %v", v, ok, err)
	}
	if err := s.SetPreference(ctx, " ", "x"); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestAddAndListRolls(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rolls := []*Roll{
		{DiceValue: 2, Topic: "space", Facts: []string{"a", "b"}, Source: "fallback", Reason: "remote generation not configured"},
		{DiceValue: 1, Topic: "history", Facts: []string{"c"}, Source: "remote"},
		{DiceValue: 3, Topic: "space", Facts: []string{"d", "e", "f"}, Source: "local"},
	}
	for _, r := range rolls {
		id, err := s.AddRoll(ctx, r)
		if err != nil {
			t.Fatalf("AddRoll: %v", err)
		}
		if id == 0 || r.ID != id {
			t.Fatalf("unexpected id %d / %d", id, r.ID)
		}
	}

	all, err := s.ListRolls(ctx, ListOpts{})
	if err != nil {
		t.Fatalf("ListRolls: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d", len(all))
	}
	if all[0].Topic != "space" || all[0].Source != "local" || len(all[0].Facts) != 3 {
		t.Fatalf("newest roll wrong: %+v", all[0])
	}
	if all[2].Reason != "remote generation not configured" {
		t.Fatalf("reason not round-tripped: %+v", all[2])
	}
	if all[2].RolledAt.IsZero() {
		t.Fatal("rolled_at not set")
	}

	space, err := s.ListRolls(ctx, ListOpts{Topic: "space", Limit: 1})
	if err != nil {
		t.Fatalf("ListRolls topic: %v", err)
	}
	if len(space) != 1 || space[0].DiceValue != 3 {
		t.Fatalf("topic filter: %+v", space)
	}

	last, err := s.LastRoll(ctx)
	if err != nil || last == nil || last.Facts[2] != "f" {
		t.Fatalf("LastRoll: %+v, %v", last, err)
	}
}

func TestAddRollRejectsBadValues(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.AddRoll(ctx, &Roll{DiceValue: 7, Topic: "space", Source: "local"}); err == nil {
		t.Fatal("expected error for dice value 7")
	}
	if _, err := s.AddRoll(ctx, &Roll{DiceValue: 2, Topic: "space", Source: "psychic"}); err == nil {
		t.Fatal("expected CHECK constraint failure for unknown source")
	}
}

func TestLastRollEmpty(t *testing.T) {
	s := newTestStore(t)
	last, err := s.LastRoll(context.Background())
	if err != nil || last != nil {
		t.Fatalf("expected nil, nil; got %+v, %v", last, err)
	}
}

func TestStatsAndClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	s.AddRoll(ctx, &Roll{DiceValue: 4, Topic: "nature", Facts: []string{"a", "b", "c", "d"}, Source: "remote", RolledAt: now})
	s.AddRoll(ctx, &Roll{DiceValue: 2, Topic: "nature", Facts: []string{"e", "f"}, Source: "fallback", RolledAt: now})

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.RollCount != 2 || stats.FactsShown != 6 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.RollsByTopic["nature"] != 2 || stats.RollsBySource["fallback"] != 1 {
		t.Fatalf("unexpected groups: %+v", stats)
	}

	n, err := s.ClearRolls(ctx)
	if err != nil || n != 2 {
		t.Fatalf("ClearRolls: %d, %v", n, err)
	}
	stats, _ = s.Stats(ctx)
	if stats.RollCount != 0 || stats.FactsShown != 0 {
		t.Fatalf("rolls left after clear: %+v", stats)
	}
}

func TestStatsCountsShownFactsOnShortPool(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	// A six with only two facts available.
	if _, err := s.AddRoll(ctx, &Roll{DiceValue: 6, Topic: "space", Facts: []string{"a", "b"}, Source: "local", RolledAt: time.Now().UTC()}); err != nil {
		t.Fatalf("AddRoll: %v", err)
	}
	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.FactsShown != 2 {
		t.Fatalf("FactsShown = %d, want 2", stats.FactsShown)
	}
}

func TestOpenRejectsCorruptSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factdice.db")
	s, err := Open(StoreConfig{DBPath: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.db.Exec("UPDATE meta SET value = 'one' WHERE key = 'schema_version'"); err != nil {
		t.Fatalf("corrupting meta: %v", err)
	}
	s.Close()

	if _, err := Open(StoreConfig{DBPath: path}); err == nil {
		t.Fatal("expected error for corrupt schema version")
	}
}
