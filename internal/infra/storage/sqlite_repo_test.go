package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/bagelworks/bageltycoon/server/internal/domain/catalog"
	"github.com/bagelworks/bageltycoon/server/internal/domain/game"
)

func newTestRepo(t *testing.T) *SQLiteStateRepository {
	t.Helper()
	db, err := InitSQLite(filepath.Join(t.TempDir(), "shop.db"))
	if err != nil {
		t.Fatalf("init sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStateRepository(db, DefaultSlot)
}

func TestLoadMissingSaveReturnsNil(t *testing.T) {
	repo := newTestRepo(t)
	state, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load on empty slot: %v", err)
	}
	if state != nil {
		t.Errorf("expected nil state for a missing save, got %+v", state)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	s := game.NewDefaultState()
	s.Currency = 1234.56
	s.LifetimeEarnings = 9876.5
	s.RegisterAutomated = true
	s.PrestigeLevel = 2
	s.CustomerQueue = []string{"Ada#1", "Boris#2"}
	s.Stations[catalog.StationBagels].EquipmentLevel = 4
	s.Stations[catalog.StationBagels].HasManager = true
	food := catalog.FoodRecipes()[0].Clone()
	bev := catalog.BeverageRecipes()[0].Clone()
	s.ActiveOrder = &game.Order{
		ID: "order-7", Customer: "Ada#1",
		Food: food, Beverage: &bev,
		CreatedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		TotalTime: 12, RemainingTime: 7.3,
		Stations: []string{catalog.StationBagels, catalog.StationBeverages},
	}
	s.SalesHistory = []game.SaleRecord{{
		ID: "order-6", Name: "Fresh Bagel", SpeedTier: game.TierNormal,
		QualityMult: 1.24, FinalPrice: 3.72,
		CompletedAt: time.Date(2026, 3, 1, 7, 59, 0, 0, time.UTC),
	}}

	if err := repo.Save(context.Background(), s); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded == nil {
		t.Fatalf("load returned nil after save")
	}

	want, _ := json.Marshal(s)
	got, _ := json.Marshal(loaded)
	if string(want) != string(got) {
		t.Errorf("round trip diverged:\nwant %s\ngot  %s", want, got)
	}
}

func TestSaveOverwritesPreviousSnapshot(t *testing.T) {
	repo := newTestRepo(t)

	s := game.NewDefaultState()
	s.Currency = 1
	if err := repo.Save(context.Background(), s); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Currency = 2
	if err := repo.Save(context.Background(), s); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Currency != 2 {
		t.Errorf("loaded currency = %v, want the latest save", loaded.Currency)
	}
}

func TestClearRemovesSave(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.Save(context.Background(), game.NewDefaultState()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	state, err := repo.Load(context.Background())
	if err != nil || state != nil {
		t.Errorf("expected empty slot after clear, state=%v err=%v", state, err)
	}

	// Clearing an already empty slot is not an error.
	if err := repo.Clear(context.Background()); err != nil {
		t.Errorf("clear on empty slot: %v", err)
	}
}

func TestLoadCorruptPayloadReturnsError(t *testing.T) {
	db, err := InitSQLite(filepath.Join(t.TempDir(), "shop.db"))
	if err != nil {
		t.Fatalf("init sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := NewSQLiteStateRepository(db, DefaultSlot)

	if _, err := db.Exec(
		`INSERT INTO save_slots (slot, payload, updated_at) VALUES (?, ?, ?)`,
		DefaultSlot, "]]garbage[[", time.Now(),
	); err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}

	if _, err := repo.Load(context.Background()); err == nil {
		t.Errorf("load of a corrupt payload must return an error")
	}
}

func TestLoadNormalizesLegacyPayload(t *testing.T) {
	// A payload written before a station existed must come back with that
	// station present and locked.
	db, err := InitSQLite(filepath.Join(t.TempDir(), "shop.db"))
	if err != nil {
		t.Fatalf("init sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := NewSQLiteStateRepository(db, DefaultSlot)

	legacy := `{"currency": 42, "stations": {"bagels": {"id":"bagels","unlocked":true,"equipment_level":2,"quality_level":1,"storage_level":1,"ingredients":["plain"]}}}`
	if _, err := db.Exec(
		`INSERT INTO save_slots (slot, payload, updated_at) VALUES (?, ?, ?)`,
		DefaultSlot, legacy, time.Now(),
	); err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}

	loaded, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Currency != 42 {
		t.Errorf("currency = %v, want 42", loaded.Currency)
	}
	if len(loaded.Stations) != len(catalog.Stations()) {
		t.Errorf("legacy load must backfill missing stations, got %d", len(loaded.Stations))
	}
	if st := loaded.Stations[catalog.StationBeverages]; st == nil || st.Unlocked {
		t.Errorf("backfilled station must exist and stay locked")
	}
}
