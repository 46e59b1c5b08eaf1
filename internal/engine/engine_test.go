package engine

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/bagelworks/bageltycoon/server/internal/domain/catalog"
	"github.com/bagelworks/bageltycoon/server/internal/domain/game"
	"github.com/bagelworks/bageltycoon/server/internal/infra/storage"
)

func TestSubscribeDeliversImmediatelyAndOnMutation(t *testing.T) {
	e := newTestEngine(richState())

	var calls int
	var last *game.State
	unsubscribe := e.Subscribe(func(s *game.State) {
		calls++
		last = s
	})

	if calls != 1 {
		t.Fatalf("subscribe must deliver the initial snapshot immediately, calls=%d", calls)
	}

	if !e.UpgradeStation(catalog.StationBagels, UpgradeEquipment) {
		t.Fatalf("upgrade should succeed")
	}
	if calls != 2 {
		t.Errorf("successful mutation must broadcast once, calls=%d", calls)
	}
	if last.Stations[catalog.StationBagels].EquipmentLevel != 2 {
		t.Errorf("broadcast snapshot is stale")
	}

	// A rejected operation must not broadcast.
	e.UnlockStation("walk_in_freezer")
	if calls != 2 {
		t.Errorf("failed mutation must not broadcast, calls=%d", calls)
	}

	unsubscribe()
	e.UpgradeStation(catalog.StationBagels, UpgradeEquipment)
	if calls != 2 {
		t.Errorf("unsubscribed callback still invoked, calls=%d", calls)
	}
}

func TestBroadcastSnapshotsAreIndependent(t *testing.T) {
	e := newTestEngine(richState())

	var received *game.State
	e.Subscribe(func(s *game.State) { received = s })

	// Vandalize the received copy; the engine must not notice.
	received.Currency = -1
	received.Stations[catalog.StationBagels].Ingredients[0] = "tampered"

	got := e.Snapshot()
	if got.Currency == -1 || got.Stations[catalog.StationBagels].Ingredients[0] == "tampered" {
		t.Errorf("subscriber mutation leaked into engine state")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	e := newTestEngine(richState())
	snap := e.Snapshot()
	snap.Stations[catalog.StationBagels].EquipmentLevel = 99
	snap.CustomerQueue = append(snap.CustomerQueue, "tampered")

	if e.Snapshot().Stations[catalog.StationBagels].EquipmentLevel == 99 {
		t.Errorf("snapshot shares station structs with engine state")
	}
	if len(e.Snapshot().CustomerQueue) != 0 {
		t.Errorf("snapshot shares queue with engine state")
	}
}

func TestTickCountdownAndCompletion(t *testing.T) {
	s := richState()
	s.Currency = 0
	e := newTestEngine(s)
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return base }

	food := catalog.FoodRecipes()[0].Clone()
	e.mu.Lock()
	e.state.ActiveOrder = &game.Order{
		ID: "order-1", Customer: "A", Food: food,
		CreatedAt: base.Add(-2 * time.Second),
		TotalTime: 4, RemainingTime: 0.05,
		Stations: append([]string(nil), food.Stations...),
	}
	e.mu.Unlock()

	e.Tick()

	got := e.Snapshot()
	if got.ActiveOrder != nil {
		t.Fatalf("order should complete once the countdown reaches zero")
	}
	if got.Currency <= 0 {
		t.Errorf("completion did not credit the till")
	}
	if len(got.SalesHistory) != 1 {
		t.Errorf("completion did not record the sale")
	}
}

func TestTickDecrementsByInterval(t *testing.T) {
	s := richState()
	e := newTestEngine(s)
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return base }

	food := catalog.FoodRecipes()[0].Clone()
	e.mu.Lock()
	e.state.ActiveOrder = &game.Order{
		ID: "order-1", Customer: "A", Food: food,
		CreatedAt: base, TotalTime: 4, RemainingTime: 4,
		Stations: append([]string(nil), food.Stations...),
	}
	e.mu.Unlock()

	e.Tick()

	o := e.Snapshot().ActiveOrder
	want := 4 - e.cfg.TickInterval.Seconds()
	if o == nil || !approx(o.RemainingTime, want) {
		t.Errorf("remaining after one tick = %+v, want %v", o, want)
	}
}

func TestAutoTakeRequiresAutomation(t *testing.T) {
	s := richState()
	unlockAll(s)
	s.CustomerQueue = []string{"A"}
	e := newTestEngine(s)
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return base }

	e.Tick()
	if e.Snapshot().ActiveOrder != nil {
		t.Fatalf("tick took an order without register automation")
	}

	e.mu.Lock()
	e.state.RegisterAutomated = true
	e.mu.Unlock()

	e.Tick()
	got := e.Snapshot()
	if got.ActiveOrder == nil || got.ActiveOrder.Customer != "A" {
		t.Errorf("automated register did not take the waiting order")
	}
}

func TestSpawningDelayIntervalAndCap(t *testing.T) {
	e := newTestEngine(richState())
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	now := base
	e.now = func() time.Time { return now }

	// Not enabled yet: ticks spawn nothing.
	e.Tick()
	if n := len(e.Snapshot().CustomerQueue); n != 0 {
		t.Fatalf("spawned before EnableSpawning, queue=%d", n)
	}

	e.EnableSpawning()

	// Inside the initial delay: still nothing.
	now = base.Add(e.cfg.SpawnInitialDelay / 2)
	e.Tick()
	if n := len(e.Snapshot().CustomerQueue); n != 0 {
		t.Fatalf("spawned inside the initial delay, queue=%d", n)
	}

	// Past the initial delay: exactly one arrival.
	now = base.Add(e.cfg.SpawnInitialDelay)
	e.Tick()
	if n := len(e.Snapshot().CustomerQueue); n != 1 {
		t.Fatalf("expected first customer, queue=%d", n)
	}

	// An immediate re-tick is inside the spawn interval.
	e.Tick()
	if n := len(e.Snapshot().CustomerQueue); n != 1 {
		t.Fatalf("spawned again inside the interval, queue=%d", n)
	}

	// Keep ticking past the interval; the queue never exceeds its cap.
	for i := 0; i < 12; i++ {
		now = now.Add(e.cfg.SpawnInterval)
		e.Tick()
		if n := len(e.Snapshot().CustomerQueue); n > catalog.QueueCap {
			t.Fatalf("queue length %d exceeds cap %d", n, catalog.QueueCap)
		}
	}
	if n := len(e.Snapshot().CustomerQueue); n != catalog.QueueCap {
		t.Errorf("queue should fill to its cap, got %d", n)
	}
}

func stateJSON(t *testing.T, s *game.State) string {
	t.Helper()
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}
	return string(b)
}

func TestSaveLoadRoundTripThroughFreshEngine(t *testing.T) {
	db, err := storage.InitSQLite(filepath.Join(t.TempDir(), "shop.db"))
	if err != nil {
		t.Fatalf("init sqlite: %v", err)
	}
	defer db.Close()
	repo := storage.NewSQLiteStateRepository(db, storage.DefaultSlot)

	s := richState()
	unlockAll(s)
	s.CustomerQueue = []string{"Ada#1", "Boris#2"}
	s.SalesHistory = []game.SaleRecord{{
		ID: "order-1", Name: "Fresh Bagel", SpeedTier: game.TierGood,
		QualityMult: 1.12, FinalPrice: 4.03,
		CompletedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}}
	s.LastSpawnAt = time.Date(2026, 3, 1, 8, 1, 0, 0, time.UTC)

	cfg := DefaultConfig()
	cfg.DisableScheduler = true
	cfg.Seed = 42
	cfg.Initial = s
	cfg.Repo = repo
	e1 := New(cfg)
	if !e1.TakeOrder() {
		t.Fatalf("take should succeed")
	}
	e1.Save()
	saved := e1.Snapshot()

	cfg2 := DefaultConfig()
	cfg2.DisableScheduler = true
	cfg2.Seed = 42
	cfg2.Repo = repo
	e2 := New(cfg2)
	loaded := e2.Snapshot()

	if stateJSON(t, saved) != stateJSON(t, loaded) {
		t.Errorf("round trip diverged:\nsaved:  %s\nloaded: %s", stateJSON(t, saved), stateJSON(t, loaded))
	}
}

func TestCorruptSaveFallsBackToDefaults(t *testing.T) {
	db, err := storage.InitSQLite(filepath.Join(t.TempDir(), "shop.db"))
	if err != nil {
		t.Fatalf("init sqlite: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(
		`INSERT INTO save_slots (slot, payload, updated_at) VALUES (?, ?, ?)`,
		storage.DefaultSlot, "{not json", time.Now(),
	); err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}

	cfg := DefaultConfig()
	cfg.DisableScheduler = true
	cfg.Repo = storage.NewSQLiteStateRepository(db, storage.DefaultSlot)
	e := New(cfg)

	got := e.Snapshot()
	if got.Currency != catalog.StartingCurrency {
		t.Errorf("corrupt save must fall back to defaults, currency=%v", got.Currency)
	}
}

func TestCloseStopsSchedulerAndSaves(t *testing.T) {
	db, err := storage.InitSQLite(filepath.Join(t.TempDir(), "shop.db"))
	if err != nil {
		t.Fatalf("init sqlite: %v", err)
	}
	defer db.Close()
	repo := storage.NewSQLiteStateRepository(db, storage.DefaultSlot)

	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.Repo = repo
	cfg.TickInterval = time.Millisecond
	e := New(cfg)
	e.Close()
	e.Close() // idempotent

	loaded, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load after close: %v", err)
	}
	if loaded == nil {
		t.Fatalf("Close must write a final save")
	}
}
