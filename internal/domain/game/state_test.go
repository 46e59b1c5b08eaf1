package game

import (
	"testing"
	"time"

	"github.com/bagelworks/bageltycoon/server/internal/domain/catalog"
)

func TestNewDefaultState(t *testing.T) {
	s := NewDefaultState()

	if s.Currency != catalog.StartingCurrency {
		t.Errorf("starting currency = %v, want %v", s.Currency, catalog.StartingCurrency)
	}
	if len(s.Stations) != len(catalog.Stations()) {
		t.Fatalf("expected a station entry per catalog id, got %d", len(s.Stations))
	}
	for _, def := range catalog.Stations() {
		st := s.Stations[def.ID]
		if st == nil {
			t.Fatalf("missing station %q", def.ID)
		}
		if st.EquipmentLevel != 1 || st.QualityLevel != 1 || st.StorageLevel != 1 {
			t.Errorf("station %q not at baseline levels", def.ID)
		}
		if def.StartsUnlocked {
			if !st.Unlocked || len(st.Ingredients) != len(def.DefaultIngredients) {
				t.Errorf("station %q should start unlocked with its defaults", def.ID)
			}
		} else {
			if st.Unlocked || len(st.Ingredients) != 0 {
				t.Errorf("locked station %q must start empty", def.ID)
			}
		}
	}
	if s.ActiveOrder != nil || len(s.CustomerQueue) != 0 || len(s.SalesHistory) != 0 {
		t.Errorf("fresh state must have no order, queue, or history")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := NewDefaultState()
	bev := catalog.BeverageRecipes()[0]
	s.CustomerQueue = []string{"Ada#1"}
	s.SalesHistory = []SaleRecord{{ID: "sale-1", Name: "Fresh Bagel", FinalPrice: 3}}
	s.ActiveOrder = &Order{
		ID:        "order-1",
		Customer:  "Boris#2",
		Food:      catalog.FoodRecipes()[0].Clone(),
		Beverage:  &bev,
		CreatedAt: time.Now(),
		TotalTime: 4, RemainingTime: 4,
		Stations: []string{catalog.StationBagels},
	}

	c := s.Clone()

	c.Currency = 9999
	c.Stations[catalog.StationBagels].Ingredients[0] = "tampered"
	c.Stations[catalog.StationBagels].EquipmentLevel = 9
	c.CustomerQueue[0] = "tampered"
	c.SalesHistory[0].Name = "tampered"
	c.ActiveOrder.Food.Name = "tampered"
	c.ActiveOrder.Beverage.Name = "tampered"
	c.ActiveOrder.Stations[0] = "tampered"

	if s.Currency == 9999 {
		t.Errorf("scalar leaked through clone")
	}
	if s.Stations[catalog.StationBagels].Ingredients[0] == "tampered" {
		t.Errorf("station ingredient list shared with clone")
	}
	if s.Stations[catalog.StationBagels].EquipmentLevel == 9 {
		t.Errorf("station struct shared with clone")
	}
	if s.CustomerQueue[0] == "tampered" {
		t.Errorf("customer queue shared with clone")
	}
	if s.SalesHistory[0].Name == "tampered" {
		t.Errorf("sales history shared with clone")
	}
	if s.ActiveOrder.Food.Name == "tampered" || s.ActiveOrder.Beverage.Name == "tampered" {
		t.Errorf("order recipes shared with clone")
	}
	if s.ActiveOrder.Stations[0] == "tampered" {
		t.Errorf("order station list shared with clone")
	}
}

func TestCloneNilOrder(t *testing.T) {
	s := NewDefaultState()
	c := s.Clone()
	if c.ActiveOrder != nil {
		t.Errorf("clone invented an active order")
	}
}

func TestNormalizeFillsAndClamps(t *testing.T) {
	s := &State{
		Stations: map[string]*Station{
			catalog.StationBagels: {ID: catalog.StationBagels, Unlocked: true, StorageLevel: 7},
		},
		CustomerQueue: []string{"a", "b", "c", "d", "e", "f", "g"},
		PrestigeLevel: -2,
	}
	s.Normalize()

	if len(s.Stations) != len(catalog.Stations()) {
		t.Errorf("Normalize must create missing stations")
	}
	bagels := s.Stations[catalog.StationBagels]
	if bagels.StorageLevel != catalog.MaxStorageLevel {
		t.Errorf("storage level %d not clamped to %d", bagels.StorageLevel, catalog.MaxStorageLevel)
	}
	if bagels.EquipmentLevel != 1 || bagels.QualityLevel != 1 {
		t.Errorf("zero levels must clamp to 1")
	}
	if len(s.CustomerQueue) != catalog.QueueCap {
		t.Errorf("queue not truncated to cap, len %d", len(s.CustomerQueue))
	}
	if s.PrestigeLevel != 0 {
		t.Errorf("negative prestige level must clamp to 0")
	}
	if s.SalesHistory == nil || s.Perks == nil {
		t.Errorf("nil slices must become empty")
	}

	spreads := s.Stations[catalog.StationSpreads]
	if spreads.Unlocked || len(spreads.Ingredients) != 0 {
		t.Errorf("backfilled station must be locked and empty")
	}
}
