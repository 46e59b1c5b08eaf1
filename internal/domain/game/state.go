// Package game defines the mutable aggregate state of one bagel shop run.
// This package is PURE and must NOT import any infrastructure packages.
// The engine is the only writer; everyone else sees deep copies.
package game

import (
	"time"

	"github.com/bagelworks/bageltycoon/server/internal/domain/catalog"
)

// Station holds the player-facing progress of one preparation point.
type Station struct {
	ID             string   `json:"id"`
	Unlocked       bool     `json:"unlocked"`
	EquipmentLevel int      `json:"equipment_level"`
	QualityLevel   int      `json:"quality_level"`
	StorageLevel   int      `json:"storage_level"`
	HasManager     bool     `json:"has_manager"`
	Ingredients    []string `json:"ingredients"` // insertion order = unlock order
}

// SpeedTier brackets an order's actual completion time against its expected one.
type SpeedTier string

const (
	TierLightning SpeedTier = "lightning"
	TierGood      SpeedTier = "good"
	TierNormal    SpeedTier = "normal"
	TierSlow      SpeedTier = "slow"
)

// Order is one customer's in-flight request. At most one exists at a time.
type Order struct {
	ID            string          `json:"id"`
	Customer      string          `json:"customer"`
	Food          catalog.Recipe  `json:"food"`
	Beverage      *catalog.Recipe `json:"beverage,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	TotalTime     float64         `json:"total_time"`     // seconds, computed at creation
	RemainingTime float64         `json:"remaining_time"` // counts down per tick
	Stations      []string        `json:"stations"`       // deduped, encounter order
}

// SaleRecord is one completed order, kept in a bounded newest-first history.
type SaleRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SpeedTier   SpeedTier `json:"speed_tier"`
	QualityMult float64   `json:"quality_mult"`
	FinalPrice  float64   `json:"final_price"`
	CompletedAt time.Time `json:"completed_at"`
}

// State is the aggregate root for one run of the shop.
type State struct {
	Currency          float64             `json:"currency"`
	LifetimeEarnings  float64             `json:"lifetime_earnings"`
	Stations          map[string]*Station `json:"stations"`
	ActiveOrder       *Order              `json:"active_order,omitempty"`
	CustomerQueue     []string            `json:"customer_queue"`
	SalesHistory      []SaleRecord        `json:"sales_history"`
	RegisterAutomated bool                `json:"register_automated"`
	SecondRegister    bool                `json:"second_register"`
	PrestigeLevel     int                 `json:"prestige_level"`
	Perks             []string            `json:"perks"`
	LastSpawnAt       time.Time           `json:"last_spawn_at"`
	LastAutosaveAt    time.Time           `json:"last_autosave_at"`
}

// NewDefaultState builds a fresh run: every catalog station exists, locked
// stations are empty at baseline levels, and stations the catalog marks as
// starting unlocked carry their default ingredient set.
func NewDefaultState() *State {
	s := &State{
		Currency:      catalog.StartingCurrency,
		Stations:      make(map[string]*Station),
		CustomerQueue: []string{},
		SalesHistory:  []SaleRecord{},
		Perks:         []string{},
	}
	for _, def := range catalog.Stations() {
		st := &Station{
			ID:             def.ID,
			EquipmentLevel: 1,
			QualityLevel:   1,
			StorageLevel:   1,
			Ingredients:    []string{},
		}
		if def.StartsUnlocked {
			st.Unlocked = true
			st.Ingredients = append([]string(nil), def.DefaultIngredients...)
		}
		s.Stations[def.ID] = st
	}
	return s
}

// Clone produces a structurally independent deep copy. No mutable substructure
// is shared with the receiver.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Stations = make(map[string]*Station, len(s.Stations))
	for id, st := range s.Stations {
		out.Stations[id] = st.Clone()
	}
	out.ActiveOrder = s.ActiveOrder.Clone()
	out.CustomerQueue = append([]string(nil), s.CustomerQueue...)
	out.SalesHistory = append([]SaleRecord(nil), s.SalesHistory...)
	out.Perks = append([]string(nil), s.Perks...)
	return &out
}

// Clone deep-copies a station.
func (st *Station) Clone() *Station {
	if st == nil {
		return nil
	}
	out := *st
	out.Ingredients = append([]string(nil), st.Ingredients...)
	return &out
}

// Clone deep-copies an order, including its nested recipes and station list.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	out := *o
	out.Food = o.Food.Clone()
	if o.Beverage != nil {
		bev := o.Beverage.Clone()
		out.Beverage = &bev
	}
	out.Stations = append([]string(nil), o.Stations...)
	return &out
}

// Normalize merges the state over defaults: stations missing from the map are
// created locked, zero or out-of-range levels are clamped, nil slices become
// empty, and the queue and history are truncated to their caps. Used both for
// caller-supplied partial state and for saves written by older builds.
func (s *State) Normalize() {
	if s.Stations == nil {
		s.Stations = make(map[string]*Station)
	}
	for _, def := range catalog.Stations() {
		st, ok := s.Stations[def.ID]
		if !ok || st == nil {
			st = &Station{ID: def.ID, EquipmentLevel: 1, QualityLevel: 1, StorageLevel: 1, Ingredients: []string{}}
			if def.StartsUnlocked {
				st.Unlocked = true
				st.Ingredients = append([]string(nil), def.DefaultIngredients...)
			}
			s.Stations[def.ID] = st
		}
		st.ID = def.ID
		if st.EquipmentLevel < 1 {
			st.EquipmentLevel = 1
		}
		if st.QualityLevel < 1 {
			st.QualityLevel = 1
		}
		if st.StorageLevel < 1 {
			st.StorageLevel = 1
		}
		if st.StorageLevel > catalog.MaxStorageLevel {
			st.StorageLevel = catalog.MaxStorageLevel
		}
		if st.Ingredients == nil {
			st.Ingredients = []string{}
		}
	}
	if s.CustomerQueue == nil {
		s.CustomerQueue = []string{}
	}
	if len(s.CustomerQueue) > catalog.QueueCap {
		s.CustomerQueue = s.CustomerQueue[:catalog.QueueCap]
	}
	if s.SalesHistory == nil {
		s.SalesHistory = []SaleRecord{}
	}
	if len(s.SalesHistory) > catalog.HistoryCap {
		s.SalesHistory = s.SalesHistory[:catalog.HistoryCap]
	}
	if s.Perks == nil {
		s.Perks = []string{}
	}
	if s.PrestigeLevel < 0 {
		s.PrestigeLevel = 0
	}
	if s.ActiveOrder != nil && s.ActiveOrder.RemainingTime > s.ActiveOrder.TotalTime {
		s.ActiveOrder.RemainingTime = s.ActiveOrder.TotalTime
	}
}
