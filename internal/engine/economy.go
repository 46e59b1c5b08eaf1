package engine

import (
	"fmt"
	"math"

	"github.com/bagelworks/bageltycoon/server/internal/domain/catalog"
	"github.com/bagelworks/bageltycoon/server/internal/domain/game"
)

// UpgradeKind selects which station track an upgrade applies to.
type UpgradeKind int

const (
	UpgradeEquipment UpgradeKind = iota
	UpgradeQuality
	UpgradeStorage
)

// String returns the wire/diagnostic name of the kind.
func (k UpgradeKind) String() string {
	switch k {
	case UpgradeEquipment:
		return "equipment"
	case UpgradeQuality:
		return "quality"
	case UpgradeStorage:
		return "storage"
	default:
		return fmt.Sprintf("UpgradeKind(%d)", int(k))
	}
}

// ParseUpgradeKind maps a wire name back to the enum.
func ParseUpgradeKind(s string) (UpgradeKind, bool) {
	switch s {
	case "equipment":
		return UpgradeEquipment, true
	case "quality":
		return UpgradeQuality, true
	case "storage":
		return UpgradeStorage, true
	default:
		return 0, false
	}
}

// UnlockStation pays the one-time unlock cost and seeds the station's default
// ingredient set. Fails on unknown id, an already unlocked station, or an
// unaffordable cost.
func (e *Engine) UnlockStation(id string) bool {
	return e.mutate(func() bool {
		def, ok := catalog.StationByID(id)
		if !ok {
			e.log.Warn("unlock rejected: unknown station %q", id)
			return false
		}
		st := e.state.Stations[id]
		if st.Unlocked {
			e.log.Warn("unlock rejected: station %q already unlocked", id)
			return false
		}
		if e.state.Currency < def.UnlockCost {
			e.log.Warn("unlock rejected: station %q costs %.2f, balance %.2f", id, def.UnlockCost, e.state.Currency)
			return false
		}
		e.state.Currency -= def.UnlockCost
		st.Unlocked = true
		st.Ingredients = append([]string(nil), def.DefaultIngredients...)
		e.log.Event("STATION_UNLOCKED", id, fmt.Sprintf("cost %.2f", def.UnlockCost))
		return true
	})
}

// UpgradeStation raises one level on the chosen track by exactly 1.
// Equipment and quality climb an uncapped exponential cost curve; storage is
// linear and hard-capped at level 3.
func (e *Engine) UpgradeStation(id string, kind UpgradeKind) bool {
	return e.mutate(func() bool {
		st, ok := e.unlockedStationLocked("upgrade", id)
		if !ok {
			return false
		}
		def, _ := catalog.StationByID(id)

		var cost float64
		switch kind {
		case UpgradeEquipment:
			cost = def.EquipmentBaseCost * math.Pow(catalog.UpgradeCostMultiplier, float64(st.EquipmentLevel))
		case UpgradeQuality:
			cost = def.QualityBaseCost * math.Pow(catalog.UpgradeCostMultiplier, float64(st.QualityLevel))
		case UpgradeStorage:
			if st.StorageLevel >= catalog.MaxStorageLevel {
				e.log.Warn("upgrade rejected: station %q storage already at max level", id)
				return false
			}
			cost = catalog.StorageCostPerLevel * float64(st.StorageLevel+1)
		default:
			e.log.Warn("upgrade rejected: station %q unknown kind %v", id, kind)
			return false
		}

		if e.state.Currency < cost {
			e.log.Warn("upgrade rejected: station %q %s costs %.2f, balance %.2f", id, kind, cost, e.state.Currency)
			return false
		}
		e.state.Currency -= cost

		switch kind {
		case UpgradeEquipment:
			st.EquipmentLevel++
		case UpgradeQuality:
			st.QualityLevel++
		case UpgradeStorage:
			st.StorageLevel++
		}
		e.log.Event("STATION_UPGRADED", id, fmt.Sprintf("%s, cost %.2f", kind, cost))
		return true
	})
}

// HireManager buys the station's permanent manager. Managers are what allow
// an order's stations to work in parallel.
func (e *Engine) HireManager(id string) bool {
	return e.mutate(func() bool {
		st, ok := e.unlockedStationLocked("hire", id)
		if !ok {
			return false
		}
		if st.HasManager {
			e.log.Warn("hire rejected: station %q already has a manager", id)
			return false
		}
		def, _ := catalog.StationByID(id)
		if e.state.Currency < def.ManagerCost {
			e.log.Warn("hire rejected: station %q manager costs %.2f, balance %.2f", id, def.ManagerCost, e.state.Currency)
			return false
		}
		e.state.Currency -= def.ManagerCost
		st.HasManager = true
		e.log.Event("MANAGER_HIRED", id, fmt.Sprintf("cost %.2f", def.ManagerCost))
		return true
	})
}

// AddIngredient unlocks the first catalog-ordered ingredient the station does
// not yet carry. Deterministic order, flat cost, bounded by storage capacity.
func (e *Engine) AddIngredient(id string) bool {
	return e.mutate(func() bool {
		st, ok := e.unlockedStationLocked("ingredient", id)
		if !ok {
			return false
		}
		def, _ := catalog.StationByID(id)

		if len(st.Ingredients) >= catalog.StorageCapacity(st.StorageLevel) {
			e.log.Warn("ingredient rejected: station %q storage full (%d)", id, len(st.Ingredients))
			return false
		}

		next := ""
		for _, ing := range def.Ingredients {
			if !contains(st.Ingredients, ing) {
				next = ing
				break
			}
		}
		if next == "" {
			e.log.Warn("ingredient rejected: station %q has the full catalog", id)
			return false
		}
		if e.state.Currency < def.IngredientCost {
			e.log.Warn("ingredient rejected: station %q ingredient costs %.2f, balance %.2f", id, def.IngredientCost, e.state.Currency)
			return false
		}
		e.state.Currency -= def.IngredientCost
		st.Ingredients = append(st.Ingredients, next)
		e.log.Event("INGREDIENT_ADDED", id, next)
		return true
	})
}

// AutomateRegister buys automatic order taking on the tick loop.
func (e *Engine) AutomateRegister() bool {
	return e.mutate(func() bool {
		if e.state.RegisterAutomated {
			e.log.Warn("automation rejected: register already automated")
			return false
		}
		if e.state.Currency < catalog.AutomateRegisterCost {
			e.log.Warn("automation rejected: costs %.2f, balance %.2f", catalog.AutomateRegisterCost, e.state.Currency)
			return false
		}
		e.state.Currency -= catalog.AutomateRegisterCost
		e.state.RegisterAutomated = true
		e.log.Event("REGISTER_AUTOMATED", "register", fmt.Sprintf("cost %.2f", catalog.AutomateRegisterCost))
		return true
	})
}

// AddSecondRegister buys the second register; strictly requires automation.
func (e *Engine) AddSecondRegister() bool {
	return e.mutate(func() bool {
		if !e.state.RegisterAutomated {
			e.log.Warn("second register rejected: automate the first register first")
			return false
		}
		if e.state.SecondRegister {
			e.log.Warn("second register rejected: already purchased")
			return false
		}
		if e.state.Currency < catalog.SecondRegisterCost {
			e.log.Warn("second register rejected: costs %.2f, balance %.2f", catalog.SecondRegisterCost, e.state.Currency)
			return false
		}
		e.state.Currency -= catalog.SecondRegisterCost
		e.state.SecondRegister = true
		e.log.Event("SECOND_REGISTER", "register", fmt.Sprintf("cost %.2f", catalog.SecondRegisterCost))
		return true
	})
}

// Prestige resets the run once lifetime earnings pass the threshold. The
// prestige level increments and the perk list carries over; perk effects are
// not wired up yet.
func (e *Engine) Prestige() bool {
	return e.mutate(func() bool {
		if e.state.LifetimeEarnings < catalog.PrestigeThreshold {
			e.log.Warn("prestige rejected: lifetime earnings %.2f below threshold %.2f",
				e.state.LifetimeEarnings, catalog.PrestigeThreshold)
			return false
		}
		fresh := game.NewDefaultState()
		fresh.PrestigeLevel = e.state.PrestigeLevel + 1
		fresh.Perks = append([]string(nil), e.state.Perks...)
		e.state = fresh
		e.log.Event("PRESTIGE", "shop", fmt.Sprintf("level %d", fresh.PrestigeLevel))
		return true
	})
}

// unlockedStationLocked validates the common "known and unlocked" precondition.
func (e *Engine) unlockedStationLocked(op, id string) (*game.Station, bool) {
	st, ok := e.state.Stations[id]
	if !ok {
		e.log.Warn("%s rejected: unknown station %q", op, id)
		return nil, false
	}
	if !st.Unlocked {
		e.log.Warn("%s rejected: station %q is locked", op, id)
		return nil, false
	}
	return st, true
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
