package engine

import (
	"fmt"
	"time"

	"github.com/bagelworks/bageltycoon/server/internal/domain/catalog"
	"github.com/bagelworks/bageltycoon/server/internal/domain/game"
	"github.com/bagelworks/bageltycoon/server/internal/platform/metrics"
)

// TakeOrder pops the front customer and generates their order. Fails when the
// queue is empty or an order is already in flight: one active order is the
// simulation's sole admission control. If generation yields no candidate
// recipe the customer returns to the FRONT of the queue and nothing changes.
func (e *Engine) TakeOrder() bool {
	return e.mutate(func() bool {
		return e.takeOrderLocked(e.now())
	})
}

func (e *Engine) takeOrderLocked(now time.Time) bool {
	if e.state.ActiveOrder != nil {
		e.log.Warn("take order rejected: an order is already in flight")
		return false
	}
	if len(e.state.CustomerQueue) == 0 {
		e.log.Warn("take order rejected: no customers waiting")
		return false
	}

	customer := e.state.CustomerQueue[0]
	e.state.CustomerQueue = append([]string(nil), e.state.CustomerQueue[1:]...)

	order := e.generateOrderLocked(customer, now)
	if order == nil {
		e.state.CustomerQueue = append([]string{customer}, e.state.CustomerQueue...)
		e.log.Warn("take order rejected: no servable recipe for %s", customer)
		return false
	}

	e.state.ActiveOrder = order
	metrics.Get().RecordOrderTaken()
	e.log.Event("ORDER_TAKEN", customer, fmt.Sprintf("%s, %.1fs", order.ID, order.TotalTime))
	return true
}

// generateOrderLocked builds an order for the customer, or nil when no food
// recipe is currently servable.
func (e *Engine) generateOrderLocked(customer string, now time.Time) *game.Order {
	foods := e.servableFoodsLocked()
	if len(foods) == 0 {
		return nil
	}
	food := foods[e.rng.Intn(len(foods))].Clone()

	var beverage *catalog.Recipe
	if bev := e.state.Stations[catalog.StationBeverages]; bev != nil && bev.Unlocked {
		if e.rng.Float64() < catalog.BeverageProbability {
			drinks := e.servableBeveragesLocked(bev)
			if len(drinks) > 0 {
				d := drinks[e.rng.Intn(len(drinks))].Clone()
				beverage = &d
			}
		}
	}

	total := e.processingTimeLocked(food, beverage)
	e.orderSeq++
	return &game.Order{
		ID:            fmt.Sprintf("order-%d-%d", now.UnixMilli(), e.orderSeq),
		Customer:      customer,
		Food:          food,
		Beverage:      beverage,
		CreatedAt:     now,
		TotalTime:     total,
		RemainingTime: total,
		Stations:      orderStations(food, beverage),
	}
}

// servableFoodsLocked returns the food recipes whose stations are all unlocked
// and whose ingredients are each stocked at one of the recipe's own stations.
func (e *Engine) servableFoodsLocked() []catalog.Recipe {
	var out []catalog.Recipe
	for _, r := range catalog.FoodRecipes() {
		if e.recipeServableLocked(r) {
			out = append(out, r)
		}
	}
	return out
}

func (e *Engine) recipeServableLocked(r catalog.Recipe) bool {
	for _, sid := range r.Stations {
		st, ok := e.state.Stations[sid]
		if !ok || !st.Unlocked {
			return false
		}
	}
	for _, ing := range r.Ingredients {
		found := false
		for _, sid := range r.Stations {
			if contains(e.state.Stations[sid].Ingredients, ing) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// servableBeveragesLocked returns the beverages fully stocked at the beverage
// station.
func (e *Engine) servableBeveragesLocked(bev *game.Station) []catalog.Recipe {
	var out []catalog.Recipe
	for _, r := range catalog.BeverageRecipes() {
		ok := true
		for _, ing := range r.Ingredients {
			if !contains(bev.Ingredients, ing) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	return out
}

// processingTimeLocked computes the order's total time. Every required station
// re-runs the full recipe base time at its own equipment speed. With managers
// on every involved station the stations work in parallel and the slowest one
// gates completion; one missing manager anywhere forces fully serial work.
func (e *Engine) processingTimeLocked(food catalog.Recipe, beverage *catalog.Recipe) float64 {
	var allTimes []float64
	for _, sid := range food.Stations {
		st := e.state.Stations[sid]
		allTimes = append(allTimes, food.BaseTime/catalog.SpeedMultiplier(st.EquipmentLevel))
	}
	if beverage != nil {
		for _, sid := range beverage.Stations {
			st := e.state.Stations[sid]
			allTimes = append(allTimes, beverage.BaseTime/catalog.SpeedMultiplier(st.EquipmentLevel))
		}
	}

	allManaged := true
	for _, sid := range orderStations(food, beverage) {
		if !e.state.Stations[sid].HasManager {
			allManaged = false
			break
		}
	}

	if allManaged {
		max := 0.0
		for _, t := range allTimes {
			if t > max {
				max = t
			}
		}
		return max
	}
	sum := 0.0
	for _, t := range allTimes {
		sum += t
	}
	return sum
}

// orderStations returns the deduplicated union of stations the order touches,
// in encounter order (food first, first occurrence wins).
func orderStations(food catalog.Recipe, beverage *catalog.Recipe) []string {
	var out []string
	add := func(ids []string) {
		for _, id := range ids {
			if !contains(out, id) {
				out = append(out, id)
			}
		}
	}
	add(food.Stations)
	if beverage != nil {
		add(beverage.Stations)
	}
	return out
}
