package engine

import (
	"fmt"
	"time"

	"github.com/bagelworks/bageltycoon/server/internal/domain/catalog"
	"github.com/bagelworks/bageltycoon/server/internal/domain/game"
	"github.com/bagelworks/bageltycoon/server/internal/platform/metrics"
)

// classifySpeed brackets the actual wall-clock duration against the order's
// computed total. Lower comparisons are strict: finishing at exactly half the
// total is "good", not "lightning".
func classifySpeed(actual, total float64) (game.SpeedTier, float64) {
	switch {
	case actual < 0.5*total:
		return game.TierLightning, 1.5
	case actual < total:
		return game.TierGood, 1.2
	case actual < 2*total:
		return game.TierNormal, 1.0
	default:
		return game.TierSlow, 0.7
	}
}

// qualityMultiplier accumulates 0.12 per quality level above 1 on each of the
// order's stations, starting from 1.0.
func (e *Engine) qualityMultiplierLocked(stations []string) float64 {
	mult := 1.0
	for _, sid := range stations {
		if st, ok := e.state.Stations[sid]; ok {
			mult += float64(st.QualityLevel-1) * catalog.QualityBonusPerLevel
		}
	}
	return mult
}

// completeOrderLocked settles the active order: price it, record the sale,
// credit the till, and free the order slot. The speed bonus compares REAL
// elapsed time since creation with the computed total, not the ticked-down
// countdown; the two diverge when the host throttles ticks, and the game
// accepts that.
func (e *Engine) completeOrderLocked(now time.Time) {
	o := e.state.ActiveOrder
	if o == nil {
		return
	}

	basePrice := o.Food.BasePrice
	name := o.Food.Name
	if o.Beverage != nil {
		basePrice += o.Beverage.BasePrice
		name = o.Food.Name + " & " + o.Beverage.Name
	}

	quality := e.qualityMultiplierLocked(o.Stations)
	actual := now.Sub(o.CreatedAt).Seconds()
	tier, speedMult := classifySpeed(actual, o.TotalTime)
	finalPrice := basePrice * quality * speedMult

	record := game.SaleRecord{
		ID:          o.ID,
		Name:        name,
		SpeedTier:   tier,
		QualityMult: quality,
		FinalPrice:  finalPrice,
		CompletedAt: now,
	}
	e.state.SalesHistory = append([]game.SaleRecord{record}, e.state.SalesHistory...)
	if len(e.state.SalesHistory) > catalog.HistoryCap {
		e.state.SalesHistory = e.state.SalesHistory[:catalog.HistoryCap]
	}

	e.state.Currency += finalPrice
	e.state.LifetimeEarnings += finalPrice
	e.state.ActiveOrder = nil

	metrics.Get().RecordOrderCompleted(finalPrice)
	e.log.Event("ORDER_COMPLETED", o.Customer,
		fmt.Sprintf("%s sold for %.2f (%s, quality %.2f)", name, finalPrice, tier, quality))
}
