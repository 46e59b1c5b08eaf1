// Package metrics provides observability for the shop engine and its host.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers simulation and transport counters.
type Collector struct {
	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Simulation metrics
	OrdersTaken      int64
	OrdersCompleted  int64
	CustomersSpawned int64
	CustomersDropped int64 // spawn attempts against a full queue
	RevenueCents     int64 // accumulated sale revenue, in cents

	// Persistence metrics
	SavesTotal int64
	SaveErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordTick records a tick cycle completion.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.TickLatencyMax) {
		atomic.StoreInt64(&c.TickLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordOrderTaken records a successful TakeOrder.
func (c *Collector) RecordOrderTaken() {
	atomic.AddInt64(&c.OrdersTaken, 1)
}

// RecordOrderCompleted records a finished order and its revenue.
func (c *Collector) RecordOrderCompleted(finalPrice float64) {
	atomic.AddInt64(&c.OrdersCompleted, 1)
	atomic.AddInt64(&c.RevenueCents, int64(finalPrice*100))
}

// RecordSpawn records a customer spawn attempt.
func (c *Collector) RecordSpawn(queued bool) {
	if queued {
		atomic.AddInt64(&c.CustomersSpawned, 1)
	} else {
		atomic.AddInt64(&c.CustomersDropped, 1)
	}
}

// RecordSave records an autosave or shutdown save attempt.
func (c *Collector) RecordSave(err error) {
	atomic.AddInt64(&c.SavesTotal, 1)
	if err != nil {
		atomic.AddInt64(&c.SaveErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)

	var tickAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"tick": map[string]interface{}{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      c.LastTickTime.Format(time.RFC3339),
		},

		"simulation": map[string]interface{}{
			"orders_taken":      atomic.LoadInt64(&c.OrdersTaken),
			"orders_completed":  atomic.LoadInt64(&c.OrdersCompleted),
			"customers_spawned": atomic.LoadInt64(&c.CustomersSpawned),
			"customers_dropped": atomic.LoadInt64(&c.CustomersDropped),
			"revenue":           float64(atomic.LoadInt64(&c.RevenueCents)) / 100,
		},

		"persistence": map[string]interface{}{
			"saves":  atomic.LoadInt64(&c.SavesTotal),
			"errors": atomic.LoadInt64(&c.SaveErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus text format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		fmt.Fprintf(w, "# HELP bagel_tick_count Total tick cycles\n")
		fmt.Fprintf(w, "# TYPE bagel_tick_count counter\n")
		fmt.Fprintf(w, "bagel_tick_count %d\n\n", atomic.LoadInt64(&c.TickCount))

		fmt.Fprintf(w, "# HELP bagel_tick_latency_max_ms Maximum tick latency\n")
		fmt.Fprintf(w, "# TYPE bagel_tick_latency_max_ms gauge\n")
		fmt.Fprintf(w, "bagel_tick_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.TickLatencyMax))/1e6)

		fmt.Fprintf(w, "# HELP bagel_orders_total Orders taken and completed\n")
		fmt.Fprintf(w, "# TYPE bagel_orders_total counter\n")
		fmt.Fprintf(w, "bagel_orders_total{stage=\"taken\"} %d\n", atomic.LoadInt64(&c.OrdersTaken))
		fmt.Fprintf(w, "bagel_orders_total{stage=\"completed\"} %d\n\n", atomic.LoadInt64(&c.OrdersCompleted))

		fmt.Fprintf(w, "# HELP bagel_customers_total Customer spawn outcomes\n")
		fmt.Fprintf(w, "# TYPE bagel_customers_total counter\n")
		fmt.Fprintf(w, "bagel_customers_total{outcome=\"queued\"} %d\n", atomic.LoadInt64(&c.CustomersSpawned))
		fmt.Fprintf(w, "bagel_customers_total{outcome=\"dropped\"} %d\n\n", atomic.LoadInt64(&c.CustomersDropped))

		fmt.Fprintf(w, "# HELP bagel_revenue_total Lifetime revenue credited\n")
		fmt.Fprintf(w, "# TYPE bagel_revenue_total counter\n")
		fmt.Fprintf(w, "bagel_revenue_total %.2f\n\n", float64(atomic.LoadInt64(&c.RevenueCents))/100)

		fmt.Fprintf(w, "# HELP bagel_saves_total Save attempts\n")
		fmt.Fprintf(w, "# TYPE bagel_saves_total counter\n")
		fmt.Fprintf(w, "bagel_saves_total %d\n", atomic.LoadInt64(&c.SavesTotal))
		fmt.Fprintf(w, "bagel_save_errors_total %d\n\n", atomic.LoadInt64(&c.SaveErrors))

		fmt.Fprintf(w, "# HELP bagel_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE bagel_ws_connections gauge\n")
		fmt.Fprintf(w, "bagel_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP bagel_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE bagel_ws_messages_total counter\n")
		fmt.Fprintf(w, "bagel_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "bagel_ws_messages_total{direction=\"out\"} %d\n", atomic.LoadInt64(&c.WSMessagesOut))
	}
}
