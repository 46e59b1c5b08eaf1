package engine

import (
	"fmt"
	"time"

	"github.com/bagelworks/bageltycoon/server/internal/domain/catalog"
	"github.com/bagelworks/bageltycoon/server/internal/domain/game"
	"github.com/bagelworks/bageltycoon/server/internal/platform/metrics"

	"github.com/google/uuid"
)

// customerNames seeds the opaque display tokens handed to the queue.
var customerNames = []string{
	"Ada", "Boris", "Clara", "Dev", "Esti", "Frida", "Gus", "Hana",
	"Iris", "Jonah", "Kiki", "Lev", "Mona", "Nate", "Opal", "Priya",
}

// run is the scheduler: one tick callback fully completes before the next
// begins. Started by New unless the config disables it; stopped by Close.
func (e *Engine) run() {
	defer close(e.doneChan)

	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopChan:
			e.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}

// Tick advances the simulation by one scheduler step. The per-tick order is
// fixed: spawn check, automatic order taking, countdown and completion,
// autosave check, then a single broadcast if anything mutated. Hosts running
// with DisableScheduler call this directly.
func (e *Engine) Tick() {
	start := time.Now()

	e.mu.Lock()
	now := e.now()
	mutated := false

	if e.spawnCheckLocked(now) {
		mutated = true
	}

	if e.state.RegisterAutomated && e.state.ActiveOrder == nil && len(e.state.CustomerQueue) > 0 {
		if e.takeOrderLocked(now) {
			mutated = true
		}
	}

	if e.state.ActiveOrder != nil {
		e.state.ActiveOrder.RemainingTime -= e.cfg.TickInterval.Seconds()
		mutated = true
		if e.state.ActiveOrder.RemainingTime <= 0 {
			e.completeOrderLocked(now)
		}
	}

	var toSave *game.State
	if e.repo != nil && now.Sub(e.state.LastAutosaveAt) >= e.cfg.AutosaveInterval {
		e.state.LastAutosaveAt = now
		mutated = true
		toSave = e.state.Clone()
	}

	var notify func()
	if mutated {
		notify = e.notifyLocked()
	}
	e.mu.Unlock()

	if notify != nil {
		notify()
	}
	if toSave != nil {
		e.persist(toSave)
	}
	metrics.Get().RecordTick(time.Since(start))
}

// spawnCheckLocked implements arrival pacing. The first customer waits out the
// initial delay measured from EnableSpawning; afterwards an attempt fires once
// the spawn interval has elapsed since the last attempt. The timestamp resets
// on every attempt, full queue or not, so missed spawns are dropped rather
// than compensated.
func (e *Engine) spawnCheckLocked(now time.Time) bool {
	if !e.spawning {
		return false
	}
	if e.state.LastSpawnAt.IsZero() {
		if now.Sub(e.spawnEnabledAt) < e.cfg.SpawnInitialDelay {
			return false
		}
	} else if now.Sub(e.state.LastSpawnAt) < e.cfg.SpawnInterval {
		return false
	}

	e.state.LastSpawnAt = now
	if len(e.state.CustomerQueue) >= catalog.QueueCap {
		metrics.Get().RecordSpawn(false)
		return true
	}

	customer := e.newCustomerToken()
	e.state.CustomerQueue = append(e.state.CustomerQueue, customer)
	metrics.Get().RecordSpawn(true)
	e.log.Event("CUSTOMER_SPAWN", customer, fmt.Sprintf("queue length %d", len(e.state.CustomerQueue)))
	return true
}

func (e *Engine) newCustomerToken() string {
	name := customerNames[e.rng.Intn(len(customerNames))]
	return name + "#" + uuid.NewString()[:8]
}
