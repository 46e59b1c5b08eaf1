// Package engine implements the bagel shop simulation: the single stateful
// component that owns all game data, runs the fixed-tick update loop, generates
// customer orders, prices completed sales, and persists state.
//
// ARCHITECTURAL RULE: the engine is the only writer of game.State. Consumers
// subscribe for snapshots or call Snapshot; every value crossing the boundary
// is a deep copy, so a previously received snapshot never observes a later
// mutation.
package engine

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/bagelworks/bageltycoon/server/internal/domain/game"
	"github.com/bagelworks/bageltycoon/server/internal/infra/storage"
	"github.com/bagelworks/bageltycoon/server/internal/platform/logger"
	"github.com/bagelworks/bageltycoon/server/internal/platform/metrics"
)

// SnapshotFunc receives an independently-owned deep copy of the state after
// every mutation. Callbacks run synchronously in registration order and must
// not call back into the engine.
type SnapshotFunc func(*game.State)

type subscription struct {
	id int
	fn SnapshotFunc
}

// Engine is the simulation core. Construct with New; one instance owns one run.
type Engine struct {
	mu    sync.Mutex
	cfg   Config
	log   *logger.Logger
	repo  storage.StateRepository
	state *game.State
	rng   *rand.Rand
	now   func() time.Time

	subs      []*subscription
	nextSubID int

	orderSeq       int64
	spawning       bool
	spawnEnabledAt time.Time

	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
}

// New builds an engine. State comes from cfg.Initial (normalized over
// defaults), else from the repository if it holds a save, else from defaults.
// Unless cfg.DisableScheduler is set, the tick loop starts immediately.
func New(cfg Config) *Engine {
	cfg.applyDefaults()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		cfg:      cfg,
		log:      cfg.Logger,
		repo:     cfg.Repo,
		rng:      rand.New(rand.NewSource(seed)),
		now:      time.Now,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}

	switch {
	case cfg.Initial != nil:
		st := cfg.Initial.Clone()
		st.Normalize()
		e.state = st
	case cfg.Repo != nil:
		loaded, err := cfg.Repo.Load(context.Background())
		if err != nil {
			e.log.Error("discarding unreadable save, starting fresh: %v", err)
		}
		if loaded != nil {
			e.state = loaded
			e.log.Info("game state hydrated from save")
		}
	}
	if e.state == nil {
		e.state = game.NewDefaultState()
	}

	if cfg.DisableScheduler {
		close(e.doneChan)
	} else {
		go e.run()
	}
	return e
}

// Close stops the scheduler and performs one best-effort save. Safe to call
// more than once.
func (e *Engine) Close() {
	e.stopOnce.Do(func() {
		close(e.stopChan)
		<-e.doneChan

		e.mu.Lock()
		snap := e.state.Clone()
		e.mu.Unlock()
		e.persist(snap)
	})
}

// Subscribe registers a callback, immediately invokes it once with the current
// snapshot, and returns an unsubscribe func. Consumers get their initial data
// without waiting for a tick.
func (e *Engine) Subscribe(fn SnapshotFunc) (unsubscribe func()) {
	e.mu.Lock()
	id := e.nextSubID
	e.nextSubID++
	e.subs = append(e.subs, &subscription{id: id, fn: fn})
	snap := e.state.Clone()
	e.mu.Unlock()

	fn(snap)

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, s := range e.subs {
			if s.id == id {
				e.subs = append(e.subs[:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns a structurally independent deep copy of the current state.
func (e *Engine) Snapshot() *game.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// EnableSpawning opens the door: after the initial delay elapses, customers
// start arriving on the spawn interval. Idempotent; the host calls this once
// after it has mounted.
func (e *Engine) EnableSpawning() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.spawning {
		return
	}
	e.spawning = true
	e.spawnEnabledAt = e.now()
	e.log.Info("customer spawning enabled")
}

// Save persists the current state immediately. Failures are logged, not
// returned; losing a save is recoverable by continuing to play unsaved.
func (e *Engine) Save() {
	if e.repo == nil {
		return
	}
	e.mu.Lock()
	snap := e.state.Clone()
	e.mu.Unlock()
	e.persist(snap)
}

// ClearSave removes the persisted snapshot without touching the live state.
func (e *Engine) ClearSave() {
	if e.repo == nil {
		return
	}
	if err := e.repo.Clear(context.Background()); err != nil {
		e.log.Error("failed to clear save: %v", err)
	}
}

// notifyLocked captures the subscriber list and one master snapshot under the
// lock. The returned closure must run after unlock: it hands every subscriber
// its own copy, in registration order.
func (e *Engine) notifyLocked() func() {
	if len(e.subs) == 0 {
		return func() {}
	}
	subs := append([]*subscription(nil), e.subs...)
	snap := e.state.Clone()
	return func() {
		for _, s := range subs {
			s.fn(snap.Clone())
		}
	}
}

// mutate runs op under the lock; on success it broadcasts exactly once.
func (e *Engine) mutate(op func() bool) bool {
	e.mu.Lock()
	ok := op()
	var notify func()
	if ok {
		notify = e.notifyLocked()
	}
	e.mu.Unlock()
	if notify != nil {
		notify()
	}
	return ok
}

func (e *Engine) persist(snap *game.State) {
	if e.repo == nil {
		return
	}
	err := e.repo.Save(context.Background(), snap)
	metrics.Get().RecordSave(err)
	if err != nil {
		e.log.Error("save failed: %v", err)
	}
}
