package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tv-kite-bridge/internal/contract"
	"tv-kite-bridge/internal/exec"
	"tv-kite-bridge/internal/metrics"
	"tv-kite-bridge/internal/signal"
	"tv-kite-bridge/internal/state"

	"go.uber.org/zap"
)

// Notifier pushes human-facing trade notifications. A nil notifier is valid.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// DecisionHook observes applied decisions, e.g. for journaling. A nil
// hook is valid.
type DecisionHook func(state.DecisionAudit)

// Engine turns normalized signals into position actions. Decisions for the
// same base symbol are serialized; distinct symbols proceed in parallel.
// The last applied direction per symbol is the engine's only mutable state,
// held in memory and written through to the store so a restart does not
// re-enter an already-open position.
type Engine struct {
	executor exec.Executor
	store    state.Store
	log      *zap.Logger
	metrics  *metrics.Metrics
	notify   Notifier

	resolve    func(base string, today time.Time) string
	now        func() time.Time
	onDecision DecisionHook

	mu     sync.Mutex
	locks  map[string]*sync.Mutex
	last   map[string]signal.Direction
	loaded map[string]bool
}

func New(executor exec.Executor, store state.Store, log *zap.Logger, m *metrics.Metrics, notify Notifier) *Engine {
	if m == nil {
		m = metrics.NewNoop()
	}
	return &Engine{
		executor: executor,
		store:    store,
		log:      log,
		metrics:  m,
		notify:   notify,
		resolve:  contract.Active,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
		last:     make(map[string]signal.Direction),
		loaded:   make(map[string]bool),
	}
}

// SetDecisionHook installs an observer for applied decisions. Call
// before the first Handle.
func (e *Engine) SetDecisionHook(hook DecisionHook) {
	e.onDecision = hook
}

// Ready reports whether the underlying executor can dispatch orders.
func (e *Engine) Ready() error {
	return e.executor.Ready()
}

// Handle runs one decision cycle for a base symbol: resolve the active
// contract, compare against the last applied direction, exit any held
// position on a reversal, enter the new one, and record the direction.
// Downstream failures are absorbed inside the executor; the direction is
// recorded unconditionally once dispatch was attempted.
func (e *Engine) Handle(ctx context.Context, base string, direction signal.Direction) {
	lock := e.symbolLock(base)
	lock.Lock()
	defer lock.Unlock()

	tradingsymbol := e.resolve(base, e.now())
	last := e.lastDirection(ctx, base)

	if direction == last {
		e.metrics.DecisionsSkipped.Inc()
		e.log.Info("already in position, skipping",
			zap.String("base_symbol", base),
			zap.String("direction", string(direction)),
		)
		e.audit(ctx, base, tradingsymbol, direction, last, "skip", 0)
		return
	}

	held := e.executor.PositionQuantity(ctx, tradingsymbol)
	action := "enter"
	if held != 0 {
		action = "reverse"
		e.executor.Exit(ctx, tradingsymbol, held)
	}
	e.executor.Enter(ctx, tradingsymbol, direction)

	e.setLastDirection(ctx, base, direction)
	e.audit(ctx, base, tradingsymbol, direction, last, action, held)
	e.sendNotification(ctx, base, tradingsymbol, direction, last)
}

func (e *Engine) symbolLock(base string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[base]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[base] = lock
	}
	return lock
}

// lastDirection consults memory first; on the first sighting of a symbol
// the persisted value is loaded so restarts keep idempotence.
func (e *Engine) lastDirection(ctx context.Context, base string) signal.Direction {
	e.mu.Lock()
	dir, ok := e.last[base]
	loaded := e.loaded[base]
	e.mu.Unlock()
	if ok || loaded {
		if !ok {
			return signal.None
		}
		return dir
	}
	stored, found, err := state.LastDirection(ctx, e.store, base)
	if err != nil {
		e.log.Warn("last direction load failed", zap.String("base_symbol", base), zap.Error(err))
	}
	e.mu.Lock()
	e.loaded[base] = true
	if found {
		e.last[base] = stored
	}
	e.mu.Unlock()
	if found {
		return stored
	}
	return signal.None
}

func (e *Engine) setLastDirection(ctx context.Context, base string, direction signal.Direction) {
	e.mu.Lock()
	e.last[base] = direction
	e.loaded[base] = true
	e.mu.Unlock()
	if err := state.SaveLastDirection(ctx, e.store, base, direction); err != nil {
		e.log.Warn("last direction persist failed", zap.String("base_symbol", base), zap.Error(err))
	}
}

func (e *Engine) audit(ctx context.Context, base, tradingsymbol string, direction, previous signal.Direction, action string, held int) {
	record := state.DecisionAudit{
		Time:          e.now().UTC(),
		BaseSymbol:    base,
		TradingSymbol: tradingsymbol,
		Direction:     string(direction),
		Previous:      string(previous),
		Action:        action,
		HeldQuantity:  held,
	}
	if err := state.AppendDecisionAudit(ctx, e.store, record); err != nil {
		e.log.Warn("decision audit failed", zap.String("base_symbol", base), zap.Error(err))
	}
	if e.onDecision != nil {
		e.onDecision(record)
	}
}

func (e *Engine) sendNotification(ctx context.Context, base, tradingsymbol string, direction, previous signal.Direction) {
	if e.notify == nil {
		return
	}
	msg := fmt.Sprintf("%s: %s -> %s (%s)", base, previous, direction, tradingsymbol)
	if err := e.notify.Send(ctx, msg); err != nil {
		e.log.Warn("notification failed", zap.Error(err))
	}
}
