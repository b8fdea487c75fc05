package exec

import (
	"context"
	"time"

	"tv-kite-bridge/internal/signal"
)

// Executor carries out the position-management half of a decision. The
// engine never learns how orders are dispatched; paper and live modes are
// two implementations selected at construction.
type Executor interface {
	// Ready reports whether dispatch can be attempted at all. This is
	// the only executor failure a caller is expected to act on.
	Ready() error
	// PositionQuantity returns the signed held quantity for a contract,
	// 0 on any failure or absence.
	PositionQuantity(ctx context.Context, tradingsymbol string) int
	// Enter opens a one-lot position in the given direction. Dispatch
	// failures are logged and absorbed.
	Enter(ctx context.Context, tradingsymbol string, direction signal.Direction)
	// Exit closes a held position of the given signed quantity. A zero
	// quantity is a no-op.
	Exit(ctx context.Context, tradingsymbol string, quantity int)
}

// LotSizer resolves order quantity granularity for a tradingsymbol.
type LotSizer interface {
	LotSize(ctx context.Context, tradingsymbol string) int
}

// Fill describes one dispatched entry or exit, simulated or live.
type Fill struct {
	TradingSymbol string
	Direction     string
	Quantity      int
	Price         float64
	TradeID       string
	OrderID       string
	Paper         bool
	At            time.Time
}

// FillHook observes dispatched fills, e.g. for journaling or alerting.
// A nil hook is valid.
type FillHook func(Fill)
