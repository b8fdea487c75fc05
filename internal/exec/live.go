package exec

import (
	"context"
	"time"

	"tv-kite-bridge/internal/kite"
	"tv-kite-bridge/internal/metrics"
	"tv-kite-bridge/internal/signal"

	"go.uber.org/zap"
)

// Broker is the slice of the brokerage client the live executor needs.
type Broker interface {
	Ready() error
	NetPositions(ctx context.Context) ([]kite.Position, error)
	PlaceOrder(ctx context.Context, params kite.OrderParams) (string, error)
}

// Live dispatches market orders against the brokerage. Order failures are
// logged and absorbed; the decision flow continues as "attempted".
type Live struct {
	broker   Broker
	lots     LotSizer
	exchange string
	product  string
	log      *zap.Logger
	metrics  *metrics.Metrics
	hook     FillHook
}

func NewLive(broker Broker, lots LotSizer, exchange, product string, log *zap.Logger, m *metrics.Metrics, hook FillHook) *Live {
	if m == nil {
		m = metrics.NewNoop()
	}
	return &Live{
		broker:   broker,
		lots:     lots,
		exchange: exchange,
		product:  product,
		log:      log,
		metrics:  m,
		hook:     hook,
	}
}

func (l *Live) Ready() error {
	return l.broker.Ready()
}

func (l *Live) PositionQuantity(ctx context.Context, tradingsymbol string) int {
	positions, err := l.broker.NetPositions(ctx)
	if err != nil {
		l.log.Error("position query failed", zap.String("tradingsymbol", tradingsymbol), zap.Error(err))
		return 0
	}
	for _, pos := range positions {
		if pos.TradingSymbol == tradingsymbol {
			return pos.Quantity
		}
	}
	return 0
}

func (l *Live) Enter(ctx context.Context, tradingsymbol string, direction signal.Direction) {
	qty := l.lots.LotSize(ctx, tradingsymbol)
	txn := kite.TransactionBuy
	if direction == signal.Short {
		txn = kite.TransactionSell
	}
	orderID, err := l.broker.PlaceOrder(ctx, kite.OrderParams{
		Exchange:        l.exchange,
		TradingSymbol:   tradingsymbol,
		TransactionType: txn,
		Quantity:        qty,
		Product:         l.product,
		OrderType:       kite.OrderTypeMarket,
	})
	if err != nil {
		l.metrics.OrdersFailed.Inc()
		l.log.Error("entry failed", zap.String("tradingsymbol", tradingsymbol), zap.Error(err))
		return
	}
	l.metrics.OrdersPlaced.Inc()
	l.log.Info("entered position",
		zap.String("tradingsymbol", tradingsymbol),
		zap.String("direction", string(direction)),
		zap.Int("quantity", qty),
		zap.String("order_id", orderID),
	)
	if l.hook != nil {
		l.hook(Fill{
			TradingSymbol: tradingsymbol,
			Direction:     string(direction),
			Quantity:      qty,
			OrderID:       orderID,
			At:            time.Now().UTC(),
		})
	}
}

func (l *Live) Exit(ctx context.Context, tradingsymbol string, quantity int) {
	if quantity == 0 {
		return
	}
	// Closing order runs opposite to the held quantity's sign.
	txn := kite.TransactionSell
	if quantity < 0 {
		txn = kite.TransactionBuy
	}
	size := quantity
	if size < 0 {
		size = -size
	}
	orderID, err := l.broker.PlaceOrder(ctx, kite.OrderParams{
		Exchange:        l.exchange,
		TradingSymbol:   tradingsymbol,
		TransactionType: txn,
		Quantity:        size,
		Product:         l.product,
		OrderType:       kite.OrderTypeMarket,
	})
	if err != nil {
		l.metrics.OrdersFailed.Inc()
		l.log.Error("exit failed", zap.String("tradingsymbol", tradingsymbol), zap.Error(err))
		return
	}
	l.metrics.OrdersPlaced.Inc()
	l.log.Info("exited position",
		zap.String("tradingsymbol", tradingsymbol),
		zap.Int("quantity", quantity),
		zap.String("order_id", orderID),
	)
	if l.hook != nil {
		l.hook(Fill{
			TradingSymbol: tradingsymbol,
			Direction:     txn,
			Quantity:      size,
			OrderID:       orderID,
			At:            time.Now().UTC(),
		})
	}
}
