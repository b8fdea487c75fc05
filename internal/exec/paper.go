package exec

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"tv-kite-bridge/internal/metrics"
	"tv-kite-bridge/internal/signal"

	"go.uber.org/zap"
)

const (
	paperExchange = "NSE"
	paperSegment  = "FO"

	paperPriceMin = 700.0
	paperPriceMax = 750.0
)

// Sink receives synthesized paper fills.
type Sink interface {
	Record(trade Trade) error
}

// Paper synthesizes plausible fills instead of placing orders. Position
// state is assumed flat every cycle; no brokerage calls are made.
type Paper struct {
	lots    LotSizer
	sink    Sink
	log     *zap.Logger
	metrics *metrics.Metrics
	hook    FillHook
	now     func() time.Time
}

func NewPaper(lots LotSizer, sink Sink, log *zap.Logger, m *metrics.Metrics, hook FillHook) *Paper {
	if m == nil {
		m = metrics.NewNoop()
	}
	return &Paper{
		lots:    lots,
		sink:    sink,
		log:     log,
		metrics: m,
		hook:    hook,
		now:     time.Now,
	}
}

// Ready always succeeds: paper mode needs no authenticated client.
func (p *Paper) Ready() error { return nil }

// PositionQuantity is always 0; no real position exists in paper mode.
func (p *Paper) PositionQuantity(ctx context.Context, tradingsymbol string) int {
	_ = ctx
	_ = tradingsymbol
	return 0
}

func (p *Paper) Enter(ctx context.Context, tradingsymbol string, direction signal.Direction) {
	qty := p.lots.LotSize(ctx, tradingsymbol)
	trade := p.synthesize(tradingsymbol, direction, qty)
	if err := p.sink.Record(trade); err != nil {
		p.metrics.OrdersFailed.Inc()
		p.log.Error("paper trade record failed", zap.String("tradingsymbol", tradingsymbol), zap.Error(err))
		return
	}
	p.metrics.PaperTrades.Inc()
	p.log.Info("paper trade logged",
		zap.String("tradingsymbol", tradingsymbol),
		zap.String("direction", string(direction)),
		zap.Int("quantity", qty),
		zap.Float64("price", trade.Price),
		zap.String("trade_id", trade.TradeID),
	)
	if p.hook != nil {
		p.hook(Fill{
			TradingSymbol: tradingsymbol,
			Direction:     string(direction),
			Quantity:      qty,
			Price:         trade.Price,
			TradeID:       trade.TradeID,
			OrderID:       trade.OrderID,
			Paper:         true,
			At:            trade.At,
		})
	}
}

// Exit never fires in paper mode through the engine (position is always 0)
// but keeps the interface honest if called directly.
func (p *Paper) Exit(ctx context.Context, tradingsymbol string, quantity int) {
	_ = ctx
	if quantity == 0 {
		return
	}
	p.log.Info("paper trade exit", zap.String("tradingsymbol", tradingsymbol), zap.Int("quantity", quantity))
}

func (p *Paper) synthesize(tradingsymbol string, direction signal.Direction, qty int) Trade {
	now := p.now()
	price := paperPriceMin + rand.Float64()*(paperPriceMax-paperPriceMin)
	price = float64(int(price*100+0.5)) / 100
	return Trade{
		Symbol:    tradingsymbol,
		Exchange:  paperExchange,
		Segment:   paperSegment,
		Direction: strings.ToLower(string(direction)),
		Quantity:  qty,
		Price:     price,
		TradeID:   fmt.Sprintf("26%010d", rand.Int63n(9000000000)+1000000000),
		OrderID:   fmt.Sprintf("%06d", rand.Int63n(900000)+100000),
		At:        now,
	}
}
