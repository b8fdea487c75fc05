package exec

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"tv-kite-bridge/internal/signal"

	"go.uber.org/zap"
)

type fixedLots int

func (f fixedLots) LotSize(ctx context.Context, tradingsymbol string) int {
	_ = ctx
	_ = tradingsymbol
	return int(f)
}

type memorySink struct {
	trades []Trade
	err    error
}

func (m *memorySink) Record(trade Trade) error {
	if m.err != nil {
		return m.err
	}
	m.trades = append(m.trades, trade)
	return nil
}

func TestPaperEnterSynthesizesFill(t *testing.T) {
	sink := &memorySink{}
	paper := NewPaper(fixedLots(100), sink, zap.NewNop(), nil, nil)
	paper.now = func() time.Time {
		return time.Date(2025, time.February, 10, 9, 30, 0, 0, time.UTC)
	}

	paper.Enter(context.Background(), "NIFTYGOLD25FEBFUT", signal.Long)

	if len(sink.trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(sink.trades))
	}
	trade := sink.trades[0]
	if trade.Symbol != "NIFTYGOLD25FEBFUT" {
		t.Fatalf("unexpected symbol %q", trade.Symbol)
	}
	if trade.Direction != "long" {
		t.Fatalf("expected lowercase direction, got %q", trade.Direction)
	}
	if trade.Quantity != 100 {
		t.Fatalf("expected quantity 100, got %d", trade.Quantity)
	}
	if trade.Price < 700.00 || trade.Price > 750.00 {
		t.Fatalf("price %f outside [700,750]", trade.Price)
	}
	if len(trade.TradeID) != 12 || trade.TradeID[:2] != "26" {
		t.Fatalf("unexpected trade id %q", trade.TradeID)
	}
	if len(trade.OrderID) != 6 {
		t.Fatalf("unexpected order id %q", trade.OrderID)
	}
}

func TestPaperTradeRowLayout(t *testing.T) {
	trade := Trade{
		Symbol:    "GOLD25FEBFUT",
		Exchange:  "NSE",
		Segment:   "FO",
		Direction: "long",
		Quantity:  100,
		Price:     712.5,
		TradeID:   "261234567890",
		OrderID:   "123456",
		At:        time.Date(2025, time.February, 10, 9, 30, 15, 0, time.UTC),
	}
	row := trade.Row()
	if len(row) != 12 {
		t.Fatalf("expected 12 fields, got %d", len(row))
	}
	want := []string{
		"GOLD25FEBFUT", "2025-02-10", "NSE", "FO", "long", "FALSE",
		"100", "712.50", "261234567890", "123456",
		"2025-02-10T09:30:15", "2025-02-10",
	}
	for i := range want {
		if row[i] != want[i] {
			t.Fatalf("field %d: got %q, want %q", i, row[i], want[i])
		}
	}
}

func TestPaperPriceTwoDecimals(t *testing.T) {
	sink := &memorySink{}
	paper := NewPaper(fixedLots(1), sink, zap.NewNop(), nil, nil)
	for i := 0; i < 50; i++ {
		paper.Enter(context.Background(), "GOLD25FEBFUT", signal.Short)
	}
	for _, trade := range sink.trades {
		cents := trade.Price * 100
		if cents != float64(int(cents)) {
			t.Fatalf("price %v not limited to 2 decimals", trade.Price)
		}
		if _, err := strconv.ParseFloat(trade.Row()[7], 64); err != nil {
			t.Fatalf("price field not numeric: %v", err)
		}
	}
}

func TestPaperPositionAlwaysFlat(t *testing.T) {
	paper := NewPaper(fixedLots(1), &memorySink{}, zap.NewNop(), nil, nil)
	if qty := paper.PositionQuantity(context.Background(), "GOLD25FEBFUT"); qty != 0 {
		t.Fatalf("expected 0 position, got %d", qty)
	}
	if err := paper.Ready(); err != nil {
		t.Fatalf("paper executor should always be ready: %v", err)
	}
}

func TestPaperSinkFailureAbsorbed(t *testing.T) {
	sink := &memorySink{err: errors.New("disk full")}
	paper := NewPaper(fixedLots(1), sink, zap.NewNop(), nil, nil)
	paper.Enter(context.Background(), "GOLD25FEBFUT", signal.Long)
}

func TestPaperFillHook(t *testing.T) {
	var fills []Fill
	hook := func(f Fill) { fills = append(fills, f) }
	paper := NewPaper(fixedLots(30), &memorySink{}, zap.NewNop(), nil, hook)
	paper.Enter(context.Background(), "SILVER25FEBFUT", signal.Short)
	if len(fills) != 1 {
		t.Fatalf("expected 1 fill, got %d", len(fills))
	}
	if !fills[0].Paper || fills[0].Quantity != 30 || fills[0].Direction != "SHORT" {
		t.Fatalf("unexpected fill: %+v", fills[0])
	}
}
