package instruments

import (
	"context"
	"sync"

	"tv-kite-bridge/internal/kite"

	"go.uber.org/zap"
)

// DefaultLotSize is the fail-open quantity used when the instrument dump
// cannot answer. Submitting one lot-equivalent unit beats blocking the
// whole decision, so lookup failures never surface to callers.
const DefaultLotSize = 1

// Source supplies the instrument dump for an exchange.
type Source interface {
	Instruments(ctx context.Context, exchange string) ([]kite.Instrument, error)
}

// Lots resolves order quantity granularity per tradingsymbol. Entries are
// cached forever; lot sizes are stable for a contract's life.
type Lots struct {
	source   Source
	exchange string
	log      *zap.Logger

	mu    sync.Mutex
	cache map[string]int
}

func NewLots(source Source, exchange string, log *zap.Logger) *Lots {
	return &Lots{
		source:   source,
		exchange: exchange,
		log:      log,
		cache:    make(map[string]int),
	}
}

// LotSize returns the lot size for a tradingsymbol, or DefaultLotSize when
// the symbol is unknown or the dump query fails.
func (l *Lots) LotSize(ctx context.Context, tradingsymbol string) int {
	l.mu.Lock()
	if size, ok := l.cache[tradingsymbol]; ok {
		l.mu.Unlock()
		return size
	}
	l.mu.Unlock()

	dump, err := l.source.Instruments(ctx, l.exchange)
	if err != nil {
		l.log.Error("instrument dump query failed", zap.String("tradingsymbol", tradingsymbol), zap.Error(err))
		return DefaultLotSize
	}
	for _, inst := range dump {
		if inst.TradingSymbol != tradingsymbol {
			continue
		}
		size := inst.LotSize
		if size < 1 {
			size = DefaultLotSize
		}
		l.mu.Lock()
		l.cache[tradingsymbol] = size
		l.mu.Unlock()
		l.log.Info("lot size resolved", zap.String("tradingsymbol", tradingsymbol), zap.Int("lot_size", size))
		return size
	}
	l.log.Warn("tradingsymbol not in instrument dump", zap.String("tradingsymbol", tradingsymbol))
	return DefaultLotSize
}
