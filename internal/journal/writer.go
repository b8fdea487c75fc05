package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"tv-kite-bridge/internal/config"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

const writeTimeout = 3 * time.Second

// Decision is one engine outcome destined for the journal.
type Decision struct {
	Time          time.Time
	BaseSymbol    string
	TradingSymbol string
	Direction     string
	Previous      string
	Action        string
	HeldQuantity  int
}

// Fill is one dispatched order or simulated fill.
type Fill struct {
	Time          time.Time
	TradingSymbol string
	Direction     string
	Quantity      int
	Price         float64
	TradeID       string
	OrderID       string
	Paper         bool
}

// Writer appends decisions and fills to Postgres off the request path.
// Rows are enqueued onto bounded channels; a full queue drops rather
// than blocking a webhook decision.
type Writer struct {
	db     *sql.DB
	log    *zap.Logger
	schema string

	decisions chan Decision
	fills     chan Fill

	started       atomic.Bool
	dropDecisions atomic.Uint64
	dropFills     atomic.Uint64
}

// New returns nil when journaling is disabled; a nil *Writer is safe to
// use everywhere.
func New(cfg config.JournalConfig, log *zap.Logger) (*Writer, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("journal dsn is required")
	}
	schema := strings.TrimSpace(cfg.Schema)
	if schema == "" {
		schema = "public"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	writer := &Writer{
		db:        db,
		log:       log,
		schema:    schema,
		decisions: make(chan Decision, 256),
		fills:     make(chan Fill, 256),
	}
	if err := writer.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return writer, nil
}

func (w *Writer) Start(ctx context.Context) {
	if w == nil {
		return
	}
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	go w.run(ctx)
}

func (w *Writer) Close() error {
	if w == nil || w.db == nil {
		return nil
	}
	return w.db.Close()
}

func (w *Writer) EnqueueDecision(d Decision) {
	if w == nil {
		return
	}
	select {
	case w.decisions <- d:
		return
	default:
		if w.dropDecisions.Add(1) == 1 && w.log != nil {
			w.log.Warn("journal decision queue full")
		}
	}
}

func (w *Writer) EnqueueFill(f Fill) {
	if w == nil {
		return
	}
	select {
	case w.fills <- f:
		return
	default:
		if w.dropFills.Add(1) == 1 && w.log != nil {
			w.log.Warn("journal fill queue full")
		}
	}
}

func (w *Writer) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-w.decisions:
			w.writeDecision(ctx, d)
		case f := <-w.fills:
			w.writeFill(ctx, f)
		}
	}
}

func (w *Writer) ensureSchema(ctx context.Context) error {
	if w.db == nil {
		return errors.New("journal db not initialized")
	}
	if w.schema != "public" {
		if err := w.exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", w.schema)); err != nil {
			return err
		}
	}
	if err := w.exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id UUID PRIMARY KEY,
		ts TIMESTAMPTZ NOT NULL,
		base_symbol TEXT NOT NULL,
		tradingsymbol TEXT NOT NULL,
		direction TEXT NOT NULL,
		previous TEXT NOT NULL,
		action TEXT NOT NULL,
		held_quantity INTEGER NOT NULL
	)`, w.table("bridge_decisions"))); err != nil {
		return err
	}
	return w.exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id UUID PRIMARY KEY,
		ts TIMESTAMPTZ NOT NULL,
		tradingsymbol TEXT NOT NULL,
		direction TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		trade_id TEXT NOT NULL,
		order_id TEXT NOT NULL,
		paper BOOLEAN NOT NULL
	)`, w.table("bridge_fills")))
}

func (w *Writer) writeDecision(ctx context.Context, d Decision) {
	if w.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	query := fmt.Sprintf(`INSERT INTO %s (
		id, ts, base_symbol, tradingsymbol, direction, previous, action, held_quantity
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`, w.table("bridge_decisions"))
	if _, err := w.db.ExecContext(ctx, query,
		uuid.New(),
		d.Time,
		d.BaseSymbol,
		d.TradingSymbol,
		d.Direction,
		d.Previous,
		d.Action,
		d.HeldQuantity,
	); err != nil && w.log != nil {
		w.log.Warn("journal decision write failed", zap.Error(err))
	}
}

func (w *Writer) writeFill(ctx context.Context, f Fill) {
	if w.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	query := fmt.Sprintf(`INSERT INTO %s (
		id, ts, tradingsymbol, direction, quantity, price, trade_id, order_id, paper
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`, w.table("bridge_fills"))
	if _, err := w.db.ExecContext(ctx, query,
		uuid.New(),
		f.Time,
		f.TradingSymbol,
		f.Direction,
		f.Quantity,
		f.Price,
		f.TradeID,
		f.OrderID,
		f.Paper,
	); err != nil && w.log != nil {
		w.log.Warn("journal fill write failed", zap.Error(err))
	}
}

func (w *Writer) exec(ctx context.Context, query string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_, err := w.db.ExecContext(ctx, query)
	return err
}

func (w *Writer) table(name string) string {
	return w.schema + "." + name
}
