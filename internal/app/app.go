package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"tv-kite-bridge/internal/alerts"
	"tv-kite-bridge/internal/config"
	"tv-kite-bridge/internal/engine"
	"tv-kite-bridge/internal/exec"
	"tv-kite-bridge/internal/instruments"
	"tv-kite-bridge/internal/journal"
	"tv-kite-bridge/internal/kite"
	"tv-kite-bridge/internal/metrics"
	"tv-kite-bridge/internal/server"
	"tv-kite-bridge/internal/state"
	"tv-kite-bridge/internal/state/sqlite"

	"go.uber.org/zap"
)

// App owns the wired components for one bridge process.
type App struct {
	cfg      *config.Config
	log      *zap.Logger
	store    *sqlite.Store
	kite     *kite.Client
	recorder *exec.CSVRecorder
	engine   *engine.Engine
	journal  *journal.Writer
	server   *server.Server
}

func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.State.SQLitePath), 0o755); err != nil {
		return nil, err
	}
	store, err := sqlite.New(cfg.State.SQLitePath)
	if err != nil {
		return nil, err
	}

	m := metrics.NewNoop()
	var metricsHandler *metrics.Prometheus
	if cfg.Metrics.EnabledValue() {
		metricsHandler = metrics.NewPrometheus()
		m = metricsHandler.Metrics
	}

	kiteClient := kite.New(cfg.Kite, log)
	lots := instruments.NewLots(kiteClient, cfg.Trading.Exchange, log)

	journalWriter, err := journal.New(cfg.Journal, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	hook := func(fill exec.Fill) {
		journalWriter.EnqueueFill(journal.Fill{
			Time:          fill.At,
			TradingSymbol: fill.TradingSymbol,
			Direction:     fill.Direction,
			Quantity:      fill.Quantity,
			Price:         fill.Price,
			TradeID:       fill.TradeID,
			OrderID:       fill.OrderID,
			Paper:         fill.Paper,
		})
	}

	var (
		executor exec.Executor
		recorder *exec.CSVRecorder
	)
	switch cfg.Trading.Mode {
	case config.ModePaper:
		if err := os.MkdirAll(filepath.Dir(cfg.Paper.TradesPath), 0o755); err != nil {
			_ = store.Close()
			return nil, err
		}
		recorder, err = exec.NewCSVRecorder(cfg.Paper.TradesPath)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		executor = exec.NewPaper(lots, recorder, log, m, hook)
	case config.ModeLive:
		executor = exec.NewLive(kiteClient, lots, cfg.Trading.Exchange, cfg.Trading.Product, log, m, hook)
	default:
		_ = store.Close()
		return nil, fmt.Errorf("unknown trading mode %q", cfg.Trading.Mode)
	}

	telegram := alerts.NewTelegram(cfg.Telegram, log)
	eng := engine.New(executor, store, log, m, telegram)
	eng.SetDecisionHook(func(d state.DecisionAudit) {
		journalWriter.EnqueueDecision(journal.Decision{
			Time:          d.Time,
			BaseSymbol:    d.BaseSymbol,
			TradingSymbol: d.TradingSymbol,
			Direction:     d.Direction,
			Previous:      d.Previous,
			Action:        d.Action,
			HeldQuantity:  d.HeldQuantity,
		})
	})

	serverCfg := server.Config{
		Addr:        cfg.Server.Addr,
		Engine:      eng,
		Log:         log,
		Metrics:     m,
		MetricsPath: cfg.Metrics.Path,
	}
	if metricsHandler != nil {
		serverCfg.MetricsHandler = metricsHandler.Handler()
	}
	srv, err := server.New(serverCfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &App{
		cfg:      cfg,
		log:      log,
		store:    store,
		kite:     kiteClient,
		recorder: recorder,
		engine:   eng,
		journal:  journalWriter,
		server:   srv,
	}, nil
}

// Run serves the webhook until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.close()
	if a.cfg.Trading.Mode == config.ModeLive {
		if err := a.kite.Ready(); err != nil {
			a.log.Warn("broker client not ready at startup; requests will be rejected until it is", zap.Error(err))
		}
	}
	a.journal.Start(ctx)
	a.log.Info("bridge listening",
		zap.String("addr", a.server.Addr()),
		zap.String("mode", a.cfg.Trading.Mode),
	)
	return a.server.Start(ctx)
}

func (a *App) close() {
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			a.log.Warn("paper trade log close failed", zap.Error(err))
		}
	}
	if err := a.journal.Close(); err != nil {
		a.log.Warn("journal close failed", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("state store close failed", zap.Error(err))
	}
}
