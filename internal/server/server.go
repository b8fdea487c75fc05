package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"tv-kite-bridge/internal/metrics"
	"tv-kite-bridge/internal/signal"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler is the decision surface the webhook dispatches into.
type Handler interface {
	Ready() error
	Handle(ctx context.Context, base string, direction signal.Direction)
}

// Server exposes the TradingView webhook plus health and metrics
// endpoints.
type Server struct {
	addr   string
	router *gin.Engine
	log    *zap.Logger
}

// Config describes the HTTP server dependencies.
type Config struct {
	Addr           string
	Engine         Handler
	Log            *zap.Logger
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	MetricsPath    string
}

// webhookRequest mirrors a TradingView alert body. TradingView puts the
// alert text under "message"; "signal" is accepted for hand-crafted
// payloads.
type webhookRequest struct {
	Symbol  string `json:"symbol"`
	Signal  string `json:"signal"`
	Message string `json:"message"`
}

func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("webhook server requires an engine")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":5000"
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(cfg.Log))

	s := &Server{addr: cfg.Addr, router: router, log: cfg.Log}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/webhook", s.handleWebhook(cfg.Engine, cfg.Metrics))
	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(cfg.MetricsHandler))
	}

	return s, nil
}

func (s *Server) handleWebhook(engine Handler, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req webhookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.log.Warn("webhook: malformed body", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid json body"})
			return
		}

		m.SignalsReceived.Inc()

		raw := req.Signal
		if raw == "" {
			raw = req.Message
		}
		base := signal.CleanSymbol(req.Symbol)
		direction, ok := signal.ParseDirection(raw)
		if !ok || base == "" {
			m.SignalsIgnored.Inc()
			s.log.Info("webhook: ignored",
				zap.String("symbol", req.Symbol),
				zap.String("signal", raw))
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}

		if err := engine.Ready(); err != nil {
			s.log.Error("webhook: broker unavailable", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "broker client unavailable"})
			return
		}

		engine.Handle(c.Request.Context(), base, direction)
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"symbol":    base,
			"direction": string(direction),
		})
	}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("duration", time.Since(start)))
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Router exposes the handler for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
