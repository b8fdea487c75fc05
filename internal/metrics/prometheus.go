package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const promNamespace = "tv_kite_bridge"

type promCounter struct {
	counter prometheus.Counter
}

func (p promCounter) Inc() {
	p.counter.Inc()
}

type Prometheus struct {
	Metrics *Metrics

	registry         *prometheus.Registry
	signalsReceived  prometheus.Counter
	signalsIgnored   prometheus.Counter
	decisionsSkipped prometheus.Counter
	ordersPlaced     prometheus.Counter
	ordersFailed     prometheus.Counter
	paperTrades      prometheus.Counter
}

func NewPrometheus() *Prometheus {
	registry := prometheus.NewRegistry()
	signalsReceived := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "signals_received_total",
		Help:      "Total number of webhook signals received.",
	})
	signalsIgnored := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "signals_ignored_total",
		Help:      "Total number of webhook signals ignored as non-actionable.",
	})
	decisionsSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "decisions_skipped_total",
		Help:      "Total number of duplicate signals skipped by the decision engine.",
	})
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "orders_placed_total",
		Help:      "Total number of live orders placed.",
	})
	ordersFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "orders_failed_total",
		Help:      "Total number of order dispatch failures.",
	})
	paperTrades := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "paper_trades_total",
		Help:      "Total number of simulated fills recorded.",
	})

	registry.MustRegister(signalsReceived, signalsIgnored, decisionsSkipped, ordersPlaced, ordersFailed, paperTrades)

	m := &Metrics{
		SignalsReceived:  promCounter{signalsReceived},
		SignalsIgnored:   promCounter{signalsIgnored},
		DecisionsSkipped: promCounter{decisionsSkipped},
		OrdersPlaced:     promCounter{ordersPlaced},
		OrdersFailed:     promCounter{ordersFailed},
		PaperTrades:      promCounter{paperTrades},
	}

	return &Prometheus{
		Metrics:          m,
		registry:         registry,
		signalsReceived:  signalsReceived,
		signalsIgnored:   signalsIgnored,
		decisionsSkipped: decisionsSkipped,
		ordersPlaced:     ordersPlaced,
		ordersFailed:     ordersFailed,
		paperTrades:      paperTrades,
	}
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
