package metrics

type Counter interface {
	Inc()
}

type Metrics struct {
	SignalsReceived  Counter
	SignalsIgnored   Counter
	DecisionsSkipped Counter
	OrdersPlaced     Counter
	OrdersFailed     Counter
	PaperTrades      Counter
}

type noopCounter struct{}

func (noopCounter) Inc() {}

func NewNoop() *Metrics {
	n := noopCounter{}
	return &Metrics{
		SignalsReceived:  n,
		SignalsIgnored:   n,
		DecisionsSkipped: n,
		OrdersPlaced:     n,
		OrdersFailed:     n,
		PaperTrades:      n,
	}
}
