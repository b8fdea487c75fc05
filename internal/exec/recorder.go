package exec

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// Trade is one synthetic fill destined for the paper trade log.
type Trade struct {
	Symbol    string
	Exchange  string
	Segment   string
	Direction string
	Quantity  int
	Price     float64
	TradeID   string
	OrderID   string
	At        time.Time
}

// Row renders the fixed 12-column layout of the paper trade log: symbol,
// trade date, exchange, segment, direction, order-type flag, quantity,
// price, trade id, order id, trade time, log date.
func (t Trade) Row() []string {
	return []string{
		t.Symbol,
		t.At.Format("2006-01-02"),
		t.Exchange,
		t.Segment,
		t.Direction,
		"FALSE",
		strconv.Itoa(t.Quantity),
		strconv.FormatFloat(t.Price, 'f', 2, 64),
		t.TradeID,
		t.OrderID,
		t.At.Format("2006-01-02T15:04:05"),
		t.At.Format("2006-01-02"),
	}
}

// CSVRecorder appends paper fills to a durable CSV log. Rows are flushed
// per write; the log is append-only and never rewritten by this process.
type CSVRecorder struct {
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

func NewCSVRecorder(path string) (*CSVRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &CSVRecorder{file: file, w: csv.NewWriter(file)}, nil
}

func (r *CSVRecorder) Record(trade Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.w.Write(trade.Row()); err != nil {
		return err
	}
	r.w.Flush()
	return r.w.Error()
}

func (r *CSVRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	r.w.Flush()
	err := r.file.Close()
	r.file = nil
	return err
}
