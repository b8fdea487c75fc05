package state

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tv-kite-bridge/internal/signal"

	"github.com/google/uuid"
)

const lastDirectionPrefix = "signal:last:"

// LastDirection loads the persisted last-applied direction for a base
// symbol. A nil store reads as "never set".
func LastDirection(ctx context.Context, store Store, base string) (signal.Direction, bool, error) {
	if store == nil {
		return signal.None, false, nil
	}
	raw, ok, err := store.Get(ctx, lastDirectionPrefix+base)
	if err != nil || !ok {
		return signal.None, false, err
	}
	switch signal.Direction(strings.TrimSpace(raw)) {
	case signal.Long:
		return signal.Long, true, nil
	case signal.Short:
		return signal.Short, true, nil
	default:
		return signal.None, false, nil
	}
}

// SaveLastDirection persists the last-applied direction for a base symbol.
func SaveLastDirection(ctx context.Context, store Store, base string, direction signal.Direction) error {
	if store == nil {
		return nil
	}
	return store.Set(ctx, lastDirectionPrefix+base, string(direction))
}

// DecisionAudit is one append-only record of a handled decision.
type DecisionAudit struct {
	Time          time.Time `json:"time"`
	BaseSymbol    string    `json:"base_symbol"`
	TradingSymbol string    `json:"tradingsymbol"`
	Direction     string    `json:"direction"`
	Previous      string    `json:"previous"`
	Action        string    `json:"action"`
	HeldQuantity  int       `json:"held_quantity"`
}

// AppendDecisionAudit records a decision outcome. Audit rows are best
// effort; failures are returned so the caller can log them, not abort.
func AppendDecisionAudit(ctx context.Context, store Store, audit DecisionAudit) error {
	if store == nil {
		return nil
	}
	payload, err := json.Marshal(audit)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("decision:%d:%s", audit.Time.UnixNano(), uuid.NewString())
	return store.Set(ctx, key, string(payload))
}
