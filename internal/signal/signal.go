package signal

import "strings"

// Direction is the normalized form of an incoming buy/sell instruction.
type Direction string

const (
	None  Direction = "NONE"
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// ParseDirection maps a raw webhook direction field to a Direction.
// BUY and SELL (any case) map to LONG and SHORT; LONG and SHORT pass
// through. Anything else is not an error, just not actionable.
func ParseDirection(raw string) (Direction, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "BUY", "LONG":
		return Long, true
	case "SELL", "SHORT":
		return Short, true
	default:
		return None, false
	}
}

// CleanSymbol uppercases a raw symbol and strips everything outside A-Z,
// so "NIFTY-GOLD" and "nifty gold" both become "NIFTYGOLD".
func CleanSymbol(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
