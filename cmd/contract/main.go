package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"tv-kite-bridge/internal/contract"
	"tv-kite-bridge/internal/signal"
)

// Resolves the active futures contract for a base symbol on a given
// date. Handy for checking rollover behavior around month boundaries.
func main() {
	base := flag.String("symbol", "", "base symbol, e.g. GOLD")
	date := flag.String("date", "", "trade date as YYYY-MM-DD (default today)")
	flag.Parse()

	cleaned := signal.CleanSymbol(*base)
	if cleaned == "" {
		fmt.Fprintln(os.Stderr, "usage: contract -symbol GOLD [-date 2026-01-15]")
		os.Exit(2)
	}

	today := time.Now()
	if *date != "" {
		parsed, err := time.Parse("2006-01-02", *date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid date %q: %v\n", *date, err)
			os.Exit(2)
		}
		today = parsed
	}

	expiry := contract.Expiry(today)
	cutoff := contract.RolloverCutoff(today)
	fmt.Printf("contract: %s\n", contract.Active(cleaned, today))
	fmt.Printf("expiry:   %s\n", expiry.Format("2006-01-02"))
	fmt.Printf("cutoff:   %s\n", cutoff.Format("2006-01-02"))
}
