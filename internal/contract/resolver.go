package contract

import (
	"fmt"
	"strings"
	"time"
)

// Monthly futures roll a few days before expiry. The exchange expiry day is
// approximated as the last Monday of the contract month; once today is past
// expiry minus rolloverLeadDays, signals map to the next month's contract.
const rolloverLeadDays = 4

// Active resolves the tradingsymbol of the currently active monthly futures
// contract for a base symbol, e.g. Active("NIFTYGOLD", 2025-02-10) ->
// "NIFTYGOLD25FEBFUT". Pure and deterministic given (symbol, date).
func Active(base string, today time.Time) string {
	year, month := activeMonth(today)
	return Symbol(base, year, month)
}

// Symbol formats a contract identifier as {BASE}{YY}{MON}FUT.
func Symbol(base string, year int, month time.Month) string {
	return fmt.Sprintf("%s%02d%sFUT", base, year%100, strings.ToUpper(month.String()[:3]))
}

// Expiry returns the expiry proxy day (last Monday) of today's month.
func Expiry(today time.Time) time.Time {
	lastDay := time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, today.Location()).AddDate(0, 0, -1)
	for lastDay.Weekday() != time.Monday {
		lastDay = lastDay.AddDate(0, 0, -1)
	}
	return lastDay
}

// RolloverCutoff returns the last date on which today's month is still the
// active contract month.
func RolloverCutoff(today time.Time) time.Time {
	return Expiry(today).AddDate(0, 0, -rolloverLeadDays)
}

func activeMonth(today time.Time) (int, time.Month) {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	if day.After(RolloverCutoff(today)) {
		if today.Month() == time.December {
			return today.Year() + 1, time.January
		}
		return today.Year(), today.Month() + 1
	}
	return today.Year(), today.Month()
}
