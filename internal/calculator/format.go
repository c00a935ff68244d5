package calculator

import (
	"fmt"

	"github.com/lexhour/lexhour/internal/models"
)

// defaultCurrencySymbol prefixes formatted amounts when no symbol is
// configured.
const defaultCurrencySymbol = "$"

// notBillable is the sentinel shown for entries with no client, to
// distinguish "not billable" from "billed $0.00".
const notBillable = "-"

// FormatDuration renders a non-negative second count as a compact display
// string: "2h 05m", "15m 30s" or "45s".
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatAmount renders a monetary amount with the default currency symbol
// and two decimal places.
func FormatAmount(amount float64) string {
	return FormatAmountWith(defaultCurrencySymbol, amount)
}

// FormatAmountWith renders a monetary amount with the given currency symbol
// prefix and two decimal places.
func FormatAmountWith(symbol string, amount float64) string {
	return fmt.Sprintf("%s%.2f", symbol, amount)
}

// FormatEntryAmount renders the billed value of an entry, or the "-"
// sentinel when the entry has no client assignment or the client is
// unknown.
func FormatEntryAmount(entry models.TimeEntry, client *models.Client) string {
	if entry.ClientID == "" || client == nil {
		return notBillable
	}
	hours := float64(entry.DurationSec) / secondsPerHour
	return FormatAmount(hours * client.HourlyRate)
}
