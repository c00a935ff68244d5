package calculator

import (
	"log/slog"

	"github.com/lexhour/lexhour/internal/models"
)

// unknownClientName labels distribution rows whose client ID is missing from
// the roster. Hours are still reported; the amount stays zero because no
// rate is known.
const unknownClientName = "Unknown client"

const secondsPerHour = 3600.0

// ComputeStats derives dashboard statistics from raw entries and the client
// roster. Entries are merged first so the figures match the grouped view the
// user sees.
//
// The function never fails across its boundary: nil inputs yield the zero
// stats record, and any panic during computation is recovered, logged and
// replaced by the zero record. The result is always fully populated.
//
// UnbilledAmount values unassigned time at the mean hourly rate across the
// roster (zero with an empty roster). That is a deliberate estimate carried
// over from the product, not an exact computation.
func ComputeStats(entries []models.TimeEntry, clients []models.Client) (stats models.DashboardStats) {
	stats = zeroStats()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("stats computation failed", "panic", r)
			stats = zeroStats()
		}
	}()

	if entries == nil || clients == nil {
		return stats
	}

	merged := MergeEntries(entries)

	rates := make(map[string]float64, len(clients))
	names := make(map[string]string, len(clients))
	var rateSum float64
	for _, c := range clients {
		rates[c.ID] = c.HourlyRate
		names[c.ID] = c.Name
		rateSum += c.HourlyRate
	}
	var meanRate float64
	if len(clients) > 0 {
		meanRate = rateSum / float64(len(clients))
	}

	hoursByClient := make(map[string]float64)
	var clientOrder []string
	var totalSec, billableSec, unassignedSec int64

	for _, e := range merged {
		totalSec += e.DurationSec
		if e.ClientID == "" {
			unassignedSec += e.DurationSec
			continue
		}
		// Client assignment alone makes time billable here; the
		// billable flag does not gate the aggregate.
		billableSec += e.DurationSec
		if _, seen := hoursByClient[e.ClientID]; !seen {
			clientOrder = append(clientOrder, e.ClientID)
		}
		hoursByClient[e.ClientID] += float64(e.DurationSec) / secondsPerHour
	}

	stats.TotalHours = float64(totalSec) / secondsPerHour
	stats.BillableHours = float64(billableSec) / secondsPerHour
	stats.UnbilledAmount = float64(unassignedSec) / secondsPerHour * meanRate

	for _, id := range clientOrder {
		hours := hoursByClient[id]
		dist := models.ClientDistribution{
			ClientID:   id,
			ClientName: unknownClientName,
			Hours:      hours,
		}
		if name, known := names[id]; known {
			dist.ClientName = name
			dist.Amount = hours * rates[id]
		}
		stats.Distribution = append(stats.Distribution, dist)
	}

	return stats
}

func zeroStats() models.DashboardStats {
	return models.DashboardStats{
		Distribution: []models.ClientDistribution{},
	}
}
