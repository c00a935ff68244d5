// Package calculator holds the pure computation core: the time-entry merge
// engine, the dashboard stats aggregator, and display formatters. Nothing in
// this package performs I/O; every function is a total function over its
// documented inputs.
package calculator

import (
	"sort"
	"strings"

	"github.com/lexhour/lexhour/internal/models"
)

// mergeKey identifies entries that collapse into one display row: same
// calendar day, same application, same trimmed window title.
type mergeKey struct {
	day         string
	application string
	windowTitle string
}

func keyFor(e models.TimeEntry) mergeKey {
	return mergeKey{
		day:         e.Timestamp.Format("2006-01-02"),
		application: e.Application,
		windowTitle: strings.TrimSpace(e.WindowTitle),
	}
}

// MergeEntries collapses entries sharing a (day, application, window title)
// key into one synthesized entry each, so repeated activity in the same
// window reads as a single row.
//
// Entries are stably sorted ascending by timestamp first, which fixes the
// "first" and "last" member of every group. Groups of size one pass through
// untouched. The result is ordered descending by timestamp regardless of
// input order. No entry is dropped or duplicated: the total duration of the
// output always equals the total duration of the input.
func MergeEntries(entries []models.TimeEntry) []models.TimeEntry {
	if len(entries) == 0 {
		return []models.TimeEntry{}
	}

	sorted := make([]models.TimeEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	groups := make(map[mergeKey][]models.TimeEntry)
	var order []mergeKey
	for _, e := range sorted {
		k := keyFor(e)
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], e)
	}

	out := make([]models.TimeEntry, 0, len(order))
	for _, k := range order {
		group := groups[k]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		out = append(out, mergeGroup(group))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[j].Timestamp.Before(out[i].Timestamp)
	})
	return out
}

// mergeGroup synthesizes one entry from a chronologically ordered group of
// two or more. The first member contributes the ID, application, window
// title and base fields; durations are summed; distinct non-empty notes are
// joined; the client is resolved by majority vote.
func mergeGroup(group []models.TimeEntry) models.TimeEntry {
	first := group[0]
	last := group[len(group)-1]

	merged := first
	merged.Merged = true
	merged.MergedCount = len(group)
	merged.MergedIDs = make([]string, len(group))
	start := first.Timestamp
	end := last.Timestamp
	merged.StartTime = &start
	merged.EndTime = &end

	var totalSec int64
	var notes []string
	seenNotes := make(map[string]bool)
	clientCounts := make(map[string]int)
	var clientOrder []string

	for i, e := range group {
		merged.MergedIDs[i] = e.ID
		totalSec += e.DurationSec

		if n := strings.TrimSpace(e.Notes); n != "" && !seenNotes[n] {
			seenNotes[n] = true
			notes = append(notes, n)
		}

		if e.ClientID != "" {
			if clientCounts[e.ClientID] == 0 {
				clientOrder = append(clientOrder, e.ClientID)
			}
			clientCounts[e.ClientID]++
		}
	}

	merged.DurationSec = totalSec
	merged.Notes = strings.Join(notes, " | ")
	merged.ClientID = majorityClient(clientCounts, clientOrder)
	return merged
}

// majorityClient returns the most frequent assignment among entries that
// have one. Ties go to the client whose first occurrence is earliest in
// chronological order, which keeps the result deterministic without ever
// consulting map iteration order. Returns "" when no entry is assigned.
func majorityClient(counts map[string]int, order []string) string {
	best := ""
	bestCount := 0
	for _, id := range order {
		if counts[id] > bestCount {
			best = id
			bestCount = counts[id]
		}
	}
	return best
}
