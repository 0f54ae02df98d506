package scheduler

import (
	"sort"

	"github.com/alexanderramin/agenda/internal/domain"
)

// SortByStart orders items by start time, breaking ties by scheduling order
// and then id so the result is deterministic.
func SortByStart(items []domain.TimeBoxedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		if a.SchedulingOrder != b.SchedulingOrder {
			return a.SchedulingOrder < b.SchedulingOrder
		}
		return a.ID < b.ID
	})
}

// SortBySchedulingOrder orders siblings by their scheduling order:
// 1. SchedulingOrder ascending
// 2. Scheduled before unscheduled
// 3. Start time ascending
// 4. ID lexical ascending
func SortBySchedulingOrder(items []domain.TimeBoxedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.SchedulingOrder != b.SchedulingOrder {
			return a.SchedulingOrder < b.SchedulingOrder
		}
		if a.IsScheduled != b.IsScheduled {
			return a.IsScheduled
		}
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		return a.ID < b.ID
	})
}

// Renormalize rewrites SchedulingOrder densely as 0..n-1 in slice order.
// It reports whether any value changed.
func Renormalize(items []*domain.TimeBoxedItem) bool {
	changed := false
	for i, it := range items {
		if it.SchedulingOrder != i {
			it.SchedulingOrder = i
			changed = true
		}
	}
	return changed
}
