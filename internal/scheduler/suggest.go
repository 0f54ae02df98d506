package scheduler

import (
	"time"

	"github.com/alexanderramin/agenda/internal/domain"
)

// NextFreeSlot finds the earliest window of durationMin minutes inside
// container that overlaps none of the scheduled busy items and stays within
// work hours. It reports false when no such window fits before the
// container ends.
func NextFreeSlot(container domain.TimeBoxedItem, durationMin int, busy []domain.TimeBoxedItem, cfg Config) (time.Time, time.Time, bool) {
	if durationMin <= 0 {
		durationMin = cfg.DefaultDurationMinutes
	}
	if durationMin <= 0 {
		return time.Time{}, time.Time{}, false
	}

	var windows []domain.TimeBoxedItem
	for _, b := range busy {
		if b.IsScheduled {
			windows = append(windows, b)
		}
	}
	SortByStart(windows)

	start := cfg.snapToWorkStart(container.StartTime)
	for {
		end := addMinutes(start, durationMin)
		if end.After(container.EndTime) {
			return time.Time{}, time.Time{}, false
		}
		if cfg.crossesWorkEnd(start, end) {
			start = cfg.nextWorkStart(start)
			continue
		}

		moved := false
		for _, b := range windows {
			if Overlaps(start, end, b.StartTime, b.EndTime) {
				start = b.EndTime
				moved = true
				break
			}
		}
		if !moved {
			return start, end, true
		}
	}
}
