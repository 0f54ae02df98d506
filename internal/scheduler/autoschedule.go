package scheduler

import (
	"time"

	"github.com/alexanderramin/agenda/internal/domain"
)

// Config bounds automatic placement. Work hours are minutes after midnight
// on the wall clock of Location; a nil Location means time.Local.
type Config struct {
	WorkHoursStart         int
	WorkHoursEnd           int
	DefaultDurationMinutes int
	Location               *time.Location
}

// DefaultConfig returns a 09:00-17:00 local working day with 30 minute
// children.
func DefaultConfig() Config {
	return Config{
		WorkHoursStart:         9 * 60,
		WorkHoursEnd:           17 * 60,
		DefaultDurationMinutes: 30,
		Location:               time.Local,
	}
}

func (c Config) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// hasWorkday reports whether the work-hour bounds form a usable window.
func (c Config) hasWorkday() bool {
	return c.WorkHoursEnd > c.WorkHoursStart
}

// dayAt returns the instant minutes after midnight of t's calendar day in
// the work-hours zone.
func (c Config) dayAt(t time.Time, minutes int) time.Time {
	loc := c.location()
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, loc)
}

// snapToWorkStart moves t forward to the start of work hours on its own day
// when it falls before them.
func (c Config) snapToWorkStart(t time.Time) time.Time {
	if !c.hasWorkday() {
		return t
	}
	if ws := c.dayAt(t, c.WorkHoursStart); t.Before(ws) {
		return ws
	}
	return t
}

// crossesWorkEnd reports whether a window starting at start runs past the
// end of work hours on start's day.
func (c Config) crossesWorkEnd(start, end time.Time) bool {
	if !c.hasWorkday() {
		return false
	}
	return end.After(c.dayAt(start, c.WorkHoursEnd))
}

// nextWorkStart returns the start of work hours on the calendar day after t.
func (c Config) nextWorkStart(t time.Time) time.Time {
	loc := c.location()
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d+1, c.WorkHoursStart/60, c.WorkHoursStart%60, 0, 0, loc)
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// AutoSchedule distributes unscheduled children across the parent's window
// after the already-scheduled siblings. It is a pure projection: the
// returned copies carry concrete times and orders; nothing is committed.
//
// Every child gets at least DefaultDurationMinutes even when that overruns
// the parent; callers surface the overrun as an out-of-bounds warning.
// A child whose end would cross the end of work hours is moved to the
// start of work hours on the following day.
func AutoSchedule(parent domain.TimeBoxedItem, scheduled, unscheduled []domain.TimeBoxedItem, cfg Config, now time.Time) []domain.TimeBoxedItem {
	if len(unscheduled) == 0 {
		return nil
	}

	totalParentMin := parent.DurationMinutes()
	scheduledMin := 0
	for _, s := range scheduled {
		scheduledMin += DurationMinutes(s.StartTime, s.EndTime)
	}
	remainingMin := totalParentMin - scheduledMin

	minutesPerChild := floorDiv(remainingMin, len(unscheduled))
	if minutesPerChild < cfg.DefaultDurationMinutes {
		minutesPerChild = cfg.DefaultDurationMinutes
	}

	cursor := parent.StartTime
	if len(scheduled) > 0 {
		sorted := append([]domain.TimeBoxedItem(nil), scheduled...)
		SortByStart(sorted)
		cursor = sorted[len(sorted)-1].EndTime
	}
	cursor = cfg.snapToWorkStart(cursor)

	out := make([]domain.TimeBoxedItem, 0, len(unscheduled))
	for i, child := range unscheduled {
		start := cursor
		end := addMinutes(start, minutesPerChild)
		if cfg.crossesWorkEnd(start, end) {
			start = cfg.nextWorkStart(start)
			end = addMinutes(start, minutesPerChild)
		}
		cursor = end

		placed := child.Clone()
		placed.Schedule(start, end, now)
		placed.SchedulingOrder = len(scheduled) + i
		out = append(out, *placed)
	}
	return out
}
