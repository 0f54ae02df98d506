package scheduler

import (
	"fmt"
	"time"

	"github.com/alexanderramin/agenda/internal/domain"
)

// Conflict is one overlapping pair reported by DetectConflicts.
type Conflict struct {
	A              domain.TimeBoxedItem
	B              domain.TimeBoxedItem
	OverlapMinutes int
	IsBlocking     bool
}

// DetectConflicts scans every pair of scheduled items of the same hierarchy
// level and reports the overlapping ones. Steps sit inside their milestone's
// window by construction, so cross-level pairs are never compared. A pair of
// steps is blocking; milestones may overlap and only produce warnings.
func DetectConflicts(items []domain.TimeBoxedItem) []Conflict {
	var out []Conflict
	for i := 0; i < len(items); i++ {
		a := items[i]
		if !conflictEligible(a) {
			continue
		}
		for j := i + 1; j < len(items); j++ {
			b := items[j]
			if !conflictEligible(b) || a.HierarchyType != b.HierarchyType || a.ID == b.ID {
				continue
			}
			if !Overlaps(a.StartTime, a.EndTime, b.StartTime, b.EndTime) {
				continue
			}
			out = append(out, Conflict{
				A:              a,
				B:              b,
				OverlapMinutes: OverlapMinutes(a.StartTime, a.EndTime, b.StartTime, b.EndTime),
				IsBlocking:     a.HierarchyType == domain.HierarchyStep,
			})
		}
	}
	return out
}

func conflictEligible(it domain.TimeBoxedItem) bool {
	return it.IsScheduled && it.HierarchyType != domain.HierarchyPrimary
}

// ScheduleCheck is the verdict for placing one item at a proposed window.
type ScheduleCheck struct {
	ItemType    domain.HierarchyType
	HasConflict bool
	IsBlocking  bool
	OutOfBounds bool
	Conflicts   []domain.TimeBoxedItem
}

// CheckSchedule evaluates scheduling candidate at [start,end) against peers
// inside container. Peers that are unscheduled, of another level, or the
// candidate itself are ignored.
func CheckSchedule(candidate domain.TimeBoxedItem, start, end time.Time, container domain.TimeBoxedItem, peers []domain.TimeBoxedItem) ScheduleCheck {
	check := ScheduleCheck{ItemType: candidate.HierarchyType}
	for _, p := range peers {
		if p.ID == candidate.ID || !p.IsScheduled || p.HierarchyType != candidate.HierarchyType {
			continue
		}
		if Overlaps(start, end, p.StartTime, p.EndTime) {
			check.Conflicts = append(check.Conflicts, p)
		}
	}
	overlaps := len(check.Conflicts) > 0
	check.HasConflict = overlaps
	check.IsBlocking = candidate.HierarchyType == domain.HierarchyStep && overlaps

	check.OutOfBounds = IsOutOfBounds(
		OffsetMinutes(container.StartTime, start),
		DurationMinutes(start, end),
		container.DurationMinutes(),
	)
	return check
}

// IsOutOfBounds reports whether a window starting startOffsetMin minutes into
// a container and lasting durationMin minutes extends past the container's
// total duration (or starts before it).
func IsOutOfBounds(startOffsetMin, durationMin, containerDurationMin int) bool {
	return startOffsetMin < 0 || startOffsetMin+durationMin > containerDurationMin
}

// Err returns the error that rejects this placement, or nil when it may
// proceed. Steps are rejected on conflict or overrun; milestones never are.
func (c ScheduleCheck) Err() error {
	if c.ItemType != domain.HierarchyStep {
		return nil
	}
	if c.IsBlocking {
		return fmt.Errorf("overlaps %d scheduled step(s): %w", len(c.Conflicts), domain.ErrBlockingConflict)
	}
	if c.OutOfBounds {
		return fmt.Errorf("step extends past its milestone: %w", domain.ErrOutOfBounds)
	}
	return nil
}

// Warnings returns advisory messages for a placement that is allowed.
func (c ScheduleCheck) Warnings() []string {
	var out []string
	if c.HasConflict && !c.IsBlocking {
		for _, other := range c.Conflicts {
			out = append(out, fmt.Sprintf("overlaps %s %q", other.HierarchyType, other.Title))
		}
	}
	if c.OutOfBounds && c.ItemType != domain.HierarchyStep {
		out = append(out, "extends past the containing event")
	}
	return out
}
