package domain

import (
	"fmt"
	"strings"
	"time"
)

// TimeBoxedItem is the shared shape of primary events, milestones and steps.
type TimeBoxedItem struct {
	ID            string
	Title         string
	Description   string
	HierarchyType HierarchyType
	ParentID      string // empty for primary events
	PrimaryID     string // root ancestor; a primary's PrimaryID is its own ID
	ChildIDs      []string

	// Timing. Unscheduled items carry placeholder times equal to the
	// parent's start and must not be used for conflict or distribution math.
	IsScheduled     bool
	StartTime       time.Time
	EndTime         time.Time
	SchedulingOrder int

	// Completion
	Completed   bool
	CompletedBy string
	CompletedAt *time.Time

	// Inherited from the parent on creation
	TeamID      string
	IsTeamEvent bool
	CanEdit     bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Depth returns the hierarchy depth (0 primary, 1 milestone, 2 step).
func (t *TimeBoxedItem) Depth() int {
	return t.HierarchyType.Depth()
}

// DurationMinutes returns the scheduled length in whole minutes.
// Malformed ranges count as zero.
func (t *TimeBoxedItem) DurationMinutes() int {
	if !t.EndTime.After(t.StartTime) {
		return 0
	}
	return int(t.EndTime.Sub(t.StartTime) / time.Minute)
}

// Clone returns a deep copy so snapshots never share ChildIDs backing arrays.
func (t *TimeBoxedItem) Clone() *TimeBoxedItem {
	cp := *t
	if t.ChildIDs != nil {
		cp.ChildIDs = append([]string(nil), t.ChildIDs...)
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		cp.CompletedAt = &at
	}
	return &cp
}

// IndexOfChild returns the position of id in ChildIDs, or -1.
func (t *TimeBoxedItem) IndexOfChild(id string) int {
	for i, c := range t.ChildIDs {
		if c == id {
			return i
		}
	}
	return -1
}

func (t *TimeBoxedItem) HasChild(id string) bool {
	return t.IndexOfChild(id) >= 0
}

// InsertChildAt inserts id at pos, clamping pos into range. Duplicate ids are ignored.
func (t *TimeBoxedItem) InsertChildAt(id string, pos int) {
	if t.HasChild(id) {
		return
	}
	if pos < 0 || pos > len(t.ChildIDs) {
		pos = len(t.ChildIDs)
	}
	t.ChildIDs = append(t.ChildIDs, "")
	copy(t.ChildIDs[pos+1:], t.ChildIDs[pos:])
	t.ChildIDs[pos] = id
}

// RemoveChild splices id out of ChildIDs and reports the index it held.
func (t *TimeBoxedItem) RemoveChild(id string) int {
	idx := t.IndexOfChild(id)
	if idx < 0 {
		return -1
	}
	t.ChildIDs = append(t.ChildIDs[:idx], t.ChildIDs[idx+1:]...)
	return idx
}

// Schedule sets a concrete window on the item.
func (t *TimeBoxedItem) Schedule(start, end time.Time, now time.Time) {
	t.IsScheduled = true
	t.StartTime = start
	t.EndTime = end
	t.UpdatedAt = now
}

// Unschedule clears the window, resetting placeholder times to anchor
// (the parent's current start).
func (t *TimeBoxedItem) Unschedule(anchor time.Time, now time.Time) {
	t.IsScheduled = false
	t.StartTime = anchor
	t.EndTime = anchor
	t.UpdatedAt = now
}

// MarkCompleted toggles completion. Milestones record who and when;
// reopening clears that metadata.
func (t *TimeBoxedItem) MarkCompleted(done bool, by string, now time.Time) {
	t.Completed = done
	t.UpdatedAt = now
	if t.HierarchyType != HierarchyMilestone {
		return
	}
	if done {
		t.CompletedBy = by
		at := now
		t.CompletedAt = &at
		return
	}
	t.CompletedBy = ""
	t.CompletedAt = nil
}

// Validate checks the structural invariants of a single item.
func (t *TimeBoxedItem) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("item id is required: %w", ErrValidation)
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("item %s: title is required: %w", t.ID, ErrValidation)
	}
	if !ValidHierarchyTypes[string(t.HierarchyType)] {
		return fmt.Errorf("item %s: unknown hierarchy type %q: %w", t.ID, t.HierarchyType, ErrValidation)
	}
	if t.HierarchyType == HierarchyPrimary {
		if t.ParentID != "" {
			return fmt.Errorf("item %s: primary event cannot have a parent: %w", t.ID, ErrValidation)
		}
	} else if t.ParentID == "" || t.PrimaryID == "" {
		return fmt.Errorf("item %s: %s requires parent and primary ids: %w", t.ID, t.HierarchyType, ErrValidation)
	}
	if t.IsScheduled && t.EndTime.Before(t.StartTime) {
		return fmt.Errorf("item %s: end before start: %w", t.ID, ErrValidation)
	}
	return nil
}

// NewPrimary builds a root event. Primary events are always scheduled.
func NewPrimary(id, title, description string, start, end, now time.Time) (*TimeBoxedItem, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("event title is required: %w", ErrValidation)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("event %q ends before it starts: %w", title, ErrValidation)
	}
	return &TimeBoxedItem{
		ID:            id,
		Title:         strings.TrimSpace(title),
		Description:   description,
		HierarchyType: HierarchyPrimary,
		PrimaryID:     id,
		IsScheduled:   true,
		StartTime:     start,
		EndTime:       end,
		CanEdit:       true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// NewChild builds an unscheduled child of parent. It does not touch
// parent.ChildIDs; the caller commits both in one transition.
func NewChild(parent *TimeBoxedItem, kind HierarchyType, id, title, description string, now time.Time) (*TimeBoxedItem, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%s title is required: %w", kind, ErrValidation)
	}
	if want := parent.HierarchyType.ChildType(); want == "" || want != kind {
		return nil, fmt.Errorf("cannot create %s under %s %s: %w", kind, parent.HierarchyType, parent.ID, ErrValidation)
	}

	primaryID := parent.PrimaryID
	if parent.HierarchyType == HierarchyPrimary || primaryID == "" {
		primaryID = parent.ID
	}

	return &TimeBoxedItem{
		ID:            id,
		Title:         strings.TrimSpace(title),
		Description:   description,
		HierarchyType: kind,
		ParentID:      parent.ID,
		PrimaryID:     primaryID,
		IsScheduled:   false,
		StartTime:     parent.StartTime,
		EndTime:       parent.StartTime,
		TeamID:        parent.TeamID,
		IsTeamEvent:   parent.IsTeamEvent,
		CanEdit:       parent.CanEdit,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
