package testutil

import (
	"time"

	"github.com/alexanderramin/agenda/internal/domain"
	"github.com/google/uuid"
)

// FixedNow is a second-precision instant that survives a SQLite round trip.
var FixedNow = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

// Item options
type ItemOption func(*domain.TimeBoxedItem)

func WithSchedule(start, end time.Time) ItemOption {
	return func(it *domain.TimeBoxedItem) {
		it.IsScheduled = true
		it.StartTime = start
		it.EndTime = end
	}
}

func WithSchedulingOrder(n int) ItemOption {
	return func(it *domain.TimeBoxedItem) {
		it.SchedulingOrder = n
	}
}

func WithCompleted(by string, at time.Time) ItemOption {
	return func(it *domain.TimeBoxedItem) {
		it.MarkCompleted(true, by, at)
	}
}

func WithTeam(teamID string, canEdit bool) ItemOption {
	return func(it *domain.TimeBoxedItem) {
		it.TeamID = teamID
		it.IsTeamEvent = teamID != ""
		it.CanEdit = canEdit
	}
}

func WithDescription(d string) ItemOption {
	return func(it *domain.TimeBoxedItem) {
		it.Description = d
	}
}

func NewTestPrimary(title string, start, end time.Time, opts ...ItemOption) *domain.TimeBoxedItem {
	p, err := domain.NewPrimary(uuid.New().String(), title, "", start, end, FixedNow)
	if err != nil {
		panic(err)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewTestMilestone creates a milestone under parent and appends it to the
// parent's ChildIDs.
func NewTestMilestone(parent *domain.TimeBoxedItem, title string, opts ...ItemOption) *domain.TimeBoxedItem {
	return newTestChild(parent, domain.HierarchyMilestone, title, opts)
}

// NewTestStep creates a step under milestone and appends it to the
// milestone's ChildIDs.
func NewTestStep(milestone *domain.TimeBoxedItem, title string, opts ...ItemOption) *domain.TimeBoxedItem {
	return newTestChild(milestone, domain.HierarchyStep, title, opts)
}

func newTestChild(parent *domain.TimeBoxedItem, kind domain.HierarchyType, title string, opts []ItemOption) *domain.TimeBoxedItem {
	c, err := domain.NewChild(parent, kind, uuid.New().String(), title, "", FixedNow)
	if err != nil {
		panic(err)
	}
	c.SchedulingOrder = len(parent.ChildIDs)
	parent.ChildIDs = append(parent.ChildIDs, c.ID)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Flatten copies items into the value slice the synchronizer and
// repositories exchange.
func Flatten(items ...*domain.TimeBoxedItem) []domain.TimeBoxedItem {
	out := make([]domain.TimeBoxedItem, len(items))
	for i, it := range items {
		out[i] = *it.Clone()
	}
	return out
}
