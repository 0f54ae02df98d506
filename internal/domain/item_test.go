package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func testPrimary(t *testing.T) *TimeBoxedItem {
	t.Helper()
	start := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)
	p, err := NewPrimary("evt-1", "Launch", "", start, start.Add(8*time.Hour), testNow)
	require.NoError(t, err)
	return p
}

func TestHierarchyType_Depth(t *testing.T) {
	cases := []struct {
		h     HierarchyType
		depth int
	}{
		{HierarchyPrimary, 0},
		{HierarchyMilestone, 1},
		{HierarchyStep, 2},
		{HierarchyType("bogus"), -1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.depth, tc.h.Depth(), "type=%s", tc.h)
	}
}

func TestNewPrimary_EmptyTitle(t *testing.T) {
	_, err := NewPrimary("x", "  ", "", testNow, testNow, testNow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestNewPrimary_EndBeforeStart(t *testing.T) {
	_, err := NewPrimary("x", "Event", "", testNow, testNow.Add(-time.Minute), testNow)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewChild_Milestone(t *testing.T) {
	p := testPrimary(t)
	p.TeamID = "team-a"
	p.IsTeamEvent = true
	p.CanEdit = false

	m, err := NewChild(p, HierarchyMilestone, "m-1", " Design ", "desc", testNow)
	require.NoError(t, err)

	assert.Equal(t, "Design", m.Title)
	assert.Equal(t, p.Depth()+1, m.Depth())
	assert.Equal(t, p.ID, m.ParentID)
	assert.Equal(t, p.ID, m.PrimaryID)
	assert.False(t, m.IsScheduled)
	assert.Equal(t, p.StartTime, m.StartTime, "placeholder start equals parent start")
	assert.Equal(t, p.StartTime, m.EndTime)
	assert.Equal(t, "team-a", m.TeamID)
	assert.True(t, m.IsTeamEvent)
	assert.False(t, m.CanEdit)
	assert.Empty(t, p.ChildIDs, "constructor must not mutate the parent")
}

func TestNewChild_StepInheritsRoot(t *testing.T) {
	p := testPrimary(t)
	m, err := NewChild(p, HierarchyMilestone, "m-1", "Design", "", testNow)
	require.NoError(t, err)
	m.Schedule(p.StartTime.Add(time.Hour), p.StartTime.Add(2*time.Hour), testNow)

	s, err := NewChild(m, HierarchyStep, "s-1", "Sketch", "", testNow)
	require.NoError(t, err)
	assert.Equal(t, m.ID, s.ParentID)
	assert.Equal(t, p.ID, s.PrimaryID)
	assert.Equal(t, 2, s.Depth())
	assert.Equal(t, m.StartTime, s.StartTime)
}

func TestNewChild_WrongLevel(t *testing.T) {
	p := testPrimary(t)
	_, err := NewChild(p, HierarchyStep, "s-1", "Sketch", "", testNow)
	assert.ErrorIs(t, err, ErrValidation)

	m, err := NewChild(p, HierarchyMilestone, "m-1", "M", "", testNow)
	require.NoError(t, err)
	s, err := NewChild(m, HierarchyStep, "s-1", "S", "", testNow)
	require.NoError(t, err)
	_, err = NewChild(s, HierarchyStep, "s-2", "Nested", "", testNow)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewChild_EmptyTitle(t *testing.T) {
	p := testPrimary(t)
	_, err := NewChild(p, HierarchyMilestone, "m-1", "", "", testNow)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestChildIDs_InsertAndRemove(t *testing.T) {
	p := testPrimary(t)
	p.InsertChildAt("a", 0)
	p.InsertChildAt("c", 5)
	p.InsertChildAt("b", 1)
	p.InsertChildAt("b", 0)
	assert.Equal(t, []string{"a", "b", "c"}, p.ChildIDs)

	assert.Equal(t, 1, p.RemoveChild("b"))
	assert.Equal(t, -1, p.RemoveChild("b"))
	assert.Equal(t, []string{"a", "c"}, p.ChildIDs)
}

func TestIndexOfChild_NilChildIDs(t *testing.T) {
	item := &TimeBoxedItem{}
	assert.Equal(t, -1, item.IndexOfChild("x"))
	assert.False(t, item.HasChild("x"))
}

func TestClone_DoesNotShareChildIDs(t *testing.T) {
	p := testPrimary(t)
	p.ChildIDs = []string{"a"}
	cp := p.Clone()
	cp.ChildIDs[0] = "z"
	assert.Equal(t, "a", p.ChildIDs[0])
}

func TestMarkCompleted_MilestoneTracksMetadata(t *testing.T) {
	p := testPrimary(t)
	m, err := NewChild(p, HierarchyMilestone, "m-1", "M", "", testNow)
	require.NoError(t, err)

	m.MarkCompleted(true, "ana", testNow)
	assert.True(t, m.Completed)
	assert.Equal(t, "ana", m.CompletedBy)
	require.NotNil(t, m.CompletedAt)
	assert.Equal(t, testNow, *m.CompletedAt)

	m.MarkCompleted(false, "", testNow)
	assert.False(t, m.Completed)
	assert.Empty(t, m.CompletedBy)
	assert.Nil(t, m.CompletedAt)
}

func TestMarkCompleted_StepHasNoMetadata(t *testing.T) {
	p := testPrimary(t)
	m, _ := NewChild(p, HierarchyMilestone, "m-1", "M", "", testNow)
	s, _ := NewChild(m, HierarchyStep, "s-1", "S", "", testNow)
	s.MarkCompleted(true, "ana", testNow)
	assert.True(t, s.Completed)
	assert.Empty(t, s.CompletedBy)
	assert.Nil(t, s.CompletedAt)
}

func TestUnschedule_ResetsPlaceholder(t *testing.T) {
	p := testPrimary(t)
	m, _ := NewChild(p, HierarchyMilestone, "m-1", "M", "", testNow)
	m.Schedule(p.StartTime.Add(time.Hour), p.StartTime.Add(2*time.Hour), testNow)
	assert.Equal(t, 60, m.DurationMinutes())

	m.Unschedule(p.StartTime, testNow)
	assert.False(t, m.IsScheduled)
	assert.Equal(t, p.StartTime, m.StartTime)
	assert.Equal(t, 0, m.DurationMinutes())
}

func TestValidate(t *testing.T) {
	p := testPrimary(t)
	require.NoError(t, p.Validate())

	orphan := &TimeBoxedItem{ID: "x", Title: "x", HierarchyType: HierarchyStep}
	assert.ErrorIs(t, orphan.Validate(), ErrValidation)

	bad := p.Clone()
	bad.ParentID = "other"
	assert.ErrorIs(t, bad.Validate(), ErrValidation)
}

func TestCommand_Reversible(t *testing.T) {
	item := TimeBoxedItem{ID: "a"}
	assert.True(t, (&Command{Action: ActionCreate, After: []TimeBoxedItem{item}}).Reversible())
	assert.False(t, (&Command{Action: ActionUpdate, After: []TimeBoxedItem{item}}).Reversible())
	assert.True(t, (&Command{Action: ActionDelete, Before: []TimeBoxedItem{item}}).Reversible())
	assert.False(t, (&Command{Action: CommandAction("noop")}).Reversible())
}

func TestCommand_Touched(t *testing.T) {
	cmd := &Command{
		Before: []TimeBoxedItem{{ID: "p"}},
		After:  []TimeBoxedItem{{ID: "p"}, {ID: "c"}},
	}
	assert.Equal(t, []string{"p", "c"}, cmd.Touched())
}

func TestDragPayload_RoundTrip(t *testing.T) {
	p := testPrimary(t)
	data, err := MarshalDragPayload(p)
	require.NoError(t, err)

	got, err := ParseDragPayload(data)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.True(t, p.StartTime.Equal(got.StartTime))
}

func TestDragPayload_MissingID(t *testing.T) {
	_, err := ParseDragPayload([]byte(`{"Title":"x"}`))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseDragPayload([]byte(`not json`))
	assert.Error(t, err)
}
