package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/agenda/internal/domain"
	"github.com/alexanderramin/agenda/internal/scheduler"
	"github.com/alexanderramin/agenda/internal/service"
	"github.com/alexanderramin/agenda/internal/template"
	"github.com/alexanderramin/agenda/internal/testutil"
)

func at(h, m int) time.Time {
	return time.Date(2025, 3, 10, h, m, 0, 0, time.UTC)
}

func TestRenderTable_AlignsStyledCells(t *testing.T) {
	out := RenderTable([]string{"A", "LONGER"}, [][]string{
		{StyleRed.Render("x"), "1"},
		{"wide cell", "2"},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[2], "x")
	assert.Equal(t, lipgloss.Width(lines[2]), lipgloss.Width(lines[3]))
	assert.Empty(t, RenderTable(nil, nil))
}

func TestRenderTree_Connectors(t *testing.T) {
	out := RenderTree([]TreeItem{
		{Title: "Offsite", Level: 0, Kind: domain.HierarchyPrimary, Scheduled: true},
		{Title: "Morning", Level: 1, Kind: domain.HierarchyMilestone, Scheduled: true},
		{Title: "Welcome", Level: 2, Kind: domain.HierarchyStep, IsLast: true, Completed: true, Scheduled: true},
		{Title: "Afternoon", Level: 1, Kind: domain.HierarchyMilestone, IsLast: true},
		{Title: "Wrap", Level: 2, Kind: domain.HierarchyStep, IsLast: true, Detail: "unscheduled"},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[1], treeBranch)
	assert.Contains(t, lines[2], treePipe+treeCorner)
	assert.Contains(t, lines[2], "✔")
	assert.Contains(t, lines[3], treeCorner)
	assert.Contains(t, lines[3], "○")
	assert.NotContains(t, lines[4], treePipe, "no pipe below a last sibling")
	assert.Contains(t, lines[4], "[ unscheduled ]")
}

func TestFormatAgenda(t *testing.T) {
	primary := testutil.NewTestPrimary("Offsite", at(9, 0), at(17, 0))
	morning := testutil.NewTestMilestone(primary, "Morning", testutil.WithSchedule(at(9, 0), at(10, 0)))
	welcome := testutil.NewTestStep(morning, "Welcome", testutil.WithSchedule(at(9, 0), at(9, 15)))
	later := testutil.NewTestMilestone(primary, "Later", testutil.WithSchedule(at(9, 30), at(10, 30)))
	items := testutil.Flatten(primary, morning, welcome, later)

	out := FormatAgenda(items, time.UTC)
	assert.Contains(t, out, "Offsite")
	assert.Contains(t, out, "Welcome")
	assert.Contains(t, out, "Mar 10 09:00–09:15")
	assert.Contains(t, out, "1 conflict(s)")
	assert.Empty(t, FormatAgenda(nil, time.UTC))
}

func TestFormatConflicts(t *testing.T) {
	assert.Contains(t, FormatConflicts(nil, time.UTC), "No conflicts.")

	a := domain.TimeBoxedItem{Title: "A", StartTime: at(9, 0), EndTime: at(9, 30)}
	b := domain.TimeBoxedItem{Title: "B", StartTime: at(9, 15), EndTime: at(9, 45)}
	out := FormatConflicts([]scheduler.Conflict{{A: a, B: b, OverlapMinutes: 15, IsBlocking: true}}, time.UTC)
	assert.Contains(t, out, "BLOCKING")
	assert.Contains(t, out, "15m")
}

func TestFormatHistory_MarksCursor(t *testing.T) {
	entries := []domain.Command{
		{Action: domain.ActionCreate, ItemType: domain.HierarchyMilestone, ItemID: "aaaaaaaa-1", Timestamp: at(9, 0)},
		{Action: domain.ActionUpdate, ItemType: domain.HierarchyMilestone, ItemID: "aaaaaaaa-1", Timestamp: at(9, 5)},
	}
	out := FormatHistory(entries, 0, time.UTC)
	assert.Contains(t, out, "▶")
	assert.Contains(t, out, "(undone)")
	assert.Contains(t, FormatHistory(nil, -1, time.UTC), "No history.")
}

func TestFormatMinutesAndWindow(t *testing.T) {
	assert.Equal(t, "0m", FormatMinutes(0))
	assert.Equal(t, "45m", FormatMinutes(45))
	assert.Equal(t, "2h", FormatMinutes(120))
	assert.Equal(t, "1h 30m", FormatMinutes(90))

	assert.Equal(t, "Mar 10 09:00–10:30", FormatWindow(at(9, 0), at(10, 30), nil))
	assert.Equal(t, "Mar 10 23:00 – Mar 11 01:00", FormatWindow(at(23, 0), at(25, 0), time.UTC))
}

func TestFormatTemplates(t *testing.T) {
	list := FormatTemplateList([]service.TemplateInfo{
		{Index: 1, Name: "Workshop", Category: "training", Milestones: 2, Steps: 3, SpanMinutes: 210},
	})
	assert.Contains(t, list, "TEMPLATES")
	assert.Contains(t, list, "Workshop")
	assert.Contains(t, list, "Training")
	assert.Contains(t, list, "3h 30m")

	show := FormatTemplateShow(&template.AgendaTemplate{
		ID:   "workshop",
		Name: "Workshop",
		Milestones: []template.MilestoneConfig{
			{Title: "Prep", OffsetMinutes: 0, DurationMinutes: 60, Steps: []template.StepConfig{
				{Title: "Room", OffsetMinutes: 10, DurationMinutes: 15},
			}},
		},
	})
	assert.Contains(t, show, "Prep")
	assert.Contains(t, show, "+10m · 15m")
	assert.Contains(t, show, "--")
}

func TestRenderProgress_Clamps(t *testing.T) {
	assert.Equal(t, "[░░░░] 0/3 0%", strings.Join(strings.Fields(RenderProgress(-1, 3, 4)), " "))
	assert.Contains(t, RenderProgress(1, 2, 4), "██░░] 1/2")
	assert.Contains(t, RenderProgress(5, 2, 4), "████] 2/2 100%")
	assert.Contains(t, RenderProgress(0, 0, 4), "░░░░] 0/0")
}

func TestFormatAgenda_Progress(t *testing.T) {
	primary := testutil.NewTestPrimary("Offsite", at(9, 0), at(17, 0))
	done := testutil.NewTestMilestone(primary, "Done", testutil.WithCompleted("ana", testutil.FixedNow))
	open := testutil.NewTestMilestone(primary, "Open")

	out := FormatAgenda(testutil.Flatten(primary, done, open), time.UTC)
	assert.Contains(t, out, "1/2  50%")

	assert.NotContains(t, FormatAgenda(testutil.Flatten(primary), time.UTC), "%")
}
