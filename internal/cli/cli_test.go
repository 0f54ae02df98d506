package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/agenda/internal/agenda"
	"github.com/alexanderramin/agenda/internal/domain"
	"github.com/alexanderramin/agenda/internal/repository"
	"github.com/alexanderramin/agenda/internal/scheduler"
	"github.com/alexanderramin/agenda/internal/service"
	"github.com/alexanderramin/agenda/internal/testutil"
)

const workshopJSON = `{
  "id": "workshop",
  "name": "Workshop",
  "category": "training",
  "milestones": [
    {"title": "Prep", "offsetMinutes": 0, "durationMinutes": 60,
     "steps": [{"title": "Room", "offsetMinutes": 0, "durationMinutes": 15}]},
    {"title": "Session", "offsetMinutes": 90, "durationMinutes": 120}
  ]
}`

func at(h, m int) time.Time {
	return time.Date(2025, 3, 10, h, m, 0, 0, time.UTC)
}

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T) *App {
	t.Helper()
	database := testutil.NewTestDB(t)
	templateDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(templateDir, "workshop.json"), []byte(workshopJSON), 0o644))

	sched := scheduler.DefaultConfig()
	sched.Location = time.UTC
	agendaSvc := service.NewAgendaService(
		repository.NewSQLiteItemRepo(database),
		repository.NewSQLiteHistoryRepo(database),
		testutil.NewTestUoW(database),
		agenda.Options{Scheduler: sched, Actor: "ana"},
	)
	return &App{
		Agenda:    agendaSvc,
		Templates: service.NewTemplateService(templateDir, agendaSvc),
		Location:  time.UTC,
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func seedEvent(t *testing.T, app *App) *domain.TimeBoxedItem {
	t.Helper()
	ev, err := app.Agenda.CreateEvent(context.Background(), "Offsite", "", at(9, 0), at(17, 0))
	require.NoError(t, err)
	return ev
}

func seedChild(t *testing.T, app *App, parentID, title string) domain.TimeBoxedItem {
	t.Helper()
	child, err := app.Agenda.AddChild(context.Background(), parentID, title, "")
	require.NoError(t, err)
	return child
}

func TestEventCreateListShow(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "event", "create", "--title", "Offsite",
		"--start", "2025-03-10 09:00", "--end", "2025-03-10T17:00")
	require.NoError(t, err)
	assert.Contains(t, out, "Created event")
	assert.Contains(t, out, "Offsite")

	out, err = executeCmd(t, app, "event", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "EVENTS")
	assert.Contains(t, out, "Mar 10 09:00–17:00")

	events, err := app.Agenda.ListEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	seedChild(t, app, events[0].ID, "Morning")

	out, err = executeCmd(t, app, "event", "show", events[0].ID[:8])
	require.NoError(t, err)
	assert.Contains(t, out, "Morning")
	assert.Contains(t, out, "unscheduled")
}

func TestEventList_Empty(t *testing.T) {
	out, err := executeCmd(t, testApp(t), "event", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No events found.")
}

func TestEventCreate_TitleRequiredWhenNotInteractive(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "event", "create", "--start", "2025-03-10 09:00", "--end", "2025-03-10 10:00")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--title")
}

func TestEventCreate_PromptsForTitle(t *testing.T) {
	app := testApp(t)
	app.IsInteractive = func() bool { return true }
	var asked string
	app.PromptTitle = func(label string) (string, error) {
		asked = label
		return "Prompted", nil
	}

	out, err := executeCmd(t, app, "event", "create", "--start", "2025-03-10 09:00", "--end", "2025-03-10 10:00")
	require.NoError(t, err)
	assert.Equal(t, "Event title", asked)
	assert.Contains(t, out, "Prompted")
}

func TestEventCreate_InvalidTime(t *testing.T) {
	_, err := executeCmd(t, testApp(t), "event", "create", "--title", "X", "--start", "tomorrow", "--end", "2025-03-10 10:00")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid time")
}

func TestScheduleBlockedAndNextFree(t *testing.T) {
	app := testApp(t)
	ev := seedEvent(t, app)
	ms := seedChild(t, app, ev.ID, "Morning")
	a := seedChild(t, app, ms.ID, "A")
	b := seedChild(t, app, ms.ID, "B")

	_, err := executeCmd(t, app, "schedule", ms.ID, "--start", "2025-03-10 09:00", "--end", "2025-03-10 10:00")
	require.NoError(t, err)
	_, err = executeCmd(t, app, "schedule", a.ID, "--start", "2025-03-10 09:00", "--end", "2025-03-10 09:30")
	require.NoError(t, err)

	_, err = executeCmd(t, app, "schedule", b.ID, "--start", "2025-03-10 09:15", "--end", "2025-03-10 09:45")
	require.ErrorIs(t, err, domain.ErrBlockingConflict)

	out, err := executeCmd(t, app, "schedule", b.ID, "--start", "2025-03-10 09:15", "--end", "2025-03-10 09:45", "--next-free")
	require.NoError(t, err)
	assert.Contains(t, out, "09:30–10:00")

	out, err = executeCmd(t, app, "conflicts", ev.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "No conflicts.")
}

func TestMilestoneOverlapWarnsAndShowsConflict(t *testing.T) {
	app := testApp(t)
	ev := seedEvent(t, app)
	one := seedChild(t, app, ev.ID, "One")
	two := seedChild(t, app, ev.ID, "Two")

	_, err := executeCmd(t, app, "schedule", one.ID, "--start", "2025-03-10 09:00", "--end", "2025-03-10 10:00")
	require.NoError(t, err)
	out, err := executeCmd(t, app, "schedule", two.ID, "--start", "2025-03-10 09:30", "--end", "2025-03-10 10:30")
	require.NoError(t, err)
	assert.Contains(t, out, "overlaps milestone \"One\"")

	out, err = executeCmd(t, app, "conflicts", ev.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "WARNING")
	assert.Contains(t, out, "30m")
}

func TestAddUpdateCompleteUndoRedo(t *testing.T) {
	app := testApp(t)
	ev := seedEvent(t, app)

	out, err := executeCmd(t, app, "milestone", "add", ev.ID, "--title", "Kickoff")
	require.NoError(t, err)
	assert.Contains(t, out, "MILESTONE")

	items, err := app.Agenda.GetEvent(context.Background(), ev.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	msID := items[1].ID

	out, err = executeCmd(t, app, "step", "add", msID, "--title", "Intro")
	require.NoError(t, err)
	assert.Contains(t, out, "STEP")

	_, err = executeCmd(t, app, "update", msID)
	require.Error(t, err)

	_, err = executeCmd(t, app, "update", msID, "--title", "Opening")
	require.NoError(t, err)

	out, err = executeCmd(t, app, "complete", msID)
	require.NoError(t, err)
	assert.Contains(t, out, "Completed")

	out, err = executeCmd(t, app, "complete", msID, "--undo")
	require.NoError(t, err)
	assert.Contains(t, out, "Reopened")

	out, err = executeCmd(t, app, "history", ev.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "create")
	assert.Contains(t, out, "update")

	out, err = executeCmd(t, app, "undo", ev.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Undid update")

	out, err = executeCmd(t, app, "redo", ev.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Redid update")

	_, err = executeCmd(t, app, "redo", ev.ID)
	require.Error(t, err)
}

func TestReorderRemoveAndAutoschedule(t *testing.T) {
	app := testApp(t)
	ev := seedEvent(t, app)
	a := seedChild(t, app, ev.ID, "A")
	b := seedChild(t, app, ev.ID, "B")

	_, err := executeCmd(t, app, "reorder", ev.ID, b.ID, a.ID)
	require.NoError(t, err)
	items, err := app.Agenda.GetEvent(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, a.ID}, items[0].ChildIDs)

	out, err := executeCmd(t, app, "autoschedule", ev.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Mar 10 09:00–13:00")
	assert.Contains(t, out, "Mar 10 13:00–17:00")

	out, err = executeCmd(t, app, "autoschedule", ev.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to schedule.")

	_, err = executeCmd(t, app, "remove", a.ID)
	require.NoError(t, err)
	_, err = executeCmd(t, app, "suggest", b.ID, "--minutes", "30")
	require.NoError(t, err)

	_, err = executeCmd(t, app, "unschedule", b.ID)
	require.NoError(t, err)
	out, err = executeCmd(t, app, "suggest", b.ID, "--minutes", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "09:00–09:30")
}

func TestTemplateCommands(t *testing.T) {
	app := testApp(t)
	ev := seedEvent(t, app)

	out, err := executeCmd(t, app, "template", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Workshop")

	out, err = executeCmd(t, app, "template", "show", "workshop")
	require.NoError(t, err)
	assert.Contains(t, out, "Prep")
	assert.Contains(t, out, "Room")

	out, err = executeCmd(t, app, "template", "apply", "1", ev.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Added 2 milestone(s) and 1 step(s).")

	_, err = executeCmd(t, app, "template", "show", "missing")
	require.Error(t, err)
}

func TestExportAndDelete(t *testing.T) {
	app := testApp(t)
	ev := seedEvent(t, app)
	ms := seedChild(t, app, ev.ID, "Morning")
	_, err := executeCmd(t, app, "schedule", ms.ID, "--start", "2025-03-10 09:00", "--end", "2025-03-10 10:00")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "export", ev.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "SUMMARY:Morning")

	path := filepath.Join(t.TempDir(), "offsite.ics")
	_, err = executeCmd(t, app, "export", ev.ID, "-o", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "UID:"+ms.ID)

	_, err = executeCmd(t, app, "event", "delete", ms.ID)
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = executeCmd(t, app, "event", "delete", ev.ID)
	require.NoError(t, err)
	_, err = executeCmd(t, app, "event", "show", ev.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestParseTime(t *testing.T) {
	loc := time.FixedZone("CET", 3600)

	got, err := parseTime("2025-03-10 09:00", loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(at(8, 0)))

	got, err = parseTime("2025-03-10T09:00:00Z", loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(at(9, 0)))

	_, err = parseTime("10/03/2025", loc)
	assert.Error(t, err)
}
