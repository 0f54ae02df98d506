package ics

import (
	"bytes"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/agenda/internal/domain"
	"github.com/alexanderramin/agenda/internal/testutil"
)

func fixture() []domain.TimeBoxedItem {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	primary := testutil.NewTestPrimary("Offsite", day.Add(9*time.Hour), day.Add(17*time.Hour),
		testutil.WithDescription("Team offsite"))
	agenda := testutil.NewTestMilestone(primary, "Agenda",
		testutil.WithSchedule(day.Add(9*time.Hour), day.Add(10*time.Hour)),
		testutil.WithCompleted("ana", testutil.FixedNow))
	draft := testutil.NewTestMilestone(primary, "Draft")
	step := testutil.NewTestStep(agenda, "Welcome",
		testutil.WithSchedule(day.Add(9*time.Hour), day.Add(9*time.Hour+15*time.Minute)))
	return testutil.Flatten(primary, agenda, draft, step)
}

func eventsByID(t *testing.T, data string) map[string]*ical.VEvent {
	t.Helper()
	cal, err := ical.ParseCalendar(bytes.NewBufferString(data))
	require.NoError(t, err)
	out := make(map[string]*ical.VEvent)
	for _, ev := range cal.Events() {
		out[ev.Id()] = ev
	}
	return out
}

func propValue(ev *ical.VEvent, p ical.ComponentProperty) string {
	if prop := ev.GetProperty(p); prop != nil {
		return prop.Value
	}
	return ""
}

func TestExport_SkipsUnscheduledChildren(t *testing.T) {
	items := fixture()
	events := eventsByID(t, Export(items, testutil.FixedNow).Serialize())

	require.Len(t, events, 3)
	for _, it := range items {
		_, ok := events[it.ID]
		if it.Title == "Draft" {
			assert.False(t, ok, "unscheduled milestone must not be exported")
		} else {
			assert.True(t, ok, it.Title)
		}
	}
}

func TestExport_Properties(t *testing.T) {
	items := fixture()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, items, testutil.FixedNow))
	events := eventsByID(t, buf.String())

	primary, agenda, step := items[0], items[1], items[3]

	ev := events[primary.ID]
	require.NotNil(t, ev)
	assert.Equal(t, "Offsite", propValue(ev, ical.ComponentPropertySummary))
	assert.Equal(t, "Team offsite", propValue(ev, ical.ComponentPropertyDescription))
	assert.Equal(t, "20250310T090000Z", propValue(ev, ical.ComponentPropertyDtStart))
	assert.Equal(t, "20250310T170000Z", propValue(ev, ical.ComponentPropertyDtEnd))
	assert.Equal(t, "primary", propValue(ev, propLevel))
	assert.Empty(t, propValue(ev, propRelatedTo))

	ev = events[agenda.ID]
	require.NotNil(t, ev)
	assert.Equal(t, "TRUE", propValue(ev, propCompleted))
	assert.Empty(t, propValue(ev, ical.ComponentPropertyStatus), "STATUS has no completed value for VEVENTs")
	assert.Equal(t, primary.ID, propValue(ev, propRelatedTo))

	ev = events[step.ID]
	require.NotNil(t, ev)
	assert.Equal(t, "step", propValue(ev, propLevel))
	assert.Equal(t, agenda.ID, propValue(ev, propRelatedTo))
	assert.Empty(t, propValue(ev, propCompleted))
	assert.Equal(t, "20250310T091500Z", propValue(ev, ical.ComponentPropertyDtEnd))
}
