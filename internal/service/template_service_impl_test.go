package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workshopJSON = `{
  "id": "workshop",
  "name": "Half-day Workshop",
  "category": "training",
  "milestones": [
    {"title": "Prep", "offsetMinutes": 0, "durationMinutes": 60,
     "steps": [{"title": "Room", "offsetMinutes": 0, "durationMinutes": 15}]},
    {"title": "Session", "offsetMinutes": 90, "durationMinutes": 120}
  ]
}`

func writeTemplate(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestTemplateServiceGet_ResolvesByStemIDAndName(t *testing.T) {
	t.Parallel()

	templateDir := t.TempDir()
	writeTemplate(t, templateDir, "half_day.json", workshopJSON)
	svc := NewTemplateService(templateDir, nil)

	for _, input := range []string{"half_day", "HALF_DAY", "half_day.json", "workshop", "Half-day Workshop", "1"} {
		input := input
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			got, err := svc.Get(context.Background(), input)
			require.NoError(t, err)
			assert.Equal(t, "workshop", got.ID)
		})
	}
}

func TestTemplateServiceGet_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewTemplateService(t.TempDir(), nil)
	_, err := svc.Get(context.Background(), "missing")
	assert.Error(t, err)
	_, err = svc.Get(context.Background(), " ")
	assert.Error(t, err)
}

func TestTemplateServiceList_SkipsInvalidFiles(t *testing.T) {
	t.Parallel()

	templateDir := t.TempDir()
	writeTemplate(t, templateDir, "a_workshop.json", workshopJSON)
	writeTemplate(t, templateDir, "b_broken.json", `{not json`)
	writeTemplate(t, templateDir, "c_empty.json", `{"id": "empty", "name": "Empty", "milestones": []}`)
	writeTemplate(t, templateDir, "notes.txt", "ignored")

	infos, err := NewTemplateService(templateDir, nil).List(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	info := infos[0]
	assert.Equal(t, 1, info.Index)
	assert.Equal(t, "training", info.Category)
	assert.Equal(t, 2, info.Milestones)
	assert.Equal(t, 1, info.Steps)
	assert.Equal(t, 210, info.SpanMinutes)
}

func TestTemplateServiceApply(t *testing.T) {
	ctx := context.Background()
	templateDir := t.TempDir()
	writeTemplate(t, templateDir, "half_day.json", workshopJSON)

	agendaSvc := newTestAgendaService(t)
	obs := &recordingObserver{}
	svc := NewTemplateService(templateDir, agendaSvc, obs)

	ev, err := agendaSvc.CreateEvent(ctx, "Workshop", "", at(9, 0), at(13, 0))
	require.NoError(t, err)

	inst, err := svc.Apply(ctx, "half_day", ev.ID)
	require.NoError(t, err)
	assert.Len(t, inst.Milestones, 2)
	assert.Len(t, inst.Steps, 1)
	assert.Equal(t, "template-apply", obs.last().Name)
	assert.True(t, obs.last().Success)

	items, err := agendaSvc.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Len(t, items, 4)

	_, err = svc.Apply(ctx, "nope", ev.ID)
	assert.Error(t, err)
	assert.False(t, obs.last().Success)
}
