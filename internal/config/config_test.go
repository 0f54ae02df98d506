package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "config.yaml"), dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(dir), cfg)
	assert.Equal(t, filepath.Join(dir, "agenda.db"), cfg.DBPath)
}

func TestLoad_PartialFileNormalized(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("work_hours_start: \"08:30\"\nhistory_limit: 10\nactor: ana\n"), 0o644))

	cfg, err := Load(path, dir)
	require.NoError(t, err)
	assert.Equal(t, "08:30", cfg.WorkHoursStart)
	assert.Equal(t, "17:00", cfg.WorkHoursEnd)
	assert.Equal(t, 10, cfg.HistoryLimit)
	assert.Equal(t, "ana", cfg.Actor)
	assert.Equal(t, 30, cfg.DefaultDurationMin)
	assert.Equal(t, time.Second, cfg.AutosaveDelay())
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history_limit: [nope"), 0o644))

	_, err := Load(path, dir)
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")
	cfg := DefaultConfig(dir)
	cfg.LogUseCases = true
	cfg.Actor = "sam"

	require.NoError(t, Save(path, cfg))
	got, err := Load(path, dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig("/tmp/agenda")
	cfg.ApplyEnv(envMap(map[string]string{
		"AGENDA_DB":                   "/data/a.db",
		"AGENDA_TEMPLATES":            "/data/templates",
		"AGENDA_WORK_HOURS_START":     "07:00",
		"AGENDA_WORK_HOURS_END":       "15:00",
		"AGENDA_DEFAULT_DURATION_MIN": "45",
		"AGENDA_HISTORY_LIMIT":        "-3",
		"AGENDA_AUTOSAVE_DELAY_MS":    "250",
		"AGENDA_ACTOR":                "kim",
		"AGENDA_TIMEZONE":             "UTC",
		"AGENDA_LOG_USE_CASES":        "true",
	}))

	assert.Equal(t, "/data/a.db", cfg.DBPath)
	assert.Equal(t, "/data/templates", cfg.TemplatesDir)
	assert.Equal(t, 45, cfg.DefaultDurationMin)
	assert.Equal(t, 50, cfg.HistoryLimit, "invalid values are ignored")
	assert.Equal(t, 250*time.Millisecond, cfg.AutosaveDelay())
	assert.Equal(t, "kim", cfg.Actor)
	assert.True(t, cfg.LogUseCases)

	sched, err := cfg.Scheduler()
	require.NoError(t, err)
	assert.Equal(t, 7*60, sched.WorkHoursStart)
	assert.Equal(t, 15*60, sched.WorkHoursEnd)
	assert.Equal(t, 45, sched.DefaultDurationMinutes)
	assert.Equal(t, time.UTC, sched.Location)
}

func TestScheduler_Timezone(t *testing.T) {
	cfg := DefaultConfig("/tmp/agenda")
	sched, err := cfg.Scheduler()
	require.NoError(t, err)
	assert.Equal(t, time.Local, sched.Location, "empty timezone uses the system zone")

	cfg.Timezone = "Nowhere/Atlantis"
	_, err = cfg.Scheduler()
	assert.ErrorContains(t, err, "Nowhere/Atlantis")
}

func TestScheduler_InvalidHours(t *testing.T) {
	cfg := DefaultConfig("/tmp/agenda")

	cfg.WorkHoursStart = "9am"
	_, err := cfg.Scheduler()
	assert.Error(t, err)

	cfg.WorkHoursStart = "18:00"
	_, err = cfg.Scheduler()
	assert.Error(t, err, "end must follow start")

	cfg.WorkHoursStart = "00:00"
	cfg.WorkHoursEnd = "24:00"
	sched, err := cfg.Scheduler()
	require.NoError(t, err)
	assert.Equal(t, 24*60, sched.WorkHoursEnd)
}
