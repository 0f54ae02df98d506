package cli

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// timeLayouts are tried in order when parsing --start and --end.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// timeValue is a pflag.Value for wall-clock times. Layouts without an
// offset are read in the app's location.
type timeValue struct {
	target *time.Time
	app    *App
}

var _ pflag.Value = (*timeValue)(nil)

func newTimeValue(target *time.Time, app *App) *timeValue {
	return &timeValue{target: target, app: app}
}

func (v *timeValue) String() string {
	if v.target == nil || v.target.IsZero() {
		return ""
	}
	return v.target.Format("2006-01-02 15:04")
}

func (v *timeValue) Set(s string) error {
	t, err := parseTime(s, v.app.location())
	if err != nil {
		return err
	}
	*v.target = t
	return nil
}

func (v *timeValue) Type() string { return "time" }

func parseTime(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (use YYYY-MM-DD HH:MM or RFC3339)", s)
}

// timeFlag registers a required time flag on fs.
func timeFlag(fs *pflag.FlagSet, target *time.Time, app *App, name, usage string) {
	fs.Var(newTimeValue(target, app), name, usage)
}
