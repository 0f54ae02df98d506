package cli

import (
	"time"

	"github.com/alexanderramin/agenda/internal/service"
	"github.com/spf13/cobra"
)

// App holds the services and terminal settings used by CLI commands.
type App struct {
	Agenda    service.AgendaService
	Templates service.TemplateService

	// Location is used to parse and display times. Nil means local time.
	Location *time.Location

	// IsInteractive reports whether missing input may be prompted for.
	IsInteractive func() bool

	// PromptTitle asks for a title. Tests replace it; nil uses a huh form.
	PromptTitle func(label string) (string, error)
}

func (a *App) location() *time.Location {
	if a.Location == nil {
		return time.Local
	}
	return a.Location
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "agenda" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "agenda",
		Short:         "Plan events as milestones and steps with conflict-aware scheduling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newEventCmd(app),
		newMilestoneCmd(app),
		newStepCmd(app),
		newScheduleCmd(app),
		newUnscheduleCmd(app),
		newUpdateCmd(app),
		newCompleteCmd(app),
		newRemoveCmd(app),
		newReorderCmd(app),
		newAutoScheduleCmd(app),
		newSuggestCmd(app),
		newConflictsCmd(app),
		newUndoCmd(app),
		newRedoCmd(app),
		newHistoryCmd(app),
		newTemplateCmd(app),
		newExportCmd(app),
	)

	return root
}
