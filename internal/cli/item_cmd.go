package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/agenda/internal/agenda"
	"github.com/alexanderramin/agenda/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newMilestoneCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "milestone",
		Short: "Manage milestones",
	}
	cmd.AddCommand(newAddChildCmd(app, "EVENT", "Add a milestone to an event", "Milestone title"))
	return cmd
}

func newStepCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "step",
		Short: "Manage steps",
	}
	cmd.AddCommand(newAddChildCmd(app, "MILESTONE", "Add a step to a milestone", "Step title"))
	return cmd
}

// newAddChildCmd builds "add PARENT". The parent decides the level of the
// new item.
func newAddChildCmd(app *App, parentArg, short, label string) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "add " + parentArg,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title, err := ensureTitle(app, title, label)
			if err != nil {
				return err
			}
			child, err := app.Agenda.AddChild(cmd.Context(), args[0], title, description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", formatter.FormatItem(child, app.location()))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", label)
	cmd.Flags().StringVar(&description, "description", "", "Description")
	return cmd
}

func newScheduleCmd(app *App) *cobra.Command {
	var start, end time.Time
	var nextFree bool

	cmd := &cobra.Command{
		Use:   "schedule ITEM",
		Short: "Place a milestone or step at a time range",
		Long: `Place a milestone or step at a time range.

Overlapping steps are rejected. Overlapping milestones are placed with a
warning. With --next-free a rejected step is moved to the earliest free
slot of the same length.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Agenda.Schedule(cmd.Context(), args[0], start, end, nextFree)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scheduled %s\n", formatter.FormatItem(res.Item, app.location()))
			fmt.Fprint(out, formatter.FormatWarnings(res.Warnings))
			return nil
		},
	}

	timeFlag(cmd.Flags(), &start, app, "start", "Start time (YYYY-MM-DD HH:MM)")
	timeFlag(cmd.Flags(), &end, app, "end", "End time (YYYY-MM-DD HH:MM)")
	cmd.Flags().BoolVar(&nextFree, "next-free", false, "Use the next free slot when the range is blocked")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func newUnscheduleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unschedule ITEM",
		Short: "Clear an item's time range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := app.Agenda.Unschedule(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unscheduled %s\n", formatter.FormatItem(it, app.location()))
			return nil
		},
	}
}

func newUpdateCmd(app *App) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "update ITEM",
		Short: "Change an item's title or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch agenda.Patch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if patch.Title == nil && patch.Description == nil {
				return fmt.Errorf("nothing to update (pass --title or --description)")
			}
			it, err := app.Agenda.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", formatter.FormatItem(it, app.location()))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	return cmd
}

func newCompleteCmd(app *App) *cobra.Command {
	var reopen bool

	cmd := &cobra.Command{
		Use:   "complete ITEM",
		Short: "Mark an item completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := app.Agenda.SetCompleted(cmd.Context(), args[0], !reopen)
			if err != nil {
				return err
			}
			verb := "Completed"
			if reopen {
				verb = "Reopened"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, formatter.FormatItem(it, app.location()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&reopen, "undo", false, "Mark the item not completed")
	return cmd
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ITEM",
		Short: "Remove a milestone or step with everything under it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Agenda.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removed.")
			return nil
		},
	}
}

func newReorderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder PARENT CHILD...",
		Short: "Set the order of a parent's children",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Agenda.Reorder(cmd.Context(), args[0], args[1:]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Reordered.")
			return nil
		},
	}
}

func newAutoScheduleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "autoschedule PARENT",
		Short: "Place every unscheduled child after the scheduled ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Agenda.AutoSchedule(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(res.Placed) == 0 {
				fmt.Fprintln(out, "Nothing to schedule.")
				return nil
			}
			for _, it := range res.Placed {
				fmt.Fprintf(out, "Scheduled %s\n", formatter.FormatItem(it, app.location()))
			}
			fmt.Fprint(out, formatter.FormatWarnings(res.Warnings))
			return nil
		},
	}
}

func newSuggestCmd(app *App) *cobra.Command {
	var minutes int

	cmd := &cobra.Command{
		Use:   "suggest ITEM",
		Short: "Find the earliest free slot for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := app.Agenda.SuggestSlot(cmd.Context(), args[0], minutes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Next free slot: %s\n", formatter.FormatWindow(start, end, app.location()))
			return nil
		},
	}

	cmd.Flags().IntVar(&minutes, "minutes", 0, "Slot length (default: current length or the configured default)")
	return cmd
}
