package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/agenda/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newEventCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Manage primary events",
	}

	cmd.AddCommand(
		newEventCreateCmd(app),
		newEventListCmd(app),
		newEventShowCmd(app),
		newEventDeleteCmd(app),
	)

	return cmd
}

func newEventCreateCmd(app *App) *cobra.Command {
	var title, description string
	var start, end time.Time

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a primary event",
		RunE: func(cmd *cobra.Command, args []string) error {
			title, err := ensureTitle(app, title, "Event title")
			if err != nil {
				return err
			}
			ev, err := app.Agenda.CreateEvent(cmd.Context(), title, description, start, end)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created event %s\n", formatter.FormatItem(*ev, app.location()))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Event title")
	cmd.Flags().StringVar(&description, "description", "", "Event description")
	timeFlag(cmd.Flags(), &start, app, "start", "Start time (YYYY-MM-DD HH:MM)")
	timeFlag(cmd.Flags(), &end, app, "end", "End time (YYYY-MM-DD HH:MM)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func newEventListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List primary events",
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := app.Agenda.ListEvents(cmd.Context())
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No events found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatEventList(events, app.location()))
			return nil
		},
	}
}

func newEventShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show EVENT",
		Short: "Show an event's milestones and steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.Agenda.GetEvent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAgenda(items, app.location()))
			return nil
		},
	}
}

func newEventDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete EVENT",
		Short: "Delete an event with all its items and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Agenda.DeleteEvent(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted event.")
			return nil
		},
	}
}
