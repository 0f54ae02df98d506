package cli

import (
	"fmt"

	"github.com/alexanderramin/agenda/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newConflictsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts EVENT",
		Short: "List overlapping milestones and steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conflicts, err := app.Agenda.Conflicts(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatConflicts(conflicts, app.location()))
			return nil
		},
	}
}

func newUndoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "undo EVENT",
		Short: "Reverse the most recent change to an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Agenda.Undo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Undid %s of %s %s\n", c.Action, c.ItemType, formatter.TruncID(c.ItemID))
			return nil
		},
	}
}

func newRedoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "redo EVENT",
		Short: "Re-apply the most recently undone change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Agenda.Redo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Redid %s of %s %s\n", c.Action, c.ItemType, formatter.TruncID(c.ItemID))
			return nil
		},
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history EVENT",
		Short: "Show the undo history of an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, cursor, err := app.Agenda.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatHistory(entries, cursor, app.location()))
			return nil
		},
	}
}
