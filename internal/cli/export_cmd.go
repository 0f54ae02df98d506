package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/alexanderramin/agenda/internal/ics"
	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export EVENT",
		Short: "Write an event's scheduled items as iCalendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.Agenda.GetEvent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return ics.Write(cmd.OutOrStdout(), items, time.Now())
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			if err := ics.Write(f, items, time.Now()); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}
