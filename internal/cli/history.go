package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"formcheck/internal/config"
	"formcheck/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent capture sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadCaptureConfig()
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		jr, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer jr.Close()

		entries, err := jr.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		writeHistory(cmd.OutOrStdout(), entries)
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "number of sessions to show")
}

func writeHistory(out io.Writer, entries []journal.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No sessions recorded yet.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "When\tExercise\tForm\tOutcome\tPath")
	fmt.Fprintln(w, "----\t--------\t----\t-------\t----")
	for _, e := range entries {
		path := e.StoredPath
		if path == "" {
			path = e.LocalPath
		}
		outcome := e.Outcome
		if e.Error != "" {
			outcome += ": " + e.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.UpdatedAt.Format("2006-01-02 15:04:05"), dash(e.Exercise), dash(e.Form), outcome, dash(path))
	}
	w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
