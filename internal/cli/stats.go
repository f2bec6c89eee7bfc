package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"formcheck/internal/capture"
	"formcheck/internal/dataset"
	"formcheck/internal/utils"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count local recordings per label",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadCaptureConfig(cmd)
		if err != nil {
			return err
		}
		ov, err := dataset.Scan(cfg.DatasetRoot)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dataset: %s\n\n", cfg.DatasetRoot)
		writeStats(cmd.OutOrStdout(), ov)
		return nil
	},
}

func init() {
	addCaptureFlags(statsCmd)
}

type statsRow struct {
	Exercise string
	Form     string
	Count    int
	AvgMB    float64
}

// statsRows lists every known label, with zero counts where nothing is
// recorded yet, followed by any other buckets found on disk.
func statsRows(ov *dataset.Overview) []statsRow {
	known := map[string]bool{}
	var rows []statsRow
	for _, e := range capture.Exercises {
		for _, f := range capture.Forms {
			known[string(e)+"/"+string(f)] = true
			rows = append(rows, statsRow{Exercise: string(e), Form: string(f)})
		}
	}
	for i := range rows {
		for _, b := range ov.Buckets {
			if b.Exercise == rows[i].Exercise && b.Form == rows[i].Form {
				rows[i].Count = b.Count
				rows[i].AvgMB, _ = utils.SizeStatsMB(b.Sizes)
			}
		}
	}
	for _, b := range ov.Buckets {
		if known[b.Exercise+"/"+b.Form] {
			continue
		}
		avg, _ := utils.SizeStatsMB(b.Sizes)
		rows = append(rows, statsRow{Exercise: b.Exercise, Form: b.Form, Count: b.Count, AvgMB: avg})
	}
	return rows
}

func writeStats(out io.Writer, ov *dataset.Overview) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Exercise\tForm\tVideos\tAvg MB")
	fmt.Fprintln(w, "--------\t----\t------\t------")
	for _, r := range statsRows(ov) {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\n", r.Exercise, r.Form, r.Count, r.AvgMB)
	}
	w.Flush()
	fmt.Fprintf(out, "\n%d video(s) total.\n", ov.Total)
}
