package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"formcheck/internal/capture"
	"formcheck/internal/journal"
	"formcheck/internal/transport"
	"formcheck/internal/tui"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a saved recording",
	Long: `Upload a recording that is already on disk. The label is read from
the file's <exercise>/<form> parent directories unless --exercise and --form
are given. With --unsent, every journaled recording whose upload failed is
sent again.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadCaptureConfig(cmd)
		if err != nil {
			return err
		}
		client := transport.NewClient(cfg.ServerAddr)
		client.Token = cfg.UploadToken

		jr, err := journal.Open(cfg.JournalPath)
		if err != nil {
			log.Printf("Warning: session journal unavailable: %v", err)
			jr = nil
		} else {
			defer jr.Close()
		}

		unsent, _ := cmd.Flags().GetBool("unsent")
		if unsent {
			if jr == nil {
				return fmt.Errorf("--unsent needs the session journal")
			}
			return uploadUnsent(cmd.Context(), client, jr, cmd.OutOrStdout())
		}
		if len(args) != 1 {
			return fmt.Errorf("a file to upload is required (or --unsent)")
		}

		ex, _ := cmd.Flags().GetString("exercise")
		form, _ := cmd.Flags().GetString("form")
		tag, err := resolveTag(args[0], ex, form)
		if err != nil {
			return err
		}
		if _, err := os.Stat(args[0]); err != nil {
			return fmt.Errorf("failed to access video file: %w", err)
		}

		var j capture.Journal
		if jr != nil {
			j = jr
		}
		res, err := uploadOne(cmd.Context(), client, j, uuid.New().String(), args[0], tag, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Upload successful: %s\n", res.Path)
		return nil
	},
}

func init() {
	addCaptureFlags(uploadCmd)
	uploadCmd.Flags().String("exercise", "", "exercise label (squat, bench_press, deadlift)")
	uploadCmd.Flags().String("form", "", "form label (correct, incorrect)")
	uploadCmd.Flags().Bool("unsent", false, "retry every recording whose upload failed")
}

// resolveTag takes the label from the flags when both are set, otherwise
// from the file's location.
func resolveTag(path, exercise, form string) (capture.Tag, error) {
	if exercise != "" || form != "" {
		tag := capture.Tag{Exercise: capture.Exercise(exercise), Form: capture.Form(form)}
		return tag, tag.Validate()
	}
	tag, err := capture.TagFromPath(path)
	if err != nil {
		return capture.Tag{}, fmt.Errorf("cannot infer label from %s, pass --exercise and --form: %w", path, err)
	}
	return tag, nil
}

// uploadOne sends path, prints progress to out and journals the outcome
// under sessionID.
func uploadOne(ctx context.Context, up capture.Uploader, j capture.Journal, sessionID, path string, tag capture.Tag, out io.Writer) (*capture.UploadResult, error) {
	h := capture.StartUpload(ctx, up, capture.UploadRequest{FilePath: path, Tag: tag}, nil)
	for pct := range h.Progress() {
		fmt.Fprintf(out, "\r%s", tui.ProgressBar(pct, 40))
	}
	fmt.Fprintln(out)
	res, err := h.Wait(ctx)

	if j != nil {
		ev := capture.Event{
			SessionID: sessionID,
			State:     capture.Closed,
			Outcome:   capture.Succeeded,
			Tag:       tag,
			LocalPath: path,
			At:        time.Now(),
		}
		if err != nil {
			ev.Outcome = capture.Failed
			ev.Err = err.Error()
		} else if res != nil {
			ev.StoredPath = res.Path
		}
		if jerr := j.Record(ctx, ev); jerr != nil {
			log.Printf("Warning: failed to journal upload of %s: %v", path, jerr)
		}
	}
	return res, err
}

func uploadUnsent(ctx context.Context, up capture.Uploader, jr *journal.Journal, out io.Writer) error {
	entries, err := jr.Unsent(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "Nothing to upload.")
		return nil
	}

	failed := 0
	for _, e := range entries {
		tag := capture.Tag{Exercise: capture.Exercise(e.Exercise), Form: capture.Form(e.Form)}
		fmt.Fprintf(out, "%s (%s)\n", e.LocalPath, tag)
		if _, err := os.Stat(e.LocalPath); err != nil {
			fmt.Fprintf(out, "  skipped: %v\n", err)
			failed++
			continue
		}
		res, err := uploadOne(ctx, up, jr, e.ID, e.LocalPath, tag, out)
		if err != nil {
			fmt.Fprintf(out, "  failed: %v\n", err)
			failed++
			continue
		}
		fmt.Fprintf(out, "  stored at %s\n", res.Path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(entries))
	}
	return nil
}
