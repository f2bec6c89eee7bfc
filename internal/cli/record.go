package cli

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"formcheck/internal/camera"
	"formcheck/internal/capture"
	"formcheck/internal/config"
	"formcheck/internal/journal"
	"formcheck/internal/transport"
	"formcheck/internal/tui"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Label, record, save and upload one exercise video",
	Long: `Choose the exercise and whether the form is correct, record from the
camera, then save the video under <dataset-root>/<exercise>/<form>/ and
upload it to the receiver.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadCaptureConfig(cmd)
		if err != nil {
			return err
		}

		var j capture.Journal
		if jr, err := journal.Open(cfg.JournalPath); err != nil {
			log.Printf("Warning: session journal unavailable: %v", err)
		} else {
			defer jr.Close()
			j = jr
		}

		client := transport.NewClient(cfg.ServerAddr)
		client.Token = cfg.UploadToken

		s := capture.NewSession(capture.Config{
			DatasetRoot: cfg.DatasetRoot,
			Camera:      camera.NewRecorder(cfg.FFmpegPath, cfg.CameraDevice, cfg.CameraFormat),
			Uploader:    client,
			Journal:     j,
		})

		res, err := tui.RunCapture(cmd.Context(), s)
		if errors.Is(err, capture.ErrCancelled) || (err == nil && s.Outcome() == capture.Cancelled) {
			fmt.Println("Recording discarded.")
			return nil
		}
		if err != nil {
			if p := s.LocalPath(); p != "" {
				fmt.Printf("Video kept at %s; retry with: formcheck upload %s\n", p, p)
			}
			return err
		}
		if res != nil {
			fmt.Printf("Upload successful: %s\n", res.Path)
		}
		return nil
	},
}

func init() {
	addCaptureFlags(recordCmd)
}

func addCaptureFlags(cmd *cobra.Command) {
	cmd.Flags().String("server", "", "receiver address (host:port or URL)")
	cmd.Flags().String("dataset-root", "", "local directory for saved recordings")
}

// loadCaptureConfig applies command flags on top of the environment.
func loadCaptureConfig(cmd *cobra.Command) (*config.CaptureConfig, error) {
	cfg, err := config.LoadCaptureConfig()
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("server"); v != "" {
		cfg.ServerAddr = v
	}
	if v, _ := cmd.Flags().GetString("dataset-root"); v != "" {
		cfg.DatasetRoot = v
	}
	return cfg, nil
}
