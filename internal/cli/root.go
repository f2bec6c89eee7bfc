// Package cli holds the formcheck commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"formcheck/internal/config"
	"formcheck/internal/utils"
)

var Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "formcheck",
	Short: "Record labelled exercise videos and collect them into a dataset",
	Long: `formcheck records short exercise videos labelled with the lift and
whether the rep was performed correctly, and uploads them to a receiver that
files them under dataset/<exercise>/<form>/.

Commands:
  - serve: run the receiver
  - record: pick a label, record, save locally and upload
  - upload: send an existing recording (or every unsent one) again
  - stats: count local recordings per label
  - history: list recent capture sessions`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("formcheck version %s\n", Version)
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system dependencies",
	Long:  `Check that ffmpeg is installed and the configured camera device can be opened.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadCaptureConfig()
		if err != nil {
			return err
		}
		fmt.Println("Checking dependencies...")
		fmt.Println()

		allGood := true
		if err := utils.CheckFFmpeg(cfg.FFmpegPath); err != nil {
			fmt.Printf("✗ ffmpeg: NOT FOUND (%s)\n", cfg.FFmpegPath)
			fmt.Printf("  Install from: %s\n", utils.FFmpegInstallURL)
			allGood = false
		} else {
			fmt.Println("✓ ffmpeg: OK")
		}

		if cfg.CameraFormat == "v4l2" {
			if f, err := os.Open(cfg.CameraDevice); err != nil {
				fmt.Printf("✗ camera %s: %v\n", cfg.CameraDevice, err)
				allGood = false
			} else {
				f.Close()
				fmt.Printf("✓ camera %s: OK\n", cfg.CameraDevice)
			}
		}

		fmt.Println()
		if !allGood {
			return fmt.Errorf("some dependencies are missing")
		}
		fmt.Println("All dependencies are installed!")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(hashTokenCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
