package utils

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// FFmpegInstallURL is shown when ffmpeg cannot be found.
const FFmpegInstallURL = "https://ffmpeg.org/download.html"

// DependencyError reports a missing external program.
type DependencyError struct {
	Name       string
	InstallURL string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s not found. Install from: %s", e.Name, e.InstallURL)
}

// CheckFFmpeg checks that the ffmpeg binary is available.
func CheckFFmpeg(ffmpegExecutable string) error {
	if _, err := exec.LookPath(ffmpegExecutable); err != nil {
		return &DependencyError{Name: ffmpegExecutable, InstallURL: FFmpegInstallURL}
	}
	return nil
}

// EnsureDir creates the parent directory of path if it is missing.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == string(filepath.Separator) {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		log.Printf("Creating directory: %s", dir)
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// runFFmpegCommand executes an ffmpeg command and logs its output.
func runFFmpegCommand(ffmpegPath string, args ...string) error {
	cmd := exec.Command(ffmpegPath, args...)
	log.Printf("Executing FFmpeg command: %s %s", ffmpegPath, strings.Join(args, " "))

	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Printf("FFmpeg command failed: %v\n%s", err, string(output))
		return fmt.Errorf("ffmpeg error: %w, output: %s", err, string(output))
	}
	return nil
}

// ThumbnailPath maps a stored video path relative to root onto its thumbnail:
// dataset/<exercise>/<form>/<name> becomes thumbnails/<exercise>/<form>/<name>.jpg.
func ThumbnailPath(root, relVideoPath string) string {
	rel := filepath.FromSlash(relVideoPath)
	parts := strings.SplitN(rel, string(filepath.Separator), 2)
	if len(parts) == 2 {
		rel = parts[1]
	}
	return filepath.Join(root, "thumbnails", rel+".jpg")
}

// GenerateThumbnail creates a thumbnail from a video file using ffmpeg.
// timeInSeconds specifies the point in the video to capture the thumbnail from.
func GenerateThumbnail(videoPath, thumbnailPath string, timeInSeconds int, ffmpegExecutable string) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video input file does not exist: %s", videoPath)
	}

	if err := EnsureDir(thumbnailPath); err != nil {
		return fmt.Errorf("failed to ensure thumbnail output directory: %w", err)
	}

	args := []string{
		"-ss", strconv.Itoa(timeInSeconds),
		"-i", videoPath,
		"-vframes", "1",
		"-vf", "scale=400:-1",
		"-y",
		thumbnailPath,
	}
	if err := runFFmpegCommand(ffmpegExecutable, args...); err != nil {
		if removeErr := os.Remove(thumbnailPath); removeErr != nil && !os.IsNotExist(removeErr) {
			log.Printf("Warning: Failed to remove incomplete thumbnail %s: %v", thumbnailPath, removeErr)
		}
		return err
	}
	return nil
}
