// Package camera records from a local capture device with ffmpeg.
package camera

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"formcheck/internal/capture"
	"formcheck/internal/utils"
)

// ErrNotRecording is returned by Stop when no capture is running.
var ErrNotRecording = errors.New("camera is not recording")

// Recorder drives one ffmpeg process per recording. It writes to a temporary
// mp4 that the capture session moves into the dataset.
type Recorder struct {
	FFmpegPath string
	Device     string
	Format     string
	TempDir    string

	// StopTimeout bounds how long ffmpeg gets to finalize the file after "q".
	StopTimeout time.Duration

	mu    sync.Mutex
	cmd   *exec.Cmd
	stdin io.WriteCloser
	out   string
	log   strings.Builder
}

func NewRecorder(ffmpegPath, device, format string) *Recorder {
	return &Recorder{
		FFmpegPath:  ffmpegPath,
		Device:      device,
		Format:      format,
		TempDir:     os.TempDir(),
		StopTimeout: 10 * time.Second,
	}
}

// RequestPermission reports whether ffmpeg is installed and the device can be
// opened by this user.
func (r *Recorder) RequestPermission(ctx context.Context) capture.Permission {
	if err := utils.CheckFFmpeg(r.FFmpegPath); err != nil {
		log.Printf("Camera unavailable: %v", err)
		return capture.PermissionDenied
	}
	if !r.deviceIsFile() {
		return capture.PermissionGranted
	}
	f, err := os.Open(r.Device)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
			log.Printf("Camera access denied for %s: %v", r.Device, err)
			return capture.PermissionDenied
		}
		log.Printf("Warning: probing %s failed: %v", r.Device, err)
		return capture.PermissionDenied
	}
	f.Close()
	return capture.PermissionGranted
}

// deviceIsFile is true for input formats whose device is a filesystem node.
func (r *Recorder) deviceIsFile() bool {
	return r.Format == "v4l2" || strings.HasPrefix(r.Device, "/dev/")
}

// Args builds the ffmpeg command line for recording into out.
func (r *Recorder) Args(out string) []string {
	return []string{
		"-y",
		"-f", r.Format,
		"-i", r.Device,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		out,
	}
}

// Start launches ffmpeg. The process outlives ctx; Stop ends it.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cmd != nil {
		return errors.New("camera is already recording")
	}

	f, err := os.CreateTemp(r.TempDir, "formcheck-*.mp4")
	if err != nil {
		return fmt.Errorf("failed to create capture file: %w", err)
	}
	out := f.Name()
	f.Close()

	cmd := exec.Command(r.FFmpegPath, r.Args(out)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		os.Remove(out)
		return err
	}
	r.log.Reset()
	cmd.Stderr = &r.log

	log.Printf("Executing FFmpeg command: %s %s", r.FFmpegPath, strings.Join(r.Args(out), " "))
	if err := cmd.Start(); err != nil {
		os.Remove(out)
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	r.cmd, r.stdin, r.out = cmd, stdin, out
	return nil
}

// Stop asks ffmpeg to finish, waits for it and returns the recorded file.
func (r *Recorder) Stop(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cmd == nil {
		return "", ErrNotRecording
	}
	cmd, out := r.cmd, r.out
	r.cmd, r.out = nil, ""

	if _, err := io.WriteString(r.stdin, "q"); err != nil {
		log.Printf("Warning: failed to signal ffmpeg: %v", err)
	}
	r.stdin.Close()

	waitErr := make(chan error, 1)
	go func() { waitErr <- cmd.Wait() }()

	timeout := r.StopTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	select {
	case err := <-waitErr:
		if err != nil {
			os.Remove(out)
			return "", fmt.Errorf("ffmpeg error: %w, output: %s", err, r.log.String())
		}
	case <-ctx.Done():
		cmd.Process.Kill()
		<-waitErr
		os.Remove(out)
		return "", ctx.Err()
	case <-time.After(timeout):
		cmd.Process.Kill()
		<-waitErr
		os.Remove(out)
		return "", fmt.Errorf("ffmpeg did not stop within %s", timeout)
	}

	info, err := os.Stat(out)
	if err != nil {
		return "", err
	}
	if info.Size() == 0 {
		os.Remove(out)
		return "", fmt.Errorf("ffmpeg produced an empty recording")
	}
	return filepath.Clean(out), nil
}
