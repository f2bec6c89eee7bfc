package capture

import (
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"syscall"
)

var rename = os.Rename

// ensureDir creates dir and any missing parents. Existing directories are fine.
func ensureDir(dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		// Probe only; MkdirAll below reports the real problem.
		log.Printf("Checking directory %s: %v", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &IOError{Op: "create directory", Path: dir, Err: err}
	}
	return nil
}

// moveFile moves src to dst. When a rename is not possible across devices
// the file is copied to a sibling temp file first, so dst never holds a
// partial recording.
func moveFile(src, dst string) error {
	if err := ensureDir(filepath.Dir(dst)); err != nil {
		return err
	}

	err := rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return &IOError{Op: "move recording", Path: dst, Err: err}
	}

	tmp := dst + ".part"
	if err := copyFile(src, tmp); err != nil {
		os.Remove(tmp)
		return &IOError{Op: "copy recording", Path: dst, Err: err}
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return &IOError{Op: "move recording", Path: dst, Err: err}
	}
	if err := os.Remove(src); err != nil {
		log.Printf("Warning: failed to remove captured source %s: %v", src, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
