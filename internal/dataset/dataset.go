// Package dataset owns the on-disk layout of labelled exercise videos:
// <root>/dataset/<exercise>/<form>/<file>.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DirName is the directory under a receiver root that holds the dataset tree.
const DirName = "dataset"

// AllowedExtensions lists the video extensions the receiver accepts.
var AllowedExtensions = []string{".mp4", ".mov"}

// ErrInvalid is wrapped by every validation failure in this package.
var ErrInvalid = errors.New("invalid dataset entry")

// HasVideoExtension reports whether name ends in one of AllowedExtensions,
// ignoring case.
func HasVideoExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// BaseName reduces a client-supplied filename to its final element. Both slash
// styles are treated as separators since the name comes from arbitrary clients.
func BaseName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	return path.Base(name)
}

// ValidateFilename checks an uploaded file name.
func ValidateFilename(name string) error {
	if name == "" || name == "." || name == "/" {
		return fmt.Errorf("%w: missing file name", ErrInvalid)
	}
	if !HasVideoExtension(name) {
		return fmt.Errorf("%w: only %s video files are allowed", ErrInvalid, strings.Join(AllowedExtensions, " and "))
	}
	return nil
}

// ValidateSegment checks that a classification value can be used as a single
// directory name. Any string is accepted as long as it stays inside the tree.
func ValidateSegment(field, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, field)
	}
	if value == "." || value == ".." || strings.ContainsAny(value, `/\`) || strings.ContainsRune(value, 0) {
		return fmt.Errorf("%w: %s %q is not a valid directory name", ErrInvalid, field, value)
	}
	return nil
}

// Dir returns the directory holding videos of one exercise/form bucket.
func Dir(root, exercise, form string) string {
	return filepath.Join(root, DirName, exercise, form)
}

// RelPath is the slash separated path of a stored file relative to root.
func RelPath(exercise, form, name string) string {
	return path.Join(DirName, exercise, form, name)
}

// Store writes src to <root>/dataset/<exercise>/<form>/<name>, creating the
// directory if needed and truncating any existing file of the same name.
// It returns the path written relative to root.
//
// Validation happens before anything touches the disk. A failed copy can leave
// the bucket directory behind.
func Store(root, exercise, form, name string, src io.Reader) (string, int64, error) {
	if err := ValidateSegment("exercise", exercise); err != nil {
		return "", 0, err
	}
	if err := ValidateSegment("form", form); err != nil {
		return "", 0, err
	}
	if err := ValidateFilename(name); err != nil {
		return "", 0, err
	}
	if BaseName(name) != name {
		return "", 0, fmt.Errorf("%w: file name %q must not contain a directory", ErrInvalid, name)
	}

	dir := Dir(root, exercise, form)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	dst := filepath.Join(dir, name)
	f, err := os.Create(dst)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create %s: %w", dst, err)
	}
	n, err := io.Copy(f, src)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		log.Printf("Write of %s failed after %d bytes: %v", dst, n, err)
		return "", n, fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return RelPath(exercise, form, name), n, nil
}
