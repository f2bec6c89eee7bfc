package capture

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// crossDevice makes renames of src fail as they would across filesystems.
func crossDevice(t *testing.T, src string) {
	t.Helper()
	orig := rename
	rename = func(oldpath, newpath string) error {
		if oldpath == src {
			return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
		}
		return orig(oldpath, newpath)
	}
	t.Cleanup(func() { rename = orig })
}

func TestMoveFile(t *testing.T) {
	t.Run("Rename", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "capture.mp4")
		require.NoError(t, os.WriteFile(src, []byte("frames"), 0644))
		dst := filepath.Join(t.TempDir(), "squat", "correct", "x.mp4")

		require.NoError(t, moveFile(src, dst))
		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "frames", string(data))
		_, err = os.Stat(src)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("Copy Across Devices", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "capture.mp4")
		require.NoError(t, os.WriteFile(src, []byte("frames"), 0644))
		dst := filepath.Join(t.TempDir(), "squat", "correct", "x.mp4")
		crossDevice(t, src)

		require.NoError(t, moveFile(src, dst))
		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "frames", string(data))
		_, err = os.Stat(src)
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(dst + ".part")
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("Failed Copy Leaves Nothing At Target", func(t *testing.T) {
		// A directory opens fine but cannot be read as a file.
		src := t.TempDir()
		dst := filepath.Join(t.TempDir(), "squat", "correct", "x.mp4")
		crossDevice(t, src)

		err := moveFile(src, dst)
		var ioErr *IOError
		require.ErrorAs(t, err, &ioErr)
		assert.Equal(t, "copy recording", ioErr.Op)

		_, err = os.Stat(dst)
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(dst + ".part")
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("Other Rename Errors Are Not Retried", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "x.mp4")
		err := moveFile(filepath.Join(t.TempDir(), "missing.mp4"), dst)
		var ioErr *IOError
		require.ErrorAs(t, err, &ioErr)
		assert.Equal(t, "move recording", ioErr.Op)
	})
}
