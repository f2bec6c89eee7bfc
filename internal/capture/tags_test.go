package capture

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPath(t *testing.T) {
	at := time.UnixMilli(1700000000999)
	root := filepath.Join("data", "dataset")

	for _, e := range Exercises {
		for _, f := range Forms {
			tag := Tag{Exercise: e, Form: f}
			got := LocalPath(root, tag, at)
			want := filepath.Join(root, string(e), string(f), string(e)+"_"+string(f)+"_1700000000999.mp4")
			assert.Equal(t, want, got)
			// Pure function of its inputs.
			assert.Equal(t, got, LocalPath(root, tag, at))
		}
	}
}

func TestTagFromPath(t *testing.T) {
	p := LocalPath("/tmp/dataset", Tag{Exercise: BenchPress, Form: Incorrect}, time.UnixMilli(1))
	tag, err := TagFromPath(p)
	require.NoError(t, err)
	assert.Equal(t, Tag{Exercise: BenchPress, Form: Incorrect}, tag)

	_, err = TagFromPath("/tmp/videos/clip.mp4")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestNames(t *testing.T) {
	assert.Equal(t, "Bench Press", BenchPress.Name())
	assert.Equal(t, "Incorrect Form", Incorrect.Name())
	assert.Equal(t, "squat/correct", Tag{Exercise: Squat, Form: Correct}.String())
}
