package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"formcheck/internal/capture"
	"formcheck/internal/handlers"
	"formcheck/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReceiver(t *testing.T, opts handlers.RouteOptions) (*httptest.Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	root := t.TempDir()
	r := gin.New()
	handlers.SetupRoutes(r, handlers.NewReceiver(root), opts)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, root
}

func writeRecording(t *testing.T, name string, size int) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(p, data, 0644))
	return p
}

func TestNewClient(t *testing.T) {
	assert.Equal(t, "http://localhost:3000/upload", NewClient("localhost:3000").URL())
	assert.Equal(t, "http://192.168.1.20:3000/upload", NewClient("http://192.168.1.20:3000/").URL())
	assert.Equal(t, "https://gym.example/upload", NewClient("https://gym.example").URL())
}

func TestUploadRoundTrip(t *testing.T) {
	srv, root := newReceiver(t, handlers.RouteOptions{})
	src := writeRecording(t, "squat_correct_1718000000123.mp4", 256<<10)

	var last, total int64
	c := NewClient(srv.URL)
	res, err := c.Upload(context.Background(), capture.UploadRequest{
		FilePath: src,
		Tag:      capture.Tag{Exercise: capture.Squat, Form: capture.Correct},
	}, func(sent, tot int64) {
		assert.GreaterOrEqual(t, sent, last)
		last, total = sent, tot
	})
	require.NoError(t, err)

	assert.Equal(t, "File uploaded successfully", res.Message)
	assert.Equal(t, "dataset/squat/correct/squat_correct_1718000000123.mp4", res.Path)
	assert.EqualValues(t, 256<<10, total)
	assert.Equal(t, total, last)

	want, _ := os.ReadFile(src)
	got, err := os.ReadFile(filepath.Join(root, "dataset", "squat", "correct", "squat_correct_1718000000123.mp4"))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestUploadRejected(t *testing.T) {
	srv, _ := newReceiver(t, handlers.RouteOptions{})
	src := writeRecording(t, "notes.txt", 10)

	_, err := NewClient(srv.URL).Upload(context.Background(), capture.UploadRequest{
		FilePath: src,
		Tag:      capture.Tag{Exercise: capture.Squat, Form: capture.Correct},
	}, nil)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Contains(t, se.Error(), "400")
}

func TestUploadToken(t *testing.T) {
	hash, err := utils.HashToken("gym-laptop")
	require.NoError(t, err)
	srv, _ := newReceiver(t, handlers.RouteOptions{UploadTokenHash: hash})
	req := capture.UploadRequest{
		FilePath: writeRecording(t, "a.mp4", 32),
		Tag:      capture.Tag{Exercise: capture.Deadlift, Form: capture.Incorrect},
	}

	c := NewClient(srv.URL)
	_, err = c.Upload(context.Background(), req, nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)

	c.Token = "gym-laptop"
	res, err := c.Upload(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, "dataset/deadlift/incorrect/a.mp4", res.Path)
}

func TestUploadMissingFile(t *testing.T) {
	_, err := NewClient("localhost:1").Upload(context.Background(), capture.UploadRequest{
		FilePath: filepath.Join(t.TempDir(), "gone.mp4"),
	}, nil)
	assert.Error(t, err)
}

func TestUploadUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewClient(addr).Upload(context.Background(), capture.UploadRequest{
		FilePath: writeRecording(t, "a.mp4", 8),
		Tag:      capture.Tag{Exercise: capture.Squat, Form: capture.Correct},
	}, nil)
	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestUploadThroughHandle(t *testing.T) {
	srv, _ := newReceiver(t, handlers.RouteOptions{})
	h := capture.StartUpload(context.Background(), NewClient(srv.URL), capture.UploadRequest{
		FilePath: writeRecording(t, "b.mov", 64<<10),
		Tag:      capture.Tag{Exercise: capture.BenchPress, Form: capture.Correct},
	}, nil)

	var seen []int
	for pct := range h.Progress() {
		seen = append(seen, pct)
	}
	res, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dataset/bench_press/correct/b.mov", res.Path)
	require.NotEmpty(t, seen)
	assert.Equal(t, 0, seen[0])
	assert.Equal(t, 100, seen[len(seen)-1])
	assert.IsNonDecreasing(t, seen)
}
