package mirror

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	err    error
	bucket string
	key    string
	ctype  string
	body   []byte
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	f.ctype = aws.ToString(in.ContentType)
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func TestMirror(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "dataset", "squat", "incorrect")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.MOV"), []byte("frames"), 0644))

	fake := &fakeS3{}
	m := New(fake, "lift-dataset", root)
	require.NoError(t, m.Mirror(context.Background(), "dataset/squat/incorrect/clip.MOV"))

	assert.Equal(t, "lift-dataset", fake.bucket)
	assert.Equal(t, "dataset/squat/incorrect/clip.MOV", fake.key)
	assert.Equal(t, "video/quicktime", fake.ctype)
	assert.Equal(t, "frames", string(fake.body))
}

func TestMirrorErrors(t *testing.T) {
	root := t.TempDir()
	m := New(&fakeS3{}, "b", root)
	assert.Error(t, m.Mirror(context.Background(), "dataset/squat/correct/missing.mp4"))

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.mp4"), []byte("x"), 0644))
	m = New(&fakeS3{err: errors.New("access denied")}, "b", root)
	err := m.Mirror(context.Background(), "a.mp4")
	assert.ErrorContains(t, err, "access denied")
}
