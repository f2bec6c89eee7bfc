package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"LISTEN_PORT", "RECEIVER_ROOT", "POSTGRES_URI", "MAX_UPLOAD_BYTES", "THUMBNAILS", "S3_BUCKET", "UPLOAD_TOKEN_HASH", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.ListenPort)
	assert.Equal(t, ".", cfg.ReceiverRoot)
	assert.Empty(t, cfg.PostgresURI)
	assert.EqualValues(t, 512<<20, cfg.MaxUploadBytes)
	assert.False(t, cfg.Thumbnails)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LISTEN_PORT", "8088")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("THUMBNAILS", "true")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8088", cfg.ListenPort)
	assert.EqualValues(t, 1024, cfg.MaxUploadBytes)
	assert.True(t, cfg.Thumbnails)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MAX_UPLOAD_BYTES", "lots")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("MAX_UPLOAD_BYTES", "")
	t.Setenv("THUMBNAILS", "maybe")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadCaptureConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", "/home/lifter")
	t.Setenv("SERVER_ADDR", "")
	t.Setenv("DATASET_ROOT", "")

	cfg, err := LoadCaptureConfig()
	require.NoError(t, err)
	assert.Equal(t, "localhost:3000", cfg.ServerAddr)
	assert.Equal(t, "/home/lifter/formcheck/dataset", cfg.DatasetRoot)

	t.Setenv("SERVER_ADDR", "192.168.1.10:3000")
	cfg, err = LoadCaptureConfig()
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.10:3000", cfg.ServerAddr)
}
