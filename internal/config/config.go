package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the configuration values for the receiver.
type Config struct {
	ListenPort      string
	ReceiverRoot    string
	PostgresURI     string
	MaxUploadBytes  int64
	FFmpegPath      string
	Thumbnails      bool
	S3Bucket        string
	AWSRegion       string
	UploadTokenHash string
	CORSOrigins     []string
}

// CaptureConfig holds the configuration values for the capture client.
type CaptureConfig struct {
	ServerAddr   string
	UploadToken  string
	DatasetRoot  string
	CameraDevice string
	CameraFormat string
	JournalPath  string
	FFmpegPath   string
}

// loadDotEnv reads a .env file from the working directory when present.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to read .env: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadConfig loads receiver configuration from environment variables or uses default values.
func LoadConfig() (*Config, error) {
	loadDotEnv()

	maxUpload := int64(512 << 20)
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES %q", v)
		}
		maxUpload = n
	}

	thumbnails := false
	if v := os.Getenv("THUMBNAILS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid THUMBNAILS %q: %w", v, err)
		}
		thumbnails = b
	}

	var origins []string
	for _, o := range strings.Split(getEnv("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return &Config{
		ListenPort:      getEnv("LISTEN_PORT", "3000"),
		ReceiverRoot:    getEnv("RECEIVER_ROOT", "."),
		PostgresURI:     os.Getenv("POSTGRES_URI"),
		MaxUploadBytes:  maxUpload,
		FFmpegPath:      getEnv("FFMPEG_PATH", "ffmpeg"),
		Thumbnails:      thumbnails,
		S3Bucket:        os.Getenv("S3_BUCKET"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		UploadTokenHash: os.Getenv("UPLOAD_TOKEN_HASH"),
		CORSOrigins:     origins,
	}, nil
}

// LoadCaptureConfig loads client configuration from environment variables or uses default values.
func LoadCaptureConfig() (*CaptureConfig, error) {
	loadDotEnv()

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}

	return &CaptureConfig{
		ServerAddr:   getEnv("SERVER_ADDR", "localhost:3000"),
		UploadToken:  os.Getenv("UPLOAD_TOKEN"),
		DatasetRoot:  getEnv("DATASET_ROOT", filepath.Join(home, "formcheck", "dataset")),
		CameraDevice: getEnv("CAMERA_DEVICE", "/dev/video0"),
		CameraFormat: getEnv("CAMERA_FORMAT", "v4l2"),
		JournalPath:  getEnv("JOURNAL_PATH", filepath.Join(home, ".local", "share", "formcheck", "journal.db")),
		FFmpegPath:   getEnv("FFMPEG_PATH", "ffmpeg"),
	}, nil
}
