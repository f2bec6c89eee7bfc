// Package mirror copies received videos to an S3 bucket under the same
// relative key they have on the receiver's disk.
package mirror

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the part of the S3 client the mirror needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Mirror struct {
	client PutObjectAPI
	bucket string
	root   string
}

func New(client PutObjectAPI, bucket, root string) *S3Mirror {
	return &S3Mirror{client: client, bucket: bucket, root: root}
}

// NewFromEnv builds a mirror using the default AWS credential chain.
func NewFromEnv(ctx context.Context, bucket, region, root string) (*S3Mirror, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return New(s3.NewFromConfig(cfg), bucket, root), nil
}

// Mirror uploads the file at root/relPath to key relPath.
func (m *S3Mirror) Mirror(ctx context.Context, relPath string) error {
	key := strings.TrimPrefix(filepath.ToSlash(relPath), "/")
	f, err := os.Open(filepath.Join(m.root, filepath.FromSlash(key)))
	if err != nil {
		return fmt.Errorf("open %s: %w", key, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", key, err)
	}

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType(key)),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", m.bucket, key, err)
	}
	return nil
}

func contentType(key string) string {
	if strings.EqualFold(filepath.Ext(key), ".mov") {
		return "video/quicktime"
	}
	return "video/mp4"
}
