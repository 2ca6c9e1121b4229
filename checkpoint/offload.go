package checkpoint

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Offloader off-loads large checkpoint payloads to a single S3-
// compatible bucket, keyed by the documented checkpoints/{thread}/
// {checkpoint_id}.json layout (callers pass that key in).
type S3Offloader struct {
	client *s3.Client
	bucket string
}

// NewS3Offloader wraps client against bucket.
func NewS3Offloader(client *s3.Client, bucket string) *S3Offloader {
	return &S3Offloader{client: client, bucket: bucket}
}

func (o *S3Offloader) Put(ctx context.Context, key string, data []byte) error {
	_, err := o.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &o.bucket,
		Key:    &key,
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s/%s: %w", o.bucket, key, err)
	}
	return nil
}

func (o *S3Offloader) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &o.bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get %s/%s: %w", o.bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read %s/%s: %w", o.bucket, key, err)
	}
	return data, nil
}

var _ Offloader = (*S3Offloader)(nil)
