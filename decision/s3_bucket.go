package decision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/airline-ops/recovery-orchestrator/model"
)

func marshalRecord(r *model.DecisionRecord) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal decision record: %w", err)
	}
	return data, nil
}

// S3Bucket writes decision records to a single S3-compatible bucket,
// carrying the record's metadata as S3 object tags.
type S3Bucket struct {
	client *s3.Client
	bucket string
}

// NewS3Bucket wraps client against bucket.
func NewS3Bucket(client *s3.Client, bucket string) *S3Bucket {
	return &S3Bucket{client: client, bucket: bucket}
}

func (b *S3Bucket) Name() string { return b.bucket }

func (b *S3Bucket) Put(ctx context.Context, key string, data []byte, tags map[string]string) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:  &b.bucket,
		Key:     &key,
		Body:    bytes.NewReader(data),
		Tagging: encodeTagging(tags),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s/%s: %w", b.bucket, key, err)
	}
	return nil
}

func encodeTagging(tags map[string]string) *string {
	if len(tags) == 0 {
		return nil
	}
	var b bytes.Buffer
	first := true
	for k, v := range tags {
		if !first {
			b.WriteByte('&')
		}
		first = false
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v)
	}
	s := b.String()
	return &s
}

var _ BucketWriter = (*S3Bucket)(nil)
