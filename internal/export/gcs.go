package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
)

const uploadTimeout = 2 * time.Minute

// GCSSink uploads reports to a bucket. It assumes Application Default
// Credentials are configured.
type GCSSink struct {
	bucket  string
	client  *storage.Client
	writers func(ctx context.Context, object string) io.WriteCloser
}

func NewGCSSink(ctx context.Context, bucket string) (*GCSSink, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs sink: empty bucket name")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	bkt := client.Bucket(bucket)
	return &GCSSink{
		bucket: bucket,
		client: client,
		writers: func(ctx context.Context, object string) io.WriteCloser {
			w := bkt.Object(object).NewWriter(ctx)
			w.ContentType = "application/pdf"
			return w
		},
	}, nil
}

// Deliver uploads r as object name and returns its gs:// URI.
func (s *GCSSink) Deliver(ctx context.Context, name string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := s.writers(ctx, name)
	if _, err := io.Copy(w, r); err != nil {
		// Closing after a failed copy discards the partial object.
		_ = w.Close()
		return "", fmt.Errorf("copy report to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", s.bucket, name), nil
}

func (s *GCSSink) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
