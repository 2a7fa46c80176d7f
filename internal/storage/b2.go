package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/kurin/blazer/b2"
	"github.com/pkg/errors"
)

// B2Store keeps blobs in a Backblaze B2 bucket.
type B2Store struct {
	client *b2.Client
	bucket *b2.Bucket
}

func NewB2Store(ctx context.Context, keyID, appKey, bucketName string) (*B2Store, error) {
	client, err := b2.NewClient(ctx, keyID, appKey)
	if err != nil {
		return nil, errors.Wrap(err, "create b2 client")
	}
	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, errors.Wrapf(err, "open bucket %s", bucketName)
	}
	return &B2Store{client: client, bucket: bucket}, nil
}

func (s *B2Store) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	w := s.bucket.Object(k).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", errors.Wrap(err, "write object")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "close object writer")
	}
	return fmt.Sprintf("%s/file/%s/%s", s.bucket.BaseURL(), s.bucket.Name(), k), nil
}

func (s *B2Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	k, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	return s.bucket.Object(k).NewReader(ctx), nil
}
