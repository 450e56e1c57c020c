// Package gcs implements blobstore.Bucket on Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"aficionado-be/pkg/blobstore"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type Bucket struct {
	client *storage.Client
	handle *storage.BucketHandle
	name   string
}

var _ blobstore.Bucket = &Bucket{}

// NewBucket opens a client for bucketName. credentialsJSON may be empty, in which
// case application default credentials are used.
func NewBucket(ctx context.Context, bucketName, credentialsJSON string) (*Bucket, error) {
	if bucketName == "" {
		return nil, errors.New("gcs: bucket name is required")
	}

	var opts []option.ClientOption
	if credentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: create client: %w", err)
	}

	return &Bucket{
		client: client,
		handle: client.Bucket(bucketName),
		name:   bucketName,
	}, nil
}

func (b *Bucket) Name() string {
	return b.name
}

func (b *Bucket) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	w := b.handle.Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs: write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs: finalize %s: %w", key, err)
	}
	return nil
}

func (b *Bucket) List(ctx context.Context, prefix string) ([]string, error) {
	it := b.handle.Objects(ctx, &storage.Query{Prefix: prefix})
	keys := make([]string, 0)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcs: list %s: %w", prefix, err)
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}

func (b *Bucket) Delete(ctx context.Context, key string) error {
	if err := b.handle.Object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return blobstore.ErrObjectNotFound
		}
		return fmt.Errorf("gcs: delete %s: %w", key, err)
	}
	return nil
}

func (b *Bucket) Copy(ctx context.Context, srcKey, dstKey string) error {
	src := b.handle.Object(srcKey)
	dst := b.handle.Object(dstKey)
	if _, err := dst.CopierFrom(src).Run(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return blobstore.ErrObjectNotFound
		}
		return fmt.Errorf("gcs: copy %s -> %s: %w", srcKey, dstKey, err)
	}
	return nil
}

func (b *Bucket) Close() error {
	return b.client.Close()
}
