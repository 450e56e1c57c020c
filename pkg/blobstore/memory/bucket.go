// Package memory is an in-process Bucket used for tests and local runs without GCS.
package memory

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"aficionado-be/pkg/blobstore"
)

type object struct {
	data        []byte
	contentType string
	updated     time.Time
}

type Bucket struct {
	name    string
	mu      sync.RWMutex
	objects map[string]object
}

var _ blobstore.Bucket = &Bucket{}

func NewBucket(name string) *Bucket {
	return &Bucket{
		name:    name,
		objects: make(map[string]object),
	}
}

func (b *Bucket) Name() string {
	return b.name
}

func (b *Bucket) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read content: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = object{data: data, contentType: contentType, updated: time.Now()}
	return nil
}

func (b *Bucket) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0)
	for key := range b.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (b *Bucket) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[key]; !ok {
		return blobstore.ErrObjectNotFound
	}
	delete(b.objects, key)
	return nil
}

func (b *Bucket) Copy(ctx context.Context, srcKey, dstKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	src, ok := b.objects[srcKey]
	if !ok {
		return blobstore.ErrObjectNotFound
	}
	data := make([]byte, len(src.data))
	copy(data, src.data)
	b.objects[dstKey] = object{data: data, contentType: src.contentType, updated: time.Now()}
	return nil
}

// Read returns a copy of an object's bytes.
func (b *Bucket) Read(key string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	obj, ok := b.objects[key]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(obj.data))
	copy(out, obj.data)
	return out, true
}

// ContentType returns the stored content type of key.
func (b *Bucket) ContentType(key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.objects[key].contentType
}
