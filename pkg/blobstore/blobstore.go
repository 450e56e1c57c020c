// Package blobstore wraps an object-storage bucket with the per-user workspace
// operations: every user owns the flat key prefix "<username>/".
package blobstore

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrObjectNotFound is returned by drivers when a key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Bucket is the object-level driver contract implemented by gcs and memory.
type Bucket interface {
	Name() string
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	// List returns the full keys under prefix, in no particular order.
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
	// Copy is a provider-side copy; bytes never pass through the caller.
	Copy(ctx context.Context, srcKey, dstKey string) error
}

// Key builds the storage key "<namespace>/<filename>".
func Key(namespace, filename string) string {
	return namespace + "/" + filename
}

// Prefix is the list prefix for a namespace, including the trailing separator.
func Prefix(namespace string) string {
	return strings.TrimSuffix(namespace, "/") + "/"
}

// StripPrefix removes the namespace prefix from key. ok is false for keys outside it.
func StripPrefix(namespace, key string) (string, bool) {
	p := Prefix(namespace)
	if !strings.HasPrefix(key, p) {
		return "", false
	}
	name := strings.TrimPrefix(key, p)
	return name, name != ""
}
