package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DeleteReport is the outcome of a bulk delete. The loop is not atomic, so a
// failure part-way leaves Deleted and Failed both populated.
type DeleteReport struct {
	Deleted []string `json:"deleted"`
	Failed  []string `json:"failed"`
}

// Partial reports whether at least one object could not be deleted.
func (r DeleteReport) Partial() bool {
	return len(r.Failed) > 0
}

// PartialDeleteError is returned by DeleteAll when some deletes failed.
type PartialDeleteError struct {
	Report DeleteReport
	First  error
}

func (e *PartialDeleteError) Error() string {
	return fmt.Sprintf("deleted %d objects, %d failed: %v", len(e.Report.Deleted), len(e.Report.Failed), e.First)
}

func (e *PartialDeleteError) Unwrap() error {
	return e.First
}

// ErrReservedNamespace is returned when a user namespace would overlap the
// shared examples prefix.
var ErrReservedNamespace = errors.New("namespace is reserved")

// Adapter implements the workspace operations on top of a Bucket.
type Adapter struct {
	bucket         Bucket
	examplesPrefix string
}

func NewAdapter(bucket Bucket, examplesPrefix string) *Adapter {
	if examplesPrefix == "" {
		examplesPrefix = "examples"
	}
	return &Adapter{
		bucket:         bucket,
		examplesPrefix: strings.Trim(examplesPrefix, "/"),
	}
}

func (a *Adapter) BucketName() string {
	return a.bucket.Name()
}

// checkNamespace keeps user operations out of the examples prefix and its parents.
func (a *Adapter) checkNamespace(username string) error {
	ns := strings.Trim(username, "/")
	if ns == "" || ns == a.examplesPrefix || strings.HasPrefix(a.examplesPrefix, ns+"/") {
		return fmt.Errorf("%q: %w", username, ErrReservedNamespace)
	}
	return nil
}

// Upload stores content under "<username>/<filename>", replacing any existing object.
func (a *Adapter) Upload(ctx context.Context, username, filename string, r io.Reader, contentType string) error {
	if err := a.checkNamespace(username); err != nil {
		return err
	}
	return a.put(ctx, username, filename, r, contentType)
}

func (a *Adapter) put(ctx context.Context, namespace, filename string, r io.Reader, contentType string) error {
	if err := a.bucket.Put(ctx, Key(namespace, filename), r, contentType); err != nil {
		return fmt.Errorf("upload %s: %w", filename, err)
	}
	return nil
}

// ListFilenames returns every filename in the user's workspace. Order is unspecified.
func (a *Adapter) ListFilenames(ctx context.Context, username string) ([]string, error) {
	if err := a.checkNamespace(username); err != nil {
		return nil, err
	}
	return a.listNames(ctx, username)
}

// DeleteAll deletes every object in the user's workspace, one at a time.
func (a *Adapter) DeleteAll(ctx context.Context, username string) (DeleteReport, error) {
	if err := a.checkNamespace(username); err != nil {
		return DeleteReport{}, err
	}
	keys, err := a.bucket.List(ctx, Prefix(username))
	if err != nil {
		return DeleteReport{}, fmt.Errorf("list %s: %w", username, err)
	}

	report := DeleteReport{Deleted: []string{}, Failed: []string{}}
	var first error
	for _, key := range keys {
		name, _ := StripPrefix(username, key)
		if err := a.bucket.Delete(ctx, key); err != nil {
			report.Failed = append(report.Failed, name)
			if first == nil {
				first = err
			}
			continue
		}
		report.Deleted = append(report.Deleted, name)
	}

	if report.Partial() {
		return report, &PartialDeleteError{Report: report, First: first}
	}
	return report, nil
}

// Copy performs a server-side copy between two full keys.
func (a *Adapter) Copy(ctx context.Context, srcKey, dstKey string) error {
	if err := a.bucket.Copy(ctx, srcKey, dstKey); err != nil {
		return fmt.Errorf("copy %s -> %s: %w", srcKey, dstKey, err)
	}
	return nil
}

// ListExamples returns the filenames of the shared example templates.
func (a *Adapter) ListExamples(ctx context.Context) ([]string, error) {
	return a.listNames(ctx, a.examplesPrefix)
}

// CloneExamples copies every example into the user's workspace and returns the
// names that were copied. The examples prefix itself is only read.
func (a *Adapter) CloneExamples(ctx context.Context, username string) ([]string, error) {
	if err := a.checkNamespace(username); err != nil {
		return nil, err
	}
	names, err := a.ListExamples(ctx)
	if err != nil {
		return nil, err
	}

	copied := make([]string, 0, len(names))
	for _, name := range names {
		if err := a.Copy(ctx, Key(a.examplesPrefix, name), Key(username, name)); err != nil {
			return copied, err
		}
		copied = append(copied, name)
	}
	return copied, nil
}

// SeedExample uploads a shared example template.
func (a *Adapter) SeedExample(ctx context.Context, filename string, r io.Reader, contentType string) error {
	return a.put(ctx, a.examplesPrefix, filename, r, contentType)
}

// ObjectURI returns the gs:// style URI of a workspace file.
func (a *Adapter) ObjectURI(username, filename string) string {
	return "gs://" + a.bucket.Name() + "/" + Key(username, filename)
}

func (a *Adapter) listNames(ctx context.Context, namespace string) ([]string, error) {
	keys, err := a.bucket.List(ctx, Prefix(namespace))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", namespace, err)
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		if name, ok := StripPrefix(namespace, key); ok {
			names = append(names, name)
		}
	}
	return names, nil
}
