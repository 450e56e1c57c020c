package workspace

import (
	"context"
	"errors"
	"io"

	"aficionado-be/internal/pkg/apperror"
	"aficionado-be/internal/pkg/logger"
	"aficionado-be/pkg/blobstore"
)

// Storage is the subset of blobstore.Adapter the synchronizer drives.
type Storage interface {
	Upload(ctx context.Context, username, filename string, r io.Reader, contentType string) error
	ListFilenames(ctx context.Context, username string) ([]string, error)
	DeleteAll(ctx context.Context, username string) (blobstore.DeleteReport, error)
	CloneExamples(ctx context.Context, username string) ([]string, error)
}

// File is one pending upload. Open is called once, right before the upload.
type File struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

type FailedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type UploadResult struct {
	Stored []string     `json:"stored"`
	Failed []FailedFile `json:"failed"`
}

// Synchronizer applies workspace mutations to storage first and only then to
// the cached FileSet, so the cache never lists a file whose write failed.
type Synchronizer struct {
	storage Storage
	logger  logger.ILogger
}

func NewSynchronizer(storage Storage, log logger.ILogger) *Synchronizer {
	return &Synchronizer{storage: storage, logger: log}
}

// Load lists the user's workspace from storage.
func (s *Synchronizer) Load(ctx context.Context, username string) (*FileSet, error) {
	names, err := s.storage.ListFilenames(ctx, username)
	if err != nil {
		return NewFileSet(), apperror.NewStorage("list", err)
	}
	return NewFileSet(names...), nil
}

// Reconcile replaces the cache with a fresh listing.
func (s *Synchronizer) Reconcile(ctx context.Context, username string, set *FileSet) error {
	names, err := s.storage.ListFilenames(ctx, username)
	if err != nil {
		return apperror.NewStorage("list", err)
	}
	before := set.Len()
	set.Replace(names)
	s.logger.Debug("WORKSPACE", "Cache reconciled", map[string]interface{}{
		"username": username,
		"before":   before,
		"after":    set.Len(),
	})
	return nil
}

// Upload stores each file and adds the stored names to set. Failures are
// collected; the returned error lists them while successful names stay cached.
func (s *Synchronizer) Upload(ctx context.Context, username string, set *FileSet, files []File) (UploadResult, error) {
	result := UploadResult{Stored: []string{}, Failed: []FailedFile{}}
	var first error

	for _, f := range files {
		if err := s.uploadOne(ctx, username, f); err != nil {
			result.Failed = append(result.Failed, FailedFile{Name: f.Name, Reason: err.Error()})
			if first == nil {
				first = err
			}
			continue
		}
		result.Stored = append(result.Stored, f.Name)
	}

	set.Add(result.Stored...)

	if first != nil {
		appErr := apperror.NewStorage("upload", first)
		appErr.Details["failed"] = result.Failed
		s.logger.Warn("WORKSPACE", "Some uploads failed", map[string]interface{}{
			"username": username,
			"stored":   len(result.Stored),
			"failed":   len(result.Failed),
		})
		return result, appErr
	}
	return result, nil
}

func (s *Synchronizer) uploadOne(ctx context.Context, username string, f File) error {
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	return s.storage.Upload(ctx, username, f.Name, r, f.ContentType)
}

// DeleteAll removes every workspace object. On full success the cache is
// cleared; on partial failure it is rebuilt from storage.
func (s *Synchronizer) DeleteAll(ctx context.Context, username string, set *FileSet) (blobstore.DeleteReport, error) {
	report, err := s.storage.DeleteAll(ctx, username)
	if err == nil {
		set.Clear()
		return report, nil
	}

	var partial *blobstore.PartialDeleteError
	if errors.As(err, &partial) {
		if rerr := s.Reconcile(ctx, username, set); rerr != nil {
			// Listing failed too; fall back to what we know survived.
			set.Replace(report.Failed)
		}
		appErr := apperror.NewStorage("delete", err)
		appErr.Details["failed"] = report.Failed
		return report, appErr
	}
	return report, apperror.NewStorage("delete", err)
}

// CloneExamples seeds the workspace from the shared examples and caches the copied names.
func (s *Synchronizer) CloneExamples(ctx context.Context, username string, set *FileSet) ([]string, error) {
	copied, err := s.storage.CloneExamples(ctx, username)
	set.Add(copied...)
	if err != nil {
		return copied, apperror.NewStorage("copy", err)
	}
	return copied, nil
}

// Save stores a single in-memory document (used for saved responses).
func (s *Synchronizer) Save(ctx context.Context, username string, set *FileSet, name, contentType string, r io.Reader) error {
	if err := s.storage.Upload(ctx, username, name, r, contentType); err != nil {
		return apperror.NewStorage("upload", err)
	}
	set.Add(name)
	return nil
}
