package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"

	"aficionado-be/internal/dto"
	"aficionado-be/internal/pkg/apperror"
	"aficionado-be/internal/pkg/logger"
	"aficionado-be/pkg/blobstore"
	"aficionado-be/pkg/events"
	"aficionado-be/pkg/filename"
	"aficionado-be/pkg/store"
	"aficionado-be/pkg/workspace"
)

type IWorkspaceService interface {
	List(ctx context.Context, session *store.Session) []string
	Refresh(ctx context.Context, session *store.Session) ([]string, error)
	QueueRefresh(ctx context.Context, session *store.Session) error
	Upload(ctx context.Context, session *store.Session, files []*multipart.FileHeader) (*dto.UploadFilesResponse, error)
	DeleteAll(ctx context.Context, session *store.Session) (*dto.DeleteWorkspaceResponse, error)
	CloneExamples(ctx context.Context, session *store.Session) (*dto.CloneExamplesResponse, error)
}

type WorkspaceOptions struct {
	AllowedExtensions []string
	MaxUploadBytes    int64
}

type workspaceService struct {
	guard            *SessionGuard
	synchronizer     *workspace.Synchronizer
	publisherService IPublisherService
	eventPublisher   EventPublisher
	opts             WorkspaceOptions
	logger           logger.ILogger
}

func NewWorkspaceService(
	guard *SessionGuard,
	synchronizer *workspace.Synchronizer,
	publisherService IPublisherService,
	eventPublisher EventPublisher,
	opts WorkspaceOptions,
	log logger.ILogger,
) IWorkspaceService {
	return &workspaceService{
		guard:            guard,
		synchronizer:     synchronizer,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		opts:             opts,
		logger:           log,
	}
}

// List returns the cached names without touching storage.
func (s *workspaceService) List(ctx context.Context, session *store.Session) []string {
	return session.Files().Names()
}

// Refresh re-lists storage and replaces the cached names.
func (s *workspaceService) Refresh(ctx context.Context, session *store.Session) ([]string, error) {
	fresh := workspace.NewFileSet()
	listErr := s.synchronizer.Reconcile(ctx, session.Username, fresh)

	err := s.guard.Update(ctx, session, func(st *store.Session) error {
		if listErr != nil {
			recordError(st, listErr, "Could not refresh your workspace files")
			return listErr
		}
		st.WorkspaceFiles = fresh
		clearStorageError(st)
		return nil
	})
	if err != nil {
		return session.Files().Names(), err
	}
	return session.Files().Names(), nil
}

// QueueRefresh hands the reconcile to the background consumer.
func (s *workspaceService) QueueRefresh(ctx context.Context, session *store.Session) error {
	payload, err := json.Marshal(dto.ReconcileWorkspaceMessage{
		SessionId: session.ID,
		Username:  session.Username,
	})
	if err != nil {
		return apperror.NewInternal(err)
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		return apperror.NewInternal(err)
	}
	return nil
}

// Upload checks each file against the extension whitelist and size limit,
// then stores the accepted ones. Only names confirmed by storage are cached.
func (s *workspaceService) Upload(ctx context.Context, session *store.Session, headers []*multipart.FileHeader) (*dto.UploadFilesResponse, error) {
	if len(headers) == 0 {
		return nil, apperror.NewValidation("no files selected")
	}

	var accepted []workspace.File
	rejected := []workspace.FailedFile{}
	for _, fh := range headers {
		name, reason := s.checkUpload(fh)
		if reason != "" {
			rejected = append(rejected, workspace.FailedFile{Name: fh.Filename, Reason: reason})
			continue
		}
		accepted = append(accepted, workspace.File{
			Name:        name,
			ContentType: contentType(fh, name),
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}

	if len(accepted) == 0 {
		appErr := apperror.NewValidation("none of the selected files can be uploaded")
		appErr.Details = map[string]any{"rejected": rejected}
		_ = s.guard.Update(ctx, session, func(st *store.Session) error {
			st.SetError(string(appErr.Code), rejectionMessage(rejected))
			return nil
		})
		return nil, appErr
	}

	stored := workspace.NewFileSet()
	result, uploadErr := s.synchronizer.Upload(ctx, session.Username, stored, accepted)

	err := s.guard.Update(ctx, session, func(st *store.Session) error {
		st.Files().Add(stored.Names()...)
		switch {
		case uploadErr != nil:
			recordError(st, uploadErr, fmt.Sprintf("%d file(s) could not be uploaded", len(result.Failed)))
		case len(rejected) > 0:
			st.SetError(string(apperror.CodeValidationFailed), rejectionMessage(rejected))
		default:
			st.ClearError()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(result.Stored) > 0 {
		publish(ctx, s.eventPublisher, events.NewWorkspaceEvent(events.FilesUploaded, session.Username, result.Stored), s.warn)
	}
	s.logger.Info("WORKSPACE", "Files uploaded", map[string]interface{}{
		"username": session.Username,
		"stored":   len(result.Stored),
		"failed":   len(result.Failed),
		"rejected": len(rejected),
	})

	resp := &dto.UploadFilesResponse{
		Stored:   result.Stored,
		Failed:   result.Failed,
		Rejected: rejected,
		Files:    session.Files().Names(),
	}
	if uploadErr != nil {
		return resp, uploadErr
	}
	return resp, nil
}

func (s *workspaceService) checkUpload(fh *multipart.FileHeader) (string, string) {
	name := filename.Sanitize(fh.Filename)
	if name == "" {
		return "", "invalid filename"
	}
	if !filename.Allowed(name, s.opts.AllowedExtensions) {
		return "", "file type not allowed"
	}
	if s.opts.MaxUploadBytes > 0 && fh.Size > s.opts.MaxUploadBytes {
		return "", fmt.Sprintf("file exceeds %d bytes", s.opts.MaxUploadBytes)
	}
	return name, ""
}

// DeleteAll removes every file in the user's workspace. Deletion is not
// atomic; on partial failure the response lists what survived.
func (s *workspaceService) DeleteAll(ctx context.Context, session *store.Session) (*dto.DeleteWorkspaceResponse, error) {
	before := session.Files().Names()
	report, delErr := s.synchronizer.DeleteAll(ctx, session.Username, session.Files().Clone())

	var partial *blobstore.PartialDeleteError
	listed := delErr == nil || errors.As(delErr, &partial)

	err := s.guard.Update(ctx, session, func(st *store.Session) error {
		if listed {
			applyDeleteReport(st.Files(), before, report)
		}
		if delErr != nil {
			recordError(st, delErr, fmt.Sprintf("%d file(s) could not be deleted", len(report.Failed)))
			return nil
		}
		clearStorageError(st)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(report.Deleted) > 0 {
		publish(ctx, s.eventPublisher, events.NewWorkspaceEvent(events.WorkspaceCleared, session.Username, report.Deleted), s.warn)
	}
	s.logger.Info("WORKSPACE", "Workspace cleared", map[string]interface{}{
		"username": session.Username,
		"deleted":  len(report.Deleted),
		"failed":   len(report.Failed),
	})

	resp := &dto.DeleteWorkspaceResponse{
		Deleted: nonNil(report.Deleted),
		Failed:  nonNil(report.Failed),
		Files:   session.Files().Names(),
	}
	return resp, delErr
}

// applyDeleteReport updates the current cache rather than a snapshot, so names
// added while the bucket was being emptied survive. Everything cached before
// the delete is gone unless storage reported it as failed.
func applyDeleteReport(files *workspace.FileSet, before []string, report blobstore.DeleteReport) {
	files.Remove(before...)
	files.Remove(report.Deleted...)
	files.Add(report.Failed...)
}

func (s *workspaceService) CloneExamples(ctx context.Context, session *store.Session) (*dto.CloneExamplesResponse, error) {
	copied := workspace.NewFileSet()
	names, cloneErr := s.synchronizer.CloneExamples(ctx, session.Username, copied)

	err := s.guard.Update(ctx, session, func(st *store.Session) error {
		st.Files().Add(copied.Names()...)
		if cloneErr != nil {
			recordError(st, cloneErr, "Could not copy the example files")
			return nil
		}
		clearStorageError(st)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(names) > 0 {
		publish(ctx, s.eventPublisher, events.NewWorkspaceEvent(events.ExamplesCloned, session.Username, names), s.warn)
	}

	resp := &dto.CloneExamplesResponse{Copied: nonNil(names), Files: session.Files().Names()}
	return resp, cloneErr
}

func (s *workspaceService) warn(message string, details map[string]interface{}) {
	s.logger.Warn("WORKSPACE", message, details)
}

func recordError(st *store.Session, err error, message string) {
	appErr := apperror.From(err)
	st.SetError(string(appErr.Code), message)
}

// clearStorageError drops a previous storage error once storage works again.
func clearStorageError(st *store.Session) {
	if st.LastError != nil && st.LastError.Code == string(apperror.CodeStorage) {
		st.ClearError()
	}
}

func rejectionMessage(rejected []workspace.FailedFile) string {
	if len(rejected) == 1 {
		return fmt.Sprintf("%s was not uploaded: %s", rejected[0].Name, rejected[0].Reason)
	}
	return fmt.Sprintf("%d files were not uploaded", len(rejected))
}

func contentType(fh *multipart.FileHeader, name string) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	if ct := mime.TypeByExtension("." + filename.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
