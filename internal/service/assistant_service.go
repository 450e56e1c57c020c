package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"aficionado-be/internal/pkg/apperror"
	"aficionado-be/internal/pkg/logger"
	"aficionado-be/internal/repository/contract"
	"aficionado-be/pkg/events"
	"aficionado-be/pkg/filename"
	"aficionado-be/pkg/inference"
	"aficionado-be/pkg/store"
	"aficionado-be/pkg/suggest"
	"aficionado-be/pkg/workspace"

	"github.com/google/uuid"
)

const filenameTaskPrefix = "Produce a short filename for this content. Answer with the filename only, no extension, no explanation.\n\n"

// Content longer than this is cut before being sent for naming.
const filenameTaskMaxContent = 4000

type IAssistantService interface {
	Start(ctx context.Context, username string) (*store.Session, error)
	Get(ctx context.Context, username, sessionID string) (*store.Session, error)
	End(ctx context.Context, sessionID string) error
	PickSuggestion(ctx context.Context, session *store.Session, index int) error
	SetQuestion(ctx context.Context, session *store.Session, text string) error
	Submit(ctx context.Context, session *store.Session, task string) (inference.Result, error)
	SaveResponse(ctx context.Context, session *store.Session) (string, error)
	Download(session *store.Session) (string, []byte, error)
	RecordError(ctx context.Context, session *store.Session, err error) error
}

type assistantService struct {
	repo           contract.SessionRepository
	guard          *SessionGuard
	gateway        inference.Gateway
	synchronizer   *workspace.Synchronizer
	pool           *suggest.Pool
	choicesWidth   int
	eventPublisher EventPublisher
	logger         logger.ILogger
	rng            *rand.Rand
	now            func() time.Time
}

func NewAssistantService(
	repo contract.SessionRepository,
	guard *SessionGuard,
	gateway inference.Gateway,
	synchronizer *workspace.Synchronizer,
	pool *suggest.Pool,
	choicesWidth int,
	eventPublisher EventPublisher,
	log logger.ILogger,
) IAssistantService {
	if !suggest.ValidWidth(choicesWidth) {
		choicesWidth = 4
	}
	return &assistantService{
		repo:           repo,
		guard:          guard,
		gateway:        gateway,
		synchronizer:   synchronizer,
		pool:           pool,
		choicesWidth:   choicesWidth,
		eventPublisher: eventPublisher,
		logger:         log,
		now:            time.Now,
	}
}

func (s *assistantService) Start(ctx context.Context, username string) (*store.Session, error) {
	choices, err := s.pool.Sample(s.choicesWidth, s.rng)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	files, loadErr := s.synchronizer.Load(ctx, username)
	session := store.NewSession(uuid.NewString(), username, choices, files, s.now())
	if loadErr != nil {
		// Start with an empty list; the user can refresh once storage is back.
		appErr := apperror.From(loadErr)
		session.SetError(string(appErr.Code), "Could not load your workspace files: "+appErr.Message)
		s.logger.Warn("ASSISTANT", "Workspace listing failed at session start", map[string]interface{}{
			"username": username,
			"error":    loadErr.Error(),
		})
	}

	if err := s.repo.Save(ctx, session); err != nil {
		return nil, apperror.NewInternal(err)
	}

	s.logger.Info("ASSISTANT", "Session started", map[string]interface{}{
		"session_id": session.ID,
		"username":   username,
		"files":      session.Files().Len(),
	})
	return session, nil
}

// Get returns the caller's session, starting a new one if it is unknown,
// expired or owned by someone else.
func (s *assistantService) Get(ctx context.Context, username, sessionID string) (*store.Session, error) {
	if sessionID != "" {
		session, ok, err := s.repo.Get(ctx, sessionID)
		if err != nil {
			s.logger.Error("ASSISTANT", "Failed to load session", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
		if ok && session.Username == username {
			return session, nil
		}
		if !ok {
			s.guard.forget(sessionID)
		}
	}
	return s.Start(ctx, username)
}

func (s *assistantService) End(ctx context.Context, sessionID string) error {
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return apperror.NewInternal(err)
	}
	s.guard.forget(sessionID)
	s.logger.Info("ASSISTANT", "Session ended", map[string]interface{}{"session_id": sessionID})
	return nil
}

// PickSuggestion copies one of the session's sampled choices into the
// question. The response is left alone until the next Submit.
func (s *assistantService) PickSuggestion(ctx context.Context, session *store.Session, index int) error {
	return s.guard.Update(ctx, session, func(fresh *store.Session) error {
		if index < 0 || index >= len(fresh.Choices) {
			return apperror.NewValidation(fmt.Sprintf("suggestion index %d out of range", index))
		}
		fresh.Question = fresh.Choices[index]
		return nil
	})
}

func (s *assistantService) SetQuestion(ctx context.Context, session *store.Session, text string) error {
	return s.guard.Update(ctx, session, func(fresh *store.Session) error {
		fresh.Question = text
		return nil
	})
}

// Submit sends task to the gateway. Only one call per session may be in
// flight. A failed call keeps the previous response and records an inline error.
func (s *assistantService) Submit(ctx context.Context, session *store.Session, task string) (inference.Result, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return inference.Result{}, apperror.NewValidation("question must not be empty")
	}

	release, err := s.guard.TryAcquire(session.ID)
	if err != nil {
		return inference.Result{}, err
	}
	defer release()

	err = s.guard.Update(ctx, session, func(fresh *store.Session) error {
		fresh.State = store.StateSubmitting
		fresh.Question = task
		return nil
	})
	if err != nil {
		return inference.Result{}, err
	}

	started := s.now()
	result := s.gateway.Invoke(ctx, session.Username, task)

	err = s.guard.Update(ctx, session, func(fresh *store.Session) error {
		fresh.State = store.StateIdle
		if !result.IsOK() {
			fresh.SetError(string(apperror.From(result.AsError()).Code), result.Display())
			return nil
		}
		fresh.Response = result.Text
		fresh.SaveState = store.SaveResponseDisplayed
		fresh.SavedAs = ""
		fresh.ClearError()
		return nil
	})
	if err != nil {
		return result, err
	}

	s.logger.Info("ASSISTANT", "Task submitted", map[string]interface{}{
		"session_id":  session.ID,
		"username":    session.Username,
		"result":      result.Kind.String(),
		"status":      result.Status,
		"duration_ms": s.now().Sub(started).Milliseconds(),
	})
	return result, result.AsError()
}

// SaveResponse names the displayed response with a second gateway call,
// stores it as a .txt file and adds it to the cached file list.
func (s *assistantService) SaveResponse(ctx context.Context, session *store.Session) (string, error) {
	release, err := s.guard.TryAcquire(session.ID)
	if err != nil {
		return "", err
	}
	defer release()

	var content string
	err = s.guard.Update(ctx, session, func(fresh *store.Session) error {
		if fresh.Response == "" || fresh.SaveState != store.SaveResponseDisplayed {
			if fresh.SaveState == store.SaveSaved {
				return apperror.NewValidation("response already saved as " + fresh.SavedAs)
			}
			return apperror.NewValidation("there is no response to save")
		}
		fresh.SaveState = store.SaveSaving
		content = fresh.Response
		return nil
	})
	if err != nil {
		return "", err
	}

	name := s.deriveFilename(ctx, session.Username, content)

	// Upload into a scratch set; the stored record is updated under the lock.
	saved := workspace.NewFileSet()
	saveErr := s.synchronizer.Save(ctx, session.Username, saved, name, "text/plain; charset=utf-8", strings.NewReader(content))

	err = s.guard.Update(ctx, session, func(fresh *store.Session) error {
		if saveErr != nil {
			fresh.SaveState = store.SaveResponseDisplayed
			appErr := apperror.From(saveErr)
			fresh.SetError(string(appErr.Code), "Could not save the response: "+appErr.Message)
			return saveErr
		}
		fresh.Files().Add(saved.Names()...)
		fresh.SaveState = store.SaveSaved
		fresh.SavedAs = name
		fresh.ClearError()
		return nil
	})
	if err != nil {
		return "", err
	}

	publish(ctx, s.eventPublisher, events.NewWorkspaceEvent(events.ResponseSaved, session.Username, []string{name}), s.warn)
	s.logger.Info("ASSISTANT", "Response saved to workspace", map[string]interface{}{
		"session_id": session.ID,
		"username":   session.Username,
		"filename":   name,
	})
	return name, nil
}

func (s *assistantService) deriveFilename(ctx context.Context, username, content string) string {
	if len(content) > filenameTaskMaxContent {
		content = strings.ToValidUTF8(content[:filenameTaskMaxContent], "")
	}

	result := s.gateway.Invoke(ctx, username, filenameTaskPrefix+content)
	if result.IsOK() {
		if name := filename.WithExtension(result.Text, "txt"); name != "" {
			return name
		}
	}

	s.logger.Warn("ASSISTANT", "Filename derivation failed, using fallback", map[string]interface{}{
		"username": username,
		"result":   result.Display(),
	})
	return fallbackFilename(s.now())
}

func fallbackFilename(now time.Time) string {
	return "response-" + now.UTC().Format("20060102-150405") + ".txt"
}

// Download returns the displayed response as a plain-text attachment.
func (s *assistantService) Download(session *store.Session) (string, []byte, error) {
	if session.Response == "" {
		return "", nil, apperror.NewNotFound("there is no response to download")
	}
	name := session.SavedAs
	if name == "" {
		name = "aficionado-response.txt"
	}
	return name, []byte(session.Response), nil
}

// RecordError shows err inline on the session's page.
func (s *assistantService) RecordError(ctx context.Context, session *store.Session, err error) error {
	appErr := apperror.From(err)
	return s.guard.Update(ctx, session, func(fresh *store.Session) error {
		fresh.SetError(string(appErr.Code), appErr.Message)
		return nil
	})
}

func (s *assistantService) warn(message string, details map[string]interface{}) {
	s.logger.Warn("ASSISTANT", message, details)
}
