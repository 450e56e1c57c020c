package store

import (
	"time"

	"aficionado-be/pkg/workspace"
)

// Session is the per-browser interaction state. It is passed explicitly to
// every handler and discarded when the session ends.
type Session struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	State     string `json:"state"`      // "IDLE" | "SUBMITTING"
	SaveState string `json:"save_state"` // "NONE" | "RESPONSE_DISPLAYED" | "SAVING" | "SAVED"

	Question string   `json:"question"`
	Response string   `json:"response"`
	Choices  []string `json:"choices"` // sampled once at start

	WorkspaceFiles *workspace.FileSet `json:"workspace_files"`
	SavedAs        string             `json:"saved_as,omitempty"`

	// Inline error shown on the page; the rest of the state survives it.
	LastError *InlineError `json:"last_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type InlineError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	StateIdle       = "IDLE"
	StateSubmitting = "SUBMITTING"

	SaveNone              = "NONE"
	SaveResponseDisplayed = "RESPONSE_DISPLAYED"
	SaveSaving            = "SAVING"
	SaveSaved             = "SAVED"
)

func NewSession(id, username string, choices []string, files *workspace.FileSet, now time.Time) *Session {
	if files == nil {
		files = workspace.NewFileSet()
	}
	return &Session{
		ID:             id,
		Username:       username,
		State:          StateIdle,
		SaveState:      SaveNone,
		Choices:        choices,
		WorkspaceFiles: files,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (s *Session) SetError(code, message string) {
	s.LastError = &InlineError{Code: code, Message: message}
}

func (s *Session) ClearError() {
	s.LastError = nil
}

// Files never returns nil, even for records decoded without a file list.
func (s *Session) Files() *workspace.FileSet {
	if s.WorkspaceFiles == nil {
		s.WorkspaceFiles = workspace.NewFileSet()
	}
	return s.WorkspaceFiles
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (s *Session) Clone() *Session {
	c := *s
	c.Choices = append([]string(nil), s.Choices...)
	c.WorkspaceFiles = s.WorkspaceFiles.Clone()
	if s.LastError != nil {
		e := *s.LastError
		c.LastError = &e
	}
	return &c
}
