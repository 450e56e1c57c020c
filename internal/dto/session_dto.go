package dto

import (
	"time"

	"aficionado-be/pkg/store"
)

type SessionResponse struct {
	Id             string             `json:"id"`
	Username       string             `json:"username"`
	State          string             `json:"state"`
	SaveState      string             `json:"save_state"`
	Question       string             `json:"question"`
	Response       string             `json:"response"`
	Choices        []string           `json:"choices"`
	WorkspaceFiles []string           `json:"workspace_files"`
	SavedAs        string             `json:"saved_as,omitempty"`
	LastError      *store.InlineError `json:"last_error,omitempty"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func NewSessionResponse(s *store.Session) *SessionResponse {
	return &SessionResponse{
		Id:             s.ID,
		Username:       s.Username,
		State:          s.State,
		SaveState:      s.SaveState,
		Question:       s.Question,
		Response:       s.Response,
		Choices:        s.Choices,
		WorkspaceFiles: s.Files().Names(),
		SavedAs:        s.SavedAs,
		LastError:      s.LastError,
		UpdatedAt:      s.UpdatedAt,
	}
}

type SetQuestionRequest struct {
	Question string `json:"question" validate:"max=4000"`
}

type PickSuggestionRequest struct {
	Index *int `json:"index" validate:"required,min=0"`
}

type SubmitRequest struct {
	// Empty falls back to the session's current question.
	Task string `json:"task" validate:"max=4000"`
}

type SaveResponseResponse struct {
	Filename       string   `json:"filename"`
	WorkspaceFiles []string `json:"workspace_files"`
}
