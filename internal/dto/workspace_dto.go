package dto

import "aficionado-be/pkg/workspace"

type WorkspaceFilesResponse struct {
	Files []string `json:"files"`
}

type UploadFilesResponse struct {
	Stored   []string               `json:"stored"`
	Failed   []workspace.FailedFile `json:"failed"`
	Rejected []workspace.FailedFile `json:"rejected"`
	Files    []string               `json:"files"`
}

type DeleteWorkspaceResponse struct {
	Deleted []string `json:"deleted"`
	Failed  []string `json:"failed"`
	Files   []string `json:"files"`
}

type CloneExamplesResponse struct {
	Copied []string `json:"copied"`
	Files  []string `json:"files"`
}

// ReconcileWorkspaceMessage is the payload queued on the reconcile topic.
type ReconcileWorkspaceMessage struct {
	SessionId string `json:"session_id"`
	Username  string `json:"username"`
}
