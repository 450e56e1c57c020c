// Package vertex answers tasks with a Gemini model on Vertex AI, attaching the
// user's workspace objects as gs:// file parts.
package vertex

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"aficionado-be/pkg/inference"

	"google.golang.org/genai"
)

// Workspace resolves the files a task should be grounded on.
type Workspace interface {
	ListFilenames(ctx context.Context, username string) ([]string, error)
	ObjectURI(username, filename string) string
}

type Gateway struct {
	client    *genai.Client
	model     string
	workspace Workspace
	timeout   time.Duration
}

var _ inference.Gateway = &Gateway{}

func NewGateway(ctx context.Context, project, location, model string, workspace Workspace, timeout time.Duration) (*Gateway, error) {
	if project == "" {
		return nil, errors.New("vertex: project is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  project,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("vertex: create client: %w", err)
	}

	return &Gateway{
		client:    client,
		model:     model,
		workspace: workspace,
		timeout:   timeout,
	}, nil
}

func (g *Gateway) Invoke(ctx context.Context, username, task string) inference.Result {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	names, err := g.workspace.ListFilenames(ctx, username)
	if err != nil {
		return inference.TransportError(0, fmt.Errorf("vertex: list workspace: %w", err))
	}

	parts := make([]*genai.Part, 0, len(names)+1)
	for _, name := range names {
		parts = append(parts, genai.NewPartFromURI(g.workspace.ObjectURI(username, name), MimeType(name)))
	}
	parts = append(parts, genai.NewPartFromText(task))

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return classify(ctx, err)
	}

	return inference.OK(responseText(result))
}

func classify(ctx context.Context, err error) inference.Result {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return inference.Timeout(err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return inference.TransportError(apiErr.Code, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return inference.TransportError(apiErrPtr.Code, err)
	}
	return inference.TransportError(0, err)
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil {
		return ""
	}
	var b strings.Builder
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text == "" || part.Thought {
				continue
			}
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// MimeType maps a workspace filename to the content type sent with its file part.
func MimeType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".csv":
		return "text/csv"
	case ".txt":
		return "text/plain"
	case ".md":
		return "text/markdown"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
