package vertex

import (
	"context"
	"errors"
	"testing"

	"aficionado-be/pkg/inference"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestMimeType(t *testing.T) {
	assert.Equal(t, "application/pdf", MimeType("Report.PDF"))
	assert.Equal(t, "text/csv", MimeType("controls.csv"))
	assert.Equal(t, "text/plain", MimeType("notes.txt"))
	assert.Equal(t, "application/octet-stream", MimeType("noext"))
}

func TestClassify(t *testing.T) {
	ctx := context.Background()

	res := classify(ctx, genai.APIError{Code: 429, Message: "quota"})
	assert.Equal(t, inference.KindTransportError, res.Kind)
	assert.Equal(t, "Error:429", res.Display())

	res = classify(ctx, context.DeadlineExceeded)
	assert.Equal(t, inference.KindTimeout, res.Kind)

	res = classify(ctx, errors.New("boom"))
	assert.Equal(t, "Error:0", res.Display())
}

func TestResponseText(t *testing.T) {
	result := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking", Thought: true},
				{Text: "Hello "},
				{Text: "auditor"},
			}},
		}},
	}
	assert.Equal(t, "Hello auditor", responseText(result))
	assert.Equal(t, "", responseText(nil))
}
