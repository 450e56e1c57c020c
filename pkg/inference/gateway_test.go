package inference

import (
	"context"
	"errors"
	"testing"

	"aficionado-be/internal/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

func TestResultDisplay(t *testing.T) {
	assert.Equal(t, "OK", OK("OK").Display())
	assert.Equal(t, "Error:503", TransportError(503, nil).Display())
	assert.Equal(t, "Error:0", TransportError(0, errors.New("dial tcp")).Display())
	assert.Equal(t, "Error:timeout", Timeout(context.DeadlineExceeded).Display())
}

func TestResultAsError(t *testing.T) {
	assert.NoError(t, OK("fine").AsError())
	assert.True(t, apperror.Is(TransportError(500, nil).AsError(), apperror.CodeTransport))
	assert.True(t, apperror.Is(Timeout(nil).AsError(), apperror.CodeTimeout))
}

func TestTracedPassesThrough(t *testing.T) {
	inner := GatewayFunc(func(ctx context.Context, username, task string) Result {
		return OK(username + ":" + task)
	})
	res := Traced("test", inner).Invoke(context.Background(), "alice", "hi")
	assert.Equal(t, "alice:hi", res.Text)
}
