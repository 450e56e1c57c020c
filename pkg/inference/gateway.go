package inference

import (
	"context"
	"fmt"

	"aficionado-be/internal/pkg/apperror"
)

// Kind discriminates the outcome of a gateway call.
type Kind int

const (
	KindOK Kind = iota
	// KindTransportError covers non-200 answers and unreachable endpoints (Status 0).
	KindTransportError
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindTransportError:
		return "transport_error"
	case KindTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the outcome of Invoke. Callers branch on Kind instead of parsing text.
type Result struct {
	Kind   Kind
	Text   string
	Status int
	Err    error
}

func OK(text string) Result {
	return Result{Kind: KindOK, Text: text, Status: 200}
}

func TransportError(status int, err error) Result {
	return Result{Kind: KindTransportError, Status: status, Err: err}
}

func Timeout(err error) Result {
	return Result{Kind: KindTimeout, Err: err}
}

func (r Result) IsOK() bool {
	return r.Kind == KindOK
}

// Display renders the result the way it is shown to users: the text itself, or
// "Error:<status>" / "Error:timeout".
func (r Result) Display() string {
	switch r.Kind {
	case KindOK:
		return r.Text
	case KindTimeout:
		return "Error:timeout"
	default:
		return fmt.Sprintf("Error:%d", r.Status)
	}
}

// AsError converts a failed result into a typed application error. It returns
// nil for successful results.
func (r Result) AsError() error {
	switch r.Kind {
	case KindOK:
		return nil
	case KindTimeout:
		return apperror.NewTimeout(r.Display())
	default:
		appErr := apperror.NewTransport(r.Status, r.Display())
		appErr.Err = r.Err
		return appErr
	}
}

// Gateway answers a free-text task on behalf of a user's workspace.
type Gateway interface {
	Invoke(ctx context.Context, username, task string) Result
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, username, task string) Result

func (f GatewayFunc) Invoke(ctx context.Context, username, task string) Result {
	return f(ctx, username, task)
}
