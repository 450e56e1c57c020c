package factory

import (
	"context"
	"fmt"
	"time"

	"aficionado-be/pkg/inference"
	"aficionado-be/pkg/inference/httpgw"
	"aficionado-be/pkg/inference/vertex"
)

type Options struct {
	Backend     string
	EndpointURL string
	APIKey      string
	Timeout     time.Duration

	Project   string
	Location  string
	Model     string
	Workspace vertex.Workspace
}

// NewGateway builds the configured backend wrapped in tracing.
func NewGateway(ctx context.Context, opts Options) (inference.Gateway, error) {
	switch opts.Backend {
	case "", "http":
		if opts.EndpointURL == "" {
			return nil, fmt.Errorf("http inference backend requires an endpoint URL")
		}
		return inference.Traced("http", httpgw.NewGateway(opts.EndpointURL, opts.APIKey, opts.Timeout)), nil
	case "vertex":
		gw, err := vertex.NewGateway(ctx, opts.Project, opts.Location, opts.Model, opts.Workspace, opts.Timeout)
		if err != nil {
			return nil, err
		}
		return inference.Traced("vertex", gw), nil
	default:
		return nil, fmt.Errorf("unsupported inference backend: %s", opts.Backend)
	}
}
