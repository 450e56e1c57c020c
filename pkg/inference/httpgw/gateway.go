// Package httpgw calls the remote inference function over a plain HTTP GET.
package httpgw

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"aficionado-be/pkg/inference"
)

// Gateway sends GET <endpoint>?name=&key=&task= and returns the body on 200.
type Gateway struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
	Client   *http.Client
}

var _ inference.Gateway = &Gateway{}

func NewGateway(endpoint, apiKey string, timeout time.Duration) *Gateway {
	return &Gateway{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Timeout:  timeout,
		Client:   &http.Client{},
	}
}

func (g *Gateway) Invoke(ctx context.Context, username, task string) inference.Result {
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	reqURL, err := g.buildURL(username, task)
	if err != nil {
		return inference.TransportError(0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return inference.TransportError(0, fmt.Errorf("create request: %w", err))
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return inference.Timeout(err)
		}
		return inference.TransportError(0, fmt.Errorf("inference request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(ctx, err) {
			return inference.Timeout(err)
		}
		return inference.TransportError(resp.StatusCode, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return inference.TransportError(resp.StatusCode, fmt.Errorf("inference error: status %d", resp.StatusCode))
	}

	return inference.OK(string(body))
}

func (g *Gateway) buildURL(username, task string) (string, error) {
	u, err := url.Parse(g.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("name", username)
	q.Set("key", g.APIKey)
	q.Set("task", task)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
