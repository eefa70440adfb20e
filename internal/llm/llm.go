package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Request is one completion call.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	// JSON asks the provider for a single JSON object.
	JSON    bool
	Timeout time.Duration
}

// Client abstracts completion providers.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Provider() string
}

var (
	ErrTransport     = errors.New("llm transport error")
	ErrTimeout       = errors.New("llm timeout")
	ErrParse         = errors.New("llm response parse error")
	ErrNotConfigured = errors.New("llm not configured")
)

// Reason maps an error to a short label for logs and metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "unknown"
	}
}

// WithTimeout bounds ctx by req.Timeout when it is set.
func WithTimeout(ctx context.Context, req Request) (context.Context, context.CancelFunc) {
	if req.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, req.Timeout)
}

// Transport wraps a failed call as ErrTimeout when ctx expired and as
// ErrTransport otherwise.
func Transport(ctx context.Context, provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", provider, ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w: %v", provider, ErrTransport, err)
}

// PlaceholderClient is used when no provider is configured.
type PlaceholderClient struct{}

func (PlaceholderClient) Complete(ctx context.Context, req Request) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotConfigured
}

func (PlaceholderClient) Provider() string { return "none" }
