package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/meeteo/pkg/models"
)

const defaultMaxTokens = 1024

// guardedProvider bounds every call with the inference timeout and maps raw
// provider failures onto the package's sentinel errors.
type guardedProvider struct {
	inner   models.AIProvider
	timeout time.Duration
}

// Guard wraps p so that each Complete call runs under timeout and returns
// ErrInferenceTimeout, ErrInvalidResponse or ErrProviderUnavailable on failure.
func Guard(p models.AIProvider, timeout time.Duration) models.AIProvider {
	return &guardedProvider{inner: p, timeout: timeout}
}

func (g *guardedProvider) Name() string { return g.inner.Name() }

// Close releases the wrapped provider's resources when it holds any.
func (g *guardedProvider) Close() error { return Close(g.inner) }

// Close closes p if it implements io.Closer and is a no-op otherwise.
func Close(p models.AIProvider) error {
	if c, ok := p.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (g *guardedProvider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := g.inner.Complete(ctx, req)
	if err != nil {
		slog.Warn("ai completion failed",
			"provider", g.inner.Name(),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return "", classify(ctx, err)
	}
	if text == "" {
		return "", fmt.Errorf("%w: empty reply from %s", ErrInvalidResponse, g.inner.Name())
	}
	return text, nil
}

func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrInferenceTimeout), errors.Is(err, ErrInvalidResponse), errors.Is(err, ErrProviderUnavailable):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
	default:
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
}

var _ models.AIProvider = (*guardedProvider)(nil)
