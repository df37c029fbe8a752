package captions

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"transcriptor/internal/logging"
	"transcriptor/internal/services"
	"transcriptor/internal/transcript"
)

const (
	defaultInitialBackoff = 500 * time.Millisecond
	maxBackoff            = 10 * time.Second
)

// isRetriable reports transient failures worth another attempt.
func isRetriable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if services.IsRetriable(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	// *url.Error satisfies net.Error, so only its timeout flag is trusted.
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func retriableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// doWithRetry sends the request built by build, retrying transient failures
// with exponential backoff. The caller owns the returned body.
func (b *HTTPBackend) doWithRetry(ctx context.Context, operation string, build func() (*http.Request, error)) (*http.Response, error) {
	wait := b.initialBackoff
	var lastErr error
	for attempt := 0; attempt <= b.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		req, err := build()
		if err != nil {
			return nil, fmt.Errorf("build %s request: %w", operation, err)
		}
		resp, err := b.client.Do(req)
		switch {
		case err != nil:
			lastErr = services.Wrap(services.ErrTransient, "captions", operation, "request failed", err)
			if !isRetriable(err) {
				return nil, err
			}
		case retriableStatus(resp.StatusCode):
			resp.Body.Close()
			lastErr = services.Wrap(services.ErrTransient, "captions", operation, fmt.Sprintf("status %d", resp.StatusCode), nil)
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return nil, services.Wrap(services.ErrNotFound, "captions", operation, "status 404", nil)
		case resp.StatusCode >= 400:
			resp.Body.Close()
			return nil, services.Wrap(services.ErrExternalTool, "captions", operation, fmt.Sprintf("status %d", resp.StatusCode), nil)
		default:
			return resp, nil
		}

		if attempt < b.maxRetries {
			b.logger.Debug("retrying caption request",
				logging.String("operation", operation),
				logging.Int("attempt", attempt+1),
				logging.Duration("backoff", wait),
				logging.Error(lastErr),
			)
			if err := transcript.SleepWithContext(ctx, wait); err != nil {
				return nil, err
			}
			wait *= 2
			if wait > maxBackoff {
				wait = maxBackoff
			}
		}
	}
	return nil, lastErr
}
