package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/amp-labs/amp-automata/logger"
)

var (
	// ErrUnexpectedStatus is returned for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
	// ErrBodyTooLarge is returned when a response exceeds the fetch limit.
	ErrBodyTooLarge = errors.New("response body too large")
)

// Fetch GETs url and returns at most limit bytes of its decoded body.
func Fetch(ctx context.Context, client *http.Client, url string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Accept", "text/plain, application/yaml, */*")
	req.Header.Set("Accept-Encoding", "gzip, br, zstd")

	rsp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer rsp.Body.Close() //nolint:errcheck

	if rsp.StatusCode < 200 || rsp.StatusCode > 299 {
		return nil, logger.AnnotateError(
			fmt.Errorf("%w: %s", ErrUnexpectedStatus, rsp.Status), "url", url, "status", rsp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(rsp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}

	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s", ErrBodyTooLarge, url)
	}

	logger.Get(ctx).DebugContext(ctx, "fetched description", "url", url, "bytes", len(data))

	return data, nil
}
