package origin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jvb127/faultserve/types"
)

// defaultFetchTimeout bounds a single blob fetch when the caller's context
// carries no deadline of its own.
const defaultFetchTimeout = 30 * time.Second

// HTTPStore serves origin blobs over HTTP from a base URL.
type HTTPStore struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPStore creates a store for blobs under baseURL. A zero timeout
// falls back to defaultFetchTimeout.
func NewHTTPStore(baseURL string, timeout time.Duration) (*HTTPStore, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing origin base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("origin base URL %q must be absolute", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &HTTPStore{
		base:   u,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// Fetch issues a GET for the blob at path under the base URL. The response
// body is returned unread; the caller owns closing it.
func (s *HTTPStore) Fetch(ctx context.Context, path string) (io.ReadCloser, error) {
	ref := *s.base
	ref.Path = strings.TrimSuffix(ref.Path, "/") + "/" + strings.TrimPrefix(path, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building origin request for %q: %w", path, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", ref.String(), err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("origin blob %q: %w", path, types.ErrNotFound)
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP GET %s: status %d", ref.String(), resp.StatusCode)
	}
}
