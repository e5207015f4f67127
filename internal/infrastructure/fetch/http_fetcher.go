package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"gritsee-inspector/internal/domain/entity"
	"gritsee-inspector/internal/domain/port"
)

// HTTPFetcher downloads image references over HTTP into temporary files.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher builds a fetcher with separate connect and read timeouts.
func NewHTTPFetcher(connectTimeout, readTimeout time.Duration) *HTTPFetcher {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: connectTimeout,
		}).DialContext,
		ResponseHeaderTimeout: readTimeout,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   connectTimeout + readTimeout,
		},
	}
}

// Fetch downloads the image to a temp file and returns its path. The caller
// removes the file when done. Every failure is reported as entity.ErrFetch.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrFetch, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d for %s", entity.ErrFetch, resp.StatusCode, url)
	}

	tmp, err := os.CreateTemp("", "gritsee-*.jpg")
	if err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrFetch, err)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: %v", entity.ErrFetch, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: %v", entity.ErrFetch, err)
	}

	return tmp.Name(), nil
}

var _ port.ImageFetcher = (*HTTPFetcher)(nil)
