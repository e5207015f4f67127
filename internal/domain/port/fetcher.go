package port

import "context"

// ImageFetcher resolves an image reference into a local temporary file.
// The caller owns the returned path and must remove it when done,
// success or failure.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}
