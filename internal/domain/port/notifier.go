package port

import "context"

// BatchDigest is the short summary sent out after a batch finishes.
type BatchDigest struct {
	Location  string
	Processed int
	Failed    int
	PassRate  float64
}

// Notifier delivers batch digests to an external channel.
type Notifier interface {
	NotifyBatch(ctx context.Context, digest BatchDigest) error
}
