//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"gritsee-inspector/internal/domain/entity"
	"gritsee-inspector/internal/domain/port"
)

// Analyzer stub for builds without the gocv tag.
type Analyzer struct {
	opts Options
}

// NewAnalyzer returns a stub analyzer (no OpenCV linked).
func NewAnalyzer(opts Options) *Analyzer {
	return &Analyzer{opts: opts}
}

// Close is a no-op on the stub.
func (a *Analyzer) Close() {}

// Analyze returns an error when the build lacks the gocv tag.
func (a *Analyzer) Analyze(ctx context.Context, imagePath string) (entity.Observations, error) {
	_ = ctx
	_ = imagePath
	return entity.Observations{}, errors.New("gocv build tag is not enabled")
}

var _ port.ImageAnalyzer = (*Analyzer)(nil)
