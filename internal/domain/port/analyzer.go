package port

import (
	"context"

	"gritsee-inspector/internal/domain/entity"
)

// ImageAnalyzer runs the localization and classification stage on one image
// already present on local disk.
type ImageAnalyzer interface {
	// Analyze crops the product region out of the image and classifies it
	// along the five observation dimensions. A missed localization falls
	// back to the full frame; an unreadable image fails with
	// entity.ErrDecode.
	Analyze(ctx context.Context, imagePath string) (entity.Observations, error)
}
