package entity

import "errors"

// Error taxonomy for the inspection pipeline. Per-item errors are wrapped
// with one of these sentinels so the batch orchestrator can classify a
// failure without aborting the remaining items.
var (
	// ErrFetch marks a network or timeout failure while acquiring an image.
	ErrFetch = errors.New("image fetch failed")

	// ErrDecode marks a corrupt or unreadable image.
	ErrDecode = errors.New("image decode failed")

	// ErrModelUnavailable marks a classifier whose weights never loaded;
	// the affected dimension degrades to its fallback value.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrPersistence marks a store write failure; the item's transaction
	// is rolled back and no partial record remains.
	ErrPersistence = errors.New("persistence failed")

	// ErrValidation marks a malformed correction input, rejected before
	// any mutation.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a lookup for a record that does not exist.
	ErrNotFound = errors.New("inspection not found")
)
