package entity

import "time"

// BatchItem is one image reference to process, with its effective sample
// timestamp. A zero timestamp falls back to the ingestion time.
type BatchItem struct {
	ImageRef  string    `json:"image_ref"`
	Timestamp time.Time `json:"timestamp"`
}
