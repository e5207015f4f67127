package port

import (
	"context"
	"time"

	"gritsee-inspector/internal/domain/entity"
)

// Sort directions accepted by InspectionFilter.OrderByScore.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// InspectionFilter narrows a query over the inspections table. Zero-valued
// fields are ignored.
type InspectionFilter struct {
	Location   string     // exact match
	IDContains string     // substring match on the id
	From       *time.Time // inclusive
	To         *time.Time // inclusive
	Verdict    string     // PASS or FAIL
	MinScore   *int
	MaxScore   *int

	OrderByScore string // SortAsc or SortDesc; empty sorts by recorded_at desc
	Limit        int
	Offset       int
}

// SummaryStats are the raw aggregates a summary is derived from, computed
// server-side in one pass.
type SummaryStats struct {
	Total                 int64
	Passed                int64
	ScoreSum              int64
	WithBubbles           int64
	WithGrease            int64
	WithDirtyEdges        int64
	DistributionDeficient int64
	DistributionPoor      int64
}

// HourGroup is one hour-of-day aggregate row.
type HourGroup struct {
	Hour     int
	Total    int64
	Passed   int64
	AvgScore float64
}

// DayGroup is one calendar-day aggregate row.
type DayGroup struct {
	Day    time.Time
	Total  int64
	Failed int64
}

// Histogram dimensions accepted by ClassCounts.
const (
	DimensionDistribution = "distribution"
	DimensionBake         = "bake"
)

// InspectionRepository is the record store the pipeline writes to and the
// analytics engine reads from. Aggregations are pushed down to the store;
// the engine never loads full result sets to aggregate in memory.
type InspectionRepository interface {
	// Insert persists a complete record and assigns its ID.
	Insert(ctx context.Context, in *entity.Inspection) error

	// GetByID returns the record or entity.ErrNotFound.
	GetByID(ctx context.Context, id uint) (*entity.Inspection, error)

	// Update rewrites an existing record.
	Update(ctx context.Context, in *entity.Inspection) error

	// Query returns the records matching the filter.
	Query(ctx context.Context, f InspectionFilter) ([]entity.Inspection, error)

	// Count returns the number of records matching the filter.
	Count(ctx context.Context, f InspectionFilter) (int64, error)

	// SummaryStats aggregates counts, pass count, score sum and defect
	// counts over the filtered records.
	SummaryStats(ctx context.Context, f InspectionFilter) (SummaryStats, error)

	// HourGroups groups all records by hour of day (0-23), ordered by
	// sample count descending, limited to limit rows.
	HourGroups(ctx context.Context, location string, limit int) ([]HourGroup, error)

	// DayFailGroups groups records by calendar day, ordered by FAIL count
	// descending, limited to limit rows.
	DayFailGroups(ctx context.Context, location string, limit int) ([]DayGroup, error)

	// FailCountByHour returns FAIL counts per hour of day for one
	// calendar day. Hours without failures are absent from the map.
	FailCountByHour(ctx context.Context, location string, day time.Time) (map[int]int64, error)

	// ClassCounts counts records per category label for one dimension.
	// Labels absent from the data are absent from the map.
	ClassCounts(ctx context.Context, dimension, location string) (map[string]int64, error)

	// RecordedAtRange returns the oldest and newest effective timestamps,
	// or nils when the store is empty for that location.
	RecordedAtRange(ctx context.Context, location string) (*time.Time, *time.Time, error)
}
