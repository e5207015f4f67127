package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gritsee-inspector/internal/domain/entity"
	"gritsee-inspector/internal/domain/port"
)

// MemoryInspectionRepository is an in-memory record store mirroring the
// semantics of the MySQL repository, including the aggregate queries. Used
// by tests and by batch runs without a database.
type MemoryInspectionRepository struct {
	mu     sync.RWMutex
	nextID uint
	rows   []entity.Inspection

	// FailInsert makes the next Insert fail, for batch isolation tests.
	FailInsert bool
}

func NewMemoryInspectionRepository() *MemoryInspectionRepository {
	return &MemoryInspectionRepository{nextID: 1}
}

func (r *MemoryInspectionRepository) Insert(ctx context.Context, in *entity.Inspection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailInsert {
		r.FailInsert = false
		return fmt.Errorf("%w: simulated insert failure", entity.ErrPersistence)
	}

	in.ID = r.nextID
	r.nextID++
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}
	r.rows = append(r.rows, *in)
	return nil
}

func (r *MemoryInspectionRepository) GetByID(ctx context.Context, id uint) (*entity.Inspection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.rows {
		if r.rows[i].ID == id {
			row := r.rows[i]
			return &row, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *MemoryInspectionRepository) Update(ctx context.Context, in *entity.Inspection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.rows {
		if r.rows[i].ID == in.ID {
			r.rows[i] = *in
			return nil
		}
	}
	return entity.ErrNotFound
}

func (r *MemoryInspectionRepository) Query(ctx context.Context, f port.InspectionFilter) ([]entity.Inspection, error) {
	r.mu.RLock()
	matched := r.match(f)
	r.mu.RUnlock()

	switch f.OrderByScore {
	case port.SortAsc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].TotalScore < matched[j].TotalScore })
	case port.SortDesc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].TotalScore > matched[j].TotalScore })
	default:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].RecordedAt.After(matched[j].RecordedAt) })
	}

	if f.Offset > 0 {
		if f.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[f.Offset:]
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

func (r *MemoryInspectionRepository) Count(ctx context.Context, f port.InspectionFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.match(f))), nil
}

func (r *MemoryInspectionRepository) SummaryStats(ctx context.Context, f port.InspectionFilter) (port.SummaryStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats port.SummaryStats
	for _, row := range r.match(f) {
		stats.Total++
		if row.Verdict == entity.VerdictPass {
			stats.Passed++
		}
		stats.ScoreSum += int64(row.TotalScore)
		if row.HasBubbles {
			stats.WithBubbles++
		}
		if row.HasGrease {
			stats.WithGrease++
		}
		if row.DirtyEdges {
			stats.WithDirtyEdges++
		}
		switch strings.ToUpper(row.DistributionClass) {
		case entity.DistDeficiente:
			stats.DistributionDeficient++
		case entity.DistMala:
			stats.DistributionPoor++
		}
	}
	return stats, nil
}

func (r *MemoryInspectionRepository) HourGroups(ctx context.Context, location string, limit int) ([]port.HourGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byHour := map[int]*port.HourGroup{}
	sums := map[int]int64{}
	for _, row := range r.rows {
		if location != "" && row.Location != location {
			continue
		}
		h := row.RecordedAt.Hour()
		g, ok := byHour[h]
		if !ok {
			g = &port.HourGroup{Hour: h}
			byHour[h] = g
		}
		g.Total++
		if row.Verdict == entity.VerdictPass {
			g.Passed++
		}
		sums[h] += int64(row.TotalScore)
	}

	out := make([]port.HourGroup, 0, len(byHour))
	for h, g := range byHour {
		g.AvgScore = float64(sums[h]) / float64(g.Total)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Hour < out[j].Hour
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryInspectionRepository) DayFailGroups(ctx context.Context, location string, limit int) ([]port.DayGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byDay := map[time.Time]*port.DayGroup{}
	for _, row := range r.rows {
		if location != "" && row.Location != location {
			continue
		}
		day := truncateDay(row.RecordedAt)
		g, ok := byDay[day]
		if !ok {
			g = &port.DayGroup{Day: day}
			byDay[day] = g
		}
		g.Total++
		if row.Verdict == entity.VerdictFail {
			g.Failed++
		}
	}

	out := make([]port.DayGroup, 0, len(byDay))
	for _, g := range byDay {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Failed != out[j].Failed {
			return out[i].Failed > out[j].Failed
		}
		return out[i].Day.Before(out[j].Day)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryInspectionRepository) FailCountByHour(ctx context.Context, location string, day time.Time) (map[int]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	day = truncateDay(day)
	out := map[int]int64{}
	for _, row := range r.rows {
		if location != "" && row.Location != location {
			continue
		}
		if row.Verdict != entity.VerdictFail || !truncateDay(row.RecordedAt).Equal(day) {
			continue
		}
		out[row.RecordedAt.Hour()]++
	}
	return out, nil
}

func (r *MemoryInspectionRepository) ClassCounts(ctx context.Context, dimension, location string) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := map[string]int64{}
	for _, row := range r.rows {
		if location != "" && row.Location != location {
			continue
		}
		switch dimension {
		case port.DimensionDistribution:
			out[strings.ToUpper(row.DistributionClass)]++
		case port.DimensionBake:
			out[strings.ToUpper(row.BakeClass)]++
		default:
			return nil, fmt.Errorf("%w: unknown dimension %q", entity.ErrValidation, dimension)
		}
	}
	return out, nil
}

func (r *MemoryInspectionRepository) RecordedAtRange(ctx context.Context, location string) (*time.Time, *time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var oldest, newest *time.Time
	for _, row := range r.rows {
		if location != "" && row.Location != location {
			continue
		}
		t := row.RecordedAt
		if oldest == nil || t.Before(*oldest) {
			tt := t
			oldest = &tt
		}
		if newest == nil || t.After(*newest) {
			tt := t
			newest = &tt
		}
	}
	return oldest, newest, nil
}

// match returns copies of the rows passing the filter. Caller holds the lock.
func (r *MemoryInspectionRepository) match(f port.InspectionFilter) []entity.Inspection {
	var out []entity.Inspection
	for _, row := range r.rows {
		if f.Location != "" && row.Location != f.Location {
			continue
		}
		if f.IDContains != "" && !strings.Contains(fmt.Sprint(row.ID), f.IDContains) {
			continue
		}
		if f.From != nil && row.RecordedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && row.RecordedAt.After(*f.To) {
			continue
		}
		if f.Verdict != "" && row.Verdict != f.Verdict {
			continue
		}
		if f.MinScore != nil && row.TotalScore < *f.MinScore {
			continue
		}
		if f.MaxScore != nil && row.TotalScore > *f.MaxScore {
			continue
		}
		out = append(out, row)
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

var _ port.InspectionRepository = (*MemoryInspectionRepository)(nil)
