package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"gritsee-inspector/internal/domain/entity"
	"gritsee-inspector/internal/domain/port"
)

// GormInspectionRepository persists inspections in MySQL. Aggregations are
// pushed down as SQL so dashboards never load full result sets into memory.
type GormInspectionRepository struct {
	db *gorm.DB
}

func NewGormInspectionRepository(db *gorm.DB) *GormInspectionRepository {
	return &GormInspectionRepository{db: db}
}

func (r *GormInspectionRepository) Insert(ctx context.Context, in *entity.Inspection) error {
	if err := r.db.WithContext(ctx).Create(in).Error; err != nil {
		return fmt.Errorf("%w: %v", entity.ErrPersistence, err)
	}
	return nil
}

func (r *GormInspectionRepository) GetByID(ctx context.Context, id uint) (*entity.Inspection, error) {
	var in entity.Inspection
	err := r.db.WithContext(ctx).First(&in, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrPersistence, err)
	}
	return &in, nil
}

func (r *GormInspectionRepository) Update(ctx context.Context, in *entity.Inspection) error {
	if err := r.db.WithContext(ctx).Save(in).Error; err != nil {
		return fmt.Errorf("%w: %v", entity.ErrPersistence, err)
	}
	return nil
}

func (r *GormInspectionRepository) Query(ctx context.Context, f port.InspectionFilter) ([]entity.Inspection, error) {
	q := r.filtered(ctx, f)

	switch f.OrderByScore {
	case port.SortAsc:
		q = q.Order("total_score ASC")
	case port.SortDesc:
		q = q.Order("total_score DESC")
	default:
		q = q.Order("recorded_at DESC")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var out []entity.Inspection
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrPersistence, err)
	}
	return out, nil
}

func (r *GormInspectionRepository) Count(ctx context.Context, f port.InspectionFilter) (int64, error) {
	var n int64
	if err := r.filtered(ctx, f).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", entity.ErrPersistence, err)
	}
	return n, nil
}

func (r *GormInspectionRepository) SummaryStats(ctx context.Context, f port.InspectionFilter) (port.SummaryStats, error) {
	var stats port.SummaryStats
	err := r.filtered(ctx, f).
		Select("COUNT(*) AS total, " +
			"COALESCE(SUM(CASE WHEN verdict = 'PASS' THEN 1 ELSE 0 END), 0) AS passed, " +
			"COALESCE(SUM(total_score), 0) AS score_sum, " +
			"COALESCE(SUM(has_bubbles), 0) AS with_bubbles, " +
			"COALESCE(SUM(has_grease), 0) AS with_grease, " +
			"COALESCE(SUM(dirty_edges), 0) AS with_dirty_edges, " +
			"COALESCE(SUM(CASE WHEN UPPER(distribution_class) = 'DEFICIENTE' THEN 1 ELSE 0 END), 0) AS distribution_deficient, " +
			"COALESCE(SUM(CASE WHEN UPPER(distribution_class) = 'MALA' THEN 1 ELSE 0 END), 0) AS distribution_poor").
		Scan(&stats).Error
	if err != nil {
		return port.SummaryStats{}, fmt.Errorf("%w: %v", entity.ErrPersistence, err)
	}
	return stats, nil
}

func (r *GormInspectionRepository) HourGroups(ctx context.Context, location string, limit int) ([]port.HourGroup, error) {
	q := r.db.WithContext(ctx).Model(&entity.Inspection{})
	if location != "" {
		q = q.Where("location = ?", location)
	}

	q = q.Select("HOUR(recorded_at) AS hour, " +
		"COUNT(*) AS total, " +
		"COALESCE(SUM(CASE WHEN verdict = 'PASS' THEN 1 ELSE 0 END), 0) AS passed, " +
		"COALESCE(AVG(total_score), 0) AS avg_score").
		Group("HOUR(recorded_at)").
		Order("total DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var out []port.HourGroup
	err := q.Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrPersistence, err)
	}
	return out, nil
}

func (r *GormInspectionRepository) DayFailGroups(ctx context.Context, location string, limit int) ([]port.DayGroup, error) {
	q := r.db.WithContext(ctx).Model(&entity.Inspection{})
	if location != "" {
		q = q.Where("location = ?", location)
	}

	q = q.Select("DATE(recorded_at) AS day, " +
		"COUNT(*) AS total, " +
		"COALESCE(SUM(CASE WHEN verdict = 'FAIL' THEN 1 ELSE 0 END), 0) AS failed").
		Group("DATE(recorded_at)").
		Order("failed DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var out []port.DayGroup
	err := q.Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrPersistence, err)
	}
	return out, nil
}

func (r *GormInspectionRepository) FailCountByHour(ctx context.Context, location string, day time.Time) (map[int]int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Inspection{}).
		Where("verdict = ?", entity.VerdictFail).
		Where("DATE(recorded_at) = ?", day.Format("2006-01-02"))
	if location != "" {
		q = q.Where("location = ?", location)
	}

	var rows []struct {
		Hour   int
		Failed int64
	}
	err := q.Select("HOUR(recorded_at) AS hour, COUNT(*) AS failed").
		Group("HOUR(recorded_at)").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrPersistence, err)
	}

	out := make(map[int]int64, len(rows))
	for _, row := range rows {
		out[row.Hour] = row.Failed
	}
	return out, nil
}

func (r *GormInspectionRepository) ClassCounts(ctx context.Context, dimension, location string) (map[string]int64, error) {
	var column string
	switch dimension {
	case port.DimensionDistribution:
		column = "distribution_class"
	case port.DimensionBake:
		column = "bake_class"
	default:
		return nil, fmt.Errorf("%w: unknown dimension %q", entity.ErrValidation, dimension)
	}

	q := r.db.WithContext(ctx).Model(&entity.Inspection{})
	if location != "" {
		q = q.Where("location = ?", location)
	}

	var rows []struct {
		Label string
		Cnt   int64
	}
	err := q.Select(fmt.Sprintf("UPPER(%s) AS label, COUNT(*) AS cnt", column)).
		Group(fmt.Sprintf("UPPER(%s)", column)).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrPersistence, err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Label] = row.Cnt
	}
	return out, nil
}

func (r *GormInspectionRepository) RecordedAtRange(ctx context.Context, location string) (*time.Time, *time.Time, error) {
	q := r.db.WithContext(ctx).Model(&entity.Inspection{})
	if location != "" {
		q = q.Where("location = ?", location)
	}

	var oldest, newest sql.NullTime
	if err := q.Select("MIN(recorded_at), MAX(recorded_at)").Row().Scan(&oldest, &newest); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", entity.ErrPersistence, err)
	}
	if !oldest.Valid || !newest.Valid {
		return nil, nil, nil
	}
	return &oldest.Time, &newest.Time, nil
}

// filtered builds the base query with every set filter applied.
func (r *GormInspectionRepository) filtered(ctx context.Context, f port.InspectionFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&entity.Inspection{})

	if f.Location != "" {
		q = q.Where("location = ?", f.Location)
	}
	if f.IDContains != "" {
		q = q.Where("CAST(id AS CHAR) LIKE ?", "%"+f.IDContains+"%")
	}
	if f.From != nil {
		q = q.Where("recorded_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("recorded_at <= ?", *f.To)
	}
	if f.Verdict != "" {
		q = q.Where("verdict = ?", f.Verdict)
	}
	if f.MinScore != nil {
		q = q.Where("total_score >= ?", *f.MinScore)
	}
	if f.MaxScore != nil {
		q = q.Where("total_score <= ?", *f.MaxScore)
	}
	return q
}

var _ port.InspectionRepository = (*GormInspectionRepository)(nil)
