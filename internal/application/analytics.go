package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"gritsee-inspector/internal/domain/entity"
	"gritsee-inspector/internal/domain/port"
)

// Trend grouping values.
const (
	TrendByWeek  = "week"
	TrendByMonth = "month"
)

// AnalyticsService computes read-only projections over the record store.
// All aggregation is pushed down to the store; every operation has a defined
// zero-value answer for empty result sets.
type AnalyticsService struct {
	repo              port.InspectionRepository
	rankingThreshold  int
	trendIncludeEmpty bool
	now               func() time.Time
}

func NewAnalyticsService(repo port.InspectionRepository, rankingThreshold int, trendIncludeEmpty bool) *AnalyticsService {
	return &AnalyticsService{
		repo:              repo,
		rankingThreshold:  rankingThreshold,
		trendIncludeEmpty: trendIncludeEmpty,
		now:               time.Now,
	}
}

// Summary aggregates the records in [from, to] (nil bounds are open) for an
// optional location. An empty window yields zero counts and 0.0 rates.
func (s *AnalyticsService) Summary(ctx context.Context, from, to *time.Time, location string) (entity.PeriodSummary, error) {
	stats, err := s.repo.SummaryStats(ctx, port.InspectionFilter{
		Location: location,
		From:     from,
		To:       to,
	})
	if err != nil {
		return entity.PeriodSummary{}, err
	}

	sum := entity.PeriodSummary{
		TotalSamples:          int(stats.Total),
		Passed:                int(stats.Passed),
		Failed:                int(stats.Total - stats.Passed),
		WithBubbles:           int(stats.WithBubbles),
		WithGrease:            int(stats.WithGrease),
		WithDirtyEdges:        int(stats.WithDirtyEdges),
		DistributionDeficient: int(stats.DistributionDeficient),
		DistributionPoor:      int(stats.DistributionPoor),
	}
	if stats.Total == 0 {
		return sum, nil
	}

	total := float64(stats.Total)
	sum.PassRate = round2(float64(stats.Passed) / total * 100)
	sum.AverageScore = round2(float64(stats.ScoreSum) / total)
	sum.BubblesRate = round2(float64(stats.WithBubbles) / total * 100)
	sum.GreaseRate = round2(float64(stats.WithGrease) / total * 100)
	sum.DirtyEdgeRate = round2(float64(stats.WithDirtyEdges) / total * 100)
	sum.DeficientRate = round2(float64(stats.DistributionDeficient) / total * 100)
	sum.PoorRate = round2(float64(stats.DistributionPoor) / total * 100)
	return sum, nil
}

// WeeklyComparison compares the last 7 days against the 7 days before that.
// When the earlier window has no records, Previous and Deltas stay nil.
func (s *AnalyticsService) WeeklyComparison(ctx context.Context, location string) (entity.WeeklyComparison, error) {
	now := s.now()
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	current, err := s.Summary(ctx, &weekAgo, &now, location)
	if err != nil {
		return entity.WeeklyComparison{}, err
	}
	previous, err := s.Summary(ctx, &twoWeeksAgo, &weekAgo, location)
	if err != nil {
		return entity.WeeklyComparison{}, err
	}

	cmp := entity.WeeklyComparison{Current: current}
	if previous.TotalSamples == 0 {
		return cmp, nil
	}

	cmp.Previous = &previous
	cmp.Deltas = &entity.ComparisonDeltas{
		PassRate:      round2(current.PassRate - previous.PassRate),
		AverageScore:  round2(current.AverageScore - previous.AverageScore),
		BubblesRate:   round2(current.BubblesRate - previous.BubblesRate),
		DeficientRate: round2(current.DeficientRate - previous.DeficientRate),
		PoorRate:      round2(current.PoorRate - previous.PoorRate),
	}
	return cmp, nil
}

// TopByHour ranks hours of the day by all-time sample count.
func (s *AnalyticsService) TopByHour(ctx context.Context, n int, location string) ([]entity.HourBucket, error) {
	groups, err := s.repo.HourGroups(ctx, location, n)
	if err != nil {
		return nil, err
	}

	out := make([]entity.HourBucket, 0, len(groups))
	for _, g := range groups {
		out = append(out, entity.HourBucket{
			Hour:         g.Hour,
			Samples:      int(g.Total),
			Passed:       int(g.Passed),
			Failed:       int(g.Total - g.Passed),
			AverageScore: round2(g.AvgScore),
		})
	}
	return out, nil
}

// TopIncidentDays ranks calendar days by FAIL count and annotates each with
// its critical hour, the hour holding the most FAIL records that day (ties
// resolved to the lowest hour). A day without failures has no critical hour.
func (s *AnalyticsService) TopIncidentDays(ctx context.Context, n int, location string) ([]entity.DayIncidents, error) {
	groups, err := s.repo.DayFailGroups(ctx, location, n)
	if err != nil {
		return nil, err
	}

	out := make([]entity.DayIncidents, 0, len(groups))
	for _, g := range groups {
		day := entity.DayIncidents{
			Day:       g.Day,
			Samples:   int(g.Total),
			Incidents: int(g.Failed),
		}
		if g.Total > 0 {
			day.IncidentRate = round2(float64(g.Failed) / float64(g.Total) * 100)
		}
		if g.Failed > 0 {
			failsByHour, err := s.repo.FailCountByHour(ctx, location, g.Day)
			if err != nil {
				return nil, err
			}
			if hour, ok := criticalHour(failsByHour); ok {
				day.CriticalHour = &hour
			}
		}
		out = append(out, day)
	}
	return out, nil
}

// ClassHistogram counts records per category of one class dimension. The
// result always carries every known category, defaulting to 0.
func (s *AnalyticsService) ClassHistogram(ctx context.Context, dimension, location string) (map[string]int64, error) {
	var known []string
	switch dimension {
	case port.DimensionDistribution:
		known = entity.DistributionClasses
	case port.DimensionBake:
		known = entity.BakeClasses
	default:
		return nil, fmt.Errorf("%w: unknown dimension %q", entity.ErrValidation, dimension)
	}

	counts, err := s.repo.ClassCounts(ctx, dimension, location)
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(known))
	for _, label := range known {
		out[label] = counts[label]
	}
	return out, nil
}

// Trend produces consecutive period buckets ending at now, oldest first.
// Week buckets run Monday to Sunday, month buckets are calendar months.
// Empty periods become zero-valued buckets unless the service was configured
// to drop them.
func (s *AnalyticsService) Trend(ctx context.Context, groupBy string, periods int, location string) ([]entity.TrendPoint, error) {
	if periods < 1 {
		return nil, fmt.Errorf("%w: periods must be positive", entity.ErrValidation)
	}

	now := s.now()
	out := make([]entity.TrendPoint, 0, periods)

	for k := periods - 1; k >= 0; k-- {
		var from, to time.Time
		var label string

		switch groupBy {
		case TrendByWeek:
			from = startOfWeek(now).AddDate(0, 0, -7*k)
			to = from.AddDate(0, 0, 7).Add(-time.Nanosecond)
			year, week := from.ISOWeek()
			label = fmt.Sprintf("%d-W%02d", year, week)
		case TrendByMonth:
			from = startOfMonth(now).AddDate(0, -k, 0)
			to = from.AddDate(0, 1, 0).Add(-time.Nanosecond)
			label = fmt.Sprintf("%s %d", from.Month(), from.Year())
		default:
			return nil, fmt.Errorf("%w: unknown trend grouping %q", entity.ErrValidation, groupBy)
		}

		sum, err := s.Summary(ctx, &from, &to, location)
		if err != nil {
			return nil, err
		}
		if sum.TotalSamples == 0 && !s.trendIncludeEmpty {
			continue
		}
		out = append(out, entity.TrendPoint{Label: label, From: from, To: to, Summary: sum})
	}
	return out, nil
}

// TopRanked splits the most recent 7-day window into best and worst
// inspections around the ranking threshold. The window is anchored to the
// latest record's own timestamp, not wall-clock now, so rankings stay
// meaningful on historical datasets.
func (s *AnalyticsService) TopRanked(ctx context.Context, n int, location string) (entity.Ranking, error) {
	_, latest, err := s.repo.RecordedAtRange(ctx, location)
	if err != nil {
		return entity.Ranking{}, err
	}
	if latest == nil {
		return entity.Ranking{}, nil
	}

	from := latest.AddDate(0, 0, -7)
	ranking := entity.Ranking{From: from, To: *latest}

	minScore := s.rankingThreshold
	best, err := s.repo.Query(ctx, port.InspectionFilter{
		Location:     location,
		From:         &from,
		To:           latest,
		MinScore:     &minScore,
		OrderByScore: port.SortDesc,
		Limit:        n,
	})
	if err != nil {
		return entity.Ranking{}, err
	}

	maxScore := s.rankingThreshold - 1
	worst, err := s.repo.Query(ctx, port.InspectionFilter{
		Location:     location,
		From:         &from,
		To:           latest,
		MaxScore:     &maxScore,
		OrderByScore: port.SortAsc,
		Limit:        n,
	})
	if err != nil {
		return entity.Ranking{}, err
	}

	ranking.Best = rankingEntries(best)
	ranking.Worst = rankingEntries(worst)
	return ranking, nil
}

// Dashboard is the composite response: all-time summary, weekly comparison
// and the top-5 hour/day rankings, plus the data period when a location
// filter is set.
func (s *AnalyticsService) Dashboard(ctx context.Context, location string) (entity.Dashboard, error) {
	overall, err := s.Summary(ctx, nil, nil, location)
	if err != nil {
		return entity.Dashboard{}, err
	}
	weekly, err := s.WeeklyComparison(ctx, location)
	if err != nil {
		return entity.Dashboard{}, err
	}
	topHours, err := s.TopByHour(ctx, 5, location)
	if err != nil {
		return entity.Dashboard{}, err
	}
	topDays, err := s.TopIncidentDays(ctx, 5, location)
	if err != nil {
		return entity.Dashboard{}, err
	}

	dash := entity.Dashboard{
		Overall:         overall,
		Weekly:          weekly,
		TopHours:        topHours,
		TopIncidentDays: topDays,
	}

	if location != "" {
		oldest, newest, err := s.repo.RecordedAtRange(ctx, location)
		if err != nil {
			return entity.Dashboard{}, err
		}
		if oldest != nil && newest != nil {
			dash.Location = &entity.LocationPeriod{Location: location, From: *oldest, To: *newest}
		}
	}
	return dash, nil
}

func rankingEntries(rows []entity.Inspection) []entity.RankingEntry {
	out := make([]entity.RankingEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.RankingEntry{
			ID:         row.ID,
			Location:   row.Location,
			RecordedAt: row.RecordedAt,
			TotalScore: row.TotalScore,
			Verdict:    row.Verdict,
			ImageURL:   row.ImageURL,
		})
	}
	return out
}

// criticalHour picks the hour with the most failures, lowest hour on ties.
func criticalHour(failsByHour map[int]int64) (int, bool) {
	best, bestCount := 0, int64(0)
	for hour := 0; hour < 24; hour++ {
		if c := failsByHour[hour]; c > bestCount {
			best, bestCount = hour, c
		}
	}
	return best, bestCount > 0
}

// startOfWeek returns Monday 00:00 of t's week.
func startOfWeek(t time.Time) time.Time {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // Sunday
	}
	y, m, d := t.AddDate(0, 0, -(wd - 1)).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfMonth returns the first day of t's month at 00:00.
func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
