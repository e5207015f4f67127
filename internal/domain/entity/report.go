package entity

import "time"

// PeriodSummary is the aggregate view of a set of inspections. Every field
// is always populated; an empty period yields zero counts and 0.0 rates.
type PeriodSummary struct {
	TotalSamples int     `json:"total_samples"`
	Passed       int     `json:"passed"`
	Failed       int     `json:"failed"`
	PassRate     float64 `json:"pass_rate"`
	AverageScore float64 `json:"average_score"`

	// Incident counts per defect dimension.
	WithBubbles           int `json:"with_bubbles"`
	WithGrease            int `json:"with_grease"`
	WithDirtyEdges        int `json:"with_dirty_edges"`
	DistributionDeficient int `json:"distribution_deficient"`
	DistributionPoor      int `json:"distribution_poor"`

	// Incident rates, % of TotalSamples.
	BubblesRate   float64 `json:"bubbles_rate"`
	GreaseRate    float64 `json:"grease_rate"`
	DirtyEdgeRate float64 `json:"dirty_edge_rate"`
	DeficientRate float64 `json:"deficient_rate"`
	PoorRate      float64 `json:"poor_rate"`
}

// ComparisonDeltas holds current-minus-previous percentage differences.
type ComparisonDeltas struct {
	PassRate      float64 `json:"pass_rate"`
	AverageScore  float64 `json:"average_score"`
	BubblesRate   float64 `json:"bubbles_rate"`
	DeficientRate float64 `json:"deficient_rate"`
	PoorRate      float64 `json:"poor_rate"`
}

// WeeklyComparison compares the last 7 days against the 7 days before that.
// Previous and Deltas are nil when the earlier window has no records: a
// missing baseline is reported as absent, never as "no change".
type WeeklyComparison struct {
	Current  PeriodSummary     `json:"current"`
	Previous *PeriodSummary    `json:"previous,omitempty"`
	Deltas   *ComparisonDeltas `json:"deltas,omitempty"`
}

// HourBucket is one hour-of-day group in the samples-per-hour ranking.
type HourBucket struct {
	Hour         int     `json:"hour"`
	Samples      int     `json:"samples"`
	Passed       int     `json:"passed"`
	Failed       int     `json:"failed"`
	AverageScore float64 `json:"average_score"`
}

// DayIncidents is one calendar-day group in the incident ranking.
// CriticalHour is the hour with the most FAIL records that day; it is nil
// for a day without any FAIL record.
type DayIncidents struct {
	Day          time.Time `json:"day"`
	Samples      int       `json:"samples"`
	Incidents    int       `json:"incidents"`
	IncidentRate float64   `json:"incident_rate"`
	CriticalHour *int      `json:"critical_hour,omitempty"`
}

// TrendPoint is one bucket of a trend series, labelled with a human period
// name (ISO week or month name).
type TrendPoint struct {
	Label   string        `json:"label"`
	From    time.Time     `json:"from"`
	To      time.Time     `json:"to"`
	Summary PeriodSummary `json:"summary"`
}

// RankingEntry is one inspection in the best/worst ranking.
type RankingEntry struct {
	ID         uint      `json:"id"`
	Location   string    `json:"location"`
	RecordedAt time.Time `json:"recorded_at"`
	TotalScore int       `json:"total_score"`
	Verdict    string    `json:"verdict"`
	ImageURL   string    `json:"image_url"`
}

// Ranking splits the most recent 7-day window (anchored to the latest
// record) into best and worst inspections around the ranking threshold.
type Ranking struct {
	From  time.Time      `json:"from"`
	To    time.Time      `json:"to"`
	Best  []RankingEntry `json:"best"`
	Worst []RankingEntry `json:"worst"`
}

// LocationPeriod bounds the recorded data for one location.
type LocationPeriod struct {
	Location string    `json:"location"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
}

// Dashboard is the composite analytics response.
type Dashboard struct {
	Overall         PeriodSummary    `json:"overall"`
	Weekly          WeeklyComparison `json:"weekly"`
	TopHours        []HourBucket     `json:"top_hours"`
	TopIncidentDays []DayIncidents   `json:"top_incident_days"`
	Location        *LocationPeriod  `json:"location,omitempty"`
}
