package entity

import "time"

// Verdict values stored on an Inspection.
const (
	VerdictPass = "PASS"
	VerdictFail = "FAIL"
)

// Inspection is one persisted quality record for a single photographed unit.
// RecordedAt is the effective sample timestamp supplied by the batch source;
// CreatedAt is when the row was written.
type Inspection struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RecordedAt time.Time `gorm:"index" json:"recorded_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	Location string `gorm:"size:128;index" json:"location"`
	ImageURL string `gorm:"size:512" json:"image_url"`

	// Raw model outputs. DirtyEdges true means the edges are defective.
	HasBubbles        bool   `json:"has_bubbles"`
	DirtyEdges        bool   `json:"dirty_edges"`
	HasGrease         bool   `json:"has_grease"`
	BakeClass         string `gorm:"size:32" json:"bake_class"`
	DistributionClass string `gorm:"size:32" json:"distribution_class"`

	// Derived scores, always recomputed through Score whenever an
	// observation field changes.
	ScoreBubbles      int `json:"score_bubbles"`
	ScoreEdges        int `json:"score_edges"`
	ScoreDistribution int `json:"score_distribution"`
	ScoreBake         int `json:"score_bake"`
	ScoreGrease       int `json:"score_grease"`

	TotalScore int    `gorm:"index" json:"total_score"`
	Verdict    string `gorm:"size:8;index" json:"verdict"`
}

func (Inspection) TableName() string { return "inspections" }

// Observations returns the raw observation fields of the record.
func (i *Inspection) Observations() Observations {
	return Observations{
		HasBubbles:        i.HasBubbles,
		DirtyEdges:        i.DirtyEdges,
		HasGrease:         i.HasGrease,
		BakeClass:         i.BakeClass,
		DistributionClass: i.DistributionClass,
	}
}

// ApplyScorecard copies a scoring result onto the record so that the stored
// sub-scores, total and verdict stay consistent with the observations.
func (i *Inspection) ApplyScorecard(sc Scorecard) {
	i.ScoreBubbles = sc.Bubbles
	i.ScoreEdges = sc.Edges
	i.ScoreDistribution = sc.Distribution
	i.ScoreBake = sc.Bake
	i.ScoreGrease = sc.Grease
	i.TotalScore = sc.Total
	i.Verdict = sc.Verdict
}

// NewInspection builds a complete record from a scored observation set.
func NewInspection(location, imageURL string, recordedAt time.Time, obs Observations, sc Scorecard) *Inspection {
	in := &Inspection{
		RecordedAt:        recordedAt,
		Location:          location,
		ImageURL:          imageURL,
		HasBubbles:        obs.HasBubbles,
		DirtyEdges:        obs.DirtyEdges,
		HasGrease:         obs.HasGrease,
		BakeClass:         obs.BakeClass,
		DistributionClass: obs.DistributionClass,
	}
	in.ApplyScorecard(sc)
	return in
}
