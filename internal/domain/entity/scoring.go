package entity

import "strings"

// DefaultPassThreshold gates the stored verdict; DefaultRankingThreshold
// splits best/worst rankings on the dashboard. The two values differ on
// purpose and are configured independently.
const (
	DefaultPassThreshold    = 75
	DefaultRankingThreshold = 80
)

// Distribution classes, in classifier vocabulary order.
const (
	DistCorrecto   = "CORRECTO"
	DistAceptable  = "ACEPTABLE"
	DistMedia      = "MEDIA"
	DistMala       = "MALA"
	DistDeficiente = "DEFICIENTE"
)

// Bake classes.
const (
	BakeCorrecto     = "CORRECTO"
	BakeAlto         = "ALTO"
	BakeBajo         = "BAJO"
	BakeInsuficiente = "INSUFICIENTE"
	BakeExcesivo     = "EXCESIVO"
)

// DistributionClasses lists every known distribution category. Histograms
// always emit all of them, even when a category has zero records.
var DistributionClasses = []string{DistCorrecto, DistAceptable, DistMedia, DistMala, DistDeficiente}

// BakeClasses lists every known bake category.
var BakeClasses = []string{BakeCorrecto, BakeAlto, BakeBajo, BakeInsuficiente, BakeExcesivo}

var distributionPoints = map[string]int{
	DistCorrecto:   30,
	DistAceptable:  20,
	DistMedia:      15,
	DistMala:       5,
	DistDeficiente: 0,
}

var bakePoints = map[string]int{
	BakeCorrecto:     15,
	BakeAlto:         5,
	BakeBajo:         5,
	BakeInsuficiente: 0,
	BakeExcesivo:     0,
}

// Observations are the five raw detector/classifier outputs for one unit.
type Observations struct {
	HasBubbles        bool   `json:"has_bubbles"`
	DirtyEdges        bool   `json:"dirty_edges"`
	HasGrease         bool   `json:"has_grease"`
	BakeClass         string `json:"bake_class"`
	DistributionClass string `json:"distribution_class"`
}

// Scorecard is the point breakdown produced by the scoring rules.
type Scorecard struct {
	Bubbles      int    `json:"bubbles"`
	Edges        int    `json:"edges"`
	Distribution int    `json:"distribution"`
	Bake         int    `json:"bake"`
	Grease       int    `json:"grease"`
	Total        int    `json:"total"`
	Verdict      string `json:"verdict"`
}

// Score applies the fixed rule table to a set of observations:
//
//	bubbles absent           30
//	edges clean              15
//	distribution             30/20/15/5/0
//	bake correct 15, alto/bajo 5, otherwise 0
//	grease absent            10
//
// Class labels are matched case-insensitively; an unknown label scores 0 for
// its dimension rather than failing, so a malformed classifier output can
// never break the pipeline. Verdict is PASS iff the total reaches
// passThreshold.
func Score(obs Observations, passThreshold int) Scorecard {
	sc := Scorecard{Verdict: VerdictFail}

	if !obs.HasBubbles {
		sc.Bubbles = 30
	}
	if !obs.DirtyEdges {
		sc.Edges = 15
	}
	sc.Distribution = distributionPoints[strings.ToUpper(obs.DistributionClass)]
	sc.Bake = bakePoints[strings.ToUpper(obs.BakeClass)]
	if !obs.HasGrease {
		sc.Grease = 10
	}

	sc.Total = sc.Bubbles + sc.Edges + sc.Distribution + sc.Bake + sc.Grease
	if sc.Total >= passThreshold {
		sc.Verdict = VerdictPass
	}
	return sc
}

// KnownDistributionClass reports whether label is a recognised distribution
// category, ignoring case.
func KnownDistributionClass(label string) bool {
	_, ok := distributionPoints[strings.ToUpper(label)]
	return ok
}

// KnownBakeClass reports whether label is a recognised bake category.
func KnownBakeClass(label string) bool {
	_, ok := bakePoints[strings.ToUpper(label)]
	return ok
}
