package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScore_PerfectSample(t *testing.T) {
	sc := Score(Observations{
		HasBubbles:        false,
		DirtyEdges:        false,
		HasGrease:         false,
		BakeClass:         "Correcto",
		DistributionClass: "Correcto",
	}, DefaultPassThreshold)

	require.Equal(t, 30, sc.Bubbles)
	require.Equal(t, 15, sc.Edges)
	require.Equal(t, 30, sc.Distribution)
	require.Equal(t, 15, sc.Bake)
	require.Equal(t, 10, sc.Grease)
	require.Equal(t, 100, sc.Total)
	require.Equal(t, VerdictPass, sc.Verdict)
}

func TestScore_WorstSample(t *testing.T) {
	sc := Score(Observations{
		HasBubbles:        true,
		DirtyEdges:        true,
		HasGrease:         true,
		BakeClass:         "Insuficiente",
		DistributionClass: "Deficiente",
	}, DefaultPassThreshold)

	require.Equal(t, Scorecard{Total: 0, Verdict: VerdictFail}, sc)
}

func TestScore_TotalIsSumOfSubScores(t *testing.T) {
	cases := []Observations{
		{BakeClass: "Alto", DistributionClass: "Aceptable"},
		{HasBubbles: true, BakeClass: "Bajo", DistributionClass: "Media"},
		{DirtyEdges: true, HasGrease: true, BakeClass: "Excesivo", DistributionClass: "Mala"},
		{BakeClass: "", DistributionClass: ""},
	}

	for _, obs := range cases {
		sc := Score(obs, DefaultPassThreshold)
		require.Equal(t, sc.Bubbles+sc.Edges+sc.Distribution+sc.Bake+sc.Grease, sc.Total)
	}
}

func TestScore_DistributionScale(t *testing.T) {
	expected := map[string]int{
		"Correcto":   30,
		"Aceptable":  20,
		"Media":      15,
		"Mala":       5,
		"Deficiente": 0,
	}

	for label, points := range expected {
		sc := Score(Observations{DistributionClass: label, BakeClass: "Correcto"}, DefaultPassThreshold)
		require.Equal(t, points, sc.Distribution, "label %s", label)
	}
}

func TestScore_BakeScale(t *testing.T) {
	expected := map[string]int{
		"Correcto":     15,
		"Alto":         5,
		"Bajo":         5,
		"Insuficiente": 0,
		"Excesivo":     0,
	}

	for label, points := range expected {
		sc := Score(Observations{BakeClass: label, DistributionClass: "Correcto"}, DefaultPassThreshold)
		require.Equal(t, points, sc.Bake, "label %s", label)
	}
}

func TestScore_UnknownLabelsScoreZero(t *testing.T) {
	sc := Score(Observations{
		BakeClass:         "Quemado",
		DistributionClass: "???",
	}, DefaultPassThreshold)

	require.Equal(t, 0, sc.Bake)
	require.Equal(t, 0, sc.Distribution)
	require.Equal(t, 55, sc.Total)
	require.Equal(t, VerdictFail, sc.Verdict)
}

func TestScore_CaseInsensitiveLabels(t *testing.T) {
	upper := Score(Observations{BakeClass: "CORRECTO", DistributionClass: "DEFICIENTE"}, DefaultPassThreshold)
	lower := Score(Observations{BakeClass: "correcto", DistributionClass: "deficiente"}, DefaultPassThreshold)
	require.Equal(t, upper, lower)
}

func TestScore_VerdictThresholdBoundary(t *testing.T) {
	// bubbles 30 + edges 15 + distribution 20 + bake 0 + grease 10 = 75
	obs := Observations{DistributionClass: "Aceptable", BakeClass: "Insuficiente"}

	require.Equal(t, VerdictPass, Score(obs, 75).Verdict)
	require.Equal(t, VerdictFail, Score(obs, 76).Verdict)
}

func TestApplyScorecard_KeepsRecordConsistent(t *testing.T) {
	in := &Inspection{DistributionClass: "Correcto", BakeClass: "Correcto"}
	in.ApplyScorecard(Score(in.Observations(), DefaultPassThreshold))

	require.Equal(t, 100, in.TotalScore)
	require.Equal(t, VerdictPass, in.Verdict)
	require.Equal(t, in.ScoreBubbles+in.ScoreEdges+in.ScoreDistribution+in.ScoreBake+in.ScoreGrease, in.TotalScore)
}
