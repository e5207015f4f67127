package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gritsee-inspector/internal/domain/entity"
	"gritsee-inspector/internal/domain/port"
	"gritsee-inspector/internal/infrastructure/storage"
)

func seedInspection(t *testing.T, repo *storage.MemoryInspectionRepository, obs entity.Observations) *entity.Inspection {
	t.Helper()
	sc := entity.Score(obs, entity.DefaultPassThreshold)
	in := entity.NewInspection("Molino", "http://img/seed.jpg", time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC), obs, sc)
	require.NoError(t, repo.Insert(context.Background(), in))
	return in
}

func strPtr(s string) *string { return &s }

func flexPtr(b bool) *FlexBool {
	fb := FlexBool(b)
	return &fb
}

func TestInspectionService_CorrectRescores(t *testing.T) {
	repo := storage.NewMemoryInspectionRepository()
	svc := NewInspectionService(repo, entity.DefaultPassThreshold)

	// Starts as a worst-case record: everything defective.
	seed := seedInspection(t, repo, entity.Observations{
		HasBubbles:        true,
		DirtyEdges:        true,
		HasGrease:         true,
		BakeClass:         entity.BakeExcesivo,
		DistributionClass: entity.DistDeficiente,
	})
	require.Equal(t, entity.VerdictFail, seed.Verdict)

	got, err := svc.Correct(context.Background(), seed.ID, CorrectionUpdate{
		HasBubbles:        flexPtr(false),
		DirtyEdges:        flexPtr(false),
		HasGrease:         flexPtr(false),
		BakeClass:         strPtr("Correcto"),
		DistributionClass: strPtr("Correcto"),
	})
	require.NoError(t, err)
	require.Equal(t, 100, got.TotalScore)
	require.Equal(t, entity.VerdictPass, got.Verdict)
	require.Equal(t, entity.BakeCorrecto, got.BakeClass)
	require.Equal(t, entity.DistCorrecto, got.DistributionClass)

	stored, err := repo.GetByID(context.Background(), seed.ID)
	require.NoError(t, err)
	require.Equal(t, 100, stored.TotalScore)
}

func TestInspectionService_CorrectPartialUpdate(t *testing.T) {
	repo := storage.NewMemoryInspectionRepository()
	svc := NewInspectionService(repo, entity.DefaultPassThreshold)

	seed := seedInspection(t, repo, entity.Observations{
		BakeClass:         entity.BakeCorrecto,
		DistributionClass: entity.DistCorrecto,
	})
	require.Equal(t, 100, seed.TotalScore)

	// Only bubbles flips; the other observations stay as stored.
	got, err := svc.Correct(context.Background(), seed.ID, CorrectionUpdate{HasBubbles: flexPtr(true)})
	require.NoError(t, err)
	require.True(t, got.HasBubbles)
	require.False(t, got.DirtyEdges)
	require.Equal(t, entity.BakeCorrecto, got.BakeClass)
	require.Equal(t, 70, got.TotalScore)
	require.Equal(t, entity.VerdictFail, got.Verdict)
}

func TestInspectionService_CorrectIdempotent(t *testing.T) {
	repo := storage.NewMemoryInspectionRepository()
	svc := NewInspectionService(repo, entity.DefaultPassThreshold)
	seed := seedInspection(t, repo, entity.Observations{
		BakeClass:         entity.BakeCorrecto,
		DistributionClass: entity.DistCorrecto,
	})

	upd := CorrectionUpdate{HasGrease: flexPtr(true), DistributionClass: strPtr("Media")}
	first, err := svc.Correct(context.Background(), seed.ID, upd)
	require.NoError(t, err)
	second, err := svc.Correct(context.Background(), seed.ID, upd)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestInspectionService_CorrectRejectsUnknownClass(t *testing.T) {
	repo := storage.NewMemoryInspectionRepository()
	svc := NewInspectionService(repo, entity.DefaultPassThreshold)
	seed := seedInspection(t, repo, entity.Observations{
		BakeClass:         entity.BakeCorrecto,
		DistributionClass: entity.DistCorrecto,
	})

	_, err := svc.Correct(context.Background(), seed.ID, CorrectionUpdate{BakeClass: strPtr("Quemado")})
	require.ErrorIs(t, err, entity.ErrValidation)

	_, err = svc.Correct(context.Background(), seed.ID, CorrectionUpdate{DistributionClass: strPtr("Regular")})
	require.ErrorIs(t, err, entity.ErrValidation)

	// Rejected before any mutation.
	stored, err := repo.GetByID(context.Background(), seed.ID)
	require.NoError(t, err)
	require.Equal(t, entity.BakeCorrecto, stored.BakeClass)
	require.Equal(t, 100, stored.TotalScore)
}

func TestInspectionService_CorrectNotFound(t *testing.T) {
	repo := storage.NewMemoryInspectionRepository()
	svc := NewInspectionService(repo, entity.DefaultPassThreshold)

	_, err := svc.Correct(context.Background(), 42, CorrectionUpdate{HasBubbles: flexPtr(true)})
	require.ErrorIs(t, err, entity.ErrNotFound)
}

func TestInspectionService_ListAndGet(t *testing.T) {
	repo := storage.NewMemoryInspectionRepository()
	svc := NewInspectionService(repo, entity.DefaultPassThreshold)

	pass := seedInspection(t, repo, entity.Observations{
		BakeClass:         entity.BakeCorrecto,
		DistributionClass: entity.DistCorrecto,
	})
	seedInspection(t, repo, entity.Observations{
		HasBubbles:        true,
		DirtyEdges:        true,
		BakeClass:         entity.BakeExcesivo,
		DistributionClass: entity.DistDeficiente,
	})

	all, err := svc.List(context.Background(), port.InspectionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	passed, err := svc.List(context.Background(), port.InspectionFilter{Verdict: entity.VerdictPass})
	require.NoError(t, err)
	require.Len(t, passed, 1)
	require.Equal(t, pass.ID, passed[0].ID)

	got, err := svc.Get(context.Background(), pass.ID)
	require.NoError(t, err)
	require.Equal(t, pass.ID, got.ID)

	_, err = svc.Get(context.Background(), 404)
	require.ErrorIs(t, err, entity.ErrNotFound)
}

func TestFlexBool_UnmarshalJSON(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`1`, true},
		{`0`, false},
	}
	for _, c := range cases {
		var b FlexBool
		require.NoError(t, json.Unmarshal([]byte(c.in), &b), c.in)
		require.Equal(t, c.want, bool(b), c.in)
	}

	var b FlexBool
	err := json.Unmarshal([]byte(`"yes"`), &b)
	require.Error(t, err)
	require.True(t, errors.Is(err, entity.ErrValidation))
}

func TestFlexBool_InCorrectionPayload(t *testing.T) {
	var upd CorrectionUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"has_bubbles":1,"dirty_edges":false,"bake_class":"Alto"}`), &upd))
	require.NotNil(t, upd.HasBubbles)
	require.True(t, bool(*upd.HasBubbles))
	require.NotNil(t, upd.DirtyEdges)
	require.False(t, bool(*upd.DirtyEdges))
	require.Equal(t, "Alto", *upd.BakeClass)
	require.Nil(t, upd.HasGrease)
}
