package app

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"gritsee-inspector/internal/domain/entity"
	"gritsee-inspector/internal/domain/port"
)

// FlexBool is a bool that also accepts 0/1 in JSON, so correction payloads
// that encode booleans as integers still parse.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true", "1":
		*b = true
	case "false", "0":
		*b = false
	default:
		return fmt.Errorf("%w: invalid boolean %q", entity.ErrValidation, string(data))
	}
	return nil
}

// CorrectionUpdate is the allow-listed set of observation fields a human
// reviewer may overwrite. Every set field is validated before the merge and
// the record is always rescored afterwards.
type CorrectionUpdate struct {
	HasBubbles        *FlexBool `json:"has_bubbles,omitempty"`
	DirtyEdges        *FlexBool `json:"dirty_edges,omitempty"`
	HasGrease         *FlexBool `json:"has_grease,omitempty"`
	BakeClass         *string   `json:"bake_class,omitempty" validate:"omitempty,bake_class"`
	DistributionClass *string   `json:"distribution_class,omitempty" validate:"omitempty,distribution_class"`
}

// InspectionService exposes the read and correction surface over stored
// inspections.
type InspectionService struct {
	repo          port.InspectionRepository
	passThreshold int
	validate      *validator.Validate
}

func NewInspectionService(repo port.InspectionRepository, passThreshold int) *InspectionService {
	v := validator.New()
	v.RegisterValidation("bake_class", func(fl validator.FieldLevel) bool {
		return entity.KnownBakeClass(fl.Field().String())
	})
	v.RegisterValidation("distribution_class", func(fl validator.FieldLevel) bool {
		return entity.KnownDistributionClass(fl.Field().String())
	})

	return &InspectionService{
		repo:          repo,
		passThreshold: passThreshold,
		validate:      v,
	}
}

// List returns the inspections matching the filter.
func (s *InspectionService) List(ctx context.Context, f port.InspectionFilter) ([]entity.Inspection, error) {
	return s.repo.Query(ctx, f)
}

// Get returns one inspection or entity.ErrNotFound.
func (s *InspectionService) Get(ctx context.Context, id uint) (*entity.Inspection, error) {
	return s.repo.GetByID(ctx, id)
}

// Correct overwrites the supplied observation fields on a record, rescored
// before persisting so total and verdict stay consistent. Applying the same
// correction twice yields the same record.
func (s *InspectionService) Correct(ctx context.Context, id uint, upd CorrectionUpdate) (*entity.Inspection, error) {
	if err := s.validate.Struct(upd); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}

	in, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.HasBubbles != nil {
		in.HasBubbles = bool(*upd.HasBubbles)
	}
	if upd.DirtyEdges != nil {
		in.DirtyEdges = bool(*upd.DirtyEdges)
	}
	if upd.HasGrease != nil {
		in.HasGrease = bool(*upd.HasGrease)
	}
	if upd.BakeClass != nil {
		in.BakeClass = strings.ToUpper(*upd.BakeClass)
	}
	if upd.DistributionClass != nil {
		in.DistributionClass = strings.ToUpper(*upd.DistributionClass)
	}

	in.ApplyScorecard(entity.Score(in.Observations(), s.passThreshold))

	if err := s.repo.Update(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}
