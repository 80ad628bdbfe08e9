package services

import (
	"context"
	"log/slog"

	"github.com/bdedica/tramite/pkg/models"
	"github.com/bdedica/tramite/pkg/persistence"
	"github.com/google/uuid"
)

// FieldModelService manages the field schema of each stage.
type FieldModelService struct {
	persistence persistence.Persistence
	logger      *slog.Logger
}

func NewFieldModelService(p persistence.Persistence, logger *slog.Logger) *FieldModelService {
	return &FieldModelService{
		persistence: p,
		logger:      logger.With("module", "fieldmodel_service"),
	}
}

type FieldModelParams struct {
	Name     string           `json:"name"     validate:"required,min=1,max=255"`
	Type     models.FieldType `json:"type"     validate:"required,oneof=texto numero data booleano"`
	Required bool             `json:"required"`
}

func (s *FieldModelService) Create(ctx context.Context, stageID string, params FieldModelParams) (*models.FieldModel, error) {
	err := checkInput(params)
	if err != nil {
		return nil, err
	}

	fieldModel := &models.FieldModel{
		ID:       uuid.NewString(),
		StageID:  stageID,
		Name:     params.Name,
		Type:     params.Type,
		Required: params.Required,
	}

	err = s.persistence.FieldModels().Create(ctx, fieldModel)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "field model created",
		"field_model_id", fieldModel.ID, "stage_id", stageID, "name", fieldModel.Name)

	return fieldModel, nil
}

func (s *FieldModelService) Get(ctx context.Context, id string) (*models.FieldModel, error) {
	return s.persistence.FieldModels().GetByID(ctx, id)
}

func (s *FieldModelService) ListByStage(ctx context.Context, stageID string) ([]*models.FieldModel, error) {
	return s.persistence.FieldModels().ListByStage(ctx, stageID)
}

func (s *FieldModelService) Update(ctx context.Context, id string, params FieldModelParams) (*models.FieldModel, error) {
	err := checkInput(params)
	if err != nil {
		return nil, err
	}

	fieldModel, err := s.persistence.FieldModels().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fieldModel.Name = params.Name
	fieldModel.Type = params.Type
	fieldModel.Required = params.Required

	err = s.persistence.FieldModels().Update(ctx, fieldModel)
	if err != nil {
		return nil, err
	}

	return fieldModel, nil
}

func (s *FieldModelService) Delete(ctx context.Context, id string) error {
	err := s.persistence.FieldModels().Delete(ctx, id)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "field model deleted", "field_model_id", id)

	return nil
}
