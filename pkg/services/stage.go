package services

import (
	"context"
	"log/slog"

	"github.com/bdedica/tramite/pkg/models"
	"github.com/bdedica/tramite/pkg/persistence"
	"github.com/google/uuid"
)

// StageService manages the ordered stages of a template.
type StageService struct {
	persistence persistence.Persistence
	logger      *slog.Logger
}

func NewStageService(p persistence.Persistence, logger *slog.Logger) *StageService {
	return &StageService{
		persistence: p,
		logger:      logger.With("module", "stage_service"),
	}
}

type StageParams struct {
	Name               string      `json:"name"                validate:"required,min=1,max=255"`
	Ordinal            int         `json:"ordinal"             validate:"required,min=1"`
	Responsible        models.Role `json:"responsible"         validate:"required,oneof=COORDENADOR ORIENTADOR JIJ"`
	AttachmentRequired bool        `json:"attachment_required"`
}

func (s *StageService) Create(ctx context.Context, templateID string, params StageParams) (*models.Stage, error) {
	err := checkInput(params)
	if err != nil {
		return nil, err
	}

	stage := &models.Stage{
		ID:                 uuid.NewString(),
		TemplateID:         templateID,
		Name:               params.Name,
		Ordinal:            params.Ordinal,
		Responsible:        params.Responsible,
		AttachmentRequired: params.AttachmentRequired,
	}

	err = s.persistence.Stages().Create(ctx, stage)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "stage created",
		"stage_id", stage.ID, "template_id", templateID, "ordinal", stage.Ordinal)

	return stage, nil
}

func (s *StageService) Get(ctx context.Context, id string) (*models.Stage, error) {
	return s.persistence.Stages().GetByID(ctx, id)
}

func (s *StageService) ListByTemplate(ctx context.Context, templateID string) ([]*models.Stage, error) {
	return s.persistence.Stages().ListByTemplate(ctx, templateID)
}

func (s *StageService) Update(ctx context.Context, id string, params StageParams) (*models.Stage, error) {
	err := checkInput(params)
	if err != nil {
		return nil, err
	}

	stage, err := s.persistence.Stages().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stage.Name = params.Name
	stage.Ordinal = params.Ordinal
	stage.Responsible = params.Responsible
	stage.AttachmentRequired = params.AttachmentRequired

	err = s.persistence.Stages().Update(ctx, stage)
	if err != nil {
		return nil, err
	}

	return stage, nil
}

func (s *StageService) Delete(ctx context.Context, id string) error {
	err := s.persistence.Stages().Delete(ctx, id)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "stage deleted", "stage_id", id)

	return nil
}
