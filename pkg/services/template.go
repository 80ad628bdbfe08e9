package services

import (
	"context"
	"log/slog"

	"github.com/bdedica/tramite/pkg/models"
	"github.com/bdedica/tramite/pkg/persistence"
	"github.com/google/uuid"
)

// TemplateService manages process templates and assembles the full
// template view used by administrators.
type TemplateService struct {
	persistence persistence.Persistence
	logger      *slog.Logger
}

func NewTemplateService(p persistence.Persistence, logger *slog.Logger) *TemplateService {
	return &TemplateService{
		persistence: p,
		logger:      logger.With("module", "template_service"),
	}
}

type TemplateParams struct {
	Name        string `json:"name"        validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

func (s *TemplateService) Create(ctx context.Context, params TemplateParams) (*models.ProcessTemplate, error) {
	err := checkInput(params)
	if err != nil {
		return nil, err
	}

	template := &models.ProcessTemplate{
		ID:          uuid.NewString(),
		Name:        params.Name,
		Description: params.Description,
	}

	err = s.persistence.Templates().Create(ctx, template)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "template created", "template_id", template.ID, "name", template.Name)

	return template, nil
}

func (s *TemplateService) Get(ctx context.Context, id string) (*models.ProcessTemplate, error) {
	return s.persistence.Templates().GetByID(ctx, id)
}

func (s *TemplateService) List(ctx context.Context) ([]*models.ProcessTemplate, error) {
	return s.persistence.Templates().List(ctx)
}

func (s *TemplateService) Update(ctx context.Context, id string, params TemplateParams) (*models.ProcessTemplate, error) {
	err := checkInput(params)
	if err != nil {
		return nil, err
	}

	template, err := s.persistence.Templates().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	template.Name = params.Name
	template.Description = params.Description

	err = s.persistence.Templates().Update(ctx, template)
	if err != nil {
		return nil, err
	}

	return template, nil
}

func (s *TemplateService) Delete(ctx context.Context, id string) error {
	err := s.persistence.Templates().Delete(ctx, id)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "template deleted", "template_id", id)

	return nil
}

// StageView is one stage of the full view with its field models and
// outgoing transition.
type StageView struct {
	Stage       *models.Stage        `json:"stage"`
	FieldModels []*models.FieldModel `json:"field_models"`
	Transition  *models.Transition   `json:"transition,omitempty"`
}

// TemplateFullView is the complete administrative picture of one
// template: stages in ordinal order, each with schema and edge.
type TemplateFullView struct {
	Template *models.ProcessTemplate `json:"template"`
	Stages   []StageView             `json:"stages"`
}

func (s *TemplateService) FullView(ctx context.Context, id string) (*TemplateFullView, error) {
	template, err := s.persistence.Templates().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stages, err := s.persistence.Stages().ListByTemplate(ctx, template.ID)
	if err != nil {
		return nil, err
	}

	transitions, err := s.persistence.Transitions().ListByTemplate(ctx, template.ID)
	if err != nil {
		return nil, err
	}

	byOrigin := make(map[string]*models.Transition, len(transitions))
	for _, transition := range transitions {
		byOrigin[transition.OriginStageID] = transition
	}

	views := make([]StageView, 0, len(stages))

	for _, stage := range stages {
		fieldModels, err := s.persistence.FieldModels().ListByStage(ctx, stage.ID)
		if err != nil {
			return nil, err
		}

		views = append(views, StageView{
			Stage:       stage,
			FieldModels: fieldModels,
			Transition:  byOrigin[stage.ID],
		})
	}

	return &TemplateFullView{Template: template, Stages: views}, nil
}
