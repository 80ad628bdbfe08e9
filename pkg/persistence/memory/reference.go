package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/bdedica/tramite/pkg/models"
	"github.com/bdedica/tramite/pkg/persistence"
)

type templateRepository struct {
	store *Store
	inTx  bool
}

func (r *templateRepository) Create(_ context.Context, template *models.ProcessTemplate) error {
	defer r.store.writeLock(r.inTx)()

	if _, exists := r.store.data.templates[template.ID]; exists {
		return fmt.Errorf("%w: duplicate template id", persistence.ErrIntegrityViolation)
	}

	copied := *template
	r.store.data.templates[template.ID] = &copied

	return nil
}

func (r *templateRepository) GetByID(_ context.Context, id string) (*models.ProcessTemplate, error) {
	defer r.store.readLock(r.inTx)()

	template, ok := r.store.data.templates[id]
	if !ok {
		return nil, persistence.NewStoreError("GetByID", "process_template", id, persistence.ErrTemplateNotFound)
	}

	copied := *template

	return &copied, nil
}

func (r *templateRepository) List(_ context.Context) ([]*models.ProcessTemplate, error) {
	defer r.store.readLock(r.inTx)()

	templates := make([]*models.ProcessTemplate, 0, len(r.store.data.templates))

	for _, template := range r.store.data.templates {
		copied := *template
		templates = append(templates, &copied)
	}

	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })

	return templates, nil
}

func (r *templateRepository) Update(_ context.Context, template *models.ProcessTemplate) error {
	defer r.store.writeLock(r.inTx)()

	if _, ok := r.store.data.templates[template.ID]; !ok {
		return persistence.NewStoreError("Update", "process_template", template.ID, persistence.ErrTemplateNotFound)
	}

	copied := *template
	r.store.data.templates[template.ID] = &copied

	return nil
}

func (r *templateRepository) Delete(_ context.Context, id string) error {
	defer r.store.writeLock(r.inTx)()

	if _, ok := r.store.data.templates[id]; !ok {
		return persistence.NewStoreError("Delete", "process_template", id, persistence.ErrTemplateNotFound)
	}

	delete(r.store.data.templates, id)

	// Cascade: stages, their transitions and field models go with the
	// template, matching the SQL schema.
	for stageID, stage := range r.store.data.stages {
		if stage.TemplateID != id {
			continue
		}

		deleteStageChildren(r.store.data, stageID)
		delete(r.store.data.stages, stageID)
	}

	return nil
}

type stageRepository struct {
	store *Store
	inTx  bool
}

func (r *stageRepository) Create(_ context.Context, stage *models.Stage) error {
	defer r.store.writeLock(r.inTx)()

	data := r.store.data

	if _, ok := data.templates[stage.TemplateID]; !ok {
		return fmt.Errorf("%w: unknown template %s", persistence.ErrIntegrityViolation, stage.TemplateID)
	}

	for _, existing := range data.stages {
		if existing.TemplateID == stage.TemplateID && existing.Ordinal == stage.Ordinal {
			return fmt.Errorf("%w: duplicate ordinal %d", persistence.ErrIntegrityViolation, stage.Ordinal)
		}
	}

	copied := *stage
	data.stages[stage.ID] = &copied

	return nil
}

func (r *stageRepository) GetByID(_ context.Context, id string) (*models.Stage, error) {
	defer r.store.readLock(r.inTx)()

	stage, ok := r.store.data.stages[id]
	if !ok {
		return nil, persistence.NewStoreError("GetByID", "stage", id, persistence.ErrStageNotFound)
	}

	copied := *stage

	return &copied, nil
}

func (r *stageRepository) GetByOrdinal(_ context.Context, templateID string, ordinal int) (*models.Stage, error) {
	defer r.store.readLock(r.inTx)()

	for _, stage := range r.store.data.stages {
		if stage.TemplateID == templateID && stage.Ordinal == ordinal {
			copied := *stage

			return &copied, nil
		}
	}

	return nil, persistence.NewStoreError("GetByOrdinal", "stage", templateID, persistence.ErrStageNotFound)
}

func (r *stageRepository) ListByTemplate(_ context.Context, templateID string) ([]*models.Stage, error) {
	defer r.store.readLock(r.inTx)()

	var stages []*models.Stage

	for _, stage := range r.store.data.stages {
		if stage.TemplateID == templateID {
			copied := *stage
			stages = append(stages, &copied)
		}
	}

	sort.Slice(stages, func(i, j int) bool { return stages[i].Ordinal < stages[j].Ordinal })

	return stages, nil
}

func (r *stageRepository) Update(_ context.Context, stage *models.Stage) error {
	defer r.store.writeLock(r.inTx)()

	current, ok := r.store.data.stages[stage.ID]
	if !ok {
		return persistence.NewStoreError("Update", "stage", stage.ID, persistence.ErrStageNotFound)
	}

	for _, existing := range r.store.data.stages {
		if existing.ID != stage.ID && existing.TemplateID == current.TemplateID && existing.Ordinal == stage.Ordinal {
			return fmt.Errorf("%w: duplicate ordinal %d", persistence.ErrIntegrityViolation, stage.Ordinal)
		}
	}

	copied := *stage
	copied.TemplateID = current.TemplateID
	r.store.data.stages[stage.ID] = &copied

	return nil
}

func (r *stageRepository) Delete(_ context.Context, id string) error {
	defer r.store.writeLock(r.inTx)()

	if _, ok := r.store.data.stages[id]; !ok {
		return persistence.NewStoreError("Delete", "stage", id, persistence.ErrStageNotFound)
	}

	deleteStageChildren(r.store.data, id)
	delete(r.store.data.stages, id)

	return nil
}

func deleteStageChildren(data *dataset, stageID string) {
	for transitionID, transition := range data.transitions {
		if transition.OriginStageID == stageID || transition.DestinationStageID == stageID {
			delete(data.transitions, transitionID)
		}
	}

	for fieldModelID, fieldModel := range data.fieldModels {
		if fieldModel.StageID == stageID {
			delete(data.fieldModels, fieldModelID)
		}
	}
}

type transitionRepository struct {
	store *Store
	inTx  bool
}

func (r *transitionRepository) Create(_ context.Context, transition *models.Transition) error {
	defer r.store.writeLock(r.inTx)()

	data := r.store.data

	if _, ok := data.stages[transition.OriginStageID]; !ok {
		return fmt.Errorf("%w: unknown origin stage %s", persistence.ErrIntegrityViolation, transition.OriginStageID)
	}

	if _, ok := data.stages[transition.DestinationStageID]; !ok {
		return fmt.Errorf("%w: unknown destination stage %s", persistence.ErrIntegrityViolation, transition.DestinationStageID)
	}

	for _, existing := range data.transitions {
		if existing.OriginStageID == transition.OriginStageID {
			return fmt.Errorf("%w: origin %s", persistence.ErrTransitionExists, transition.OriginStageID)
		}
	}

	copied := *transition
	data.transitions[transition.ID] = &copied

	return nil
}

func (r *transitionRepository) GetByOrigin(_ context.Context, originStageID string) (*models.Transition, error) {
	defer r.store.readLock(r.inTx)()

	for _, transition := range r.store.data.transitions {
		if transition.OriginStageID == originStageID {
			copied := *transition

			return &copied, nil
		}
	}

	return nil, persistence.NewStoreError("GetByOrigin", "transition", originStageID, persistence.ErrTransitionNotFound)
}

func (r *transitionRepository) ListByTemplate(_ context.Context, templateID string) ([]*models.Transition, error) {
	defer r.store.readLock(r.inTx)()

	var transitions []*models.Transition

	for _, transition := range r.store.data.transitions {
		origin, ok := r.store.data.stages[transition.OriginStageID]
		if ok && origin.TemplateID == templateID {
			copied := *transition
			transitions = append(transitions, &copied)
		}
	}

	sort.Slice(transitions, func(i, j int) bool {
		return r.store.data.stages[transitions[i].OriginStageID].Ordinal <
			r.store.data.stages[transitions[j].OriginStageID].Ordinal
	})

	return transitions, nil
}

func (r *transitionRepository) Delete(_ context.Context, id string) error {
	defer r.store.writeLock(r.inTx)()

	if _, ok := r.store.data.transitions[id]; !ok {
		return persistence.NewStoreError("Delete", "transition", id, persistence.ErrTransitionNotFound)
	}

	delete(r.store.data.transitions, id)

	return nil
}

type fieldModelRepository struct {
	store *Store
	inTx  bool
}

func (r *fieldModelRepository) Create(_ context.Context, fieldModel *models.FieldModel) error {
	defer r.store.writeLock(r.inTx)()

	if _, ok := r.store.data.stages[fieldModel.StageID]; !ok {
		return fmt.Errorf("%w: unknown stage %s", persistence.ErrIntegrityViolation, fieldModel.StageID)
	}

	copied := *fieldModel
	r.store.data.fieldModels[fieldModel.ID] = &copied

	return nil
}

func (r *fieldModelRepository) GetByID(_ context.Context, id string) (*models.FieldModel, error) {
	defer r.store.readLock(r.inTx)()

	fieldModel, ok := r.store.data.fieldModels[id]
	if !ok {
		return nil, persistence.NewStoreError("GetByID", "field_model", id, persistence.ErrFieldModelNotFound)
	}

	copied := *fieldModel

	return &copied, nil
}

func (r *fieldModelRepository) ListByStage(_ context.Context, stageID string) ([]*models.FieldModel, error) {
	defer r.store.readLock(r.inTx)()

	var fieldModels []*models.FieldModel

	for _, fieldModel := range r.store.data.fieldModels {
		if fieldModel.StageID == stageID {
			copied := *fieldModel
			fieldModels = append(fieldModels, &copied)
		}
	}

	sort.Slice(fieldModels, func(i, j int) bool { return fieldModels[i].Name < fieldModels[j].Name })

	return fieldModels, nil
}

func (r *fieldModelRepository) Update(_ context.Context, fieldModel *models.FieldModel) error {
	defer r.store.writeLock(r.inTx)()

	current, ok := r.store.data.fieldModels[fieldModel.ID]
	if !ok {
		return persistence.NewStoreError("Update", "field_model", fieldModel.ID, persistence.ErrFieldModelNotFound)
	}

	copied := *fieldModel
	copied.StageID = current.StageID
	r.store.data.fieldModels[fieldModel.ID] = &copied

	return nil
}

func (r *fieldModelRepository) Delete(_ context.Context, id string) error {
	defer r.store.writeLock(r.inTx)()

	if _, ok := r.store.data.fieldModels[id]; !ok {
		return persistence.NewStoreError("Delete", "field_model", id, persistence.ErrFieldModelNotFound)
	}

	delete(r.store.data.fieldModels, id)

	return nil
}

type userRepository struct {
	store *Store
	inTx  bool
}

func (r *userRepository) Create(_ context.Context, user *models.User) error {
	defer r.store.writeLock(r.inTx)()

	for _, existing := range r.store.data.users {
		if existing.Username == user.Username {
			return fmt.Errorf("%w: duplicate username %s", persistence.ErrIntegrityViolation, user.Username)
		}
	}

	copied := *user
	r.store.data.users[user.ID] = &copied

	return nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	defer r.store.readLock(r.inTx)()

	user, ok := r.store.data.users[id]
	if !ok {
		return nil, persistence.NewStoreError("GetByID", "user", id, persistence.ErrUserNotFound)
	}

	copied := *user

	return &copied, nil
}
