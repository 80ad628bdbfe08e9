// Package engine owns the process and stage-execution lifecycle: it
// starts processes at their entry stage and advances them through the
// transition graph one atomic completion at a time.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bdedica/tramite/pkg/eventbus"
	"github.com/bdedica/tramite/pkg/events"
	"github.com/bdedica/tramite/pkg/models"
	"github.com/bdedica/tramite/pkg/persistence"
	"github.com/google/uuid"
)

// Default notes stamped on engine-created executions and the messages
// returned by completion. The labels match the backing schema's locale.
const (
	NotesProcessStarted    = "Processo iniciado."
	NotesPreviousConcluded = "Etapa anterior concluída."

	MessageStageAdvanced    = "Etapa concluída e processo avançado."
	MessageProcessConcluded = "Etapa final concluída. Processo finalizado."
)

// Engine coordinates every workflow mutation through single-transaction
// persistence calls and publishes lifecycle events after commit.
type Engine struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
}

func New(p persistence.Persistence, publisher eventbus.EventPublisher, logger *slog.Logger) *Engine {
	return &Engine{
		persistence: p,
		publisher:   publisher,
		logger:      logger.With("module", "engine"),
	}
}

// StartResult identifies the process created by StartProcess and its
// entry-stage execution.
type StartResult struct {
	ProcessID   string `json:"process_id"`
	ExecutionID string `json:"execution_id"`
}

// StartProcess instantiates a template: one ACTIVE process plus one
// PENDENTE execution bound to the template's entry stage, inserted in
// the same transaction.
func (e *Engine) StartProcess(ctx context.Context, templateID, userID string) (*StartResult, error) {
	var (
		process   *models.Process
		execution *models.StageExecution
	)

	err := e.persistence.Transact(ctx, func(repos persistence.Repositories) error {
		template, err := repos.Templates().GetByID(ctx, templateID)
		if err != nil {
			return err
		}

		entry, err := repos.Stages().GetByOrdinal(ctx, template.ID, models.EntryOrdinal)
		if err != nil {
			if persistence.IsNotFound(err) {
				return fmt.Errorf("%w: template %s", ErrInvalidTemplateConfiguration, template.ID)
			}

			return err
		}

		now := time.Now().UTC()

		process = &models.Process{
			ID:         uuid.NewString(),
			TemplateID: template.ID,
			UserID:     userID,
			Status:     models.ProcessStatusActive,
			StartedAt:  now,
		}

		execution = &models.StageExecution{
			ID:        uuid.NewString(),
			ProcessID: process.ID,
			StageID:   entry.ID,
			UserID:    &userID,
			Notes:     NotesProcessStarted,
			StartedAt: now,
			Status:    models.ExecutionStatusPending,
		}

		err = repos.Processes().Create(ctx, process)
		if err != nil {
			return err
		}

		return repos.Executions().Create(ctx, execution)
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, process.ID, events.ProcessStarted{
		BaseEvent:   e.baseEvent(events.ProcessStartedEvent, process.ID),
		TemplateID:  process.TemplateID,
		ExecutionID: execution.ID,
		StageID:     execution.StageID,
		UserID:      userID,
	})

	e.logger.InfoContext(ctx, "process started",
		"process_id", process.ID, "template_id", templateID, "execution_id", execution.ID)

	return &StartResult{ProcessID: process.ID, ExecutionID: execution.ID}, nil
}

// FieldSubmission is one field value sent with a completion.
type FieldSubmission struct {
	FieldModelID string `json:"field_model_id"`
	Data         string `json:"data"`
}

// CompleteRequest carries everything a caller submits when finishing a
// pending execution.
type CompleteRequest struct {
	UserID       string
	Notes        string
	AttachmentID *string
	Fields       []FieldSubmission
}

// CompleteResult reports how a completion resolved. NextExecutionID is
// empty when the process concluded.
type CompleteResult struct {
	Message          string `json:"message"`
	ProcessConcluded bool   `json:"process_concluded"`
	NextExecutionID  string `json:"next_execution_id,omitempty"`
}

// CompleteExecution validates the submitted fields against the stage's
// field models, replaces the execution's stored values, concludes the
// execution, and advances the process to the next stage or finishes it.
// Every write happens in one transaction; a validation failure or a
// lost completion race leaves the store untouched.
func (e *Engine) CompleteExecution(ctx context.Context, executionID string, req CompleteRequest) (*CompleteResult, error) {
	var (
		result    *CompleteResult
		processID string
		stageID   string
		next      *models.StageExecution
		nextRole  models.Role
		startedAt time.Time
	)

	err := e.persistence.Transact(ctx, func(repos persistence.Repositories) error {
		execution, err := repos.Executions().GetByID(ctx, executionID)
		if err != nil {
			return err
		}

		if !execution.Pending() {
			return persistence.NewStoreError("CompleteExecution", "stage_execution", execution.ID, persistence.ErrExecutionNotPending)
		}

		stage, err := repos.Stages().GetByID(ctx, execution.StageID)
		if err != nil {
			return err
		}

		process, err := repos.Processes().GetByID(ctx, execution.ProcessID)
		if err != nil {
			return err
		}

		fieldModels, err := repos.FieldModels().ListByStage(ctx, stage.ID)
		if err != nil {
			return err
		}

		values, err := validateSubmission(stage, fieldModels, req, execution.ID)
		if err != nil {
			return err
		}

		err = repos.FieldValues().DeleteByExecution(ctx, execution.ID)
		if err != nil {
			return err
		}

		if len(values) > 0 {
			err = repos.FieldValues().InsertBatch(ctx, values)
			if err != nil {
				return err
			}
		}

		now := time.Now().UTC()

		var completedBy *string
		if req.UserID != "" {
			completedBy = &req.UserID
		}

		err = repos.Executions().Conclude(ctx, execution.ID, persistence.ExecutionCompletion{
			UserID:       completedBy,
			Notes:        req.Notes,
			AttachmentID: req.AttachmentID,
			EndedAt:      now,
		})
		if err != nil {
			return err
		}

		processID = process.ID
		stageID = stage.ID
		startedAt = process.StartedAt

		transition, err := repos.Transitions().GetByOrigin(ctx, stage.ID)
		if err != nil {
			if !persistence.IsNotFound(err) {
				return err
			}

			// Terminal stage: no outgoing edge, the process is done.
			err = repos.Processes().UpdateStatus(ctx, process.ID, models.ProcessStatusConcluded)
			if err != nil {
				return err
			}

			result = &CompleteResult{Message: MessageProcessConcluded, ProcessConcluded: true}

			return nil
		}

		destination, err := repos.Stages().GetByID(ctx, transition.DestinationStageID)
		if err != nil {
			return err
		}

		next = &models.StageExecution{
			ID:        uuid.NewString(),
			ProcessID: process.ID,
			StageID:   destination.ID,
			UserID:    completedBy,
			Notes:     NotesPreviousConcluded,
			StartedAt: now,
			Status:    models.ExecutionStatusPending,
		}
		nextRole = destination.Responsible

		err = repos.Executions().Create(ctx, next)
		if err != nil {
			return err
		}

		result = &CompleteResult{Message: MessageStageAdvanced, NextExecutionID: next.ID}

		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, processID, events.StageCompleted{
		BaseEvent:   e.baseEvent(events.StageCompletedEvent, processID),
		ExecutionID: executionID,
		StageID:     stageID,
		UserID:      req.UserID,
	})

	if result.ProcessConcluded {
		e.publish(ctx, processID, events.ProcessConcluded{
			BaseEvent:    e.baseEvent(events.ProcessConcludedEvent, processID),
			FinalStageID: stageID,
			Duration:     time.Since(startedAt),
		})
	} else {
		e.publish(ctx, processID, events.StageAdvanced{
			BaseEvent:       e.baseEvent(events.StageAdvancedEvent, processID),
			FromStageID:     stageID,
			ToStageID:       next.StageID,
			NextExecutionID: next.ID,
			NextResponsible: nextRole,
		})
	}

	e.logger.InfoContext(ctx, "execution completed",
		"execution_id", executionID, "process_id", processID, "concluded", result.ProcessConcluded)

	return result, nil
}

// validateSubmission checks the submitted fields against the stage's
// field models and returns the values to store. Required models must be
// present with non-empty data; submitted values must belong to the
// stage and satisfy their type schema. Empty submissions are dropped,
// not stored.
func validateSubmission(stage *models.Stage, fieldModels []*models.FieldModel, req CompleteRequest, executionID string) ([]*models.FieldValue, error) {
	if stage.AttachmentRequired && req.AttachmentID == nil {
		return nil, &ValidationError{FieldName: "anexo", Reason: "stage requires an attachment"}
	}

	byModel := make(map[string]*models.FieldModel, len(fieldModels))
	for _, fieldModel := range fieldModels {
		byModel[fieldModel.ID] = fieldModel
	}

	submitted := make(map[string]string, len(req.Fields))

	for _, field := range req.Fields {
		fieldModel, ok := byModel[field.FieldModelID]
		if !ok {
			return nil, &ValidationError{FieldModelID: field.FieldModelID, Reason: "field model does not belong to this stage"}
		}

		submitted[fieldModel.ID] = field.Data
	}

	for _, fieldModel := range fieldModels {
		data, ok := submitted[fieldModel.ID]

		if fieldModel.Required && (!ok || strings.TrimSpace(data) == "") {
			return nil, rejectedField(fieldModel, "required value missing")
		}

		if ok && strings.TrimSpace(data) != "" {
			if validationErr := validateFieldData(fieldModel, data); validationErr != nil {
				return nil, validationErr
			}
		}
	}

	var values []*models.FieldValue

	for _, fieldModel := range fieldModels {
		data, ok := submitted[fieldModel.ID]
		if !ok || strings.TrimSpace(data) == "" {
			continue
		}

		values = append(values, &models.FieldValue{
			ID:           uuid.NewString(),
			FieldModelID: fieldModel.ID,
			ExecutionID:  executionID,
			Data:         data,
		})
	}

	return values, nil
}

// Inbox lists the pending executions whose stage is assigned to the
// user's role, oldest first.
func (e *Engine) Inbox(ctx context.Context, userID string) ([]*persistence.PendingTask, error) {
	user, err := e.persistence.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return e.InboxForRole(ctx, user.Role)
}

// InboxForRole lists pending tasks for a role directly, for callers
// that already carry an authenticated role.
func (e *Engine) InboxForRole(ctx context.Context, role models.Role) ([]*persistence.PendingTask, error) {
	return e.persistence.Executions().ListPendingByRole(ctx, role)
}

// FieldView is one field model of the task's stage annotated with the
// value already submitted for it, if any.
type FieldView struct {
	Model *models.FieldModel `json:"model"`
	Value *string            `json:"value,omitempty"`
}

// TaskDetail is the form-ready view of one execution: the execution,
// its stage and process, and the stage's fields with prior values.
type TaskDetail struct {
	Execution *models.StageExecution `json:"execution"`
	Stage     *models.Stage          `json:"stage"`
	Process   *models.Process        `json:"process"`
	Fields    []FieldView            `json:"fields"`
}

// GetTaskDetail assembles the detail view for one execution.
func (e *Engine) GetTaskDetail(ctx context.Context, executionID string) (*TaskDetail, error) {
	execution, err := e.persistence.Executions().GetByID(ctx, executionID)
	if err != nil {
		return nil, err
	}

	stage, err := e.persistence.Stages().GetByID(ctx, execution.StageID)
	if err != nil {
		return nil, err
	}

	process, err := e.persistence.Processes().GetByID(ctx, execution.ProcessID)
	if err != nil {
		return nil, err
	}

	fieldModels, err := e.persistence.FieldModels().ListByStage(ctx, stage.ID)
	if err != nil {
		return nil, err
	}

	values, err := e.persistence.FieldValues().ListByExecution(ctx, executionID)
	if err != nil {
		return nil, err
	}

	valueByModel := make(map[string]string, len(values))
	for _, value := range values {
		valueByModel[value.FieldModelID] = value.Data
	}

	fields := make([]FieldView, 0, len(fieldModels))

	for _, fieldModel := range fieldModels {
		view := FieldView{Model: fieldModel}

		if data, ok := valueByModel[fieldModel.ID]; ok {
			view.Value = &data
		}

		fields = append(fields, view)
	}

	return &TaskDetail{
		Execution: execution,
		Stage:     stage,
		Process:   process,
		Fields:    fields,
	}, nil
}

func (e *Engine) baseEvent(eventType events.EventType, processID string) events.BaseEvent {
	return events.BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		ProcessID: processID,
	}
}

// publish sends a lifecycle event. Events are observability, not state:
// a publish failure is logged and never surfaced to the caller.
func (e *Engine) publish(ctx context.Context, key string, event eventbus.Event) {
	if e.publisher == nil {
		return
	}

	err := e.publisher.Publish(ctx, key, event)
	if err != nil {
		e.logger.WarnContext(ctx, "failed to publish event",
			"event_type", event.GetType(), "process_id", key, "error", err)
	}
}
