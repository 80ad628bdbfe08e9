// Package persistence defines the storage contracts consumed by the
// execution engine and the reference-data services.
package persistence

import (
	"context"
	"time"

	"github.com/bdedica/tramite/pkg/models"
)

// Repositories bundles every repository bound to one consistency scope:
// either the backing store itself or a single transaction of it.
type Repositories interface {
	Templates() TemplateRepository
	Stages() StageRepository
	Transitions() TransitionRepository
	FieldModels() FieldModelRepository
	Processes() ProcessRepository
	Executions() ExecutionRepository
	FieldValues() FieldValueRepository
	Users() UserRepository
}

// Persistence is the full storage contract. Transact runs fn against
// transaction-scoped repositories; a non-nil error from fn (or any
// failure inside it) rolls back every write fn performed.
type Persistence interface {
	Repositories

	Transact(ctx context.Context, fn func(Repositories) error) error
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

type TemplateRepository interface {
	Create(ctx context.Context, template *models.ProcessTemplate) error
	GetByID(ctx context.Context, id string) (*models.ProcessTemplate, error)
	List(ctx context.Context) ([]*models.ProcessTemplate, error)
	Update(ctx context.Context, template *models.ProcessTemplate) error
	Delete(ctx context.Context, id string) error
}

type StageRepository interface {
	Create(ctx context.Context, stage *models.Stage) error
	GetByID(ctx context.Context, id string) (*models.Stage, error)
	// GetByOrdinal resolves a stage by its position inside a template.
	// Returns ErrStageNotFound when the template has no such ordinal.
	GetByOrdinal(ctx context.Context, templateID string, ordinal int) (*models.Stage, error)
	// ListByTemplate returns the template's stages ordered by ordinal.
	ListByTemplate(ctx context.Context, templateID string) ([]*models.Stage, error)
	Update(ctx context.Context, stage *models.Stage) error
	Delete(ctx context.Context, id string) error
}

type TransitionRepository interface {
	Create(ctx context.Context, transition *models.Transition) error
	// GetByOrigin returns the single outgoing transition of a stage, or
	// ErrTransitionNotFound for a terminal stage.
	GetByOrigin(ctx context.Context, originStageID string) (*models.Transition, error)
	ListByTemplate(ctx context.Context, templateID string) ([]*models.Transition, error)
	Delete(ctx context.Context, id string) error
}

type FieldModelRepository interface {
	Create(ctx context.Context, fieldModel *models.FieldModel) error
	GetByID(ctx context.Context, id string) (*models.FieldModel, error)
	ListByStage(ctx context.Context, stageID string) ([]*models.FieldModel, error)
	Update(ctx context.Context, fieldModel *models.FieldModel) error
	Delete(ctx context.Context, id string) error
}

type ProcessRepository interface {
	Create(ctx context.Context, process *models.Process) error
	GetByID(ctx context.Context, id string) (*models.Process, error)
	List(ctx context.Context) ([]*models.Process, error)
	// UpdateStatus flips the process status. Returns ErrProcessNotFound
	// when no row matches.
	UpdateStatus(ctx context.Context, id string, status models.ProcessStatus) error
	Delete(ctx context.Context, id string) error
}

// PendingTask is an inbox row: a pending execution joined with the
// stage that decides whose desk it lands on.
type PendingTask struct {
	ExecutionID string      `json:"execution_id"`
	ProcessID   string      `json:"process_id"`
	StageID     string      `json:"stage_id"`
	StageName   string      `json:"stage_name"`
	Responsible models.Role `json:"responsible"`
	StartedAt   time.Time   `json:"started_at"`
}

// ExecutionCompletion carries the data stamped onto an execution when it
// is concluded. Nil UserID and AttachmentID and empty Notes keep the
// values already on the record.
type ExecutionCompletion struct {
	UserID       *string
	Notes        string
	AttachmentID *string
	EndedAt      time.Time
}

type ExecutionRepository interface {
	Create(ctx context.Context, execution *models.StageExecution) error
	GetByID(ctx context.Context, id string) (*models.StageExecution, error)
	ListByProcess(ctx context.Context, processID string) ([]*models.StageExecution, error)
	// ListPendingByRole returns every PENDENTE execution whose stage is
	// assigned to the given role, oldest first.
	ListPendingByRole(ctx context.Context, role models.Role) ([]*PendingTask, error)
	// Conclude marks the execution CONCLUIDO and stamps the completion
	// data, but only while it is still PENDENTE. Returns
	// ErrExecutionNotPending when zero rows match, so a concurrent
	// completion cannot advance the process twice.
	Conclude(ctx context.Context, id string, completion ExecutionCompletion) error
}

type FieldValueRepository interface {
	// DeleteByExecution clears every value of one execution. Deleting
	// from an execution with no values is not an error.
	DeleteByExecution(ctx context.Context, executionID string) error
	InsertBatch(ctx context.Context, values []*models.FieldValue) error
	ListByExecution(ctx context.Context, executionID string) ([]*models.FieldValue, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
}
