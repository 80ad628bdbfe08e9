package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/bdedica/tramite/pkg/models"
	"github.com/bdedica/tramite/pkg/persistence"
)

type processRepository struct {
	store *Store
	inTx  bool
}

func (r *processRepository) Create(_ context.Context, process *models.Process) error {
	defer r.store.writeLock(r.inTx)()

	data := r.store.data

	if _, ok := data.templates[process.TemplateID]; !ok {
		return fmt.Errorf("%w: unknown template %s", persistence.ErrIntegrityViolation, process.TemplateID)
	}

	if _, ok := data.users[process.UserID]; !ok {
		return fmt.Errorf("%w: unknown user %s", persistence.ErrIntegrityViolation, process.UserID)
	}

	copied := *process
	data.processes[process.ID] = &copied

	return nil
}

func (r *processRepository) GetByID(_ context.Context, id string) (*models.Process, error) {
	defer r.store.readLock(r.inTx)()

	process, ok := r.store.data.processes[id]
	if !ok {
		return nil, persistence.NewStoreError("GetByID", "process", id, persistence.ErrProcessNotFound)
	}

	copied := *process

	return &copied, nil
}

func (r *processRepository) List(_ context.Context) ([]*models.Process, error) {
	defer r.store.readLock(r.inTx)()

	processes := make([]*models.Process, 0, len(r.store.data.processes))

	for _, process := range r.store.data.processes {
		copied := *process
		processes = append(processes, &copied)
	}

	sort.Slice(processes, func(i, j int) bool {
		if processes[i].StartedAt.Equal(processes[j].StartedAt) {
			return processes[i].ID < processes[j].ID
		}

		return processes[i].StartedAt.Before(processes[j].StartedAt)
	})

	return processes, nil
}

func (r *processRepository) UpdateStatus(_ context.Context, id string, status models.ProcessStatus) error {
	defer r.store.writeLock(r.inTx)()

	process, ok := r.store.data.processes[id]
	if !ok {
		return persistence.NewStoreError("UpdateStatus", "process", id, persistence.ErrProcessNotFound)
	}

	process.Status = status

	return nil
}

func (r *processRepository) Delete(_ context.Context, id string) error {
	defer r.store.writeLock(r.inTx)()

	data := r.store.data

	if _, ok := data.processes[id]; !ok {
		return persistence.NewStoreError("Delete", "process", id, persistence.ErrProcessNotFound)
	}

	delete(data.processes, id)

	for executionID, execution := range data.executions {
		if execution.ProcessID != id {
			continue
		}

		for valueID, value := range data.fieldValues {
			if value.ExecutionID == executionID {
				delete(data.fieldValues, valueID)
			}
		}

		delete(data.executions, executionID)
		delete(data.executionSeqs, executionID)
	}

	return nil
}

type executionRepository struct {
	store *Store
	inTx  bool
}

func (r *executionRepository) Create(_ context.Context, execution *models.StageExecution) error {
	defer r.store.writeLock(r.inTx)()

	data := r.store.data

	if _, ok := data.processes[execution.ProcessID]; !ok {
		return fmt.Errorf("%w: unknown process %s", persistence.ErrIntegrityViolation, execution.ProcessID)
	}

	if _, ok := data.stages[execution.StageID]; !ok {
		return fmt.Errorf("%w: unknown stage %s", persistence.ErrIntegrityViolation, execution.StageID)
	}

	if execution.UserID != nil {
		if _, ok := data.users[*execution.UserID]; !ok {
			return fmt.Errorf("%w: unknown user %s", persistence.ErrIntegrityViolation, *execution.UserID)
		}
	}

	copied := *execution
	data.executions[execution.ID] = &copied
	data.seq++
	data.executionSeqs[execution.ID] = data.seq

	return nil
}

func (r *executionRepository) GetByID(_ context.Context, id string) (*models.StageExecution, error) {
	defer r.store.readLock(r.inTx)()

	execution, ok := r.store.data.executions[id]
	if !ok {
		return nil, persistence.NewStoreError("GetByID", "stage_execution", id, persistence.ErrExecutionNotFound)
	}

	copied := *execution

	return &copied, nil
}

func (r *executionRepository) ListByProcess(_ context.Context, processID string) ([]*models.StageExecution, error) {
	defer r.store.readLock(r.inTx)()

	var executions []*models.StageExecution

	for _, execution := range r.store.data.executions {
		if execution.ProcessID == processID {
			copied := *execution
			executions = append(executions, &copied)
		}
	}

	r.sortByStart(executions)

	return executions, nil
}

func (r *executionRepository) ListPendingByRole(_ context.Context, role models.Role) ([]*persistence.PendingTask, error) {
	defer r.store.readLock(r.inTx)()

	data := r.store.data

	var executions []*models.StageExecution

	for _, execution := range data.executions {
		if execution.Status != models.ExecutionStatusPending {
			continue
		}

		stage, ok := data.stages[execution.StageID]
		if !ok || stage.Responsible != role {
			continue
		}

		executions = append(executions, execution)
	}

	r.sortByStart(executions)

	tasks := make([]*persistence.PendingTask, 0, len(executions))

	for _, execution := range executions {
		stage := data.stages[execution.StageID]

		tasks = append(tasks, &persistence.PendingTask{
			ExecutionID: execution.ID,
			ProcessID:   execution.ProcessID,
			StageID:     execution.StageID,
			StageName:   stage.Name,
			Responsible: stage.Responsible,
			StartedAt:   execution.StartedAt,
		})
	}

	return tasks, nil
}

func (r *executionRepository) Conclude(_ context.Context, id string, completion persistence.ExecutionCompletion) error {
	defer r.store.writeLock(r.inTx)()

	execution, ok := r.store.data.executions[id]
	if !ok {
		return persistence.NewStoreError("Conclude", "stage_execution", id, persistence.ErrExecutionNotFound)
	}

	if execution.Status != models.ExecutionStatusPending {
		return persistence.NewStoreError("Conclude", "stage_execution", id, persistence.ErrExecutionNotPending)
	}

	ended := completion.EndedAt
	execution.Status = models.ExecutionStatusConcluded
	execution.EndedAt = &ended

	if completion.UserID != nil {
		userID := *completion.UserID
		execution.UserID = &userID
	}

	if completion.Notes != "" {
		execution.Notes = completion.Notes
	}

	if completion.AttachmentID != nil {
		attachmentID := *completion.AttachmentID
		execution.AttachmentID = &attachmentID
	}

	return nil
}

// sortByStart orders executions oldest first, with the insertion
// sequence breaking ties between executions stamped in the same instant.
func (r *executionRepository) sortByStart(executions []*models.StageExecution) {
	seqs := r.store.data.executionSeqs

	sort.Slice(executions, func(i, j int) bool {
		if executions[i].StartedAt.Equal(executions[j].StartedAt) {
			return seqs[executions[i].ID] < seqs[executions[j].ID]
		}

		return executions[i].StartedAt.Before(executions[j].StartedAt)
	})
}

type fieldValueRepository struct {
	store *Store
	inTx  bool
}

func (r *fieldValueRepository) DeleteByExecution(_ context.Context, executionID string) error {
	defer r.store.writeLock(r.inTx)()

	for id, value := range r.store.data.fieldValues {
		if value.ExecutionID == executionID {
			delete(r.store.data.fieldValues, id)
		}
	}

	return nil
}

func (r *fieldValueRepository) InsertBatch(_ context.Context, values []*models.FieldValue) error {
	defer r.store.writeLock(r.inTx)()

	data := r.store.data

	for _, value := range values {
		if _, ok := data.fieldModels[value.FieldModelID]; !ok {
			return fmt.Errorf("%w: unknown field model %s", persistence.ErrIntegrityViolation, value.FieldModelID)
		}

		if _, ok := data.executions[value.ExecutionID]; !ok {
			return fmt.Errorf("%w: unknown execution %s", persistence.ErrIntegrityViolation, value.ExecutionID)
		}

		copied := *value
		data.fieldValues[value.ID] = &copied
	}

	return nil
}

func (r *fieldValueRepository) ListByExecution(_ context.Context, executionID string) ([]*models.FieldValue, error) {
	defer r.store.readLock(r.inTx)()

	var values []*models.FieldValue

	for _, value := range r.store.data.fieldValues {
		if value.ExecutionID == executionID {
			copied := *value
			values = append(values, &copied)
		}
	}

	sort.Slice(values, func(i, j int) bool { return values[i].ID < values[j].ID })

	return values, nil
}
