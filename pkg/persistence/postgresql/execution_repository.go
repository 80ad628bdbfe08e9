package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/bdedica/tramite/pkg/models"
	"github.com/bdedica/tramite/pkg/persistence"
)

// ExecutionRepository stores stage executions.
type ExecutionRepository struct {
	q      queryer
	logger *slog.Logger
}

const executionColumns = `id, process_id, stage_id, user_id, notes, attachment_id, started_at, ended_at, status`

func (r *ExecutionRepository) Create(ctx context.Context, execution *models.StageExecution) error {
	query := `
		INSERT INTO stage_executions (` + executionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		execution.ID,
		execution.ProcessID,
		execution.StageID,
		execution.UserID,
		execution.Notes,
		execution.AttachmentID,
		execution.StartedAt,
		execution.EndedAt,
		execution.Status,
	)
	if err != nil {
		return persistence.NewStoreError("Create", "stage_execution", execution.ID, mapError(err))
	}

	return nil
}

func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.StageExecution, error) {
	query := `SELECT ` + executionColumns + ` FROM stage_executions WHERE id = $1`

	execution := &models.StageExecution{}

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&execution.ID,
		&execution.ProcessID,
		&execution.StageID,
		&execution.UserID,
		&execution.Notes,
		&execution.AttachmentID,
		&execution.StartedAt,
		&execution.EndedAt,
		&execution.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("GetByID", "stage_execution", id, persistence.ErrExecutionNotFound)
		}

		return nil, persistence.NewStoreError("GetByID", "stage_execution", id, mapError(err))
	}

	return execution, nil
}

func (r *ExecutionRepository) ListByProcess(ctx context.Context, processID string) ([]*models.StageExecution, error) {
	query := `
		SELECT ` + executionColumns + `
		FROM stage_executions
		WHERE process_id = $1
		ORDER BY started_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query, processID)
	if err != nil {
		return nil, persistence.NewStoreError("ListByProcess", "stage_execution", processID, mapError(err))
	}

	defer closeRows(ctx, r.logger, rows)

	var executions []*models.StageExecution

	for rows.Next() {
		execution := &models.StageExecution{}

		err := rows.Scan(
			&execution.ID,
			&execution.ProcessID,
			&execution.StageID,
			&execution.UserID,
			&execution.Notes,
			&execution.AttachmentID,
			&execution.StartedAt,
			&execution.EndedAt,
			&execution.Status,
		)
		if err != nil {
			return nil, persistence.NewStoreError("ListByProcess", "stage_execution", processID, mapError(err))
		}

		executions = append(executions, execution)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStoreError("ListByProcess", "stage_execution", processID, mapError(err))
	}

	return executions, nil
}

func (r *ExecutionRepository) ListPendingByRole(ctx context.Context, role models.Role) ([]*persistence.PendingTask, error) {
	query := `
		SELECT e.id, e.process_id, e.stage_id, s.name, s.responsible, e.started_at
		FROM stage_executions e
		JOIN stages s ON e.stage_id = s.id
		WHERE e.status = $1 AND s.responsible = $2
		ORDER BY e.started_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query, models.ExecutionStatusPending, role)
	if err != nil {
		return nil, persistence.NewStoreError("ListPendingByRole", "stage_execution", string(role), mapError(err))
	}

	defer closeRows(ctx, r.logger, rows)

	var tasks []*persistence.PendingTask

	for rows.Next() {
		task := &persistence.PendingTask{}

		err := rows.Scan(
			&task.ExecutionID,
			&task.ProcessID,
			&task.StageID,
			&task.StageName,
			&task.Responsible,
			&task.StartedAt,
		)
		if err != nil {
			return nil, persistence.NewStoreError("ListPendingByRole", "stage_execution", string(role), mapError(err))
		}

		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStoreError("ListPendingByRole", "stage_execution", string(role), mapError(err))
	}

	return tasks, nil
}

// Conclude flips a still-pending execution to CONCLUIDO. The status
// predicate makes the update optimistic: a second completion of the same
// execution matches zero rows and reports ErrExecutionNotPending.
func (r *ExecutionRepository) Conclude(ctx context.Context, id string, completion persistence.ExecutionCompletion) error {
	query := `
		UPDATE stage_executions
		SET status = $2,
		    ended_at = $3,
		    user_id = COALESCE($4, user_id),
		    notes = COALESCE(NULLIF($5, ''), notes),
		    attachment_id = COALESCE($6, attachment_id)
		WHERE id = $1 AND status = $7
	`

	result, err := r.q.ExecContext(ctx, query,
		id,
		models.ExecutionStatusConcluded,
		completion.EndedAt,
		completion.UserID,
		completion.Notes,
		completion.AttachmentID,
		models.ExecutionStatusPending,
	)
	if err != nil {
		return persistence.NewStoreError("Conclude", "stage_execution", id, mapError(err))
	}

	return requireAffected(result, persistence.NewStoreError("Conclude", "stage_execution", id, persistence.ErrExecutionNotPending))
}
