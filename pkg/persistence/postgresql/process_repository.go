package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/bdedica/tramite/pkg/models"
	"github.com/bdedica/tramite/pkg/persistence"
)

// ProcessRepository stores process instances.
type ProcessRepository struct {
	q      queryer
	logger *slog.Logger
}

func (r *ProcessRepository) Create(ctx context.Context, process *models.Process) error {
	query := `
		INSERT INTO processes (id, template_id, user_id, status, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.ExecContext(ctx, query,
		process.ID,
		process.TemplateID,
		process.UserID,
		process.Status,
		process.StartedAt,
	)
	if err != nil {
		return persistence.NewStoreError("Create", "process", process.ID, mapError(err))
	}

	return nil
}

func (r *ProcessRepository) GetByID(ctx context.Context, id string) (*models.Process, error) {
	query := `SELECT id, template_id, user_id, status, started_at FROM processes WHERE id = $1`

	process := &models.Process{}

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&process.ID,
		&process.TemplateID,
		&process.UserID,
		&process.Status,
		&process.StartedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("GetByID", "process", id, persistence.ErrProcessNotFound)
		}

		return nil, persistence.NewStoreError("GetByID", "process", id, mapError(err))
	}

	return process, nil
}

func (r *ProcessRepository) List(ctx context.Context) ([]*models.Process, error) {
	query := `SELECT id, template_id, user_id, status, started_at FROM processes ORDER BY started_at DESC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, persistence.NewStoreError("List", "process", "", mapError(err))
	}

	defer closeRows(ctx, r.logger, rows)

	var processes []*models.Process

	for rows.Next() {
		process := &models.Process{}

		err := rows.Scan(
			&process.ID,
			&process.TemplateID,
			&process.UserID,
			&process.Status,
			&process.StartedAt,
		)
		if err != nil {
			return nil, persistence.NewStoreError("List", "process", "", mapError(err))
		}

		processes = append(processes, process)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStoreError("List", "process", "", mapError(err))
	}

	return processes, nil
}

func (r *ProcessRepository) UpdateStatus(ctx context.Context, id string, status models.ProcessStatus) error {
	query := `UPDATE processes SET status = $2 WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id, status)
	if err != nil {
		return persistence.NewStoreError("UpdateStatus", "process", id, mapError(err))
	}

	return requireAffected(result, persistence.NewStoreError("UpdateStatus", "process", id, persistence.ErrProcessNotFound))
}

func (r *ProcessRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM processes WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return persistence.NewStoreError("Delete", "process", id, mapError(err))
	}

	return requireAffected(result, persistence.NewStoreError("Delete", "process", id, persistence.ErrProcessNotFound))
}
