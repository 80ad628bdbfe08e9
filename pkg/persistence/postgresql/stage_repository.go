package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/bdedica/tramite/pkg/models"
	"github.com/bdedica/tramite/pkg/persistence"
)

// StageRepository stores stage definitions.
type StageRepository struct {
	q      queryer
	logger *slog.Logger
}

const stageColumns = `id, template_id, name, ordinal, responsible, attachment_required`

func (r *StageRepository) Create(ctx context.Context, stage *models.Stage) error {
	query := `
		INSERT INTO stages (id, template_id, name, ordinal, responsible, attachment_required)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		stage.ID,
		stage.TemplateID,
		stage.Name,
		stage.Ordinal,
		stage.Responsible,
		stage.AttachmentRequired,
	)
	if err != nil {
		return persistence.NewStoreError("Create", "stage", stage.ID, mapError(err))
	}

	return nil
}

func (r *StageRepository) GetByID(ctx context.Context, id string) (*models.Stage, error) {
	query := `SELECT ` + stageColumns + ` FROM stages WHERE id = $1`

	return r.scanStage(r.q.QueryRowContext(ctx, query, id), "GetByID", id)
}

func (r *StageRepository) GetByOrdinal(ctx context.Context, templateID string, ordinal int) (*models.Stage, error) {
	query := `SELECT ` + stageColumns + ` FROM stages WHERE template_id = $1 AND ordinal = $2`

	return r.scanStage(r.q.QueryRowContext(ctx, query, templateID, ordinal), "GetByOrdinal", templateID)
}

func (r *StageRepository) ListByTemplate(ctx context.Context, templateID string) ([]*models.Stage, error) {
	query := `SELECT ` + stageColumns + ` FROM stages WHERE template_id = $1 ORDER BY ordinal ASC`

	rows, err := r.q.QueryContext(ctx, query, templateID)
	if err != nil {
		return nil, persistence.NewStoreError("ListByTemplate", "stage", templateID, mapError(err))
	}

	defer closeRows(ctx, r.logger, rows)

	var stages []*models.Stage

	for rows.Next() {
		stage := &models.Stage{}

		err := rows.Scan(
			&stage.ID,
			&stage.TemplateID,
			&stage.Name,
			&stage.Ordinal,
			&stage.Responsible,
			&stage.AttachmentRequired,
		)
		if err != nil {
			return nil, persistence.NewStoreError("ListByTemplate", "stage", templateID, mapError(err))
		}

		stages = append(stages, stage)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStoreError("ListByTemplate", "stage", templateID, mapError(err))
	}

	return stages, nil
}

func (r *StageRepository) Update(ctx context.Context, stage *models.Stage) error {
	query := `
		UPDATE stages
		SET name = $2, ordinal = $3, responsible = $4, attachment_required = $5
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query,
		stage.ID,
		stage.Name,
		stage.Ordinal,
		stage.Responsible,
		stage.AttachmentRequired,
	)
	if err != nil {
		return persistence.NewStoreError("Update", "stage", stage.ID, mapError(err))
	}

	return requireAffected(result, persistence.NewStoreError("Update", "stage", stage.ID, persistence.ErrStageNotFound))
}

func (r *StageRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM stages WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return persistence.NewStoreError("Delete", "stage", id, mapError(err))
	}

	return requireAffected(result, persistence.NewStoreError("Delete", "stage", id, persistence.ErrStageNotFound))
}

func (r *StageRepository) scanStage(row *sql.Row, op, id string) (*models.Stage, error) {
	stage := &models.Stage{}

	err := row.Scan(
		&stage.ID,
		&stage.TemplateID,
		&stage.Name,
		&stage.Ordinal,
		&stage.Responsible,
		&stage.AttachmentRequired,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError(op, "stage", id, persistence.ErrStageNotFound)
		}

		return nil, persistence.NewStoreError(op, "stage", id, mapError(err))
	}

	return stage, nil
}
