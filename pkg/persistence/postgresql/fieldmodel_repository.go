package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/bdedica/tramite/pkg/models"
	"github.com/bdedica/tramite/pkg/persistence"
)

// FieldModelRepository stores per-stage field schema definitions.
type FieldModelRepository struct {
	q      queryer
	logger *slog.Logger
}

func (r *FieldModelRepository) Create(ctx context.Context, fieldModel *models.FieldModel) error {
	query := `
		INSERT INTO field_models (id, stage_id, name, field_type, required)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.ExecContext(ctx, query,
		fieldModel.ID,
		fieldModel.StageID,
		fieldModel.Name,
		fieldModel.Type,
		fieldModel.Required,
	)
	if err != nil {
		return persistence.NewStoreError("Create", "field_model", fieldModel.ID, mapError(err))
	}

	return nil
}

func (r *FieldModelRepository) GetByID(ctx context.Context, id string) (*models.FieldModel, error) {
	query := `SELECT id, stage_id, name, field_type, required FROM field_models WHERE id = $1`

	fieldModel := &models.FieldModel{}

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&fieldModel.ID,
		&fieldModel.StageID,
		&fieldModel.Name,
		&fieldModel.Type,
		&fieldModel.Required,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("GetByID", "field_model", id, persistence.ErrFieldModelNotFound)
		}

		return nil, persistence.NewStoreError("GetByID", "field_model", id, mapError(err))
	}

	return fieldModel, nil
}

func (r *FieldModelRepository) ListByStage(ctx context.Context, stageID string) ([]*models.FieldModel, error) {
	query := `
		SELECT id, stage_id, name, field_type, required
		FROM field_models
		WHERE stage_id = $1
		ORDER BY name ASC
	`

	rows, err := r.q.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, persistence.NewStoreError("ListByStage", "field_model", stageID, mapError(err))
	}

	defer closeRows(ctx, r.logger, rows)

	var fieldModels []*models.FieldModel

	for rows.Next() {
		fieldModel := &models.FieldModel{}

		err := rows.Scan(
			&fieldModel.ID,
			&fieldModel.StageID,
			&fieldModel.Name,
			&fieldModel.Type,
			&fieldModel.Required,
		)
		if err != nil {
			return nil, persistence.NewStoreError("ListByStage", "field_model", stageID, mapError(err))
		}

		fieldModels = append(fieldModels, fieldModel)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStoreError("ListByStage", "field_model", stageID, mapError(err))
	}

	return fieldModels, nil
}

func (r *FieldModelRepository) Update(ctx context.Context, fieldModel *models.FieldModel) error {
	query := `
		UPDATE field_models
		SET name = $2, field_type = $3, required = $4
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query,
		fieldModel.ID,
		fieldModel.Name,
		fieldModel.Type,
		fieldModel.Required,
	)
	if err != nil {
		return persistence.NewStoreError("Update", "field_model", fieldModel.ID, mapError(err))
	}

	return requireAffected(result, persistence.NewStoreError("Update", "field_model", fieldModel.ID, persistence.ErrFieldModelNotFound))
}

func (r *FieldModelRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM field_models WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return persistence.NewStoreError("Delete", "field_model", id, mapError(err))
	}

	return requireAffected(result, persistence.NewStoreError("Delete", "field_model", id, persistence.ErrFieldModelNotFound))
}
