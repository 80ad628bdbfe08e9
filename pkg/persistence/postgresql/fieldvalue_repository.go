package postgresql

import (
	"context"
	"log/slog"

	"github.com/bdedica/tramite/pkg/models"
	"github.com/bdedica/tramite/pkg/persistence"
)

// FieldValueRepository stores submitted field data.
type FieldValueRepository struct {
	q      queryer
	logger *slog.Logger
}

func (r *FieldValueRepository) DeleteByExecution(ctx context.Context, executionID string) error {
	query := `DELETE FROM field_values WHERE execution_id = $1`

	_, err := r.q.ExecContext(ctx, query, executionID)
	if err != nil {
		return persistence.NewStoreError("DeleteByExecution", "field_value", executionID, mapError(err))
	}

	return nil
}

func (r *FieldValueRepository) InsertBatch(ctx context.Context, values []*models.FieldValue) error {
	query := `
		INSERT INTO field_values (id, field_model_id, execution_id, data)
		VALUES ($1, $2, $3, $4)
	`

	for _, value := range values {
		_, err := r.q.ExecContext(ctx, query, value.ID, value.FieldModelID, value.ExecutionID, value.Data)
		if err != nil {
			return persistence.NewStoreError("InsertBatch", "field_value", value.ID, mapError(err))
		}
	}

	return nil
}

func (r *FieldValueRepository) ListByExecution(ctx context.Context, executionID string) ([]*models.FieldValue, error) {
	query := `
		SELECT id, field_model_id, execution_id, data
		FROM field_values
		WHERE execution_id = $1
	`

	rows, err := r.q.QueryContext(ctx, query, executionID)
	if err != nil {
		return nil, persistence.NewStoreError("ListByExecution", "field_value", executionID, mapError(err))
	}

	defer closeRows(ctx, r.logger, rows)

	var values []*models.FieldValue

	for rows.Next() {
		value := &models.FieldValue{}

		err := rows.Scan(&value.ID, &value.FieldModelID, &value.ExecutionID, &value.Data)
		if err != nil {
			return nil, persistence.NewStoreError("ListByExecution", "field_value", executionID, mapError(err))
		}

		values = append(values, value)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStoreError("ListByExecution", "field_value", executionID, mapError(err))
	}

	return values, nil
}
