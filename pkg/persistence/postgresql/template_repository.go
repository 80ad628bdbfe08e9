package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/bdedica/tramite/pkg/models"
	"github.com/bdedica/tramite/pkg/persistence"
)

// TemplateRepository stores process templates.
type TemplateRepository struct {
	q      queryer
	logger *slog.Logger
}

func (r *TemplateRepository) Create(ctx context.Context, template *models.ProcessTemplate) error {
	query := `INSERT INTO process_templates (id, name, description) VALUES ($1, $2, $3)`

	_, err := r.q.ExecContext(ctx, query, template.ID, template.Name, template.Description)
	if err != nil {
		return persistence.NewStoreError("Create", "process_template", template.ID, mapError(err))
	}

	return nil
}

func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*models.ProcessTemplate, error) {
	query := `SELECT id, name, COALESCE(description, '') FROM process_templates WHERE id = $1`

	template := &models.ProcessTemplate{}

	err := r.q.QueryRowContext(ctx, query, id).Scan(&template.ID, &template.Name, &template.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("GetByID", "process_template", id, persistence.ErrTemplateNotFound)
		}

		return nil, persistence.NewStoreError("GetByID", "process_template", id, mapError(err))
	}

	return template, nil
}

func (r *TemplateRepository) List(ctx context.Context) ([]*models.ProcessTemplate, error) {
	query := `SELECT id, name, COALESCE(description, '') FROM process_templates ORDER BY name ASC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, persistence.NewStoreError("List", "process_template", "", mapError(err))
	}

	defer closeRows(ctx, r.logger, rows)

	var templates []*models.ProcessTemplate

	for rows.Next() {
		template := &models.ProcessTemplate{}

		err := rows.Scan(&template.ID, &template.Name, &template.Description)
		if err != nil {
			return nil, persistence.NewStoreError("List", "process_template", "", mapError(err))
		}

		templates = append(templates, template)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStoreError("List", "process_template", "", mapError(err))
	}

	return templates, nil
}

func (r *TemplateRepository) Update(ctx context.Context, template *models.ProcessTemplate) error {
	query := `UPDATE process_templates SET name = $2, description = $3 WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, template.ID, template.Name, template.Description)
	if err != nil {
		return persistence.NewStoreError("Update", "process_template", template.ID, mapError(err))
	}

	return requireAffected(result, persistence.NewStoreError("Update", "process_template", template.ID, persistence.ErrTemplateNotFound))
}

func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM process_templates WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return persistence.NewStoreError("Delete", "process_template", id, mapError(err))
	}

	return requireAffected(result, persistence.NewStoreError("Delete", "process_template", id, persistence.ErrTemplateNotFound))
}

// requireAffected converts a zero rows-affected result into notFound.
func requireAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}

	if affected == 0 {
		return notFound
	}

	return nil
}

func closeRows(ctx context.Context, logger *slog.Logger, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logger.ErrorContext(ctx, "Failed to close rows", "error", err)
	}
}
