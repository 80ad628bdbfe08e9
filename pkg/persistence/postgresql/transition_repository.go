package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/bdedica/tramite/pkg/models"
	"github.com/bdedica/tramite/pkg/persistence"
)

// TransitionRepository stores the directed edges of the stage graph. The
// transitions_origin_stage_id_key constraint enforces at most one
// outgoing edge per origin stage.
type TransitionRepository struct {
	q      queryer
	logger *slog.Logger
}

func (r *TransitionRepository) Create(ctx context.Context, transition *models.Transition) error {
	query := `
		INSERT INTO transitions (id, origin_stage_id, destination_stage_id)
		VALUES ($1, $2, $3)
	`

	_, err := r.q.ExecContext(ctx, query, transition.ID, transition.OriginStageID, transition.DestinationStageID)
	if err != nil {
		return persistence.NewStoreError("Create", "transition", transition.ID, mapError(err))
	}

	return nil
}

func (r *TransitionRepository) GetByOrigin(ctx context.Context, originStageID string) (*models.Transition, error) {
	query := `
		SELECT id, origin_stage_id, destination_stage_id
		FROM transitions
		WHERE origin_stage_id = $1
	`

	transition := &models.Transition{}

	err := r.q.QueryRowContext(ctx, query, originStageID).Scan(
		&transition.ID,
		&transition.OriginStageID,
		&transition.DestinationStageID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("GetByOrigin", "transition", originStageID, persistence.ErrTransitionNotFound)
		}

		return nil, persistence.NewStoreError("GetByOrigin", "transition", originStageID, mapError(err))
	}

	return transition, nil
}

func (r *TransitionRepository) ListByTemplate(ctx context.Context, templateID string) ([]*models.Transition, error) {
	query := `
		SELECT t.id, t.origin_stage_id, t.destination_stage_id
		FROM transitions t
		JOIN stages s ON t.origin_stage_id = s.id
		WHERE s.template_id = $1
		ORDER BY s.ordinal ASC
	`

	rows, err := r.q.QueryContext(ctx, query, templateID)
	if err != nil {
		return nil, persistence.NewStoreError("ListByTemplate", "transition", templateID, mapError(err))
	}

	defer closeRows(ctx, r.logger, rows)

	var transitions []*models.Transition

	for rows.Next() {
		transition := &models.Transition{}

		err := rows.Scan(&transition.ID, &transition.OriginStageID, &transition.DestinationStageID)
		if err != nil {
			return nil, persistence.NewStoreError("ListByTemplate", "transition", templateID, mapError(err))
		}

		transitions = append(transitions, transition)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStoreError("ListByTemplate", "transition", templateID, mapError(err))
	}

	return transitions, nil
}

func (r *TransitionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM transitions WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return persistence.NewStoreError("Delete", "transition", id, mapError(err))
	}

	return requireAffected(result, persistence.NewStoreError("Delete", "transition", id, persistence.ErrTransitionNotFound))
}
