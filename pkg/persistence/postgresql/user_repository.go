package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/bdedica/tramite/pkg/models"
	"github.com/bdedica/tramite/pkg/persistence"
)

// UserRepository stores the minimal principal records the tracker needs.
type UserRepository struct {
	q      queryer
	logger *slog.Logger
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, username, role) VALUES ($1, $2, $3)`

	_, err := r.q.ExecContext(ctx, query, user.ID, user.Username, user.Role)
	if err != nil {
		return persistence.NewStoreError("Create", "user", user.ID, mapError(err))
	}

	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, username, role FROM users WHERE id = $1`

	user := &models.User{}

	err := r.q.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Username, &user.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("GetByID", "user", id, persistence.ErrUserNotFound)
		}

		return nil, persistence.NewStoreError("GetByID", "user", id, mapError(err))
	}

	return user, nil
}
