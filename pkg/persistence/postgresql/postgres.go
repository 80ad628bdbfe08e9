// Package postgresql provides the PostgreSQL persistence implementation
// for the tramite process tracker.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/bdedica/tramite/pkg/persistence"
	"github.com/bdedica/tramite/pkg/persistence/sqlbase"

	_ "github.com/lib/pq"
)

// queryer abstracts *sql.DB and *sql.Tx so every repository works both
// standalone and inside a transaction.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// repositories binds every repository to one queryer.
type repositories struct {
	q      queryer
	logger *slog.Logger
}

func (r *repositories) Templates() persistence.TemplateRepository {
	return &TemplateRepository{q: r.q, logger: r.logger}
}

func (r *repositories) Stages() persistence.StageRepository {
	return &StageRepository{q: r.q, logger: r.logger}
}

func (r *repositories) Transitions() persistence.TransitionRepository {
	return &TransitionRepository{q: r.q, logger: r.logger}
}

func (r *repositories) FieldModels() persistence.FieldModelRepository {
	return &FieldModelRepository{q: r.q, logger: r.logger}
}

func (r *repositories) Processes() persistence.ProcessRepository {
	return &ProcessRepository{q: r.q, logger: r.logger}
}

func (r *repositories) Executions() persistence.ExecutionRepository {
	return &ExecutionRepository{q: r.q, logger: r.logger}
}

func (r *repositories) FieldValues() persistence.FieldValueRepository {
	return &FieldValueRepository{q: r.q, logger: r.logger}
}

func (r *repositories) Users() persistence.UserRepository {
	return &UserRepository{q: r.q, logger: r.logger}
}

// Persistence implements persistence.Persistence for PostgreSQL.
type Persistence struct {
	repositories

	db *sql.DB
}

// NewPersistence connects to PostgreSQL and runs pending migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		repositories: repositories{q: database, logger: logger},
		db:           database,
	}, nil
}

// Transact runs fn against transaction-scoped repositories. Any error
// from fn rolls the transaction back; otherwise it is committed.
func (p *Persistence) Transact(ctx context.Context, fn func(persistence.Repositories) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", mapError(err))
	}

	err = fn(&repositories{q: tx, logger: p.logger})
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			p.logger.ErrorContext(ctx, "Failed to roll back transaction", "error", rbErr)
		}

		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapError(err))
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
