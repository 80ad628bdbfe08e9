package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/bdedica/tramite/pkg/models"
	"github.com/bdedica/tramite/pkg/persistence"
	"github.com/bdedica/tramite/pkg/persistence/postgresql"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	// Children first, parents last.
	for _, table := range []string{
		"field_values", "stage_executions", "processes", "field_models",
		"transitions", "stages", "process_templates", "users", "schema_migrations",
	} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("tramite_test"),
			postgres.WithUsername("tramite"),
			postgres.WithPassword("tramite"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx, databaseURL
}

// seedWorkflow inserts a user, a template and its two linked stages.
func seedWorkflow(ctx context.Context, t *testing.T, p *postgresql.Persistence) (userID, templateID, stageAID, stageBID string) {
	t.Helper()

	userID = uuid.NewString()
	templateID = uuid.NewString()
	stageAID = uuid.NewString()
	stageBID = uuid.NewString()

	require.NoError(t, p.Users().Create(ctx, &models.User{ID: userID, Username: "coord-" + userID[:8], Role: models.RoleCoordenador}))
	require.NoError(t, p.Templates().Create(ctx, &models.ProcessTemplate{ID: templateID, Name: "Acolhimento"}))
	require.NoError(t, p.Stages().Create(ctx, &models.Stage{
		ID: stageAID, TemplateID: templateID, Name: "Abertura",
		Ordinal: 1, Responsible: models.RoleCoordenador,
	}))
	require.NoError(t, p.Stages().Create(ctx, &models.Stage{
		ID: stageBID, TemplateID: templateID, Name: "Parecer",
		Ordinal: 2, Responsible: models.RoleOrientador,
	}))
	require.NoError(t, p.Transitions().Create(ctx, &models.Transition{
		ID: uuid.NewString(), OriginStageID: stageAID, DestinationStageID: stageBID,
	}))

	return userID, templateID, stageAID, stageBID
}

func TestNewPersistenceMigrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	var exists bool

	err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = 'stage_executions')`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "stage_executions table should exist")

	var version int

	err = db.QueryRowContext(ctx, "SELECT version FROM schema_migrations WHERE version = 1").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestHealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	err := p.HealthCheck(ctx)
	assert.NoError(t, err)
}

func TestStageOrdinalLookup(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	_, templateID, stageAID, _ := seedWorkflow(ctx, t, p)

	stage, err := p.Stages().GetByOrdinal(ctx, templateID, models.EntryOrdinal)
	require.NoError(t, err)
	assert.Equal(t, stageAID, stage.ID)

	_, err = p.Stages().GetByOrdinal(ctx, templateID, 9)
	require.Error(t, err)
	assert.True(t, persistence.IsNotFound(err))
}

func TestTransitionSingleEdgeConstraint(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	_, templateID, stageAID, _ := seedWorkflow(ctx, t, p)

	stageCID := uuid.NewString()
	require.NoError(t, p.Stages().Create(ctx, &models.Stage{
		ID: stageCID, TemplateID: templateID, Name: "Arquivamento",
		Ordinal: 3, Responsible: models.RoleJIJ,
	}))

	err := p.Transitions().Create(ctx, &models.Transition{
		ID: uuid.NewString(), OriginStageID: stageAID, DestinationStageID: stageCID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, persistence.ErrTransitionExists)
}

func TestForeignKeyViolationMapsToIntegrityViolation(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	err := p.Stages().Create(ctx, &models.Stage{
		ID: uuid.NewString(), TemplateID: uuid.NewString(), Name: "Orfao",
		Ordinal: 1, Responsible: models.RoleCoordenador,
	})
	require.Error(t, err)
	assert.True(t, persistence.IsIntegrityViolation(err))
}

func TestConcludeIsOptimistic(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	userID, templateID, stageAID, _ := seedWorkflow(ctx, t, p)

	processID := uuid.NewString()
	require.NoError(t, p.Processes().Create(ctx, &models.Process{
		ID: processID, TemplateID: templateID, UserID: userID,
		Status: models.ProcessStatusActive, StartedAt: time.Now().UTC(),
	}))

	executionID := uuid.NewString()
	require.NoError(t, p.Executions().Create(ctx, &models.StageExecution{
		ID: executionID, ProcessID: processID, StageID: stageAID,
		UserID: &userID, Notes: "Processo iniciado.",
		StartedAt: time.Now().UTC(), Status: models.ExecutionStatusPending,
	}))

	completion := persistence.ExecutionCompletion{
		UserID:  &userID,
		Notes:   "feito",
		EndedAt: time.Now().UTC(),
	}

	require.NoError(t, p.Executions().Conclude(ctx, executionID, completion))

	execution, err := p.Executions().GetByID(ctx, executionID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusConcluded, execution.Status)
	assert.Equal(t, "feito", execution.Notes)
	require.NotNil(t, execution.EndedAt)

	// Second conclude matches zero rows.
	err = p.Executions().Conclude(ctx, executionID, completion)
	require.Error(t, err)
	assert.True(t, persistence.IsConflict(err))
}

func TestTransactRollsBackOnError(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	userID, templateID, _, _ := seedWorkflow(ctx, t, p)

	processID := uuid.NewString()

	err := p.Transact(ctx, func(repos persistence.Repositories) error {
		err := repos.Processes().Create(ctx, &models.Process{
			ID: processID, TemplateID: templateID, UserID: userID,
			Status: models.ProcessStatusActive, StartedAt: time.Now().UTC(),
		})
		if err != nil {
			return err
		}

		// Unknown stage id forces a constraint failure after the first
		// insert succeeded.
		return repos.Executions().Create(ctx, &models.StageExecution{
			ID: uuid.NewString(), ProcessID: processID, StageID: uuid.NewString(),
			StartedAt: time.Now().UTC(), Status: models.ExecutionStatusPending,
		})
	})
	require.Error(t, err)
	assert.True(t, persistence.IsIntegrityViolation(err))

	_, err = p.Processes().GetByID(ctx, processID)
	require.Error(t, err)
	assert.True(t, persistence.IsNotFound(err))
}

func TestPendingInboxQuery(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	userID, templateID, stageAID, stageBID := seedWorkflow(ctx, t, p)

	processID := uuid.NewString()
	require.NoError(t, p.Processes().Create(ctx, &models.Process{
		ID: processID, TemplateID: templateID, UserID: userID,
		Status: models.ProcessStatusActive, StartedAt: time.Now().UTC(),
	}))

	first := uuid.NewString()
	require.NoError(t, p.Executions().Create(ctx, &models.StageExecution{
		ID: first, ProcessID: processID, StageID: stageAID,
		StartedAt: time.Now().UTC().Add(-time.Minute), Status: models.ExecutionStatusPending,
	}))

	second := uuid.NewString()
	require.NoError(t, p.Executions().Create(ctx, &models.StageExecution{
		ID: second, ProcessID: processID, StageID: stageBID,
		StartedAt: time.Now().UTC(), Status: models.ExecutionStatusConcluded,
	}))

	tasks, err := p.Executions().ListPendingByRole(ctx, models.RoleCoordenador)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, first, tasks[0].ExecutionID)
	assert.Equal(t, "Abertura", tasks[0].StageName)

	tasks, err = p.Executions().ListPendingByRole(ctx, models.RoleOrientador)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
