package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bdedica/tramite/pkg/models"
	"github.com/bdedica/tramite/pkg/persistence"
	"github.com/bdedica/tramite/pkg/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTemplate(ctx context.Context, t *testing.T, store *memory.Store) {
	t.Helper()

	require.NoError(t, store.Templates().Create(ctx, &models.ProcessTemplate{ID: "tpl-1", Name: "Fluxo"}))
	require.NoError(t, store.Stages().Create(ctx, &models.Stage{
		ID: "stage-a", TemplateID: "tpl-1", Name: "Abertura",
		Ordinal: 1, Responsible: models.RoleCoordenador,
	}))
	require.NoError(t, store.Users().Create(ctx, &models.User{ID: "user-1", Username: "coord", Role: models.RoleCoordenador}))
}

func TestTransactRollsBackEveryWrite(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	seedTemplate(ctx, t, store)

	failure := errors.New("boom")

	err := store.Transact(ctx, func(repos persistence.Repositories) error {
		err := repos.Processes().Create(ctx, &models.Process{
			ID: "proc-1", TemplateID: "tpl-1", UserID: "user-1",
			Status: models.ProcessStatusActive, StartedAt: time.Now(),
		})
		if err != nil {
			return err
		}

		err = repos.Executions().Create(ctx, &models.StageExecution{
			ID: "exec-1", ProcessID: "proc-1", StageID: "stage-a",
			StartedAt: time.Now(), Status: models.ExecutionStatusPending,
		})
		if err != nil {
			return err
		}

		return failure
	})
	require.ErrorIs(t, err, failure)

	_, err = store.Processes().GetByID(ctx, "proc-1")
	assert.True(t, persistence.IsNotFound(err))

	_, err = store.Executions().GetByID(ctx, "exec-1")
	assert.True(t, persistence.IsNotFound(err))
}

func TestTransactCommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	seedTemplate(ctx, t, store)

	err := store.Transact(ctx, func(repos persistence.Repositories) error {
		return repos.Processes().Create(ctx, &models.Process{
			ID: "proc-1", TemplateID: "tpl-1", UserID: "user-1",
			Status: models.ProcessStatusActive, StartedAt: time.Now(),
		})
	})
	require.NoError(t, err)

	process, err := store.Processes().GetByID(ctx, "proc-1")
	require.NoError(t, err)
	assert.Equal(t, models.ProcessStatusActive, process.Status)
}

func TestForeignKeyChecks(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	seedTemplate(ctx, t, store)

	err := store.Stages().Create(ctx, &models.Stage{
		ID: "stage-x", TemplateID: "missing", Name: "Orfao",
		Ordinal: 1, Responsible: models.RoleJIJ,
	})
	assert.True(t, persistence.IsIntegrityViolation(err))

	err = store.Processes().Create(ctx, &models.Process{
		ID: "proc-x", TemplateID: "tpl-1", UserID: "missing",
		Status: models.ProcessStatusActive, StartedAt: time.Now(),
	})
	assert.True(t, persistence.IsIntegrityViolation(err))
}

func TestReturnedEntitiesAreCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	seedTemplate(ctx, t, store)

	stage, err := store.Stages().GetByID(ctx, "stage-a")
	require.NoError(t, err)

	stage.Name = "mutated"

	again, err := store.Stages().GetByID(ctx, "stage-a")
	require.NoError(t, err)
	assert.Equal(t, "Abertura", again.Name)
}

func TestDuplicateOrdinalRejected(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	seedTemplate(ctx, t, store)

	err := store.Stages().Create(ctx, &models.Stage{
		ID: "stage-b", TemplateID: "tpl-1", Name: "Duplicada",
		Ordinal: 1, Responsible: models.RoleOrientador,
	})
	assert.True(t, persistence.IsIntegrityViolation(err))
}

func TestTemplateDeleteCascades(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	seedTemplate(ctx, t, store)

	require.NoError(t, store.Stages().Create(ctx, &models.Stage{
		ID: "stage-b", TemplateID: "tpl-1", Name: "Parecer",
		Ordinal: 2, Responsible: models.RoleOrientador,
	}))
	require.NoError(t, store.Transitions().Create(ctx, &models.Transition{
		ID: "tr-1", OriginStageID: "stage-a", DestinationStageID: "stage-b",
	}))
	require.NoError(t, store.FieldModels().Create(ctx, &models.FieldModel{
		ID: "fm-1", StageID: "stage-b", Name: "justificativa", Type: models.FieldTypeText,
	}))

	require.NoError(t, store.Templates().Delete(ctx, "tpl-1"))

	_, err := store.Stages().GetByID(ctx, "stage-a")
	assert.True(t, persistence.IsNotFound(err))

	_, err = store.Transitions().GetByOrigin(ctx, "stage-a")
	assert.True(t, persistence.IsNotFound(err))

	_, err = store.FieldModels().GetByID(ctx, "fm-1")
	assert.True(t, persistence.IsNotFound(err))
}
