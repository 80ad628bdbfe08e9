package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/bdedica/tramite/pkg/engine"
	"github.com/bdedica/tramite/pkg/models"
	"github.com/bdedica/tramite/pkg/persistence"
	"github.com/bdedica/tramite/pkg/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestTemplateServiceCRUD(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := NewTemplateService(store, testLogger())

	template, err := service.Create(ctx, TemplateParams{Name: "Acolhimento", Description: "Fluxo inicial"})
	require.NoError(t, err)
	require.NotEmpty(t, template.ID)

	got, err := service.Get(ctx, template.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acolhimento", got.Name)

	updated, err := service.Update(ctx, template.ID, TemplateParams{Name: "Acolhimento Inicial"})
	require.NoError(t, err)
	assert.Equal(t, "Acolhimento Inicial", updated.Name)

	templates, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, templates, 1)

	require.NoError(t, service.Delete(ctx, template.ID))

	_, err = service.Get(ctx, template.ID)
	require.Error(t, err)
	assert.True(t, persistence.IsNotFound(err))
}

func TestTemplateServiceRejectsEmptyName(t *testing.T) {
	service := NewTemplateService(memory.NewStore(), testLogger())

	_, err := service.Create(context.Background(), TemplateParams{Name: ""})
	require.Error(t, err)
	assert.True(t, IsInvalidInput(err))
}

func TestStageServiceValidation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := NewStageService(store, testLogger())

	require.NoError(t, store.Templates().Create(ctx, &models.ProcessTemplate{ID: "tpl-1", Name: "Fluxo"}))

	_, err := service.Create(ctx, "tpl-1", StageParams{Name: "Abertura", Ordinal: 0, Responsible: models.RoleCoordenador})
	require.Error(t, err)
	assert.True(t, IsInvalidInput(err))

	_, err = service.Create(ctx, "tpl-1", StageParams{Name: "Abertura", Ordinal: 1, Responsible: "GERENTE"})
	require.Error(t, err)
	assert.True(t, IsInvalidInput(err))

	stage, err := service.Create(ctx, "tpl-1", StageParams{Name: "Abertura", Ordinal: 1, Responsible: models.RoleCoordenador})
	require.NoError(t, err)

	// A second stage on the same ordinal violates the template's order.
	_, err = service.Create(ctx, "tpl-1", StageParams{Name: "Duplicada", Ordinal: 1, Responsible: models.RoleJIJ})
	require.Error(t, err)
	assert.True(t, persistence.IsIntegrityViolation(err))

	stages, err := service.ListByTemplate(ctx, "tpl-1")
	require.NoError(t, err)
	require.Len(t, stages, 1)
	assert.Equal(t, stage.ID, stages[0].ID)
}

func TestFieldModelServiceValidation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := NewFieldModelService(store, testLogger())

	require.NoError(t, store.Templates().Create(ctx, &models.ProcessTemplate{ID: "tpl-1", Name: "Fluxo"}))
	require.NoError(t, store.Stages().Create(ctx, &models.Stage{
		ID: "stage-1", TemplateID: "tpl-1", Name: "Abertura",
		Ordinal: 1, Responsible: models.RoleCoordenador,
	}))

	_, err := service.Create(ctx, "stage-1", FieldModelParams{Name: "idade", Type: "inteiro"})
	require.Error(t, err)
	assert.True(t, IsInvalidInput(err))

	fieldModel, err := service.Create(ctx, "stage-1", FieldModelParams{Name: "idade", Type: models.FieldTypeNumber, Required: true})
	require.NoError(t, err)
	assert.True(t, fieldModel.Required)

	updated, err := service.Update(ctx, fieldModel.ID, FieldModelParams{Name: "idade", Type: models.FieldTypeNumber, Required: false})
	require.NoError(t, err)
	assert.False(t, updated.Required)
}

func TestTemplateFullView(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := NewTemplateService(store, testLogger())

	require.NoError(t, store.Templates().Create(ctx, &models.ProcessTemplate{ID: "tpl-1", Name: "Fluxo"}))
	require.NoError(t, store.Stages().Create(ctx, &models.Stage{
		ID: "stage-a", TemplateID: "tpl-1", Name: "Abertura",
		Ordinal: 1, Responsible: models.RoleCoordenador,
	}))
	require.NoError(t, store.Stages().Create(ctx, &models.Stage{
		ID: "stage-b", TemplateID: "tpl-1", Name: "Parecer",
		Ordinal: 2, Responsible: models.RoleOrientador,
	}))
	require.NoError(t, store.FieldModels().Create(ctx, &models.FieldModel{
		ID: "fm-1", StageID: "stage-b", Name: "justificativa",
		Type: models.FieldTypeText, Required: true,
	}))
	require.NoError(t, store.Transitions().Create(ctx, &models.Transition{
		ID: "tr-1", OriginStageID: "stage-a", DestinationStageID: "stage-b",
	}))

	view, err := service.FullView(ctx, "tpl-1")
	require.NoError(t, err)
	require.Len(t, view.Stages, 2)

	assert.Equal(t, "stage-a", view.Stages[0].Stage.ID)
	require.NotNil(t, view.Stages[0].Transition)
	assert.Equal(t, "stage-b", view.Stages[0].Transition.DestinationStageID)
	assert.Empty(t, view.Stages[0].FieldModels)

	assert.Equal(t, "stage-b", view.Stages[1].Stage.ID)
	assert.Nil(t, view.Stages[1].Transition)
	require.Len(t, view.Stages[1].FieldModels, 1)
	assert.Equal(t, "justificativa", view.Stages[1].FieldModels[0].Name)
}

func TestProcessHistory(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := NewProcessService(store, testLogger())
	workflows := engine.New(store, nil, testLogger())

	require.NoError(t, store.Users().Create(ctx, &models.User{ID: "user-1", Username: "coord", Role: models.RoleCoordenador}))
	require.NoError(t, store.Templates().Create(ctx, &models.ProcessTemplate{ID: "tpl-1", Name: "Fluxo"}))
	require.NoError(t, store.Stages().Create(ctx, &models.Stage{
		ID: "stage-a", TemplateID: "tpl-1", Name: "Abertura",
		Ordinal: 1, Responsible: models.RoleCoordenador,
	}))
	require.NoError(t, store.Stages().Create(ctx, &models.Stage{
		ID: "stage-b", TemplateID: "tpl-1", Name: "Parecer",
		Ordinal: 2, Responsible: models.RoleOrientador,
	}))
	require.NoError(t, store.Transitions().Create(ctx, &models.Transition{
		ID: "tr-1", OriginStageID: "stage-a", DestinationStageID: "stage-b",
	}))

	started, err := workflows.StartProcess(ctx, "tpl-1", "user-1")
	require.NoError(t, err)

	_, err = workflows.CompleteExecution(ctx, started.ExecutionID, engine.CompleteRequest{UserID: "user-1"})
	require.NoError(t, err)

	history, err := service.History(ctx, started.ProcessID)
	require.NoError(t, err)
	assert.Equal(t, started.ProcessID, history.Process.ID)
	require.Len(t, history.Entries, 2)
	assert.Equal(t, "Abertura", history.Entries[0].StageName)
	assert.Equal(t, models.ExecutionStatusConcluded, history.Entries[0].Execution.Status)
	assert.Equal(t, "Parecer", history.Entries[1].StageName)
	assert.Equal(t, models.ExecutionStatusPending, history.Entries[1].Execution.Status)
}
