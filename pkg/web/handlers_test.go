package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/bdedica/tramite/pkg/access"
	"github.com/bdedica/tramite/pkg/engine"
	"github.com/bdedica/tramite/pkg/models"
	"github.com/bdedica/tramite/pkg/persistence/memory"
	"github.com/bdedica/tramite/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	app   *fiber.App
	store *memory.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	ctx := context.Background()
	store := memory.NewStore()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	require.NoError(t, store.Users().Create(ctx, &models.User{ID: "user-coord", Username: "coord", Role: models.RoleCoordenador}))
	require.NoError(t, store.Users().Create(ctx, &models.User{ID: "user-orient", Username: "orient", Role: models.RoleOrientador}))
	require.NoError(t, store.Templates().Create(ctx, &models.ProcessTemplate{ID: "tpl-1", Name: "Acolhimento"}))
	require.NoError(t, store.Stages().Create(ctx, &models.Stage{
		ID: "stage-a", TemplateID: "tpl-1", Name: "Abertura",
		Ordinal: 1, Responsible: models.RoleCoordenador,
	}))
	require.NoError(t, store.Stages().Create(ctx, &models.Stage{
		ID: "stage-b", TemplateID: "tpl-1", Name: "Parecer",
		Ordinal: 2, Responsible: models.RoleOrientador,
	}))
	require.NoError(t, store.FieldModels().Create(ctx, &models.FieldModel{
		ID: "fm-justificativa", StageID: "stage-b", Name: "justificativa",
		Type: models.FieldTypeText, Required: true,
	}))
	require.NoError(t, store.Transitions().Create(ctx, &models.Transition{
		ID: "tr-ab", OriginStageID: "stage-a", DestinationStageID: "stage-b",
	}))

	workflowEngine := engine.New(store, nil, logger)
	graph := engine.NewTransitionGraph(store, logger)
	templates := services.NewTemplateService(store, logger)
	stages := services.NewStageService(store, logger)
	fieldModels := services.NewFieldModelService(store, logger)
	processes := services.NewProcessService(store, logger)

	handlers := NewAPIHandlers(workflowEngine, graph, templates, stages, fieldModels, processes, store,
		validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()
	api := app.Group("/", WithPrincipal())

	tg := api.Group("/templates")
	tg.Post("/", handlers.CreateTemplate, RequireAction(access.ActionManageTemplates))
	tg.Get("/", handlers.ListTemplates)
	tg.Get("/:id/full", handlers.GetTemplateFull)
	tg.Get("/:id/graph", handlers.GetTemplateGraph)

	sg := api.Group("/stages")
	sg.Post("/:id/link", handlers.LinkStages, RequireAction(access.ActionManageStages))

	pg := api.Group("/processes")
	pg.Post("/start", handlers.StartProcess, RequireAction(access.ActionStartProcess))
	pg.Get("/:id/history", handlers.GetProcessHistory, RequireAction(access.ActionViewProcesses))

	eg := api.Group("/executions")
	eg.Get("/inbox", handlers.GetInbox)
	eg.Get("/:id", handlers.GetTaskDetail)
	eg.Post("/:id/complete", handlers.CompleteExecution, RequireAction(access.ActionCompleteExecution))

	return &testAPI{app: app, store: store}
}

func (a *testAPI) request(t *testing.T, method, path string, body any, userID string, role models.Role) *http.Response {
	t.Helper()

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if userID != "" {
		req.Header.Set(HeaderUserID, userID)
		req.Header.Set(HeaderUserRole, string(role))
	}

	resp, err := a.app.Test(req)
	require.NoError(t, err)

	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()

	defer func() { _ = resp.Body.Close() }()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestStartProcessEndpoint(t *testing.T) {
	api := newTestAPI(t)

	resp := api.request(t, http.MethodPost, "/processes/start",
		StartProcessRequest{TemplateID: "tpl-1"}, "user-coord", models.RoleCoordenador)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result engine.StartResult

	decodeBody(t, resp, &result)
	assert.NotEmpty(t, result.ProcessID)
	assert.NotEmpty(t, result.ExecutionID)
}

func TestStartProcessRequiresCoordenador(t *testing.T) {
	api := newTestAPI(t)

	resp := api.request(t, http.MethodPost, "/processes/start",
		StartProcessRequest{TemplateID: "tpl-1"}, "user-orient", models.RoleOrientador)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestMissingIdentityHeaders(t *testing.T) {
	api := newTestAPI(t)

	resp := api.request(t, http.MethodGet, "/templates/", nil, "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStartProcessUnknownTemplateReturns404(t *testing.T) {
	api := newTestAPI(t)

	resp := api.request(t, http.MethodPost, "/processes/start",
		StartProcessRequest{TemplateID: "missing"}, "user-coord", models.RoleCoordenador)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCompleteExecutionFlow(t *testing.T) {
	api := newTestAPI(t)

	resp := api.request(t, http.MethodPost, "/processes/start",
		StartProcessRequest{TemplateID: "tpl-1"}, "user-coord", models.RoleCoordenador)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var started engine.StartResult

	decodeBody(t, resp, &started)

	resp = api.request(t, http.MethodPost, "/executions/"+started.ExecutionID+"/complete",
		CompleteExecutionRequest{Notes: "encaminhado"}, "user-coord", models.RoleCoordenador)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var completed engine.CompleteResult

	decodeBody(t, resp, &completed)
	assert.False(t, completed.ProcessConcluded)
	require.NotEmpty(t, completed.NextExecutionID)

	// Double completion loses the race and reports a conflict.
	resp = api.request(t, http.MethodPost, "/executions/"+started.ExecutionID+"/complete",
		CompleteExecutionRequest{}, "user-coord", models.RoleCoordenador)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// The terminal stage requires justificativa.
	resp = api.request(t, http.MethodPost, "/executions/"+completed.NextExecutionID+"/complete",
		CompleteExecutionRequest{}, "user-orient", models.RoleOrientador)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = api.request(t, http.MethodPost, "/executions/"+completed.NextExecutionID+"/complete",
		CompleteExecutionRequest{
			Fields: []FieldSubmissionRequest{{FieldModelID: "fm-justificativa", Data: "ok"}},
		}, "user-orient", models.RoleOrientador)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var concluded engine.CompleteResult

	decodeBody(t, resp, &concluded)
	assert.True(t, concluded.ProcessConcluded)
}

func TestInboxEndpointFiltersByRole(t *testing.T) {
	api := newTestAPI(t)

	resp := api.request(t, http.MethodPost, "/processes/start",
		StartProcessRequest{TemplateID: "tpl-1"}, "user-coord", models.RoleCoordenador)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var started engine.StartResult

	decodeBody(t, resp, &started)

	resp = api.request(t, http.MethodGet, "/executions/inbox", nil, "user-coord", models.RoleCoordenador)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tasks []map[string]any

	decodeBody(t, resp, &tasks)
	require.Len(t, tasks, 1)
	assert.Equal(t, started.ExecutionID, tasks[0]["execution_id"])

	resp = api.request(t, http.MethodGet, "/executions/inbox", nil, "user-orient", models.RoleOrientador)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	tasks = nil

	decodeBody(t, resp, &tasks)
	assert.Empty(t, tasks)
}

func TestTaskDetailEndpoint(t *testing.T) {
	api := newTestAPI(t)

	resp := api.request(t, http.MethodPost, "/processes/start",
		StartProcessRequest{TemplateID: "tpl-1"}, "user-coord", models.RoleCoordenador)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var started engine.StartResult

	decodeBody(t, resp, &started)

	resp = api.request(t, http.MethodGet, "/executions/"+started.ExecutionID, nil, "user-coord", models.RoleCoordenador)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var detail engine.TaskDetail

	decodeBody(t, resp, &detail)
	assert.Equal(t, "stage-a", detail.Stage.ID)

	resp = api.request(t, http.MethodGet, "/executions/missing", nil, "user-coord", models.RoleCoordenador)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLinkStagesConflictOnSecondEdge(t *testing.T) {
	api := newTestAPI(t)

	ctx := context.Background()
	require.NoError(t, api.store.Stages().Create(ctx, &models.Stage{
		ID: "stage-c", TemplateID: "tpl-1", Name: "Arquivamento",
		Ordinal: 3, Responsible: models.RoleJIJ,
	}))

	resp := api.request(t, http.MethodPost, "/stages/stage-b/link",
		LinkStagesRequest{DestinationStageID: "stage-c"}, "user-coord", models.RoleCoordenador)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = api.request(t, http.MethodPost, "/stages/stage-a/link",
		LinkStagesRequest{DestinationStageID: "stage-c"}, "user-coord", models.RoleCoordenador)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCreateTemplateValidation(t *testing.T) {
	api := newTestAPI(t)

	resp := api.request(t, http.MethodPost, "/templates/",
		services.TemplateParams{Name: ""}, "user-coord", models.RoleCoordenador)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = api.request(t, http.MethodPost, "/templates/",
		services.TemplateParams{Name: "Novo Fluxo"}, "user-coord", models.RoleCoordenador)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestTemplateGraphEndpoint(t *testing.T) {
	api := newTestAPI(t)

	resp := api.request(t, http.MethodGet, "/templates/tpl-1/graph", nil, "user-coord", models.RoleCoordenador)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var graph map[string]any

	decodeBody(t, resp, &graph)
	assert.Equal(t, "tpl-1", graph["template_id"])

	terminals, ok := graph["terminals"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"stage-b"}, terminals)
}
