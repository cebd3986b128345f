package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	catalogRepo "meetingroom/database/repository/catalog"
	reservationRepo "meetingroom/database/repository/reservation"
	"meetingroom/models"
	"meetingroom/services/actions"
	"meetingroom/services/agent"
	"meetingroom/services/booking"
	ai "meetingroom/services/intelligence"
	"meetingroom/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubNLU always classifies as Cancel of a fixed id.
type stubNLU struct{}

func (stubNLU) Classify(context.Context, string, time.Time) (*models.RouteOutput, error) {
	return &models.RouteOutput{Intent: "Cancel", Params: models.Params{"reservation_id": "1_1_1_20250813_1000"}}, nil
}

func (stubNLU) ExtractBookSlots(context.Context, string, time.Time) (*models.BookSlots, error) {
	return &models.BookSlots{}, nil
}

func (stubNLU) ExtractCheckSlots(context.Context, string, time.Time) (*models.CheckSlots, error) {
	return &models.CheckSlots{}, nil
}

func (stubNLU) Summarize(_ context.Context, _ models.Params, result *models.ActionResult) (string, error) {
	return result.Message, nil
}

// setupRouter mirrors routes.RegisterRoutes without the cors layer.
func setupRouter(t *testing.T) (*gin.Engine, *ai.MemoryRunStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.Logger = zap.NewNop()

	catalog := catalogRepo.NewMemoryCatalogRepo()
	_, err := catalog.SeedIfEmpty(context.Background(), models.Catalog{
		Buildings: []models.Building{{ID: 1, Name: "본관"}},
		Floors:    []models.Floor{{ID: 1, BuildingID: 1, FloorNumber: 3}},
		Rooms:     []models.Room{{ID: 1, FloorID: 1, Name: "A"}},
	})
	require.NoError(t, err)

	manager := booking.NewManager(reservationRepo.NewMemoryReservationRepo(), zap.NewNop())
	registry := actions.NewRegistry(catalog, manager, zap.NewNop())
	runs := ai.NewMemoryRunStore()
	workflow := agent.NewWorkflow(stubNLU{}, registry, runs, zap.NewNop())

	hb := NewHandlerBundle(NewAgentHandler(workflow, runs), NewActionHandler(registry))
	r := gin.New()
	r.POST("/run", hb.RunAgentHandler)
	r.GET("/api/agent/runs/:id", hb.GetRunHandler)
	r.GET("/api/actions", hb.ListActionsHandler)
	r.POST("/api/actions/:name", hb.InvokeActionHandler)
	r.GET("/health", hb.HealthHandler)
	return r, runs
}

func perform(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) models.ActionResult {
	t.Helper()
	var res models.ActionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

var createBody = map[string]any{
	"building":  "본관",
	"floor":     "3",
	"room":      "A",
	"user_name": "alice",
	"title":     "주간 회의",
	"start":     "2025-08-13T10:00",
	"end":       "2025-08-13T11:00",
}

func TestInvokeAction_CreateThenConflict(t *testing.T) {
	r, _ := setupRouter(t)

	w := perform(r, http.MethodPost, "/api/actions/CreateBooking", createBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decodeResult(t, w)
	assert.True(t, res.OK)
	assert.Equal(t, "1_1_1_20250813_1000", res.ReservationID)

	w = perform(r, http.MethodPost, "/api/actions/CreateBooking", createBody)
	assert.Equal(t, http.StatusConflict, w.Code)
	res = decodeResult(t, w)
	assert.False(t, res.OK)
	assert.Equal(t, models.Conflict, res.Code)
	assert.Equal(t, "1_1_1_20250813_1000", res.ConflictReservationID)
	assert.NotEmpty(t, res.Suggestions)
}

func TestInvokeAction_StatusMapping(t *testing.T) {
	r, _ := setupRouter(t)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		code   models.ErrorCode
	}{
		{"unknown action", "/api/actions/Nope", nil, http.StatusNotFound, models.UnsupportedIntent},
		{"malformed id", "/api/actions/CancelBooking", map[string]any{"reservation_id": "bad"}, http.StatusBadRequest, models.MalformedIdentifier},
		{"missing reservation", "/api/actions/CancelBooking", map[string]any{"reservation_id": "1_1_1_20250813_1000"}, http.StatusNotFound, models.NotFound},
		{"unknown building", "/api/actions/ListFloors", map[string]any{"building": "별관"}, http.StatusNotFound, models.UnknownLocation},
		{"incomplete", "/api/actions/CheckAvailability", map[string]any{"building": "본관"}, http.StatusBadRequest, models.IncompleteRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(r, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			res := decodeResult(t, w)
			assert.False(t, res.OK)
			assert.Equal(t, tt.code, res.Code)
		})
	}
}

type unreachableCatalog struct{}

func (unreachableCatalog) ListBuildings(context.Context) (map[string]int, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func (unreachableCatalog) ListFloors(context.Context, int) (map[int]int, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func (unreachableCatalog) ListRooms(context.Context, int, int) (map[string]int, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func (unreachableCatalog) SeedIfEmpty(context.Context, models.Catalog) (bool, error) {
	return false, errors.New("dial tcp: connection refused")
}

func TestInvokeAction_StorageFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	utils.Logger = zap.NewNop()

	manager := booking.NewManager(reservationRepo.NewMemoryReservationRepo(), zap.NewNop())
	h := NewActionHandler(actions.NewRegistry(unreachableCatalog{}, manager, zap.NewNop()))
	r := gin.New()
	r.POST("/api/actions/:name", h.InvokeHandler)

	w := perform(r, http.MethodPost, "/api/actions/ListBuildings", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code, w.Body.String())
	res := decodeResult(t, w)
	assert.False(t, res.OK)
	assert.Equal(t, models.ExternalServiceFailure, res.Code)
	assert.Contains(t, res.Error, "connection refused")
}

func TestInvokeAction_Body(t *testing.T) {
	r, _ := setupRouter(t)

	w := perform(r, http.MethodPost, "/api/actions/ListBuildings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]int{"본관": 1}, decodeResult(t, w).Buildings)

	w = perform(r, http.MethodPost, "/api/actions/ListBuildings", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListActions(t *testing.T) {
	r, _ := setupRouter(t)

	w := perform(r, http.MethodGet, "/api/actions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Actions []string `json:"actions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Actions, actions.CreateBooking)
	assert.Len(t, body.Actions, 8)
}

func TestRunAndFetch(t *testing.T) {
	r, runs := setupRouter(t)

	w := perform(r, http.MethodPost, "/run", map[string]any{"query": "예약 취소해줘"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.AIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.False(t, resp.Success)
	assert.Equal(t, booking.MsgNotFound, resp.FinalAnswer)

	_, err := runs.Get(context.Background(), resp.RunID)
	require.NoError(t, err)

	w = perform(r, http.MethodGet, "/api/agent/runs/"+resp.RunID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rec models.RunRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, []string{"Init", "Classify", "Plan", "Execute", "Report", "End"}, rec.Trace)
	assert.Equal(t, []string{actions.CancelBooking}, rec.Plan)

	w = perform(r, http.MethodGet, "/api/agent/runs/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRun_RequiresQuery(t *testing.T) {
	r, _ := setupRouter(t)

	w := perform(r, http.MethodPost, "/run", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	r, _ := setupRouter(t)
	ctx := context.Background()

	utils.RunHealthChecks(ctx, []utils.HealthCheck{{Name: "store", Ping: func(context.Context) error { return nil }}})
	w := perform(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	utils.RunHealthChecks(ctx, []utils.HealthCheck{{Name: "store", Ping: func(context.Context) error { return context.DeadlineExceeded }}})
	w = perform(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}
