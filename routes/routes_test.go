package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"meetingroom/handlers"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	hb := &handlers.HandlerBundle{
		RunAgentHandler:     ok,
		GetRunHandler:       ok,
		InvokeActionHandler: ok,
		ListActionsHandler:  ok,
		HealthHandler:       ok,
	}

	r := gin.New()
	RegisterRoutes(r, hb)

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"POST /run",
		"POST /api/agent/run",
		"GET /api/agent/runs/:id",
		"GET /api/actions",
		"POST /api/actions/:name",
		"GET /health",
	} {
		assert.True(t, registered[want], want)
	}

	// Preflight requests are answered by the cors layer.
	req := httptest.NewRequest(http.MethodOptions, "/api/actions/CreateBooking", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
