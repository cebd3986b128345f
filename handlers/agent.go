package handlers

import (
	"errors"
	"net/http"

	"meetingroom/models"
	"meetingroom/services/agent"
	ai "meetingroom/services/intelligence"
	"meetingroom/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AgentHandler exposes the intent resolution workflow.
type AgentHandler struct {
	Workflow *agent.Workflow
	Runs     ai.RunStore
}

func NewAgentHandler(workflow *agent.Workflow, runs ai.RunStore) *AgentHandler {
	return &AgentHandler{Workflow: workflow, Runs: runs}
}

// RunHandler handles POST /run.
func (h *AgentHandler) RunHandler(c *gin.Context) {
	logger := getLogger(c)

	var req models.AIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	rec, err := h.Workflow.Run(c.Request.Context(), req.Query)
	if err != nil {
		logger.Warn("workflow run aborted", zap.Error(err))
		utils.JSONError(c, http.StatusServiceUnavailable, "Run aborted", err.Error())
		return
	}

	c.JSON(http.StatusOK, models.AIResponse{
		RunID:       rec.RunID,
		FinalAnswer: rec.FinalAnswer,
		Success:     rec.Result != nil && rec.Result.OK,
	})
}

// GetRunHandler handles GET /api/agent/runs/:id.
func (h *AgentHandler) GetRunHandler(c *gin.Context) {
	rec, err := h.Runs.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ai.ErrRunNotFound) {
		utils.JSONError(c, http.StatusNotFound, "Run not found", c.Param("id"))
		return
	}
	if err != nil {
		getLogger(c).Error("failed to load run", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load run", err.Error())
		return
	}
	c.JSON(http.StatusOK, rec)
}
