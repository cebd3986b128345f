package handlers

import (
	"errors"
	"io"
	"net/http"

	"meetingroom/models"
	"meetingroom/services/actions"
	"meetingroom/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ActionHandler invokes registry actions directly, bypassing the NLU.
type ActionHandler struct {
	Registry *actions.Registry
}

func NewActionHandler(registry *actions.Registry) *ActionHandler {
	return &ActionHandler{Registry: registry}
}

// InvokeHandler handles POST /api/actions/:name with the params object as body.
func (h *ActionHandler) InvokeHandler(c *gin.Context) {
	logger := getLogger(c)
	name := c.Param("name")

	params := models.Params{}
	if err := c.ShouldBindJSON(&params); err != nil && !errors.Is(err, io.EOF) {
		utils.JSONError(c, http.StatusBadRequest, "Invalid params", err.Error())
		return
	}

	result, err := h.Registry.Invoke(c.Request.Context(), name, params)
	if err != nil {
		failed := models.FailureResult(err)
		if models.CodeOf(err) == "" {
			logger.Error("action failed", zap.String("action", name), zap.Error(err))
		}
		c.JSON(utils.StatusForCode(failed.Code), failed)
		return
	}
	c.JSON(utils.StatusForCode(result.Code), result)
}

// ListHandler handles GET /api/actions.
func (h *ActionHandler) ListHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"actions": h.Registry.Names()})
}
