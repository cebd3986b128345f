// File: meetingroom/handlers/handlerBundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Agent endpoints
	RunAgentHandler gin.HandlerFunc
	GetRunHandler   gin.HandlerFunc

	// Action endpoints
	InvokeActionHandler gin.HandlerFunc
	ListActionsHandler  gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires the agent and action handlers.
func NewHandlerBundle(agentHandler *AgentHandler, actionHandler *ActionHandler) *HandlerBundle {
	return &HandlerBundle{
		RunAgentHandler:     agentHandler.RunHandler,
		GetRunHandler:       agentHandler.GetRunHandler,
		InvokeActionHandler: actionHandler.InvokeHandler,
		ListActionsHandler:  actionHandler.ListHandler,
		HealthHandler:       HealthHandler,
	}
}
