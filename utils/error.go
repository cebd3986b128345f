package utils

import (
	"net/http"

	"meetingroom/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	Logger := GetLogger()
	Logger.Warn(message, zap.String("details", details))
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

// StatusForCode maps a domain error code to the HTTP status of a direct API call.
func StatusForCode(code models.ErrorCode) int {
	switch code {
	case "":
		return http.StatusOK
	case models.Conflict:
		return http.StatusConflict
	case models.NotFound, models.UnknownLocation, models.UnsupportedIntent:
		return http.StatusNotFound
	case models.MalformedIdentifier, models.InvalidRequest, models.IncompleteRequest:
		return http.StatusBadRequest
	case models.ExternalServiceFailure:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
