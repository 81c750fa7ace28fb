// Package respond writes JSON responses and maps classified errors to HTTP status codes.
package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/http/middleware"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/apperr"
)

// MessageResponse is the body of every message-only response, including errors.
type MessageResponse struct {
	Message string `json:"message"`
}

// StatusOf maps an error kind to its HTTP status code.
func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.Unauthenticated:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.InvalidArgument, apperr.InvalidState:
		return http.StatusBadRequest
	case apperr.Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error aborts the request with the status and message for err.
// Internal errors are logged with the request ID and never leak detail.
func Error(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		zap.L().Error("request failed",
			zap.Error(err),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
		)
	}
	c.AbortWithStatusJSON(StatusOf(kind), MessageResponse{Message: apperr.MessageOf(err)})
}

// Message writes a message-only body with the given status.
func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, MessageResponse{Message: msg})
}
