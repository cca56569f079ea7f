package handlers

import (
	"context"
	"errors"
	"net/http"

	"repairshop/internal/domain"
	"repairshop/internal/http/middleware"
	"repairshop/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the envelope for every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	case domain.IsStoreUnavailable(err):
		utils.Logger().Error("store unavailable", zap.String("request_id", requestID(c)), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "store_unavailable", "catalog store is unavailable", nil)
	case errors.Is(err, context.DeadlineExceeded):
		utils.Logger().Warn("request timed out", zap.String("request_id", requestID(c)), zap.Error(err))
		respondError(c, http.StatusGatewayTimeout, "timeout", "the request took too long", nil)
	case errors.Is(err, context.Canceled):
		// client disconnected
		c.AbortWithStatus(499)
	case domain.IsInternal(err):
		utils.Logger().Error("internal error", zap.String("request_id", requestID(c)), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal_error", err.Error(), nil)
	default:
		utils.Logger().Error("unhandled error", zap.String("request_id", requestID(c)), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
	}
}
