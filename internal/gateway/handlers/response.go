package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"invoice-console/internal/editor"
	"invoice-console/internal/gateway/clients"
	"invoice-console/internal/gateway/middleware"
	"invoice-console/internal/invoice"
)

const (
	readTimeout  = 5 * time.Second
	writeTimeout = 15 * time.Second
)

type APIResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    interface{}       `json:"data,omitempty"`
	Meta    interface{}       `json:"meta,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

func successWithMetaResponse(message string, data interface{}, meta interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
}

func validationErrorResponse(verr *invoice.ValidationError, data interface{}) APIResponse {
	return APIResponse{
		Success: false,
		Message: verr.Error(),
		Data:    data,
		Fields:  verr.Map(),
	}
}

// handleError maps domain and upstream errors to a status code and writes
// the response. data, if non-nil, is attached so the caller can redisplay
// preserved state.
func handleError(c *gin.Context, err error, data interface{}) {
	var verr *invoice.ValidationError
	var gerr *clients.GatewayError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, validationErrorResponse(verr, data))
	case errors.Is(err, editor.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, errorResponse("Editor session not found"))
	case errors.Is(err, editor.ErrSubmitInProgress):
		c.JSON(http.StatusConflict, withData(errorResponse("A submit is already in progress"), data))
	case errors.Is(err, editor.ErrStaleSession):
		c.JSON(http.StatusConflict, errorResponse("Editor session changed, reload it and try again"))
	case errors.Is(err, editor.ErrIndexOutOfRange):
		c.JSON(http.StatusBadRequest, withData(errorResponse(err.Error()), data))
	case errors.Is(err, editor.ErrClosed):
		c.JSON(http.StatusConflict, errorResponse("Editor is closed"))
	case errors.As(err, &gerr):
		c.JSON(gatewayStatus(gerr), withData(errorResponse(gerr.Message), data))
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, withData(errorResponse("Upstream request timed out"), data))
	default:
		c.JSON(http.StatusInternalServerError, withData(errorResponse("Internal error: "+err.Error()), data))
	}
	c.Abort()
}

func withData(resp APIResponse, data interface{}) APIResponse {
	resp.Data = data
	return resp
}

func gatewayStatus(gerr *clients.GatewayError) int {
	switch {
	case gerr.StatusCode == 0:
		return http.StatusBadGateway
	case gerr.StatusCode == http.StatusUnauthorized, gerr.StatusCode == http.StatusForbidden,
		gerr.StatusCode == http.StatusNotFound, gerr.StatusCode == http.StatusConflict,
		gerr.StatusCode == http.StatusTooManyRequests:
		return gerr.StatusCode
	case gerr.StatusCode >= 400 && gerr.StatusCode < 500:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// operator returns the signed-in operator's email and bearer token.
func operator(c *gin.Context) (string, string) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return "", ""
	}
	return claims.Email, c.GetString(middleware.ContextToken)
}
