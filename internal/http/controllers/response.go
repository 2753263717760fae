package controllers

import (
	"errors"
	"strconv"

	"signage_server/internal/apperr"
	"signage_server/internal/models"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware
const (
	UserKey   = "user"
	DeviceKey = "device"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// SuccessResponse is the envelope for CRUD responses
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Count   int         `json:"count,omitempty"`
}

// RespondError renders err with the status of its kind. Internal errors hide their message.
func RespondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	resp := ErrorResponse{
		Success: false,
		Error:   string(kind),
		Message: err.Error(),
	}
	var appErr *apperr.Error
	if kind == apperr.KindInternal {
		resp.Message = "Internal server error"
		_ = c.Error(err)
	} else if errors.As(err, &appErr) {
		resp.Details = appErr.Details
	}
	c.JSON(apperr.HTTPStatus(err), resp)
}

// respondSuccess writes the success envelope
func respondSuccess(c *gin.Context, statusCode int, message string, data interface{}, count int) {
	response := SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
	if count > 0 {
		response.Count = count
	}
	c.JSON(statusCode, response)
}

// bindJSON decodes the body into req, reporting failures as validation errors
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		RespondError(c, apperr.Validation("Invalid request format: %v", err))
		return false
	}
	return true
}

// pathID parses a numeric path parameter
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		RespondError(c, apperr.Validation("Invalid %s", name).WithDetail(name, c.Param(name)))
		return 0, false
	}
	return uint(id), true
}

// queryID parses an optional numeric query parameter
func queryID(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		RespondError(c, apperr.Validation("Invalid %s", name).WithDetail(name, raw))
		return nil, false
	}
	v := uint(id)
	return &v, true
}

// queryLimit parses ?limit=, defaulting to 0 (no limit)
func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		RespondError(c, apperr.Validation("limit must be a non-negative integer").WithDetail("limit", raw))
		return 0, false
	}
	return limit, true
}

// currentUser returns the operator stored by AuthMiddleware
func currentUser(c *gin.Context) *models.User {
	return c.MustGet(UserKey).(*models.User)
}

// currentDevice returns the device stored by DeviceAuthMiddleware
func currentDevice(c *gin.Context) *models.Device {
	return c.MustGet(DeviceKey).(*models.Device)
}

// requestDetails builds the check-in details recorded for the request
func requestDetails(c *gin.Context) models.LogDetails {
	return models.LogDetails{"ip": models.String(c.ClientIP())}
}
