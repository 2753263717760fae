package controllers

import (
	"net/http"
	"time"

	"signage_server/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DeviceController handles device-related HTTP requests
type DeviceController struct {
	catalog  *services.CatalogService
	checkins *services.CheckInService
	tokens   *services.DeviceTokenService
	logger   *zap.Logger
	now      func() time.Time
}

// NewDeviceController creates a new device controller
func NewDeviceController(catalog *services.CatalogService, checkins *services.CheckInService, tokens *services.DeviceTokenService, logger *zap.Logger) *DeviceController {
	return &DeviceController{catalog: catalog, checkins: checkins, tokens: tokens, logger: logger, now: time.Now}
}

// DeviceTokenResponse carries a freshly issued device check-in token
type DeviceTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GetDevices returns the caller's devices
func (dc *DeviceController) GetDevices(c *gin.Context) {
	devices, err := dc.catalog.ListDevices(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Devices retrieved successfully", devices, len(devices))
}

// GetDevice returns a single device
func (dc *DeviceController) GetDevice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	device, err := dc.catalog.GetDevice(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Device retrieved successfully", device, 0)
}

// CreateDevice registers a device owned by the caller
func (dc *DeviceController) CreateDevice(c *gin.Context) {
	var req services.CreateDeviceRequest
	if !bindJSON(c, &req) {
		return
	}
	device, err := dc.catalog.CreateDevice(c.Request.Context(), currentUser(c).ID, &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Device created successfully", device, 0)
}

// UpdateDevice applies a partial update; device_id cannot change
func (dc *DeviceController) UpdateDevice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateDeviceRequest
	if !bindJSON(c, &req) {
		return
	}
	device, err := dc.catalog.UpdateDevice(c.Request.Context(), currentUser(c).ID, id, &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Device updated successfully", device, 0)
}

// DeleteDevice removes the device with its schedules and logs
func (dc *DeviceController) DeleteDevice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := dc.catalog.DeleteDevice(c.Request.Context(), currentUser(c).ID, id); err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Device deleted successfully", nil, 0)
}

// CheckIn records a check-in for the device and returns what it should play
func (dc *DeviceController) CheckIn(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := dc.checkins.CheckInOwned(c.Request.Context(), currentUser(c).ID, id, requestDetails(c), dc.now())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// IssueToken signs a check-in token the device uses on the /device routes
func (dc *DeviceController) IssueToken(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	device, err := dc.catalog.GetDevice(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		RespondError(c, err)
		return
	}
	token, exp, err := dc.tokens.Issue(device)
	if err != nil {
		RespondError(c, err)
		return
	}
	dc.logger.Info("device token issued", zap.String("device_id", device.DeviceID), zap.Time("expires_at", exp))
	respondSuccess(c, http.StatusCreated, "Device token issued successfully", DeviceTokenResponse{Token: token, ExpiresAt: exp}, 0)
}
