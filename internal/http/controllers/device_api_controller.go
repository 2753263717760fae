package controllers

import (
	"net/http"
	"time"

	"signage_server/internal/services"

	"github.com/gin-gonic/gin"
)

// DeviceAPIController serves the routes a device calls with its own check-in token
type DeviceAPIController struct {
	catalog  *services.CatalogService
	checkins *services.CheckInService
	now      func() time.Time
}

// NewDeviceAPIController creates a new device API controller
func NewDeviceAPIController(catalog *services.CatalogService, checkins *services.CheckInService) *DeviceAPIController {
	return &DeviceAPIController{catalog: catalog, checkins: checkins, now: time.Now}
}

// PushTokenRequest carries the device's FCM registration token
type PushTokenRequest struct {
	Token string `json:"token"`
}

// CheckIn records a check-in for the calling device and returns what it should play
func (dc *DeviceAPIController) CheckIn(c *gin.Context) {
	res, err := dc.checkins.CheckIn(c.Request.Context(), currentDevice(c), requestDetails(c), dc.now())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Event appends an arbitrary device action to the log
func (dc *DeviceAPIController) Event(c *gin.Context) {
	var req services.DeviceEventRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := dc.checkins.Record(c.Request.Context(), currentDevice(c), req.Action, req.Details, dc.now())
	if err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Event recorded successfully", entry, 0)
}

// PushToken stores the device's FCM registration token; an empty token disables pushes
func (dc *DeviceAPIController) PushToken(c *gin.Context) {
	var req PushTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := dc.catalog.SetPushToken(c.Request.Context(), currentDevice(c), req.Token); err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Push token updated successfully", nil, 0)
}
