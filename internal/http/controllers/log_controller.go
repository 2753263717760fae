package controllers

import (
	"fmt"
	"net/http"
	"time"

	"signage_server/internal/services"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LogController exposes the device check-in log
type LogController struct {
	checkins *services.CheckInService
	now      func() time.Time
}

// NewLogController creates a new log controller
func NewLogController(checkins *services.CheckInService) *LogController {
	return &LogController{checkins: checkins, now: time.Now}
}

// GetLogs returns log entries newest first (?device_id=, ?limit=)
func (lc *LogController) GetLogs(c *gin.Context) {
	deviceID, ok := queryID(c, "device_id")
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	logs, err := lc.checkins.ListLogs(c.Request.Context(), currentUser(c).ID, deviceID, limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Logs retrieved successfully", logs, len(logs))
}

// ExportLogs downloads the log entries as an XLSX workbook
func (lc *LogController) ExportLogs(c *gin.Context) {
	deviceID, ok := queryID(c, "device_id")
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	data, err := lc.checkins.ExportLogs(c.Request.Context(), currentUser(c).ID, deviceID, limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	filename := fmt.Sprintf("device_logs_%s.xlsx", lc.now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
