package controllers

import (
	"net/http"

	"signage_server/config"
	"signage_server/internal/apperr"
	"signage_server/internal/services"

	"github.com/gin-gonic/gin"
)

// ScheduleController handles schedule CRUD
type ScheduleController struct {
	schedules *services.ScheduleService
}

// NewScheduleController creates a new schedule controller
func NewScheduleController(schedules *services.ScheduleService) *ScheduleController {
	return &ScheduleController{schedules: schedules}
}

// scheduleBody accepts RFC3339 times as well as naive local times in the app timezone
type scheduleBody struct {
	PlaylistID        uint   `json:"playlist" binding:"required"`
	DeviceID          uint   `json:"device" binding:"required"`
	StartTime         string `json:"start_time" binding:"required"`
	EndTime           string `json:"end_time" binding:"required"`
	IsRecurring       bool   `json:"is_recurring"`
	RecurrencePattern string `json:"recurrence_pattern"`
	IsActive          *bool  `json:"is_active"`
}

func (b *scheduleBody) request() (*services.ScheduleRequest, error) {
	start, err := config.ParseTimeInTimezone(b.StartTime)
	if err != nil {
		return nil, apperr.Validation("start_time is not a valid datetime").WithDetail("start_time", b.StartTime)
	}
	end, err := config.ParseTimeInTimezone(b.EndTime)
	if err != nil {
		return nil, apperr.Validation("end_time is not a valid datetime").WithDetail("end_time", b.EndTime)
	}
	return &services.ScheduleRequest{
		PlaylistID:        b.PlaylistID,
		DeviceID:          b.DeviceID,
		StartTime:         start,
		EndTime:           end,
		IsRecurring:       b.IsRecurring,
		RecurrencePattern: b.RecurrencePattern,
		IsActive:          b.IsActive,
	}, nil
}

func bindSchedule(c *gin.Context) (*services.ScheduleRequest, bool) {
	var body scheduleBody
	if !bindJSON(c, &body) {
		return nil, false
	}
	req, err := body.request()
	if err != nil {
		RespondError(c, err)
		return nil, false
	}
	return req, true
}

// GetSchedules lists the caller's schedules, optionally for one device (?device_id=)
func (sc *ScheduleController) GetSchedules(c *gin.Context) {
	deviceID, ok := queryID(c, "device_id")
	if !ok {
		return
	}
	schedules, err := sc.schedules.ListSchedules(c.Request.Context(), currentUser(c).ID, services.ScheduleListFilter{DeviceID: deviceID})
	if err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Schedules retrieved successfully", schedules, len(schedules))
}

// GetSchedule returns one schedule
func (sc *ScheduleController) GetSchedule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	schedule, err := sc.schedules.GetSchedule(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Schedule retrieved successfully", schedule, 0)
}

// CreateSchedule binds a playlist to a device over a time window
func (sc *ScheduleController) CreateSchedule(c *gin.Context) {
	req, ok := bindSchedule(c)
	if !ok {
		return
	}
	schedule, err := sc.schedules.CreateSchedule(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Schedule created successfully", schedule, 0)
}

// UpdateSchedule replaces a schedule
func (sc *ScheduleController) UpdateSchedule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req, ok := bindSchedule(c)
	if !ok {
		return
	}
	schedule, err := sc.schedules.UpdateSchedule(c.Request.Context(), currentUser(c).ID, id, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Schedule updated successfully", schedule, 0)
}

// DeleteSchedule removes a schedule
func (sc *ScheduleController) DeleteSchedule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := sc.schedules.DeleteSchedule(c.Request.Context(), currentUser(c).ID, id); err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Schedule deleted successfully", nil, 0)
}
