package services

import (
	"context"
	"strconv"
	"time"

	"signage_server/internal/apperr"
	"signage_server/internal/events"
	"signage_server/internal/models"
	"signage_server/internal/notify"
	"signage_server/internal/repository"

	"go.uber.org/zap"
)

// ScheduleService manages schedules. A schedule may only bind a playlist and a device
// that are both owned by its creator.
type ScheduleService struct {
	store     repository.Store
	notifier  notify.Notifier
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduleService creates a new schedule service
func NewScheduleService(store repository.Store, notifier notify.Notifier, publisher events.Publisher, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{
		store:     store,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// ScheduleRequest represents the request for creating or replacing a schedule
type ScheduleRequest struct {
	PlaylistID        uint      `json:"playlist" binding:"required"`
	DeviceID          uint      `json:"device" binding:"required"`
	StartTime         time.Time `json:"start_time" binding:"required"`
	EndTime           time.Time `json:"end_time" binding:"required"`
	IsRecurring       bool      `json:"is_recurring"`
	RecurrencePattern string    `json:"recurrence_pattern"`
	IsActive          *bool     `json:"is_active"`
}

// ScheduleListFilter narrows ListSchedules
type ScheduleListFilter struct {
	DeviceID *uint
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func validateScheduleWindow(req *ScheduleRequest) error {
	switch {
	case req.StartTime.IsZero() || req.EndTime.IsZero():
		return apperr.Validation("start_time and end_time are required")
	case req.EndTime.Before(req.StartTime):
		return apperr.Validation("end_time must not be before start_time").
			WithDetail("start_time", req.StartTime.Format(time.RFC3339)).
			WithDetail("end_time", req.EndTime.Format(time.RFC3339))
	case len(req.RecurrencePattern) > 100:
		return apperr.Validation("recurrence_pattern must be at most 100 characters")
	}
	return nil
}

// checkTargets verifies the caller owns both the playlist and the device; it returns the device
func (s *ScheduleService) checkTargets(ctx context.Context, callerID, playlistID, deviceID uint) (*models.Device, error) {
	playlist, err := s.store.Playlists().GetByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if playlist.OwnerID != callerID {
		return nil, apperr.PermissionDenied("you don't own this playlist")
	}
	device, err := s.store.Devices().GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if !device.OwnedBy(callerID) {
		return nil, apperr.PermissionDenied("you don't own this device")
	}
	return device, nil
}

// CreateSchedule binds a playlist to a device over [start_time, end_time]
func (s *ScheduleService) CreateSchedule(ctx context.Context, callerID uint, req *ScheduleRequest) (*models.Schedule, error) {
	if err := validateScheduleWindow(req); err != nil {
		return nil, err
	}
	device, err := s.checkTargets(ctx, callerID, req.PlaylistID, req.DeviceID)
	if err != nil {
		return nil, err
	}

	schedule := &models.Schedule{
		PlaylistID:        req.PlaylistID,
		DeviceID:          req.DeviceID,
		OwnerID:           callerID,
		StartTime:         req.StartTime.UTC(),
		EndTime:           req.EndTime.UTC(),
		IsRecurring:       req.IsRecurring,
		RecurrencePattern: req.RecurrencePattern,
		IsActive:          true,
	}
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}
	if err := s.store.Schedules().Create(ctx, schedule); err != nil {
		return nil, err
	}

	s.logger.Info("schedule created",
		zap.Uint("schedule", schedule.ID),
		zap.Uint("playlist", schedule.PlaylistID),
		zap.String("device_id", device.DeviceID),
		zap.Time("start_time", schedule.StartTime),
		zap.Time("end_time", schedule.EndTime),
	)
	s.changed(ctx, device, schedule.ID)
	return schedule, nil
}

// GetSchedule returns a schedule whose playlist the caller owns
func (s *ScheduleService) GetSchedule(ctx context.Context, callerID, id uint) (*models.Schedule, error) {
	schedule, err := s.store.Schedules().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	playlist, err := s.store.Playlists().GetByID(ctx, schedule.PlaylistID)
	if err != nil || playlist.OwnerID != callerID {
		return nil, apperr.NotFound("schedule not found")
	}
	return schedule, nil
}

// ListSchedules returns schedules over the caller's playlists
func (s *ScheduleService) ListSchedules(ctx context.Context, callerID uint, filter ScheduleListFilter) ([]models.Schedule, error) {
	return s.store.Schedules().ListByOwner(ctx, callerID, repository.ScheduleFilter{DeviceID: filter.DeviceID})
}

// UpdateSchedule replaces a schedule, re-checking ownership of the new targets and the window
func (s *ScheduleService) UpdateSchedule(ctx context.Context, callerID, id uint, req *ScheduleRequest) (*models.Schedule, error) {
	schedule, err := s.GetSchedule(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	if err := validateScheduleWindow(req); err != nil {
		return nil, err
	}
	device, err := s.checkTargets(ctx, callerID, req.PlaylistID, req.DeviceID)
	if err != nil {
		return nil, err
	}
	previousDevice := schedule.DeviceID

	schedule.PlaylistID = req.PlaylistID
	schedule.DeviceID = req.DeviceID
	schedule.StartTime = req.StartTime.UTC()
	schedule.EndTime = req.EndTime.UTC()
	schedule.IsRecurring = req.IsRecurring
	schedule.RecurrencePattern = req.RecurrencePattern
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}
	if err := s.store.Schedules().Update(ctx, schedule); err != nil {
		return nil, err
	}

	s.changed(ctx, device, schedule.ID)
	if previousDevice != device.ID {
		if old, err := s.store.Devices().GetByID(ctx, previousDevice); err == nil {
			s.changed(ctx, old, schedule.ID)
		}
	}
	return schedule, nil
}

// DeleteSchedule removes a schedule
func (s *ScheduleService) DeleteSchedule(ctx context.Context, callerID, id uint) error {
	schedule, err := s.GetSchedule(ctx, callerID, id)
	if err != nil {
		return err
	}
	if err := s.store.Schedules().Delete(ctx, id); err != nil {
		return err
	}
	if device, err := s.store.Devices().GetByID(ctx, schedule.DeviceID); err == nil {
		s.changed(ctx, device, id)
	}
	return nil
}

// changed pushes a refresh hint to the device and live subscribers; failures are only logged
func (s *ScheduleService) changed(ctx context.Context, device *models.Device, scheduleID uint) {
	if err := s.notifier.ScheduleChanged(ctx, device, scheduleID); err != nil {
		s.logger.Warn("failed to notify device of schedule change",
			zap.String("device_id", device.DeviceID),
			zap.Error(err),
		)
	}
	id := scheduleID
	ev := events.Event{
		Type:       events.TypeScheduleChanged,
		DeviceID:   device.DeviceID,
		DevicePK:   device.ID,
		OwnerID:    device.OwnerID,
		ScheduleID: &id,
		Timestamp:  s.now(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("failed to publish schedule change", zap.Error(err))
	}
}
