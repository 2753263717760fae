package services

import (
	"context"
	"strings"
	"time"

	"signage_server/internal/apperr"
	"signage_server/internal/events"
	"signage_server/internal/models"
	"signage_server/internal/repository"

	"go.uber.org/zap"
)

// CheckInService records device activity and answers check-ins
type CheckInService struct {
	store     repository.Store
	catalog   *CatalogService
	resolver  *Resolver
	publisher events.Publisher
	logger    *zap.Logger
}

// NewCheckInService creates a new check-in service
func NewCheckInService(store repository.Store, catalog *CatalogService, resolver *Resolver, publisher events.Publisher, logger *zap.Logger) *CheckInService {
	return &CheckInService{
		store:     store,
		catalog:   catalog,
		resolver:  resolver,
		publisher: publisher,
		logger:    logger,
	}
}

// DeviceEventRequest represents an action reported by a device
type DeviceEventRequest struct {
	Action  string            `json:"action" binding:"required"`
	Details models.LogDetails `json:"details"`
}

// Record moves the device's last_active forward and appends one log entry, atomically.
// The entry is then published; publish failures are logged and do not fail the call.
func (s *CheckInService) Record(ctx context.Context, device *models.Device, action string, details models.LogDetails, at time.Time) (*models.DeviceLog, error) {
	action = strings.TrimSpace(action)
	switch {
	case action == "":
		return nil, apperr.Validation("action is required")
	case len(action) > 100:
		return nil, apperr.Validation("action must be at most 100 characters")
	}
	if details == nil {
		details = models.LogDetails{}
	}

	entry := &models.DeviceLog{
		DeviceID:  device.ID,
		Action:    action,
		Details:   details,
		Timestamp: at.UTC(),
	}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Devices().TouchLastActive(ctx, device.ID, entry.Timestamp); err != nil {
			return err
		}
		return tx.DeviceLogs().Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	if device.LastActive.Before(entry.Timestamp) {
		device.LastActive = entry.Timestamp
	}

	ev := events.Event{
		Type:      action,
		DeviceID:  device.DeviceID,
		DevicePK:  device.ID,
		OwnerID:   device.OwnerID,
		Details:   details,
		Timestamp: entry.Timestamp,
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("failed to publish device event",
			zap.String("device_id", device.DeviceID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
	return entry, nil
}

// CheckIn logs a check-in and then resolves what the device should play.
// The log entry is written even when the result is idle.
func (s *CheckInService) CheckIn(ctx context.Context, device *models.Device, details models.LogDetails, at time.Time) (*Resolution, error) {
	if _, err := s.Record(ctx, device, models.ActionCheckIn, details, at); err != nil {
		return nil, err
	}
	res, err := s.resolver.Resolve(ctx, device, at)
	if err != nil {
		return nil, err
	}
	fields := []zap.Field{
		zap.String("device_id", device.DeviceID),
		zap.String("status", res.Status),
	}
	if res.ScheduleID != nil {
		fields = append(fields, zap.Uint("schedule_id", *res.ScheduleID))
	}
	s.logger.Debug("device checked in", fields...)
	return res, nil
}

// CheckInOwned performs a check-in on behalf of the device's owner
func (s *CheckInService) CheckInOwned(ctx context.Context, ownerID, devicePK uint, details models.LogDetails, at time.Time) (*Resolution, error) {
	device, err := s.catalog.GetDevice(ctx, ownerID, devicePK)
	if err != nil {
		return nil, err
	}
	return s.CheckIn(ctx, device, details, at)
}

// ListLogs returns log entries newest first. With devicePK set only that device's
// entries are returned, and the device must belong to ownerID.
func (s *CheckInService) ListLogs(ctx context.Context, ownerID uint, devicePK *uint, limit int) ([]models.DeviceLog, error) {
	if devicePK != nil {
		if _, err := s.catalog.GetDevice(ctx, ownerID, *devicePK); err != nil {
			return nil, err
		}
		return s.store.DeviceLogs().ListByDevice(ctx, *devicePK, limit)
	}
	return s.store.DeviceLogs().ListByOwner(ctx, ownerID, limit)
}
