package services

import (
	"context"
	"strings"

	"signage_server/internal/apperr"
	"signage_server/internal/assets"
	"signage_server/internal/models"
	"signage_server/internal/repository"

	"go.uber.org/zap"
)

// CatalogService owns devices, media and playlists. Every lookup is scoped to the
// caller: rows owned by someone else are reported as not found.
type CatalogService struct {
	store  repository.Store
	assets assets.Store
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store repository.Store, assetStore assets.Store, logger *zap.Logger) *CatalogService {
	return &CatalogService{store: store, assets: assetStore, logger: logger}
}

// CreateDeviceRequest represents the request for registering a device
type CreateDeviceRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
	IsActive *bool  `json:"is_active"`
	Version  string `json:"version"`
}

// UpdateDeviceRequest represents a partial device update. device_id is immutable.
type UpdateDeviceRequest struct {
	DeviceID *string `json:"device_id"`
	Name     *string `json:"name"`
	Location *string `json:"location"`
	IsActive *bool   `json:"is_active"`
	Version  *string `json:"version"`
}

func validateDeviceFields(deviceID, name, location, version string) error {
	switch {
	case deviceID == "":
		return apperr.Validation("device_id is required")
	case len(deviceID) > 100:
		return apperr.Validation("device_id must be at most 100 characters")
	case name == "":
		return apperr.Validation("name is required")
	case len(name) > 100:
		return apperr.Validation("name must be at most 100 characters")
	case len(location) > 100:
		return apperr.Validation("location must be at most 100 characters")
	case len(version) > 20:
		return apperr.Validation("version must be at most 20 characters")
	}
	return nil
}

// CreateDevice registers a device for ownerID; device_id must be globally unique
func (s *CatalogService) CreateDevice(ctx context.Context, ownerID uint, req *CreateDeviceRequest) (*models.Device, error) {
	device := &models.Device{
		DeviceID: strings.TrimSpace(req.DeviceID),
		Name:     strings.TrimSpace(req.Name),
		Location: req.Location,
		OwnerID:  ownerID,
		IsActive: true,
		Version:  req.Version,
	}
	if req.IsActive != nil {
		device.IsActive = *req.IsActive
	}
	if err := validateDeviceFields(device.DeviceID, device.Name, device.Location, device.Version); err != nil {
		return nil, err
	}

	if err := s.store.Devices().Create(ctx, device); err != nil {
		return nil, err
	}
	s.logger.Info("device registered",
		zap.String("device_id", device.DeviceID),
		zap.Uint("owner", ownerID),
	)
	return device, nil
}

// GetDevice returns the device with primary key id if ownerID owns it
func (s *CatalogService) GetDevice(ctx context.Context, ownerID, id uint) (*models.Device, error) {
	device, err := s.store.Devices().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !device.OwnedBy(ownerID) {
		return nil, apperr.NotFound("device not found")
	}
	return device, nil
}

// ListDevices returns the caller's devices
func (s *CatalogService) ListDevices(ctx context.Context, ownerID uint) ([]models.Device, error) {
	return s.store.Devices().ListByOwner(ctx, ownerID)
}

// UpdateDevice applies a partial update
func (s *CatalogService) UpdateDevice(ctx context.Context, ownerID, id uint, req *UpdateDeviceRequest) (*models.Device, error) {
	device, err := s.GetDevice(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if req.DeviceID != nil && *req.DeviceID != device.DeviceID {
		return nil, apperr.Validation("device_id cannot be changed")
	}
	if req.Name != nil {
		device.Name = strings.TrimSpace(*req.Name)
	}
	if req.Location != nil {
		device.Location = *req.Location
	}
	if req.IsActive != nil {
		device.IsActive = *req.IsActive
	}
	if req.Version != nil {
		device.Version = *req.Version
	}
	if err := validateDeviceFields(device.DeviceID, device.Name, device.Location, device.Version); err != nil {
		return nil, err
	}

	if err := s.store.Devices().Update(ctx, device); err != nil {
		return nil, err
	}
	return device, nil
}

// SetPushToken stores the FCM registration token reported by the device itself
func (s *CatalogService) SetPushToken(ctx context.Context, device *models.Device, token string) error {
	if len(token) > 255 {
		return apperr.Validation("push token must be at most 255 characters")
	}
	current, err := s.store.Devices().GetByID(ctx, device.ID)
	if err != nil {
		return err
	}
	current.PushToken = token
	if err := s.store.Devices().Update(ctx, current); err != nil {
		return err
	}
	device.PushToken = token
	return nil
}

// DeleteDevice removes the device together with its schedules and logs in one transaction
func (s *CatalogService) DeleteDevice(ctx context.Context, ownerID, id uint) error {
	if _, err := s.GetDevice(ctx, ownerID, id); err != nil {
		return err
	}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Schedules().DeleteByDevice(ctx, id); err != nil {
			return err
		}
		if err := tx.DeviceLogs().DeleteByDevice(ctx, id); err != nil {
			return err
		}
		return tx.Devices().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("device deleted", zap.Uint("device", id), zap.Uint("owner", ownerID))
	return nil
}
