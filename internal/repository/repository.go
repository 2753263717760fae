// Package repository is the data-access boundary. Lookups return apperr.NotFound for
// missing rows and writes return apperr.Conflict for duplicate unique keys.
package repository

import (
	"context"
	"time"

	"signage_server/internal/models"
)

// UserRepository stores operator accounts
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByToken(ctx context.Context, token string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// DeviceRepository stores playback devices
type DeviceRepository interface {
	Create(ctx context.Context, device *models.Device) error
	GetByID(ctx context.Context, id uint) (*models.Device, error)
	GetByDeviceID(ctx context.Context, deviceID string) (*models.Device, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Device, error)
	Update(ctx context.Context, device *models.Device) error
	Delete(ctx context.Context, id uint) error
	// TouchLastActive moves last_active forward to at; an older at leaves it unchanged.
	TouchLastActive(ctx context.Context, id uint, at time.Time) error
}

// MediaRepository stores media metadata
type MediaRepository interface {
	Create(ctx context.Context, media *models.Media) error
	GetByID(ctx context.Context, id uint) (*models.Media, error)
	GetMany(ctx context.Context, ids []uint) (map[uint]models.Media, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Media, error)
	Update(ctx context.Context, media *models.Media) error
	Delete(ctx context.Context, id uint) error
}

// PlaylistRepository stores playlists and their ordered item sequences
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *models.Playlist) error
	GetByID(ctx context.Context, id uint) (*models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Playlist, error)
	Update(ctx context.Context, playlist *models.Playlist) error
	Delete(ctx context.Context, id uint) error

	// ItemMediaIDs returns the media ids of the playlist in playback order
	ItemMediaIDs(ctx context.Context, playlistID uint) ([]uint, error)
	AppendItem(ctx context.Context, playlistID, mediaID uint) error
	// RemoveLastItem deletes the last occurrence of mediaID and reports whether one existed
	RemoveLastItem(ctx context.Context, playlistID, mediaID uint) (bool, error)
	// RemoveMedia deletes every occurrence of mediaID from every playlist
	RemoveMedia(ctx context.Context, mediaID uint) error
}

// ScheduleFilter narrows ListByOwner
type ScheduleFilter struct {
	DeviceID *uint
}

// ScheduleRepository stores schedules
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *models.Schedule) error
	GetByID(ctx context.Context, id uint) (*models.Schedule, error)
	ListByOwner(ctx context.Context, ownerID uint, filter ScheduleFilter) ([]models.Schedule, error)
	Update(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id uint) error
	DeleteByDevice(ctx context.Context, deviceID uint) error
	DeleteByPlaylist(ctx context.Context, playlistID uint) error

	// Candidates returns the active schedules of deviceID whose window contains at
	Candidates(ctx context.Context, deviceID uint, at time.Time) ([]models.Schedule, error)
}

// DeviceLogRepository is the append-only check-in log
type DeviceLogRepository interface {
	Append(ctx context.Context, entry *models.DeviceLog) error
	// ListByDevice returns entries newest first; limit <= 0 means no limit
	ListByDevice(ctx context.Context, deviceID uint, limit int) ([]models.DeviceLog, error)
	// ListByOwner returns entries of every device owned by ownerID, newest first
	ListByOwner(ctx context.Context, ownerID uint, limit int) ([]models.DeviceLog, error)
	DeleteByDevice(ctx context.Context, deviceID uint) error
}

// Store groups the repositories and runs multi-entity writes atomically
type Store interface {
	Users() UserRepository
	Devices() DeviceRepository
	Media() MediaRepository
	Playlists() PlaylistRepository
	Schedules() ScheduleRepository
	DeviceLogs() DeviceLogRepository

	// Transaction runs fn against a store bound to one transaction.
	// fn returning an error rolls back every write made through the bound store.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
