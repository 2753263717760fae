package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"signage_server/internal/apperr"
	"signage_server/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on top of gorm (PostgreSQL in production)
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open gorm connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserRepository           { return gormUsers{s.db} }
func (s *GormStore) Devices() DeviceRepository       { return gormDevices{s.db} }
func (s *GormStore) Media() MediaRepository          { return gormMedia{s.db} }
func (s *GormStore) Playlists() PlaylistRepository   { return gormPlaylists{s.db} }
func (s *GormStore) Schedules() ScheduleRepository   { return gormSchedules{s.db} }
func (s *GormStore) DeviceLogs() DeviceLogRepository { return gormDeviceLogs{s.db} }

// Transaction runs fn inside a database transaction
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// translate maps gorm errors onto apperr kinds; what names the entity for messages
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("%s not found", what)
	case isUniqueViolation(err):
		return apperr.Conflict("%s already exists", what)
	default:
		return err
	}
}

type gormUsers struct{ db *gorm.DB }

func (r gormUsers) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error, "user")
}

func (r gormUsers) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (r gormUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (r gormUsers) GetByToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&user).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (r gormUsers) Update(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Save(user).Error, "user")
}

type gormDevices struct{ db *gorm.DB }

func (r gormDevices) Create(ctx context.Context, device *models.Device) error {
	return translate(r.db.WithContext(ctx).Create(device).Error, "device")
}

func (r gormDevices) GetByID(ctx context.Context, id uint) (*models.Device, error) {
	var device models.Device
	if err := r.db.WithContext(ctx).First(&device, id).Error; err != nil {
		return nil, translate(err, "device")
	}
	return &device, nil
}

func (r gormDevices) GetByDeviceID(ctx context.Context, deviceID string) (*models.Device, error) {
	var device models.Device
	if err := r.db.WithContext(ctx).Where("device_id = ?", deviceID).First(&device).Error; err != nil {
		return nil, translate(err, "device")
	}
	return &device, nil
}

func (r gormDevices) ListByOwner(ctx context.Context, ownerID uint) ([]models.Device, error) {
	var devices []models.Device
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").Find(&devices).Error
	return devices, err
}

// Update writes every column except last_active, which only TouchLastActive moves
func (r gormDevices) Update(ctx context.Context, device *models.Device) error {
	res := r.db.WithContext(ctx).Model(device).Select("*").Omit("last_active", "created_at").Updates(device)
	if res.Error != nil {
		return translate(res.Error, "device")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("device not found")
	}
	return nil
}

func (r gormDevices) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Device{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("device not found")
	}
	return nil
}

func (r gormDevices) TouchLastActive(ctx context.Context, id uint, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Device{}).
		Where("id = ? AND (last_active IS NULL OR last_active < ?)", id, at).
		Update("last_active", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var exists int64
	if err := r.db.WithContext(ctx).Model(&models.Device{}).Where("id = ?", id).Count(&exists).Error; err != nil {
		return err
	}
	if exists == 0 {
		return apperr.NotFound("device not found")
	}
	return nil
}

type gormMedia struct{ db *gorm.DB }

func (r gormMedia) Create(ctx context.Context, media *models.Media) error {
	return translate(r.db.WithContext(ctx).Create(media).Error, "media")
}

func (r gormMedia) GetByID(ctx context.Context, id uint) (*models.Media, error) {
	var media models.Media
	if err := r.db.WithContext(ctx).First(&media, id).Error; err != nil {
		return nil, translate(err, "media")
	}
	return &media, nil
}

func (r gormMedia) GetMany(ctx context.Context, ids []uint) (map[uint]models.Media, error) {
	out := make(map[uint]models.Media, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Media
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, m := range rows {
		out[m.ID] = m
	}
	return out, nil
}

func (r gormMedia) ListByOwner(ctx context.Context, ownerID uint) ([]models.Media, error) {
	var media []models.Media
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").Find(&media).Error
	return media, err
}

func (r gormMedia) Update(ctx context.Context, media *models.Media) error {
	return translate(r.db.WithContext(ctx).Save(media).Error, "media")
}

func (r gormMedia) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Media{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("media not found")
	}
	return nil
}

type gormPlaylists struct{ db *gorm.DB }

func (r gormPlaylists) Create(ctx context.Context, playlist *models.Playlist) error {
	return translate(r.db.WithContext(ctx).Omit("Items").Create(playlist).Error, "playlist")
}

func (r gormPlaylists) GetByID(ctx context.Context, id uint) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := r.db.WithContext(ctx).First(&playlist, id).Error; err != nil {
		return nil, translate(err, "playlist")
	}
	return &playlist, nil
}

func (r gormPlaylists) ListByOwner(ctx context.Context, ownerID uint) ([]models.Playlist, error) {
	var playlists []models.Playlist
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").Find(&playlists).Error
	return playlists, err
}

func (r gormPlaylists) Update(ctx context.Context, playlist *models.Playlist) error {
	return translate(r.db.WithContext(ctx).Omit("Items").Save(playlist).Error, "playlist")
}

func (r gormPlaylists) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", id).Delete(&models.PlaylistItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Playlist{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("playlist not found")
		}
		return nil
	})
}

func (r gormPlaylists) ItemMediaIDs(ctx context.Context, playlistID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.PlaylistItem{}).
		Where("playlist_id = ?", playlistID).
		Order("position").
		Pluck("media_id", &ids).Error
	return ids, err
}

func (r gormPlaylists) AppendItem(ctx context.Context, playlistID, mediaID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serialize appends on the same playlist so positions stay unique.
		var playlist models.Playlist
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&playlist, playlistID).Error; err != nil {
			return translate(err, "playlist")
		}
		var last int
		if err := tx.Model(&models.PlaylistItem{}).
			Where("playlist_id = ?", playlistID).
			Select("COALESCE(MAX(position), -1)").
			Scan(&last).Error; err != nil {
			return err
		}
		item := models.PlaylistItem{PlaylistID: playlistID, MediaID: mediaID, Position: last + 1}
		if err := tx.Create(&item).Error; err != nil {
			return translate(err, "playlist item")
		}
		return tx.Model(&playlist).Update("updated_at", time.Now()).Error
	})
}

func (r gormPlaylists) RemoveLastItem(ctx context.Context, playlistID, mediaID uint) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.PlaylistItem
		err := tx.Where("playlist_id = ? AND media_id = ?", playlistID, mediaID).
			Order("position DESC").
			First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Delete(&item).Error; err != nil {
			return err
		}
		removed = true
		return tx.Model(&models.Playlist{}).Where("id = ?", playlistID).Update("updated_at", time.Now()).Error
	})
	return removed, err
}

func (r gormPlaylists) RemoveMedia(ctx context.Context, mediaID uint) error {
	return r.db.WithContext(ctx).Where("media_id = ?", mediaID).Delete(&models.PlaylistItem{}).Error
}

type gormSchedules struct{ db *gorm.DB }

func (r gormSchedules) Create(ctx context.Context, schedule *models.Schedule) error {
	return translate(r.db.WithContext(ctx).Create(schedule).Error, "schedule")
}

func (r gormSchedules) GetByID(ctx context.Context, id uint) (*models.Schedule, error) {
	var schedule models.Schedule
	if err := r.db.WithContext(ctx).First(&schedule, id).Error; err != nil {
		return nil, translate(err, "schedule")
	}
	return &schedule, nil
}

func (r gormSchedules) ListByOwner(ctx context.Context, ownerID uint, filter ScheduleFilter) ([]models.Schedule, error) {
	q := r.db.WithContext(ctx).
		Joins("JOIN playlists ON playlists.id = schedules.playlist_id").
		Where("playlists.owner_id = ?", ownerID)
	if filter.DeviceID != nil {
		q = q.Where("schedules.device_id = ?", *filter.DeviceID)
	}
	var schedules []models.Schedule
	err := q.Order("schedules.start_time, schedules.id").Find(&schedules).Error
	return schedules, err
}

func (r gormSchedules) Update(ctx context.Context, schedule *models.Schedule) error {
	return translate(r.db.WithContext(ctx).Save(schedule).Error, "schedule")
}

func (r gormSchedules) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Schedule{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("schedule not found")
	}
	return nil
}

func (r gormSchedules) DeleteByDevice(ctx context.Context, deviceID uint) error {
	return r.db.WithContext(ctx).Where("device_id = ?", deviceID).Delete(&models.Schedule{}).Error
}

func (r gormSchedules) DeleteByPlaylist(ctx context.Context, playlistID uint) error {
	return r.db.WithContext(ctx).Where("playlist_id = ?", playlistID).Delete(&models.Schedule{}).Error
}

func (r gormSchedules) Candidates(ctx context.Context, deviceID uint, at time.Time) ([]models.Schedule, error) {
	var schedules []models.Schedule
	err := r.db.WithContext(ctx).
		Where("device_id = ? AND is_active = ? AND start_time <= ? AND end_time >= ?", deviceID, true, at, at).
		Order("start_time DESC, id DESC").
		Find(&schedules).Error
	return schedules, err
}

type gormDeviceLogs struct{ db *gorm.DB }

func (r gormDeviceLogs) Append(ctx context.Context, entry *models.DeviceLog) error {
	if entry.Details == nil {
		entry.Details = models.LogDetails{}
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r gormDeviceLogs) ListByDevice(ctx context.Context, deviceID uint, limit int) ([]models.DeviceLog, error) {
	q := r.db.WithContext(ctx).Where("device_id = ?", deviceID).Order("timestamp DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var logs []models.DeviceLog
	err := q.Find(&logs).Error
	return logs, err
}

func (r gormDeviceLogs) ListByOwner(ctx context.Context, ownerID uint, limit int) ([]models.DeviceLog, error) {
	q := r.db.WithContext(ctx).
		Joins("JOIN devices ON devices.id = device_logs.device_id").
		Where("devices.owner_id = ?", ownerID).
		Order("device_logs.timestamp DESC, device_logs.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var logs []models.DeviceLog
	err := q.Find(&logs).Error
	return logs, err
}

func (r gormDeviceLogs) DeleteByDevice(ctx context.Context, deviceID uint) error {
	return r.db.WithContext(ctx).Where("device_id = ?", deviceID).Delete(&models.DeviceLog{}).Error
}
