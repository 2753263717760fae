package services

import (
	"context"
	"time"

	"signage_server/internal/models"
	"signage_server/internal/repository"
)

// Resolution statuses
const (
	StatusActive = "active"
	StatusIdle   = "idle"
)

// Resolution is the answer to "what should this device be playing now"
type Resolution struct {
	Status     string          `json:"status"`
	Playlist   *PlaylistDetail `json:"playlist,omitempty"`
	ScheduleID *uint           `json:"schedule_id,omitempty"`

	Schedule *models.Schedule `json:"-"`
}

// Idle reports whether no schedule governs the device
func (r *Resolution) Idle() bool {
	return r.Status == StatusIdle
}

// SelectSchedule returns the schedule governing playback at now: among the active
// schedules whose closed window contains now, the one that started last, with the
// highest id breaking ties on equal start times. It returns nil when none applies.
func SelectSchedule(schedules []models.Schedule, now time.Time) *models.Schedule {
	var best *models.Schedule
	for i := range schedules {
		s := &schedules[i]
		if !s.IsActive || !s.Covers(now) {
			continue
		}
		if best == nil ||
			s.StartTime.After(best.StartTime) ||
			(s.StartTime.Equal(best.StartTime) && s.ID > best.ID) {
			best = s
		}
	}
	return best
}

// Resolver answers playback questions. It only reads.
type Resolver struct {
	store   repository.Store
	catalog *CatalogService
}

// NewResolver creates a resolver that hydrates playlists through catalog
func NewResolver(store repository.Store, catalog *CatalogService) *Resolver {
	return &Resolver{store: store, catalog: catalog}
}

// Resolve selects the schedule for device at now and hydrates its playlist
func (r *Resolver) Resolve(ctx context.Context, device *models.Device, now time.Time) (*Resolution, error) {
	candidates, err := r.store.Schedules().Candidates(ctx, device.ID, now)
	if err != nil {
		return nil, err
	}
	schedule := SelectSchedule(candidates, now)
	if schedule == nil {
		return &Resolution{Status: StatusIdle}, nil
	}

	playlist, err := r.store.Playlists().GetByID(ctx, schedule.PlaylistID)
	if err != nil {
		return nil, err
	}
	detail, err := r.catalog.Hydrate(ctx, playlist)
	if err != nil {
		return nil, err
	}
	id := schedule.ID
	return &Resolution{
		Status:     StatusActive,
		Playlist:   detail,
		ScheduleID: &id,
		Schedule:   schedule,
	}, nil
}
