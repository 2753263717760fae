package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"signage_server/internal/apperr"
	"signage_server/internal/models"
)

type memState struct {
	nextID    uint
	users     map[uint]models.User
	devices   map[uint]models.Device
	media     map[uint]models.Media
	playlists map[uint]models.Playlist
	items     map[uint][]models.PlaylistItem // keyed by playlist id, ordered by position
	schedules map[uint]models.Schedule
	logs      []models.DeviceLog
}

func newMemState() *memState {
	return &memState{
		users:     map[uint]models.User{},
		devices:   map[uint]models.Device{},
		media:     map[uint]models.Media{},
		playlists: map[uint]models.Playlist{},
		items:     map[uint][]models.PlaylistItem{},
		schedules: map[uint]models.Schedule{},
	}
}

func (s *memState) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memState) clone() *memState {
	c := &memState{
		nextID:    s.nextID,
		users:     make(map[uint]models.User, len(s.users)),
		devices:   make(map[uint]models.Device, len(s.devices)),
		media:     make(map[uint]models.Media, len(s.media)),
		playlists: make(map[uint]models.Playlist, len(s.playlists)),
		items:     make(map[uint][]models.PlaylistItem, len(s.items)),
		schedules: make(map[uint]models.Schedule, len(s.schedules)),
		logs:      append([]models.DeviceLog(nil), s.logs...),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.devices {
		c.devices[k] = v
	}
	for k, v := range s.media {
		c.media[k] = v
	}
	for k, v := range s.playlists {
		c.playlists[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]models.PlaylistItem(nil), v...)
	}
	for k, v := range s.schedules {
		c.schedules[k] = v
	}
	return c
}

// MemoryStore is an in-process Store used by tests and the --memory dev mode.
// All operations are serialized by one mutex; Transaction holds it for the whole callback.
type MemoryStore struct {
	mu   *sync.Mutex
	st   **memState
	inTx bool
	now  func() time.Time
}

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	st := newMemState()
	return &MemoryStore{mu: &sync.Mutex{}, st: &st, now: time.Now}
}

func (m *MemoryStore) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *MemoryStore) state() *memState { return *m.st }

func (m *MemoryStore) Users() UserRepository           { return memUsers{m} }
func (m *MemoryStore) Devices() DeviceRepository       { return memDevices{m} }
func (m *MemoryStore) Media() MediaRepository          { return memMedia{m} }
func (m *MemoryStore) Playlists() PlaylistRepository   { return memPlaylists{m} }
func (m *MemoryStore) Schedules() ScheduleRepository   { return memSchedules{m} }
func (m *MemoryStore) DeviceLogs() DeviceLogRepository { return memDeviceLogs{m} }

// Transaction snapshots the state and restores it if fn fails
func (m *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	unlock := m.lock()
	defer unlock()

	snapshot := m.state().clone()
	tx := &MemoryStore{mu: m.mu, st: m.st, inTx: true, now: m.now}
	if err := fn(tx); err != nil {
		*m.st = snapshot
		return err
	}
	return nil
}

type memUsers struct{ m *MemoryStore }

func (r memUsers) Create(ctx context.Context, user *models.User) error {
	defer r.m.lock()()
	st := r.m.state()
	for _, u := range st.users {
		if u.Username == user.Username {
			return apperr.Conflict("user already exists")
		}
	}
	user.ID = st.id()
	now := r.m.now()
	user.CreatedAt, user.UpdatedAt = now, now
	st.users[user.ID] = *user
	return nil
}

func (r memUsers) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer r.m.lock()()
	u, ok := r.m.state().users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return &u, nil
}

func (r memUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	defer r.m.lock()()
	for _, u := range r.m.state().users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (r memUsers) GetByToken(ctx context.Context, token string) (*models.User, error) {
	defer r.m.lock()()
	for _, u := range r.m.state().users {
		if token != "" && u.Token == token {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (r memUsers) Update(ctx context.Context, user *models.User) error {
	defer r.m.lock()()
	st := r.m.state()
	if _, ok := st.users[user.ID]; !ok {
		return apperr.NotFound("user not found")
	}
	user.UpdatedAt = r.m.now()
	st.users[user.ID] = *user
	return nil
}

type memDevices struct{ m *MemoryStore }

func (r memDevices) Create(ctx context.Context, device *models.Device) error {
	defer r.m.lock()()
	st := r.m.state()
	for _, d := range st.devices {
		if d.DeviceID == device.DeviceID {
			return apperr.Conflict("device already exists")
		}
	}
	device.ID = st.id()
	now := r.m.now()
	device.CreatedAt, device.UpdatedAt = now, now
	st.devices[device.ID] = *device
	return nil
}

func (r memDevices) GetByID(ctx context.Context, id uint) (*models.Device, error) {
	defer r.m.lock()()
	d, ok := r.m.state().devices[id]
	if !ok {
		return nil, apperr.NotFound("device not found")
	}
	return &d, nil
}

func (r memDevices) GetByDeviceID(ctx context.Context, deviceID string) (*models.Device, error) {
	defer r.m.lock()()
	for _, d := range r.m.state().devices {
		if d.DeviceID == deviceID {
			return &d, nil
		}
	}
	return nil, apperr.NotFound("device not found")
}

func (r memDevices) ListByOwner(ctx context.Context, ownerID uint) ([]models.Device, error) {
	defer r.m.lock()()
	var out []models.Device
	for _, d := range r.m.state().devices {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memDevices) Update(ctx context.Context, device *models.Device) error {
	defer r.m.lock()()
	st := r.m.state()
	stored, ok := st.devices[device.ID]
	if !ok {
		return apperr.NotFound("device not found")
	}
	for id, d := range st.devices {
		if id != device.ID && d.DeviceID == device.DeviceID {
			return apperr.Conflict("device already exists")
		}
	}
	device.LastActive = stored.LastActive
	device.CreatedAt = stored.CreatedAt
	device.UpdatedAt = r.m.now()
	st.devices[device.ID] = *device
	return nil
}

func (r memDevices) Delete(ctx context.Context, id uint) error {
	defer r.m.lock()()
	st := r.m.state()
	if _, ok := st.devices[id]; !ok {
		return apperr.NotFound("device not found")
	}
	delete(st.devices, id)
	return nil
}

func (r memDevices) TouchLastActive(ctx context.Context, id uint, at time.Time) error {
	defer r.m.lock()()
	st := r.m.state()
	d, ok := st.devices[id]
	if !ok {
		return apperr.NotFound("device not found")
	}
	if d.LastActive.Before(at) {
		d.LastActive = at
		st.devices[id] = d
	}
	return nil
}

type memMedia struct{ m *MemoryStore }

func (r memMedia) Create(ctx context.Context, media *models.Media) error {
	defer r.m.lock()()
	st := r.m.state()
	media.ID = st.id()
	media.CreatedAt = r.m.now()
	st.media[media.ID] = *media
	return nil
}

func (r memMedia) GetByID(ctx context.Context, id uint) (*models.Media, error) {
	defer r.m.lock()()
	md, ok := r.m.state().media[id]
	if !ok {
		return nil, apperr.NotFound("media not found")
	}
	return &md, nil
}

func (r memMedia) GetMany(ctx context.Context, ids []uint) (map[uint]models.Media, error) {
	defer r.m.lock()()
	st := r.m.state()
	out := make(map[uint]models.Media, len(ids))
	for _, id := range ids {
		if md, ok := st.media[id]; ok {
			out[id] = md
		}
	}
	return out, nil
}

func (r memMedia) ListByOwner(ctx context.Context, ownerID uint) ([]models.Media, error) {
	defer r.m.lock()()
	var out []models.Media
	for _, md := range r.m.state().media {
		if md.OwnerID == ownerID {
			out = append(out, md)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memMedia) Update(ctx context.Context, media *models.Media) error {
	defer r.m.lock()()
	st := r.m.state()
	if _, ok := st.media[media.ID]; !ok {
		return apperr.NotFound("media not found")
	}
	st.media[media.ID] = *media
	return nil
}

func (r memMedia) Delete(ctx context.Context, id uint) error {
	defer r.m.lock()()
	st := r.m.state()
	if _, ok := st.media[id]; !ok {
		return apperr.NotFound("media not found")
	}
	delete(st.media, id)
	return nil
}

type memPlaylists struct{ m *MemoryStore }

func (r memPlaylists) Create(ctx context.Context, playlist *models.Playlist) error {
	defer r.m.lock()()
	st := r.m.state()
	playlist.ID = st.id()
	now := r.m.now()
	playlist.CreatedAt, playlist.UpdatedAt = now, now
	stored := *playlist
	stored.Items = nil
	st.playlists[playlist.ID] = stored
	return nil
}

func (r memPlaylists) GetByID(ctx context.Context, id uint) (*models.Playlist, error) {
	defer r.m.lock()()
	p, ok := r.m.state().playlists[id]
	if !ok {
		return nil, apperr.NotFound("playlist not found")
	}
	return &p, nil
}

func (r memPlaylists) ListByOwner(ctx context.Context, ownerID uint) ([]models.Playlist, error) {
	defer r.m.lock()()
	var out []models.Playlist
	for _, p := range r.m.state().playlists {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memPlaylists) Update(ctx context.Context, playlist *models.Playlist) error {
	defer r.m.lock()()
	st := r.m.state()
	if _, ok := st.playlists[playlist.ID]; !ok {
		return apperr.NotFound("playlist not found")
	}
	playlist.UpdatedAt = r.m.now()
	stored := *playlist
	stored.Items = nil
	st.playlists[playlist.ID] = stored
	return nil
}

func (r memPlaylists) Delete(ctx context.Context, id uint) error {
	defer r.m.lock()()
	st := r.m.state()
	if _, ok := st.playlists[id]; !ok {
		return apperr.NotFound("playlist not found")
	}
	delete(st.playlists, id)
	delete(st.items, id)
	return nil
}

func (r memPlaylists) ItemMediaIDs(ctx context.Context, playlistID uint) ([]uint, error) {
	defer r.m.lock()()
	items := r.m.state().items[playlistID]
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.MediaID)
	}
	return ids, nil
}

func (r memPlaylists) AppendItem(ctx context.Context, playlistID, mediaID uint) error {
	defer r.m.lock()()
	st := r.m.state()
	p, ok := st.playlists[playlistID]
	if !ok {
		return apperr.NotFound("playlist not found")
	}
	items := st.items[playlistID]
	pos := 0
	if n := len(items); n > 0 {
		pos = items[n-1].Position + 1
	}
	st.items[playlistID] = append(items, models.PlaylistItem{
		ID:         st.id(),
		PlaylistID: playlistID,
		MediaID:    mediaID,
		Position:   pos,
	})
	p.UpdatedAt = r.m.now()
	st.playlists[playlistID] = p
	return nil
}

func (r memPlaylists) RemoveLastItem(ctx context.Context, playlistID, mediaID uint) (bool, error) {
	defer r.m.lock()()
	st := r.m.state()
	items := st.items[playlistID]
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].MediaID != mediaID {
			continue
		}
		rest := make([]models.PlaylistItem, 0, len(items)-1)
		rest = append(rest, items[:i]...)
		rest = append(rest, items[i+1:]...)
		st.items[playlistID] = rest
		if p, ok := st.playlists[playlistID]; ok {
			p.UpdatedAt = r.m.now()
			st.playlists[playlistID] = p
		}
		return true, nil
	}
	return false, nil
}

func (r memPlaylists) RemoveMedia(ctx context.Context, mediaID uint) error {
	defer r.m.lock()()
	st := r.m.state()
	for pid, items := range st.items {
		kept := items[:0:0]
		for _, it := range items {
			if it.MediaID != mediaID {
				kept = append(kept, it)
			}
		}
		st.items[pid] = kept
	}
	return nil
}

type memSchedules struct{ m *MemoryStore }

func (r memSchedules) Create(ctx context.Context, schedule *models.Schedule) error {
	defer r.m.lock()()
	st := r.m.state()
	schedule.ID = st.id()
	now := r.m.now()
	schedule.CreatedAt, schedule.UpdatedAt = now, now
	st.schedules[schedule.ID] = *schedule
	return nil
}

func (r memSchedules) GetByID(ctx context.Context, id uint) (*models.Schedule, error) {
	defer r.m.lock()()
	s, ok := r.m.state().schedules[id]
	if !ok {
		return nil, apperr.NotFound("schedule not found")
	}
	return &s, nil
}

func (r memSchedules) ListByOwner(ctx context.Context, ownerID uint, filter ScheduleFilter) ([]models.Schedule, error) {
	defer r.m.lock()()
	st := r.m.state()
	var out []models.Schedule
	for _, s := range st.schedules {
		p, ok := st.playlists[s.PlaylistID]
		if !ok || p.OwnerID != ownerID {
			continue
		}
		if filter.DeviceID != nil && s.DeviceID != *filter.DeviceID {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memSchedules) Update(ctx context.Context, schedule *models.Schedule) error {
	defer r.m.lock()()
	st := r.m.state()
	if _, ok := st.schedules[schedule.ID]; !ok {
		return apperr.NotFound("schedule not found")
	}
	schedule.UpdatedAt = r.m.now()
	st.schedules[schedule.ID] = *schedule
	return nil
}

func (r memSchedules) Delete(ctx context.Context, id uint) error {
	defer r.m.lock()()
	st := r.m.state()
	if _, ok := st.schedules[id]; !ok {
		return apperr.NotFound("schedule not found")
	}
	delete(st.schedules, id)
	return nil
}

func (r memSchedules) DeleteByDevice(ctx context.Context, deviceID uint) error {
	defer r.m.lock()()
	st := r.m.state()
	for id, s := range st.schedules {
		if s.DeviceID == deviceID {
			delete(st.schedules, id)
		}
	}
	return nil
}

func (r memSchedules) DeleteByPlaylist(ctx context.Context, playlistID uint) error {
	defer r.m.lock()()
	st := r.m.state()
	for id, s := range st.schedules {
		if s.PlaylistID == playlistID {
			delete(st.schedules, id)
		}
	}
	return nil
}

func (r memSchedules) Candidates(ctx context.Context, deviceID uint, at time.Time) ([]models.Schedule, error) {
	defer r.m.lock()()
	var out []models.Schedule
	for _, s := range r.m.state().schedules {
		if s.DeviceID == deviceID && s.IsActive && s.Covers(at) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.After(out[j].StartTime)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

type memDeviceLogs struct{ m *MemoryStore }

func (r memDeviceLogs) Append(ctx context.Context, entry *models.DeviceLog) error {
	defer r.m.lock()()
	st := r.m.state()
	entry.ID = st.id()
	if entry.Details == nil {
		entry.Details = models.LogDetails{}
	}
	st.logs = append(st.logs, *entry)
	return nil
}

func newestFirst(logs []models.DeviceLog, limit int) []models.DeviceLog {
	sort.SliceStable(logs, func(i, j int) bool {
		if !logs[i].Timestamp.Equal(logs[j].Timestamp) {
			return logs[i].Timestamp.After(logs[j].Timestamp)
		}
		return logs[i].ID > logs[j].ID
	})
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs
}

func (r memDeviceLogs) ListByDevice(ctx context.Context, deviceID uint, limit int) ([]models.DeviceLog, error) {
	defer r.m.lock()()
	var out []models.DeviceLog
	for _, l := range r.m.state().logs {
		if l.DeviceID == deviceID {
			out = append(out, l)
		}
	}
	return newestFirst(out, limit), nil
}

func (r memDeviceLogs) ListByOwner(ctx context.Context, ownerID uint, limit int) ([]models.DeviceLog, error) {
	defer r.m.lock()()
	st := r.m.state()
	var out []models.DeviceLog
	for _, l := range st.logs {
		if d, ok := st.devices[l.DeviceID]; ok && d.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	return newestFirst(out, limit), nil
}

func (r memDeviceLogs) DeleteByDevice(ctx context.Context, deviceID uint) error {
	defer r.m.lock()()
	st := r.m.state()
	kept := st.logs[:0:0]
	for _, l := range st.logs {
		if l.DeviceID != deviceID {
			kept = append(kept, l)
		}
	}
	st.logs = kept
	return nil
}
