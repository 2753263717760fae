package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"signage_server/internal/apperr"
	"signage_server/internal/assets"
	"signage_server/internal/events"
	"signage_server/internal/models"
	"signage_server/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memAssets is an in-memory asset store
type memAssets struct {
	mu      sync.Mutex
	n       int
	blobs   map[string]string
	failPut bool
}

func newMemAssets() *memAssets { return &memAssets{blobs: map[string]string{}} }

func (a *memAssets) Put(_ context.Context, prefix string, up assets.Upload) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failPut {
		return "", errors.New("asset store down")
	}
	body, err := io.ReadAll(up.Body)
	if err != nil {
		return "", err
	}
	a.n++
	ref := prefix + "/" + up.Name + "#" + uintString(uint(a.n))
	a.blobs[ref] = string(body)
	return ref, nil
}

func (a *memAssets) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return "https://cdn.test/" + ref
}

func (a *memAssets) Delete(_ context.Context, ref string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.blobs, ref)
	return nil
}

func (a *memAssets) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.blobs)
}

// recordingNotifier remembers every hint
type recordingNotifier struct {
	mu    sync.Mutex
	hints []string
}

func (n *recordingNotifier) ScheduleChanged(_ context.Context, device *models.Device, scheduleID uint) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.hints = append(n.hints, device.DeviceID+":"+uintString(scheduleID))
	return nil
}

// recordingPublisher remembers every event and can be told to fail
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type testEnv struct {
	store     *repository.MemoryStore
	assets    *memAssets
	notifier  *recordingNotifier
	publisher *recordingPublisher
	catalog   *CatalogService
	schedules *ScheduleService
	resolver  *Resolver
	checkins  *CheckInService
	identity  *IdentityService
	tokens    *DeviceTokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	env := &testEnv{
		store:     repository.NewMemoryStore(),
		assets:    newMemAssets(),
		notifier:  &recordingNotifier{},
		publisher: &recordingPublisher{},
	}
	env.catalog = NewCatalogService(env.store, env.assets, logger)
	env.schedules = NewScheduleService(env.store, env.notifier, env.publisher, logger)
	env.resolver = NewResolver(env.store, env.catalog)
	env.checkins = NewCheckInService(env.store, env.catalog, env.resolver, env.publisher, logger)
	env.identity = NewIdentityService(env.store, time.Hour, logger)
	env.tokens = NewDeviceTokenService(env.store, "test-secret", time.Hour)
	return env
}

func (e *testEnv) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := e.identity.Register(context.Background(), &RegisterRequest{
		Username: name,
		Email:    name + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) device(t *testing.T, owner *models.User, deviceID string) *models.Device {
	t.Helper()
	d, err := e.catalog.CreateDevice(context.Background(), owner.ID, &CreateDeviceRequest{DeviceID: deviceID, Name: deviceID})
	require.NoError(t, err)
	return d
}

func (e *testEnv) media(t *testing.T, owner *models.User, title string) *models.Media {
	t.Helper()
	m, err := e.catalog.CreateMedia(context.Background(), owner.ID, &CreateMediaRequest{
		Title:     title,
		MediaType: models.MediaTypeImage,
		File:      &assets.Upload{Name: title + ".png", Body: stringsReader("img")},
	})
	require.NoError(t, err)
	return m
}

func (e *testEnv) playlist(t *testing.T, owner *models.User, name string, media ...*models.Media) *PlaylistDetail {
	t.Helper()
	ctx := context.Background()
	p, err := e.catalog.CreatePlaylist(ctx, owner.ID, &PlaylistRequest{Name: name})
	require.NoError(t, err)
	for _, m := range media {
		require.NoError(t, e.catalog.AddItem(ctx, owner.ID, p.ID, m.ID))
	}
	return p
}

func (e *testEnv) schedule(t *testing.T, owner *models.User, p *PlaylistDetail, d *models.Device, start, end time.Time) *models.Schedule {
	t.Helper()
	s, err := e.schedules.CreateSchedule(context.Background(), owner.ID, &ScheduleRequest{
		PlaylistID: p.ID,
		DeviceID:   d.ID,
		StartTime:  start,
		EndTime:    end,
	})
	require.NoError(t, err)
	return s
}

func clock(hour, minute int) time.Time {
	return time.Date(2026, 3, 1, hour, minute, 0, 0, time.UTC)
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperr.KindOf(err), "error: %v", err)
}

func stringsReader(s string) io.Reader { return strings.NewReader(s) }
