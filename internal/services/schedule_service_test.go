package services

import (
	"context"
	"testing"

	"signage_server/internal/apperr"
	"signage_server/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateScheduleRejectsCrossOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, bob := env.user(t, "alice"), env.user(t, "bob")
	aliceDev := env.device(t, alice, "dev-a")
	alicePl := env.playlist(t, alice, "A")
	bobDev := env.device(t, bob, "dev-b")
	bobPl := env.playlist(t, bob, "B")

	_, err := env.schedules.CreateSchedule(ctx, alice.ID, &ScheduleRequest{
		PlaylistID: bobPl.ID, DeviceID: aliceDev.ID, StartTime: clock(10, 0), EndTime: clock(12, 0),
	})
	requireKind(t, err, apperr.KindPermissionDenied)

	_, err = env.schedules.CreateSchedule(ctx, alice.ID, &ScheduleRequest{
		PlaylistID: alicePl.ID, DeviceID: bobDev.ID, StartTime: clock(10, 0), EndTime: clock(12, 0),
	})
	requireKind(t, err, apperr.KindPermissionDenied)

	_, err = env.schedules.CreateSchedule(ctx, alice.ID, &ScheduleRequest{
		PlaylistID: alicePl.ID, DeviceID: 999, StartTime: clock(10, 0), EndTime: clock(12, 0),
	})
	requireKind(t, err, apperr.KindNotFound)

	listed, _ := env.schedules.ListSchedules(ctx, alice.ID, ScheduleListFilter{})
	assert.Empty(t, listed)
}

func TestCreateScheduleValidatesWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	dev := env.device(t, alice, "dev-1")
	pl := env.playlist(t, alice, "A")

	_, err := env.schedules.CreateSchedule(ctx, alice.ID, &ScheduleRequest{
		PlaylistID: pl.ID, DeviceID: dev.ID, StartTime: clock(12, 0), EndTime: clock(10, 0),
	})
	requireKind(t, err, apperr.KindValidation)

	// a zero-length window is allowed
	s, err := env.schedules.CreateSchedule(ctx, alice.ID, &ScheduleRequest{
		PlaylistID: pl.ID, DeviceID: dev.ID, StartTime: clock(12, 0), EndTime: clock(12, 0),
	})
	require.NoError(t, err)
	assert.True(t, s.IsActive)
}

func TestScheduleChangesNotifyDevices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	dev1 := env.device(t, alice, "dev-1")
	dev2 := env.device(t, alice, "dev-2")
	pl := env.playlist(t, alice, "A")

	s := env.schedule(t, alice, pl, dev1, clock(10, 0), clock(12, 0))
	_, err := env.schedules.UpdateSchedule(ctx, alice.ID, s.ID, &ScheduleRequest{
		PlaylistID: pl.ID, DeviceID: dev2.ID, StartTime: clock(10, 0), EndTime: clock(13, 0),
	})
	require.NoError(t, err)
	require.NoError(t, env.schedules.DeleteSchedule(ctx, alice.ID, s.ID))

	id := uintString(s.ID)
	assert.Equal(t, []string{"dev-1:" + id, "dev-2:" + id, "dev-1:" + id, "dev-2:" + id}, env.notifier.hints)
	for _, ev := range env.publisher.events {
		assert.Equal(t, events.TypeScheduleChanged, ev.Type)
		assert.Equal(t, alice.ID, ev.OwnerID)
	}

	_, err = env.schedules.GetSchedule(ctx, alice.ID, s.ID)
	requireKind(t, err, apperr.KindNotFound)
}

func TestSchedulesAreScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, bob := env.user(t, "alice"), env.user(t, "bob")
	dev := env.device(t, alice, "dev-1")
	dev2 := env.device(t, alice, "dev-2")
	pl := env.playlist(t, alice, "A")
	s := env.schedule(t, alice, pl, dev, clock(10, 0), clock(12, 0))
	env.schedule(t, alice, pl, dev2, clock(10, 0), clock(12, 0))

	_, err := env.schedules.GetSchedule(ctx, bob.ID, s.ID)
	requireKind(t, err, apperr.KindNotFound)
	requireKind(t, env.schedules.DeleteSchedule(ctx, bob.ID, s.ID), apperr.KindNotFound)
	_, err = env.schedules.UpdateSchedule(ctx, bob.ID, s.ID, &ScheduleRequest{
		PlaylistID: pl.ID, DeviceID: dev.ID, StartTime: clock(10, 0), EndTime: clock(12, 0),
	})
	requireKind(t, err, apperr.KindNotFound)

	filtered, err := env.schedules.ListSchedules(ctx, alice.ID, ScheduleListFilter{DeviceID: &dev.ID})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, s.ID, filtered[0].ID)
}
