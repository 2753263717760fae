package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"signage_server/internal/apperr"
	"signage_server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture holds the rows every contract case starts from
type fixture struct {
	owner, other        *models.User
	device, otherDevice *models.Device
	playlist            *models.Playlist
	mediaA, mediaB      *models.Media
}

func unique(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

func seed(t *testing.T, store Store) fixture {
	t.Helper()
	ctx := context.Background()

	var f fixture
	f.owner = &models.User{Username: unique("owner"), Email: "owner@example.com"}
	require.NoError(t, f.owner.SetPassword("secret123"))
	require.NoError(t, store.Users().Create(ctx, f.owner))

	f.other = &models.User{Username: unique("other"), Email: "other@example.com", Password: "x"}
	require.NoError(t, store.Users().Create(ctx, f.other))

	f.device = &models.Device{DeviceID: unique("dev"), Name: "Lobby", OwnerID: f.owner.ID, IsActive: true}
	require.NoError(t, store.Devices().Create(ctx, f.device))

	f.otherDevice = &models.Device{DeviceID: unique("dev"), Name: "Elsewhere", OwnerID: f.other.ID, IsActive: true}
	require.NoError(t, store.Devices().Create(ctx, f.otherDevice))

	f.playlist = &models.Playlist{Name: "Morning", OwnerID: f.owner.ID, IsActive: true}
	require.NoError(t, store.Playlists().Create(ctx, f.playlist))

	f.mediaA = &models.Media{OwnerID: f.owner.ID, Title: "A", MediaType: models.MediaTypeImage, File: "a.png", Duration: 10}
	f.mediaB = &models.Media{OwnerID: f.owner.ID, Title: "B", MediaType: models.MediaTypeVideo, File: "b.mp4", Duration: 30}
	require.NoError(t, store.Media().Create(ctx, f.mediaA))
	require.NoError(t, store.Media().Create(ctx, f.mediaB))
	return f
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 1, hour, minute, 0, 0, time.UTC)
}

// runStoreContract checks the behaviour every Store implementation must share
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("unique keys conflict", func(t *testing.T) {
		store := newStore(t)
		f := seed(t, store)
		ctx := context.Background()

		dup := &models.Device{DeviceID: f.device.DeviceID, Name: "Copy", OwnerID: f.other.ID}
		err := store.Devices().Create(ctx, dup)
		assert.True(t, errors.Is(err, apperr.ErrConflict), "got %v", err)

		dupUser := &models.User{Username: f.owner.Username, Email: "x@example.com", Password: "x"}
		err = store.Users().Create(ctx, dupUser)
		assert.True(t, errors.Is(err, apperr.ErrConflict), "got %v", err)
	})

	t.Run("missing rows are not found", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Devices().GetByDeviceID(ctx, unique("ghost"))
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
		_, err = store.Schedules().GetByID(ctx, 999999)
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
		assert.True(t, errors.Is(store.Media().Delete(ctx, 999999), apperr.ErrNotFound))
		assert.True(t, errors.Is(store.Devices().TouchLastActive(ctx, 999999, at(9, 0)), apperr.ErrNotFound))
	})

	t.Run("last active only moves forward", func(t *testing.T) {
		store := newStore(t)
		f := seed(t, store)
		ctx := context.Background()

		require.NoError(t, store.Devices().TouchLastActive(ctx, f.device.ID, at(11, 0)))
		require.NoError(t, store.Devices().TouchLastActive(ctx, f.device.ID, at(10, 0)))

		got, err := store.Devices().GetByID(ctx, f.device.ID)
		require.NoError(t, err)
		assert.True(t, got.LastActive.Equal(at(11, 0)), "last_active = %v", got.LastActive)
	})

	t.Run("device update keeps a newer last active", func(t *testing.T) {
		store := newStore(t)
		f := seed(t, store)
		ctx := context.Background()

		stale, err := store.Devices().GetByID(ctx, f.device.ID)
		require.NoError(t, err)
		require.NoError(t, store.Devices().TouchLastActive(ctx, f.device.ID, at(12, 0)))

		stale.Name = "Renamed"
		require.NoError(t, store.Devices().Update(ctx, stale))

		got, err := store.Devices().GetByID(ctx, f.device.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
		assert.True(t, got.LastActive.Equal(at(12, 0)), "last_active = %v", got.LastActive)
	})

	t.Run("playlist items keep order and duplicates", func(t *testing.T) {
		store := newStore(t)
		f := seed(t, store)
		ctx := context.Background()
		pl := store.Playlists()

		require.NoError(t, pl.AppendItem(ctx, f.playlist.ID, f.mediaA.ID))
		require.NoError(t, pl.AppendItem(ctx, f.playlist.ID, f.mediaB.ID))
		require.NoError(t, pl.AppendItem(ctx, f.playlist.ID, f.mediaA.ID))

		ids, err := pl.ItemMediaIDs(ctx, f.playlist.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{f.mediaA.ID, f.mediaB.ID, f.mediaA.ID}, ids)

		removed, err := pl.RemoveLastItem(ctx, f.playlist.ID, f.mediaA.ID)
		require.NoError(t, err)
		assert.True(t, removed)
		ids, _ = pl.ItemMediaIDs(ctx, f.playlist.ID)
		assert.Equal(t, []uint{f.mediaA.ID, f.mediaB.ID}, ids)

		removed, err = pl.RemoveLastItem(ctx, f.playlist.ID, 999999)
		require.NoError(t, err)
		assert.False(t, removed)

		require.NoError(t, pl.AppendItem(ctx, f.playlist.ID, f.mediaB.ID))
		require.NoError(t, pl.RemoveMedia(ctx, f.mediaB.ID))
		ids, _ = pl.ItemMediaIDs(ctx, f.playlist.ID)
		assert.Equal(t, []uint{f.mediaA.ID}, ids)

		err = pl.AppendItem(ctx, 999999, f.mediaA.ID)
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
	})

	t.Run("candidates are active covering windows newest start first", func(t *testing.T) {
		store := newStore(t)
		f := seed(t, store)
		ctx := context.Background()
		sch := store.Schedules()

		mk := func(start, end time.Time, active bool) *models.Schedule {
			s := &models.Schedule{
				PlaylistID: f.playlist.ID, DeviceID: f.device.ID, OwnerID: f.owner.ID,
				StartTime: start, EndTime: end, IsActive: active,
			}
			require.NoError(t, sch.Create(ctx, s))
			return s
		}
		a := mk(at(10, 0), at(12, 0), true)
		b := mk(at(11, 0), at(13, 0), true)
		mk(at(11, 15), at(12, 0), false)
		tie := mk(at(11, 0), at(11, 45), true)

		got, err := sch.Candidates(ctx, f.device.ID, at(11, 30))
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []uint{tie.ID, b.ID, a.ID}, []uint{got[0].ID, got[1].ID, got[2].ID})

		// closed window: both ends count
		got, _ = sch.Candidates(ctx, f.device.ID, at(13, 0))
		require.Len(t, got, 1)
		assert.Equal(t, b.ID, got[0].ID)
		got, _ = sch.Candidates(ctx, f.device.ID, at(10, 0))
		require.Len(t, got, 1)
		assert.Equal(t, a.ID, got[0].ID)

		got, _ = sch.Candidates(ctx, f.device.ID, at(9, 0))
		assert.Empty(t, got)
		got, _ = sch.Candidates(ctx, f.otherDevice.ID, at(11, 30))
		assert.Empty(t, got)

		listed, err := sch.ListByOwner(ctx, f.owner.ID, ScheduleFilter{DeviceID: &f.device.ID})
		require.NoError(t, err)
		assert.Len(t, listed, 4)
		listed, _ = sch.ListByOwner(ctx, f.other.ID, ScheduleFilter{})
		assert.Empty(t, listed)

		require.NoError(t, sch.DeleteByPlaylist(ctx, f.playlist.ID))
		listed, _ = sch.ListByOwner(ctx, f.owner.ID, ScheduleFilter{})
		assert.Empty(t, listed)
	})

	t.Run("logs list newest first scoped to owner", func(t *testing.T) {
		store := newStore(t)
		f := seed(t, store)
		ctx := context.Background()
		logs := store.DeviceLogs()

		for i, ts := range []time.Time{at(10, 0), at(12, 0), at(11, 0), at(12, 0)} {
			require.NoError(t, logs.Append(ctx, &models.DeviceLog{
				DeviceID:  f.device.ID,
				Action:    models.ActionCheckIn,
				Details:   models.LogDetails{"seq": models.Int(int64(i))},
				Timestamp: ts,
			}))
		}
		require.NoError(t, logs.Append(ctx, &models.DeviceLog{
			DeviceID: f.otherDevice.ID, Action: models.ActionCheckIn, Timestamp: at(12, 30),
		}))

		got, err := logs.ListByDevice(ctx, f.device.ID, 0)
		require.NoError(t, err)
		require.Len(t, got, 4)
		seq := func(l models.DeviceLog) float64 { n, _ := l.Details["seq"].Num(); return n }
		assert.Equal(t, []float64{3, 1, 2, 0}, []float64{seq(got[0]), seq(got[1]), seq(got[2]), seq(got[3])})

		got, _ = logs.ListByDevice(ctx, f.device.ID, 2)
		assert.Len(t, got, 2)

		owned, err := logs.ListByOwner(ctx, f.owner.ID, 0)
		require.NoError(t, err)
		assert.Len(t, owned, 4)
		for _, l := range owned {
			assert.Equal(t, f.device.ID, l.DeviceID)
		}

		require.NoError(t, logs.DeleteByDevice(ctx, f.device.ID))
		got, _ = logs.ListByDevice(ctx, f.device.ID, 0)
		assert.Empty(t, got)
	})

	t.Run("failed transaction rolls back", func(t *testing.T) {
		store := newStore(t)
		f := seed(t, store)
		ctx := context.Background()
		boom := errors.New("boom")
		deviceID := unique("tx")

		err := store.Transaction(ctx, func(tx Store) error {
			if err := tx.Devices().Create(ctx, &models.Device{DeviceID: deviceID, Name: "tx", OwnerID: f.owner.ID}); err != nil {
				return err
			}
			if err := tx.DeviceLogs().Append(ctx, &models.DeviceLog{DeviceID: f.device.ID, Action: models.ActionCheckIn, Timestamp: at(9, 0)}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = store.Devices().GetByDeviceID(ctx, deviceID)
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
		got, _ := store.DeviceLogs().ListByDevice(ctx, f.device.ID, 0)
		assert.Empty(t, got)

		require.NoError(t, store.Transaction(ctx, func(tx Store) error {
			return tx.Devices().TouchLastActive(ctx, f.device.ID, at(9, 0))
		}))
		dev, _ := store.Devices().GetByID(ctx, f.device.ID)
		assert.True(t, dev.LastActive.Equal(at(9, 0)))
	})
}
