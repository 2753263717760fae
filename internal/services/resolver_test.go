package services

import (
	"context"
	"testing"
	"time"

	"signage_server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectSchedule(t *testing.T) {
	sch := func(id uint, start, end time.Time, active bool) models.Schedule {
		return models.Schedule{ID: id, StartTime: start, EndTime: end, IsActive: active}
	}

	tests := []struct {
		name      string
		schedules []models.Schedule
		now       time.Time
		want      uint // 0 means idle
	}{
		{
			name: "no schedules",
			now:  clock(11, 0),
			want: 0,
		},
		{
			name:      "later start wins over older open window",
			schedules: []models.Schedule{sch(1, clock(10, 0), clock(12, 0), true), sch(2, clock(11, 0), clock(13, 0), true)},
			now:       clock(11, 30),
			want:      2,
		},
		{
			name:      "order of input does not matter",
			schedules: []models.Schedule{sch(2, clock(11, 0), clock(13, 0), true), sch(1, clock(10, 0), clock(12, 0), true)},
			now:       clock(11, 30),
			want:      2,
		},
		{
			name:      "nothing covers the instant",
			schedules: []models.Schedule{sch(1, clock(10, 0), clock(12, 0), true)},
			now:       clock(9, 0),
			want:      0,
		},
		{
			name:      "equal start times pick the highest id",
			schedules: []models.Schedule{sch(5, clock(11, 0), clock(12, 0), true), sch(9, clock(11, 0), clock(11, 45), true), sch(7, clock(11, 0), clock(13, 0), true)},
			now:       clock(11, 30),
			want:      9,
		},
		{
			name:      "inactive schedules are ignored",
			schedules: []models.Schedule{sch(1, clock(10, 0), clock(12, 0), true), sch(2, clock(11, 0), clock(13, 0), false)},
			now:       clock(11, 30),
			want:      1,
		},
		{
			name:      "window start is inclusive",
			schedules: []models.Schedule{sch(1, clock(10, 0), clock(12, 0), true)},
			now:       clock(10, 0),
			want:      1,
		},
		{
			name:      "window end is inclusive",
			schedules: []models.Schedule{sch(1, clock(10, 0), clock(12, 0), true)},
			now:       clock(12, 0),
			want:      1,
		},
		{
			name:      "recurrence does not extend the window",
			schedules: []models.Schedule{{ID: 1, StartTime: clock(10, 0), EndTime: clock(12, 0), IsActive: true, IsRecurring: true, RecurrencePattern: "daily"}},
			now:       clock(10, 30).Add(24 * time.Hour),
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectSchedule(tt.schedules, tt.now)
			if tt.want == 0 {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestResolveScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "alice")
	dev := env.device(t, owner, "dev-1")
	m1, m2 := env.media(t, owner, "one"), env.media(t, owner, "two")

	plA := env.playlist(t, owner, "A", m1)
	plB := env.playlist(t, owner, "B", m2, m1, m2)
	env.schedule(t, owner, plA, dev, clock(10, 0), clock(12, 0))
	b := env.schedule(t, owner, plB, dev, clock(11, 0), clock(13, 0))

	res, err := env.resolver.Resolve(ctx, dev, clock(11, 30))
	require.NoError(t, err)
	assert.Equal(t, StatusActive, res.Status)
	require.NotNil(t, res.ScheduleID)
	assert.Equal(t, b.ID, *res.ScheduleID)
	require.NotNil(t, res.Playlist)
	assert.Equal(t, plB.ID, res.Playlist.ID)

	titles := make([]string, 0, len(res.Playlist.Media))
	for _, m := range res.Playlist.Media {
		titles = append(titles, m.Title)
		assert.NotEmpty(t, m.FileURL)
	}
	assert.Equal(t, []string{"two", "one", "two"}, titles)

	idle, err := env.resolver.Resolve(ctx, dev, clock(9, 0))
	require.NoError(t, err)
	assert.True(t, idle.Idle())
	assert.Nil(t, idle.Playlist)
	assert.Nil(t, idle.ScheduleID)
}

func TestResolveIsIdempotentAndReadOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "alice")
	dev := env.device(t, owner, "dev-1")
	pl := env.playlist(t, owner, "A", env.media(t, owner, "one"))
	env.schedule(t, owner, pl, dev, clock(10, 0), clock(12, 0))

	first, err := env.resolver.Resolve(ctx, dev, clock(11, 0))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := env.resolver.Resolve(ctx, dev, clock(11, 0))
		require.NoError(t, err)
		assert.Equal(t, *first.ScheduleID, *again.ScheduleID)
		assert.Equal(t, first.Playlist.Media, again.Playlist.Media)
	}

	logs, err := env.store.DeviceLogs().ListByDevice(ctx, dev.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)
	stored, _ := env.store.Devices().GetByID(ctx, dev.ID)
	assert.True(t, stored.LastActive.IsZero())
}

func TestResolveIgnoresOtherDevices(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice")
	dev1 := env.device(t, owner, "dev-1")
	dev2 := env.device(t, owner, "dev-2")
	pl := env.playlist(t, owner, "A")
	env.schedule(t, owner, pl, dev2, clock(10, 0), clock(12, 0))

	res, err := env.resolver.Resolve(context.Background(), dev1, clock(11, 0))
	require.NoError(t, err)
	assert.True(t, res.Idle())
}
