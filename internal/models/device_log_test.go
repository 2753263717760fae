package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogDetailsRejectsNestedValues(t *testing.T) {
	var details LogDetails
	err := json.Unmarshal([]byte(`{"ip":"10.0.0.4","screen":{"w":1920}}`), &details)
	require.Error(t, err)

	err = json.Unmarshal([]byte(`{"tags":["a","b"]}`), &details)
	require.Error(t, err)
}

func TestLogDetailsKeepsScalarKinds(t *testing.T) {
	var details LogDetails
	require.NoError(t, json.Unmarshal([]byte(`{"ip":"10.0.0.4","uptime":3600,"online":true,"note":null}`), &details))

	ip, ok := details["ip"].Str()
	assert.True(t, ok)
	assert.Equal(t, "10.0.0.4", ip)

	uptime, ok := details["uptime"].Num()
	assert.True(t, ok)
	assert.Equal(t, float64(3600), uptime)

	online, ok := details["online"].Flag()
	assert.True(t, ok)
	assert.True(t, online)

	assert.Equal(t, LogNull, details["note"].Kind())
	assert.Equal(t, []string{"ip", "note", "online", "uptime"}, details.Keys())
}

func TestLogDetailsDatabaseRoundTrip(t *testing.T) {
	in := LogDetails{"ip": String("192.168.1.20"), "retries": Int(2)}

	stored, err := in.Value()
	require.NoError(t, err)

	var out LogDetails
	require.NoError(t, out.Scan([]byte(stored.(string))))
	assert.Equal(t, "192.168.1.20", out["ip"].Text())
	assert.Equal(t, "2", out["retries"].Text())

	var empty LogDetails
	require.NoError(t, empty.Scan(nil))
	assert.NotNil(t, empty)
}

func TestScheduleCoversClosedWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	s := Schedule{StartTime: start, EndTime: end}

	assert.True(t, s.Covers(start))
	assert.True(t, s.Covers(end))
	assert.True(t, s.Covers(start.Add(time.Hour)))
	assert.False(t, s.Covers(start.Add(-time.Second)))
	assert.False(t, s.Covers(end.Add(time.Second)))
}

func TestMediaTypeValid(t *testing.T) {
	assert.True(t, MediaTypeVideo.Valid())
	assert.False(t, MediaType("audio").Valid())
	assert.False(t, MediaType("").Valid())
}
