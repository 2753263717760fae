package notify

import (
	"context"
	"testing"

	"signage_server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduleChangedMessage(t *testing.T) {
	assert.Nil(t, scheduleChangedMessage(&models.Device{DeviceID: "dev-1"}, 4))
	assert.Nil(t, scheduleChangedMessage(nil, 4))

	msg := scheduleChangedMessage(&models.Device{DeviceID: "dev-1", PushToken: "fcm-token"}, 4)
	require.NotNil(t, msg)
	assert.Equal(t, "fcm-token", msg.Token)
	assert.Equal(t, "4", msg.Data["schedule_id"])
	assert.Equal(t, "dev-1", msg.Data["device_id"])
	assert.Equal(t, "schedule_changed", msg.Android.CollapseKey)
	assert.Nil(t, msg.Notification)
}

func TestLogNotifierNeverFails(t *testing.T) {
	n := LogNotifier{Logger: zap.NewNop()}
	assert.NoError(t, n.ScheduleChanged(context.Background(), &models.Device{DeviceID: "dev-1"}, 1))
}
