// Package notify pushes refresh hints to devices so they check in before their next poll.
package notify

import (
	"context"
	"fmt"
	"strconv"

	"signage_server/internal/models"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Notifier tells a device that its schedules changed
type Notifier interface {
	ScheduleChanged(ctx context.Context, device *models.Device, scheduleID uint) error
}

// LogNotifier only logs the hint; used when FCM is not configured
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) ScheduleChanged(_ context.Context, device *models.Device, scheduleID uint) error {
	n.Logger.Debug("schedule change hint not delivered, push disabled",
		zap.String("device_id", device.DeviceID),
		zap.Uint("schedule_id", scheduleID),
	)
	return nil
}

// FCMNotifier delivers hints as data-only Firebase Cloud Messaging messages
type FCMNotifier struct {
	client *messaging.Client
	logger *zap.Logger
}

// NewFCMNotifier initializes Firebase from a service account file
func NewFCMNotifier(ctx context.Context, credentialsFile, projectID string, logger *zap.Logger) (*FCMNotifier, error) {
	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, conf, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get messaging client: %w", err)
	}
	return &FCMNotifier{client: client, logger: logger}, nil
}

// ScheduleChanged sends the hint; devices that never registered a push token are skipped
func (n *FCMNotifier) ScheduleChanged(ctx context.Context, device *models.Device, scheduleID uint) error {
	msg := scheduleChangedMessage(device, scheduleID)
	if msg == nil {
		return nil
	}
	id, err := n.client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("send fcm message to %s: %w", device.DeviceID, err)
	}
	n.logger.Debug("schedule change hint sent",
		zap.String("device_id", device.DeviceID),
		zap.String("message_id", id),
	)
	return nil
}

func scheduleChangedMessage(device *models.Device, scheduleID uint) *messaging.Message {
	if device == nil || device.PushToken == "" {
		return nil
	}
	return &messaging.Message{
		Token: device.PushToken,
		Data: map[string]string{
			"type":        "schedule_changed",
			"device_id":   device.DeviceID,
			"schedule_id": strconv.FormatUint(uint64(scheduleID), 10),
		},
		Android: &messaging.AndroidConfig{
			Priority:    "high",
			CollapseKey: "schedule_changed",
		},
	}
}
