// Package events carries check-in notifications to observers outside the request path.
// Publishing is best effort: callers log failures and never fail the check-in.
package events

import (
	"context"
	"errors"
	"time"

	"signage_server/internal/models"
)

// Event types
const (
	TypeCheckIn         = "check_in"
	TypeScheduleChanged = "schedule_changed"
)

// Event is emitted after a device checks in or one of its schedules changes
type Event struct {
	Type       string            `json:"type"`
	DeviceID   string            `json:"device_id"`
	DevicePK   uint              `json:"device"`
	OwnerID    uint              `json:"owner"`
	ScheduleID *uint             `json:"schedule_id,omitempty"`
	Details    models.LogDetails `json:"details,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Publisher delivers events
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop discards every event
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi fans an event out to every publisher and joins their errors
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
