package models

import "time"

// Schedule binds a playlist to a device over the closed window [StartTime, EndTime].
// Overlapping schedules on one device are allowed and resolved at check-in time.
// IsRecurring and RecurrencePattern are stored as metadata only; no occurrences are expanded.
type Schedule struct {
	ID                uint      `json:"id" gorm:"primarykey"`
	PlaylistID        uint      `json:"playlist" gorm:"not null;index"`
	DeviceID          uint      `json:"device" gorm:"not null;index:idx_schedules_device_window,priority:1"`
	OwnerID           uint      `json:"owner" gorm:"not null;index"`
	StartTime         time.Time `json:"start_time" gorm:"not null;index:idx_schedules_device_window,priority:2"`
	EndTime           time.Time `json:"end_time" gorm:"not null;index:idx_schedules_device_window,priority:3"`
	IsRecurring       bool      `json:"is_recurring" gorm:"not null;default:false"`
	RecurrencePattern string    `json:"recurrence_pattern" gorm:"size:100"`
	IsActive          bool      `json:"is_active" gorm:"not null"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Playlist *Playlist `json:"-" gorm:"foreignKey:PlaylistID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Device   *Device   `json:"-" gorm:"foreignKey:DeviceID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName specifies the table name for Schedule model
func (Schedule) TableName() string {
	return "schedules"
}

// Covers reports whether t falls inside the schedule's closed window
func (s *Schedule) Covers(t time.Time) bool {
	return !t.Before(s.StartTime) && !t.After(s.EndTime)
}
