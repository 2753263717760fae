package models

import (
	"time"
)

// Device represents a signage playback device registered by an operator
type Device struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	DeviceID   string    `json:"device_id" gorm:"uniqueIndex;not null;size:100"`
	Name       string    `json:"name" gorm:"size:100;not null"`
	Location   string    `json:"location" gorm:"size:100"`
	OwnerID    uint      `json:"owner" gorm:"not null;index"`
	LastActive time.Time `json:"last_active"`
	IsActive   bool      `json:"is_active" gorm:"not null"`
	Version    string    `json:"version" gorm:"size:20"`
	PushToken  string    `json:"-" gorm:"size:255"` // FCM registration token reported by the device
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Owner *User `json:"-" gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName specifies the table name for Device model
func (Device) TableName() string {
	return "devices"
}

// OwnedBy reports whether the device belongs to the given user
func (d *Device) OwnedBy(userID uint) bool {
	return d != nil && d.OwnerID == userID
}
