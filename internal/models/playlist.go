package models

import "time"

// Playlist is an ordered sequence of media references. The same media may appear more than once.
type Playlist struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	OwnerID     uint      `json:"owner" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description string    `json:"description" gorm:"type:text"`
	IsActive    bool      `json:"is_active" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Items []PlaylistItem `json:"-" gorm:"foreignKey:PlaylistID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Owner *User          `json:"-" gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName specifies the table name for Playlist model
func (Playlist) TableName() string {
	return "playlists"
}

// PlaylistItem is one slot in a playlist. Position orders the slots; gaps are allowed.
type PlaylistItem struct {
	ID         uint `json:"id" gorm:"primarykey"`
	PlaylistID uint `json:"playlist_id" gorm:"not null;uniqueIndex:idx_playlist_items_position"`
	MediaID    uint `json:"media_id" gorm:"not null;index"`
	Position   int  `json:"position" gorm:"not null;uniqueIndex:idx_playlist_items_position"`

	Media *Media `json:"-" gorm:"foreignKey:MediaID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName specifies the table name for PlaylistItem model
func (PlaylistItem) TableName() string {
	return "playlist_items"
}
