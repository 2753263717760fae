package models

import "time"

// MediaType represents the media kind enum
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeText  MediaType = "text"
)

// DefaultMediaDuration is the playback duration in seconds used when none is given
const DefaultMediaDuration = 10

// MediaTypes lists every accepted media type
var MediaTypes = []MediaType{MediaTypeImage, MediaTypeVideo, MediaTypeText}

// Valid reports whether t is one of the accepted media types
func (t MediaType) Valid() bool {
	for _, mt := range MediaTypes {
		if t == mt {
			return true
		}
	}
	return false
}

// Media is an uploaded asset that playlists reference. The binary lives in the asset store;
// File and Thumbnail hold the store references.
type Media struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	OwnerID     uint      `json:"owner" gorm:"not null;index"`
	Title       string    `json:"title" gorm:"size:100;not null"`
	Description string    `json:"description" gorm:"type:text"`
	MediaType   MediaType `json:"media_type" gorm:"type:varchar(10);not null"`
	File        string    `json:"file" gorm:"type:text;not null"`
	Thumbnail   string    `json:"thumbnail,omitempty" gorm:"type:text"`
	Duration    int       `json:"duration" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`

	FileURL      string `json:"file_url,omitempty" gorm:"-"`
	ThumbnailURL string `json:"thumbnail_url,omitempty" gorm:"-"`

	Owner *User `json:"-" gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName specifies the table name for Media model
func (Media) TableName() string {
	return "media"
}
