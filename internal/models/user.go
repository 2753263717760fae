package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// TokenLifetime is how long a freshly issued operator token stays valid
var TokenLifetime = 24 * time.Hour

// User represents an operator account. Every Device, Media and Playlist is owned by exactly one User.
type User struct {
	ID        uint       `json:"id" gorm:"primarykey"`
	Username  string     `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Email     string     `json:"email" gorm:"size:254;not null"`
	FirstName string     `json:"first_name" gorm:"size:150"`
	LastName  string     `json:"last_name" gorm:"size:150"`
	Company   string     `json:"company" gorm:"size:100"`
	Phone     string     `json:"phone" gorm:"size:20"`
	IsStaff   bool       `json:"is_staff" gorm:"not null;default:false"`
	Password  string     `json:"-" gorm:"size:255;not null"`
	Token     string     `json:"-" gorm:"size:255;index"`
	TokenExp  *time.Time `json:"-" gorm:"index"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// SetPassword stores the bcrypt hash of password
func (u *User) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword verifies if the provided password matches the user's password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// GenerateToken creates a new authentication token for the user
func (u *User) GenerateToken(now time.Time) error {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return err
	}

	u.Token = hex.EncodeToString(tokenBytes)
	exp := now.Add(TokenLifetime)
	u.TokenExp = &exp

	return nil
}

// IsTokenValid checks if the user's token is still valid at now
func (u *User) IsTokenValid(now time.Time) bool {
	if u.Token == "" || u.TokenExp == nil {
		return false
	}
	return now.Before(*u.TokenExp)
}

// ToSafeUser returns user data without sensitive information
func (u *User) ToSafeUser() map[string]interface{} {
	return map[string]interface{}{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"company":    u.Company,
		"phone":      u.Phone,
		"is_staff":   u.IsStaff,
		"created_at": u.CreatedAt,
	}
}
