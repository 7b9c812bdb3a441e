// Package models contains data structures for the application's domain models.
package models

import "time"

// Default profile images assigned when a user signs up without providing one.
const (
	DefaultImageURL       = "/static/images/default-pic.png"
	DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"
)

// User represents a registered Warbler account.
//
// Username and email are globally unique. Password holds only the bcrypt
// hash, never the plaintext. Deleting a user removes every message it owns
// and every follow/block/like edge referencing it on either side.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"size:30;unique;not null" json:"username"`
	Email          string    `gorm:"size:254;unique;not null" json:"email"`
	Password       string    `gorm:"not null" json:"-"`
	Bio            string    `gorm:"size:500" json:"bio"`
	Location       string    `gorm:"size:100" json:"location"`
	ImageURL       string    `gorm:"size:255;not null;default:'/static/images/default-pic.png'" json:"image_url"`
	HeaderImageURL string    `gorm:"size:255;not null;default:'/static/images/warbler-hero.jpg'" json:"header_image_url"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Messages []Message `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}
