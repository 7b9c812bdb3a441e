package models

import "time"

// MaxMessageLength bounds the text of a single message.
const MaxMessageLength = 140

// Message is a short post owned by exactly one user.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"size:140;not null" json:"text"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	// LikesCount is not persisted; computed at query time.
	LikesCount int `gorm:"-" json:"likes_count"`
	// Liked indicates whether the current requesting user liked this message (computed).
	Liked bool `gorm:"-" json:"liked"`
}

// TableName specifies the table name for GORM.
func (Message) TableName() string {
	return "messages"
}
