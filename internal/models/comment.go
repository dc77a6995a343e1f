package models

import (
	"time"
)

type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PostID   uint   `gorm:"not null;index" json:"post_id"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	Username string `gorm:"size:64;not null" json:"username"` // snapshot at creation, does not follow renames
	Text     string `gorm:"size:140;not null" json:"text"`
	// No UpdatedAt: comments are immutable until deleted.
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
