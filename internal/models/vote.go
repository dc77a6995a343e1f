package models

import (
	"time"
)

// Upvote and Downvote are the two halves of the vote ledger. A (user, post)
// pair lives in at most one of the two tables at any time.
type Upvote struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PostID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Upvote) TableName() string { return "upvoted_on" }

type Downvote struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PostID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Downvote) TableName() string { return "downvoted_on" }

// Boost records that a user gave importance to a post. One row per pair.
type Boost struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PostID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"post_id"`
	Cost      int       `gorm:"not null" json:"cost"`
	CreatedAt time.Time `json:"created_at"`
}

func (Boost) TableName() string { return "given_importance_to" }
