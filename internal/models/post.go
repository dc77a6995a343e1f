package models

import (
	"time"
)

type Post struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title  string `gorm:"size:50;not null" json:"title"`
	Text   string `gorm:"size:140" json:"text"`
	Link   string `gorm:"size:2048" json:"link"` // Optional
	IsLink bool   `gorm:"default:false" json:"is_link"`

	// Counters. Score, Age and Hotness are derived and rewritten by the ranking service.
	Upvotes    int       `gorm:"not null;default:0" json:"upvotes"`
	Downvotes  int       `gorm:"not null;default:0" json:"downvotes"`
	Score      int       `gorm:"not null;default:0" json:"score"`
	Importance int       `gorm:"not null;default:1" json:"importance"`
	Age        int64     `gorm:"not null;default:1" json:"age"` // seconds since CreatedAt
	Hotness    float64   `gorm:"not null;default:0;index" json:"hotness"`
	RankedAt   time.Time `gorm:"index" json:"ranked_at"`

	EventID  *uint     `gorm:"index" json:"event_id"`
	Event    *Event    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"event,omitempty"`
	Topics   []Topic   `gorm:"many2many:post_topics;" json:"topics"`
	Comments []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"` // submission time, never updated
	UpdatedAt time.Time `json:"updated_at"`
}

// TopicName returns the first tag, which is the one chosen at submission.
func (p Post) TopicName() string {
	if len(p.Topics) == 0 {
		return ""
	}
	return p.Topics[0].TagName
}
