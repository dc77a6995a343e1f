package models

type Event struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	EventName string `gorm:"size:64;uniqueIndex;not null" json:"event_name"`
	Posts     []Post `json:"-"`
}
