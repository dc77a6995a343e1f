package models

type Topic struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	TagName string `gorm:"size:64;uniqueIndex;not null" json:"tag_name"`
	Posts   []Post `gorm:"many2many:post_topics;" json:"-"`
}
