package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"not null" json:"-"`                           // Hash
	Role           string    `gorm:"size:20;default:'user';not null" json:"role"` // user, admin
	Score          int       `gorm:"default:0;not null" json:"score"`             // sum of owned posts' scores
	ImportanceDebt int       `gorm:"default:0;not null" json:"importance_debt"`   // paid for boosts
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Posts []Post `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
