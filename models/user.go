package models

import "time"

const (
	RoleAdmin     = "ADMIN"
	RoleDeveloper = "DEVELOPER"
	RoleInvestor  = "INVESTOR"
)

type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Email      string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password   string    `gorm:"size:255;not null" json:"-"`
	Role       string    `gorm:"type:varchar(20);not null;default:'INVESTOR'" json:"role"`
	IsBanned   bool      `gorm:"not null;default:false" json:"is_banned"`
	IsVerified bool      `gorm:"not null;default:false" json:"is_verified"`
	AvatarURL  *string   `gorm:"type:varchar(255)" json:"avatar_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
