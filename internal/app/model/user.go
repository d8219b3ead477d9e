package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string // user permission level

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`        // login identifier
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`           // contact + recovery
	PasswordHash string         `gorm:"not null" json:"-"`                           // bcrypt hash
	Name         string         `json:"name"`                                        // display name
	Phone        string         `gorm:"type:varchar(20)" json:"phone"`               // e.g. 09xxxxxxxxx
	City         string         `gorm:"type:varchar(100)" json:"city"`               // home city
	ProfileImage string         `json:"profile_image"`                               // uploaded image URL
	Role         UserRole       `gorm:"type:varchar(20);default:'user'" json:"role"` // permission
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Businesses []Business `gorm:"foreignKey:OwnerID" json:"businesses,omitempty"` // owned listings
}

func (User) TableName() string {
	return "users"
}
