package model

import (
	"time"

	"gorm.io/gorm"
)

// BusinessRating is one user's rating of one business. The composite
// unique index enforces at most one row per (business, user) pair.
type BusinessRating struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	BusinessID uint       `gorm:"not null;uniqueIndex:idx_business_user_rating" json:"business_id"`
	Business   Business   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_business_user_rating" json:"user_id"`
	User       User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
	Rating     int        `gorm:"not null" json:"rating"`                  // clamped to 1..5
	Comment    string     `gorm:"type:text" json:"comment"`
	IsApproved bool       `gorm:"default:false;index" json:"is_approved"` // only approved rows feed aggregates
	EditedAt   *time.Time `json:"edited_at"`                              // set when the author revises
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (BusinessRating) TableName() string {
	return "business_ratings"
}

// BeforeSave clamps out-of-range values instead of rejecting them.
func (r *BusinessRating) BeforeSave(tx *gorm.DB) error {
	if r.Rating < 1 {
		r.Rating = 1
	}
	if r.Rating > 5 {
		r.Rating = 5
	}
	return nil
}
