package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kasbino/kasbino-backend/pkg/util"
)

// Business is a directory listing. It stays invisible to the public
// surface until a moderator flips IsApproved.
type Business struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	OwnerID     uint           `gorm:"not null;index" json:"owner_id"`
	Owner       User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"owner,omitempty"`
	Name        string         `gorm:"not null" json:"name"`
	Slug        string         `gorm:"uniqueIndex" json:"slug"`              // URL identifier, auto-generated when absent
	CategoryID  *uint          `gorm:"index" json:"category_id"`
	Category    *Category      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"category,omitempty"`
	Description string         `gorm:"type:text" json:"description"`
	Address     string         `gorm:"type:varchar(255)" json:"address"`
	City        string         `gorm:"index;not null" json:"city"`
	District    string         `gorm:"type:varchar(100)" json:"district"`
	Phone       string         `gorm:"type:varchar(20)" json:"phone"`
	Instagram   string         `gorm:"type:varchar(100)" json:"instagram"`
	IsApproved  bool           `gorm:"default:false;index" json:"is_approved"` // moderation gate
	Views       uint64         `gorm:"default:0" json:"views"`                 // flushed from Redis by the scheduler
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Images   []BusinessImage   `gorm:"foreignKey:BusinessID" json:"images,omitempty"`
	Services []BusinessService `gorm:"foreignKey:BusinessID" json:"services,omitempty"`
	Hours    []BusinessHours   `gorm:"foreignKey:BusinessID" json:"hours,omitempty"`
}

func (Business) TableName() string {
	return "businesses"
}

// BeforeCreate assigns a unique slug when none was supplied.
// The candidate is probed as candidate, candidate-1, candidate-2, ...
// against existing rows; the unique index on slug is the backstop
// when two creations race on the same base name.
func (b *Business) BeforeCreate(tx *gorm.DB) error {
	if b.Slug != "" {
		return nil
	}

	baseSlug := util.Slugify(b.Name)
	if baseSlug == "" {
		var total int64
		if err := tx.Model(&Business{}).Count(&total).Error; err != nil {
			return err
		}
		baseSlug = fmt.Sprintf("business-%d", total+1)
	}

	slug := baseSlug
	for counter := 1; ; counter++ {
		var count int64
		if err := tx.Model(&Business{}).
			Where("slug = ? AND id != ?", slug, b.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			break
		}
		slug = fmt.Sprintf("%s-%d", baseSlug, counter)
	}

	b.Slug = slug
	return nil
}

// BusinessImage is a gallery photo, removed together with its business
type BusinessImage struct {
	ID         uint     `gorm:"primarykey" json:"id"`
	BusinessID uint     `gorm:"not null;index" json:"business_id"`
	Business   Business `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ImageURL   string   `gorm:"not null" json:"image_url"`
}

func (BusinessImage) TableName() string {
	return "business_images"
}

// BusinessService is an offered amenity (delivery, parking, wifi, ...)
type BusinessService struct {
	ID         uint     `gorm:"primarykey" json:"id"`
	BusinessID uint     `gorm:"not null;index" json:"business_id"`
	Business   Business `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Name       string   `gorm:"type:varchar(50);not null" json:"name"`
	Icon       string   `gorm:"type:varchar(50)" json:"icon"` // Font Awesome class, e.g. fa-parking
}

func (BusinessService) TableName() string {
	return "business_services"
}

// BusinessHours is one opening-hours row, e.g. "شنبه - چهارشنبه" 8:00-17:00
type BusinessHours struct {
	ID         uint     `gorm:"primarykey" json:"id"`
	BusinessID uint     `gorm:"not null;index" json:"business_id"`
	Business   Business `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Days       string   `gorm:"type:varchar(100);not null" json:"days"`
	StartTime  string   `gorm:"type:varchar(5)" json:"start_time"` // "8:00"
	EndTime    string   `gorm:"type:varchar(5)" json:"end_time"`   // "17:00"
	IsClosed   bool     `gorm:"default:false" json:"is_closed"`
}

func (BusinessHours) TableName() string {
	return "business_hours"
}
