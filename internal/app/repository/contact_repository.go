package repository

import (
	"gorm.io/gorm"

	"github.com/kasbino/kasbino-backend/internal/app/model"
)

type ContactRepository interface {
	Create(message *model.ContactMessage) error
	FindAll() ([]model.ContactMessage, error)
}

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(message *model.ContactMessage) error {
	return r.db.Create(message).Error
}

func (r *contactRepository) FindAll() ([]model.ContactMessage, error) {
	var messages []model.ContactMessage
	if err := r.db.Order("created_at DESC").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
