package service

import (
	"github.com/kasbino/kasbino-backend/internal/app/model"
	"github.com/kasbino/kasbino-backend/internal/app/repository"
	"github.com/kasbino/kasbino-backend/pkg/logger"
)

type ContactService interface {
	Submit(name, email, phone, subject, message string) (*model.ContactMessage, error)
	List() ([]model.ContactMessage, error)
}

type contactService struct {
	contactRepo repository.ContactRepository
}

func NewContactService(contactRepo repository.ContactRepository) ContactService {
	return &contactService{contactRepo: contactRepo}
}

func (s *contactService) Submit(name, email, phone, subject, message string) (*model.ContactMessage, error) {
	record := &model.ContactMessage{
		Name:    name,
		Email:   email,
		Phone:   phone,
		Subject: subject,
		Message: message,
	}

	if err := s.contactRepo.Create(record); err != nil {
		logger.Error("Failed to store contact message", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	logger.Info("Contact message received", map[string]interface{}{
		"contact_id": record.ID,
	})
	return record, nil
}

// List returns every submitted message, newest first.
func (s *contactService) List() ([]model.ContactMessage, error) {
	return s.contactRepo.FindAll()
}
