package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/kasbino/kasbino-backend/internal/errors"
	"github.com/kasbino/kasbino-backend/internal/app/model"
	"github.com/kasbino/kasbino-backend/internal/app/repository"
	"github.com/kasbino/kasbino-backend/pkg/logger"
)

var (
	ErrRatingNotFound      = errors.New("rating not found")
	ErrRatingAlreadyExists = errors.New("rating already exists for this business")
	ErrNotRatingAuthor     = errors.New("only the author can modify a rating")
)

type RatingService interface {
	AddRating(userID uint, businessSlug string, rating int, comment string) (*model.BusinessRating, error)
	EditRating(userID uint, businessSlug string, rating int, comment string) (*model.BusinessRating, error)
	DeleteRating(userID uint, businessSlug string) error
	GetUserRating(userID uint, businessSlug string) (*model.BusinessRating, error)
	ListApproved(businessSlug string) ([]model.BusinessRating, *repository.RatingStats, error)
}

type ratingService struct {
	ratingRepo   repository.RatingRepository
	businessRepo repository.BusinessRepository
}

func NewRatingService(
	ratingRepo repository.RatingRepository,
	businessRepo repository.BusinessRepository,
) RatingService {
	return &ratingService{
		ratingRepo:   ratingRepo,
		businessRepo: businessRepo,
	}
}

func (s *ratingService) findBusiness(slug string) (*model.Business, error) {
	business, err := s.businessRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	if !business.IsApproved {
		return nil, ErrBusinessNotFound
	}
	return business, nil
}

// AddRating records a new rating awaiting moderation. The pre-check
// catches the common duplicate; the composite unique index catches
// two concurrent first ratings from the same user.
func (s *ratingService) AddRating(userID uint, businessSlug string, rating int, comment string) (*model.BusinessRating, error) {
	business, err := s.findBusiness(businessSlug)
	if err != nil {
		return nil, err
	}

	existing, err := s.ratingRepo.FindByBusinessAndUser(business.ID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRatingAlreadyExists
	}

	record := &model.BusinessRating{
		BusinessID: business.ID,
		UserID:     userID,
		Rating:     rating,
		Comment:    comment,
	}

	if err := s.ratingRepo.Create(record); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, ErrRatingAlreadyExists
		}
		return nil, err
	}

	logger.Info("Rating created", map[string]interface{}{
		"business_id": business.ID,
		"user_id":     userID,
		"rating":      record.Rating,
	})
	return record, nil
}

// EditRating replaces the user's rating and sends it back through
// moderation. The approved version stays invisible until re-approved.
func (s *ratingService) EditRating(userID uint, businessSlug string, rating int, comment string) (*model.BusinessRating, error) {
	business, err := s.findBusiness(businessSlug)
	if err != nil {
		return nil, err
	}

	record, err := s.ratingRepo.FindByBusinessAndUser(business.ID, userID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRatingNotFound
	}

	now := time.Now()
	record.Rating = rating
	record.Comment = comment
	record.IsApproved = false
	record.EditedAt = &now

	if err := s.ratingRepo.Update(record); err != nil {
		return nil, err
	}

	logger.Info("Rating edited", map[string]interface{}{
		"rating_id":   record.ID,
		"business_id": business.ID,
		"user_id":     userID,
	})
	return record, nil
}

func (s *ratingService) DeleteRating(userID uint, businessSlug string) error {
	business, err := s.findBusiness(businessSlug)
	if err != nil {
		return err
	}

	record, err := s.ratingRepo.FindByBusinessAndUser(business.ID, userID)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrRatingNotFound
	}

	if err := s.ratingRepo.Delete(record.ID); err != nil {
		return err
	}

	logger.Info("Rating deleted", map[string]interface{}{
		"rating_id":   record.ID,
		"business_id": business.ID,
		"user_id":     userID,
	})
	return nil
}

func (s *ratingService) GetUserRating(userID uint, businessSlug string) (*model.BusinessRating, error) {
	business, err := s.findBusiness(businessSlug)
	if err != nil {
		return nil, err
	}

	record, err := s.ratingRepo.FindByBusinessAndUser(business.ID, userID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRatingNotFound
	}
	return record, nil
}

func (s *ratingService) ListApproved(businessSlug string) ([]model.BusinessRating, *repository.RatingStats, error) {
	business, err := s.findBusiness(businessSlug)
	if err != nil {
		return nil, nil, err
	}

	ratings, err := s.ratingRepo.FindApprovedByBusiness(business.ID)
	if err != nil {
		return nil, nil, err
	}

	stats, err := s.ratingRepo.Stats(business.ID)
	if err != nil {
		return nil, nil, err
	}

	return ratings, stats, nil
}
