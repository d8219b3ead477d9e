package repository

import (
	"gorm.io/gorm"

	"github.com/kasbino/kasbino-backend/internal/app/model"
	"github.com/kasbino/kasbino-backend/pkg/logger"
)

// RatingStats summarizes the approved ratings of a business.
// Buckets holds, per star value 1..5, the percentage of approved
// ratings whose value falls in [star-0.5, star+0.5).
type RatingStats struct {
	Average float64        `json:"average"`
	Count   int64          `json:"count"`
	Buckets map[int]float64 `json:"buckets"`
}

type RatingRepository interface {
	Create(rating *model.BusinessRating) error
	Update(rating *model.BusinessRating) error
	Delete(id uint) error
	FindByID(id uint) (*model.BusinessRating, error)
	FindByBusinessAndUser(businessID, userID uint) (*model.BusinessRating, error)
	FindApprovedByBusiness(businessID uint) ([]model.BusinessRating, error)
	FindRecentApproved(businessID uint, limit int) ([]model.BusinessRating, error)
	Stats(businessID uint) (*RatingStats, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Create(rating *model.BusinessRating) error {
	logger.Debug("Creating rating in database", map[string]interface{}{
		"business_id": rating.BusinessID,
		"user_id":     rating.UserID,
		"rating":      rating.Rating,
	})

	if err := r.db.Create(rating).Error; err != nil {
		logger.Error("Failed to create rating in database", err, map[string]interface{}{
			"business_id": rating.BusinessID,
			"user_id":     rating.UserID,
		})
		return err
	}
	return nil
}

func (r *ratingRepository) Update(rating *model.BusinessRating) error {
	if err := r.db.Save(rating).Error; err != nil {
		logger.Error("Failed to update rating in database", err, map[string]interface{}{
			"rating_id": rating.ID,
		})
		return err
	}
	return nil
}

func (r *ratingRepository) Delete(id uint) error {
	return r.db.Delete(&model.BusinessRating{}, id).Error
}

func (r *ratingRepository) FindByID(id uint) (*model.BusinessRating, error) {
	var rating model.BusinessRating
	if err := r.db.First(&rating, id).Error; err != nil {
		return nil, err
	}
	return &rating, nil
}

// FindByBusinessAndUser returns nil, nil when the pair has no rating.
func (r *ratingRepository) FindByBusinessAndUser(businessID, userID uint) (*model.BusinessRating, error) {
	var rating model.BusinessRating
	err := r.db.
		Where("business_id = ? AND user_id = ?", businessID, userID).
		First(&rating).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) FindApprovedByBusiness(businessID uint) ([]model.BusinessRating, error) {
	var ratings []model.BusinessRating
	if err := r.db.
		Preload("User").
		Where("business_id = ? AND is_approved = ?", businessID, true).
		Order("created_at DESC").
		Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}

// FindRecentApproved returns the newest approved ratings for the
// detail page preview.
func (r *ratingRepository) FindRecentApproved(businessID uint, limit int) ([]model.BusinessRating, error) {
	var ratings []model.BusinessRating
	if err := r.db.
		Preload("User").
		Where("business_id = ? AND is_approved = ?", businessID, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}

// Stats aggregates approved ratings only. Pending and rejected rows
// never influence the numbers shown to visitors.
func (r *ratingRepository) Stats(businessID uint) (*RatingStats, error) {
	stats := &RatingStats{
		Buckets: map[int]float64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	row := struct {
		Average float64
		Count   int64
	}{}
	if err := r.db.Model(&model.BusinessRating{}).
		Select("COALESCE(AVG(rating), 0) as average, COUNT(*) as count").
		Where("business_id = ? AND is_approved = ?", businessID, true).
		Scan(&row).Error; err != nil {
		logger.Error("Failed to aggregate ratings", err, map[string]interface{}{
			"business_id": businessID,
		})
		return nil, err
	}
	stats.Average = row.Average
	stats.Count = row.Count

	if stats.Count == 0 {
		return stats, nil
	}

	type bucketRow struct {
		Rating int
		Count  int64
	}
	var buckets []bucketRow
	if err := r.db.Model(&model.BusinessRating{}).
		Select("rating, COUNT(*) as count").
		Where("business_id = ? AND is_approved = ?", businessID, true).
		Group("rating").
		Scan(&buckets).Error; err != nil {
		return nil, err
	}

	for _, b := range buckets {
		if b.Rating >= 1 && b.Rating <= 5 {
			stats.Buckets[b.Rating] = float64(b.Count) / float64(stats.Count) * 100
		}
	}
	return stats, nil
}
