package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/kasbino/kasbino-backend/internal/app/model"
	"github.com/kasbino/kasbino-backend/pkg/logger"
)

type BusinessFilter struct {
	CategorySlugs []string
	Cities        []string
	Search        string
	ApprovedOnly  bool
}

type CityCount struct {
	City          string
	BusinessCount int64
}

type BusinessRepository interface {
	Create(business *model.Business) error
	FindAll(filter BusinessFilter) ([]model.Business, error)
	FindBySlug(slug string) (*model.Business, error)
	FindByOwner(ownerID uint) ([]model.Business, error)
	FindSimilar(business *model.Business, limit int) ([]model.Business, error)
	ListCities() ([]CityCount, error)
	AddViews(id uint, delta uint64) error
	BulkCreate(businesses []model.Business, batchSize int) error
}

type businessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) BusinessRepository {
	return &businessRepository{db: db}
}

func (r *businessRepository) Create(business *model.Business) error {
	logger.Debug("Creating business in database", map[string]interface{}{
		"name":     business.Name,
		"city":     business.City,
		"owner_id": business.OwnerID,
	})

	if err := r.db.Create(business).Error; err != nil {
		logger.Error("Failed to create business in database", err, map[string]interface{}{
			"name":     business.Name,
			"owner_id": business.OwnerID,
		})
		return err
	}

	logger.Debug("Business created in database", map[string]interface{}{
		"business_id": business.ID,
		"slug":        business.Slug,
	})
	return nil
}

// FindAll returns listings matching the filter. Rows without a slug are
// excluded because they cannot be linked to a detail page.
func (r *businessRepository) FindAll(filter BusinessFilter) ([]model.Business, error) {
	logger.Debug("Finding businesses", map[string]interface{}{
		"categories": filter.CategorySlugs,
		"cities":     filter.Cities,
		"search":     filter.Search,
	})

	query := r.db.Model(&model.Business{}).
		Joins("LEFT JOIN categories ON categories.id = businesses.category_id").
		Where("businesses.slug != ''").
		Preload("Category").
		Preload("Images")

	if filter.ApprovedOnly {
		query = query.Where("businesses.is_approved = ?", true)
	}
	if len(filter.CategorySlugs) > 0 {
		query = query.Where("categories.slug IN ?", filter.CategorySlugs)
	}
	if len(filter.Cities) > 0 {
		query = query.Where("businesses.city IN ?", filter.Cities)
	}
	if filter.Search != "" {
		// LOWER on both sides keeps the match case-insensitive on every driver
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(businesses.name) LIKE ? OR LOWER(businesses.description) LIKE ? OR LOWER(categories.name) LIKE ?",
			like, like, like,
		)
	}

	var businesses []model.Business
	if err := query.Order("businesses.created_at DESC").Find(&businesses).Error; err != nil {
		logger.Error("Failed to find businesses", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, err
	}

	logger.Debug("Businesses found", map[string]interface{}{
		"count": len(businesses),
	})
	return businesses, nil
}

func (r *businessRepository) FindBySlug(slug string) (*model.Business, error) {
	var business model.Business
	if err := r.db.
		Preload("Category").
		Preload("Images").
		Preload("Services").
		Preload("Hours").
		Preload("Owner").
		Where("slug = ?", slug).
		First(&business).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *businessRepository) FindByOwner(ownerID uint) ([]model.Business, error) {
	var businesses []model.Business
	if err := r.db.
		Preload("Category").
		Preload("Images").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&businesses).Error; err != nil {
		return nil, err
	}
	return businesses, nil
}

// FindSimilar returns other approved businesses in the same category.
func (r *businessRepository) FindSimilar(business *model.Business, limit int) ([]model.Business, error) {
	if business.CategoryID == nil {
		return nil, nil
	}

	var businesses []model.Business
	if err := r.db.
		Preload("Category").
		Preload("Images").
		Where("category_id = ? AND id != ? AND is_approved = ? AND slug != ''",
			*business.CategoryID, business.ID, true).
		Order("views DESC").
		Limit(limit).
		Find(&businesses).Error; err != nil {
		return nil, err
	}
	return businesses, nil
}

func (r *businessRepository) ListCities() ([]CityCount, error) {
	var cities []CityCount
	if err := r.db.Model(&model.Business{}).
		Select("city, COUNT(*) as business_count").
		Where("is_approved = ? AND slug != ''", true).
		Group("city").
		Order("city ASC").
		Scan(&cities).Error; err != nil {
		logger.Error("Failed to list cities", err)
		return nil, err
	}
	return cities, nil
}

// BulkCreate inserts imported businesses in batches.
func (r *businessRepository) BulkCreate(businesses []model.Business, batchSize int) error {
	if len(businesses) == 0 {
		return nil
	}
	return r.db.CreateInBatches(businesses, batchSize).Error
}

// AddViews folds a batch of counted views into the persistent counter.
func (r *businessRepository) AddViews(id uint, delta uint64) error {
	return r.db.Model(&model.Business{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", delta)).Error
}
