package repository

import (
	"gorm.io/gorm"

	"github.com/kasbino/kasbino-backend/internal/app/model"
)

// CategoryCount is one category annotated with its approved listings.
type CategoryCount struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	BusinessCount int64  `json:"business_count"`
}

type CategoryRepository interface {
	FindAll() ([]model.Category, error)
	FindAllWithCounts() ([]CategoryCount, error)
	FindByID(id uint) (*model.Category, error)
	FindBySlug(slug string) (*model.Category, error)
	Create(category *model.Category) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) FindAll() ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindAllWithCounts annotates every category with the number of its
// approved listings, zero included.
func (r *categoryRepository) FindAllWithCounts() ([]CategoryCount, error) {
	var counts []CategoryCount
	if err := r.db.Model(&model.Category{}).
		Select("categories.id, categories.name, categories.slug, COUNT(businesses.id) as business_count").
		Joins("LEFT JOIN businesses ON businesses.category_id = categories.id AND businesses.is_approved = ? AND businesses.slug != '' AND businesses.deleted_at IS NULL", true).
		Group("categories.id, categories.name, categories.slug").
		Order("categories.name ASC").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *categoryRepository) FindByID(id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindBySlug(slug string) (*model.Category, error) {
	var category model.Category
	if err := r.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) Create(category *model.Category) error {
	return r.db.Create(category).Error
}
