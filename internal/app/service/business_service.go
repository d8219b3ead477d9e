package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/kasbino/kasbino-backend/internal/errors"
	"github.com/kasbino/kasbino-backend/internal/app/model"
	"github.com/kasbino/kasbino-backend/internal/app/repository"
	"github.com/kasbino/kasbino-backend/pkg/logger"
	"github.com/kasbino/kasbino-backend/pkg/redis"
)

var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrCategoryNotFound = errors.New("category not found")
)

const (
	similarBusinessLimit = 3
	recentRatingsLimit   = 3
	slugRetryAttempts    = 3
)

// filterAll is the sentinel filter value meaning "no restriction".
const filterAll = "all"

type CreateBusinessInput struct {
	Name        string
	CategoryID  *uint
	Description string
	Address     string
	City        string
	District    string
	Phone       string
	Instagram   string
	ImageURLs   []string
	Services    []BusinessServiceInput
	Hours       []BusinessHoursInput
}

type BusinessServiceInput struct {
	Name string
	Icon string
}

type BusinessHoursInput struct {
	Days      string
	StartTime string
	EndTime   string
	IsClosed  bool
}

type BusinessDetail struct {
	Business        *model.Business
	Similar         []model.Business
	Stats           *repository.RatingStats
	Ratings         []model.BusinessRating
	UserHasReviewed bool
}

type BusinessService interface {
	Create(ownerID uint, input CreateBusinessInput) (*model.Business, error)
	List(categorySlugs, cities []string, search string) ([]model.Business, error)
	GetDetail(ctx context.Context, slug string, viewerID uint) (*BusinessDetail, error)
	ListCities() ([]repository.CityCount, error)
	ListCategories() ([]repository.CategoryCount, error)
	MyBusinesses(ownerID uint) ([]model.Business, error)
}

type businessService struct {
	businessRepo repository.BusinessRepository
	categoryRepo repository.CategoryRepository
	ratingRepo   repository.RatingRepository
}

func NewBusinessService(
	businessRepo repository.BusinessRepository,
	categoryRepo repository.CategoryRepository,
	ratingRepo repository.RatingRepository,
) BusinessService {
	return &businessService{
		businessRepo: businessRepo,
		categoryRepo: categoryRepo,
		ratingRepo:   ratingRepo,
	}
}

func (s *businessService) Create(ownerID uint, input CreateBusinessInput) (*model.Business, error) {
	logger.Info("Creating business", map[string]interface{}{
		"name":     input.Name,
		"owner_id": ownerID,
	})

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(*input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
	}

	business := &model.Business{
		OwnerID:     ownerID,
		Name:        input.Name,
		CategoryID:  input.CategoryID,
		Description: input.Description,
		Address:     input.Address,
		City:        input.City,
		District:    input.District,
		Phone:       input.Phone,
		Instagram:   input.Instagram,
	}
	for _, url := range input.ImageURLs {
		business.Images = append(business.Images, model.BusinessImage{ImageURL: url})
	}
	for _, svc := range input.Services {
		business.Services = append(business.Services, model.BusinessService{
			Name: svc.Name,
			Icon: svc.Icon,
		})
	}
	for _, h := range input.Hours {
		business.Hours = append(business.Hours, model.BusinessHours{
			Days:      h.Days,
			StartTime: h.StartTime,
			EndTime:   h.EndTime,
			IsClosed:  h.IsClosed,
		})
	}

	// Two creations can race on the same base name and probe the same
	// free slug. The unique index rejects the loser; re-probing on a
	// fresh attempt picks the next suffix.
	var err error
	for attempt := 0; attempt < slugRetryAttempts; attempt++ {
		err = s.businessRepo.Create(business)
		if err == nil {
			return business, nil
		}
		if !apperrors.IsUniqueViolation(err) {
			return nil, err
		}
		business.Slug = ""
	}

	logger.Error("Failed to create business after slug retries", err, map[string]interface{}{
		"name": input.Name,
	})
	return nil, err
}

// List applies the public listing filters. The value "all" in either
// multi-select is a sentinel that clears that dimension entirely.
func (s *businessService) List(categorySlugs, cities []string, search string) ([]model.Business, error) {
	filter := repository.BusinessFilter{
		CategorySlugs: dropAllSentinel(categorySlugs),
		Cities:        dropAllSentinel(cities),
		Search:        search,
		ApprovedOnly:  true,
	}
	return s.businessRepo.FindAll(filter)
}

func dropAllSentinel(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if v == filterAll {
			return nil
		}
		if v != "" {
			cleaned = append(cleaned, v)
		}
	}
	return cleaned
}

// GetDetail loads a business page. Unapproved listings stay hidden
// from everyone except their owner.
func (s *businessService) GetDetail(ctx context.Context, slug string, viewerID uint) (*BusinessDetail, error) {
	business, err := s.businessRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}

	if !business.IsApproved && business.OwnerID != viewerID {
		return nil, ErrBusinessNotFound
	}

	if business.IsApproved && redis.GetClient() != nil {
		if err := redis.IncrementBusinessViews(ctx, business.ID); err != nil {
			// view counting must never break the page
			logger.Warn("Failed to count business view", map[string]interface{}{
				"business_id": business.ID,
				"error":       err.Error(),
			})
		}
	}

	similar, err := s.businessRepo.FindSimilar(business, similarBusinessLimit)
	if err != nil {
		return nil, err
	}

	stats, err := s.ratingRepo.Stats(business.ID)
	if err != nil {
		return nil, err
	}

	ratings, err := s.ratingRepo.FindRecentApproved(business.ID, recentRatingsLimit)
	if err != nil {
		return nil, err
	}

	userHasReviewed := false
	if viewerID != 0 {
		existing, err := s.ratingRepo.FindByBusinessAndUser(business.ID, viewerID)
		if err != nil {
			return nil, err
		}
		userHasReviewed = existing != nil
	}

	return &BusinessDetail{
		Business:        business,
		Similar:         similar,
		Stats:           stats,
		Ratings:         ratings,
		UserHasReviewed: userHasReviewed,
	}, nil
}

func (s *businessService) ListCities() ([]repository.CityCount, error) {
	return s.businessRepo.ListCities()
}

func (s *businessService) ListCategories() ([]repository.CategoryCount, error) {
	return s.categoryRepo.FindAllWithCounts()
}

func (s *businessService) MyBusinesses(ownerID uint) ([]model.Business, error) {
	return s.businessRepo.FindByOwner(ownerID)
}
