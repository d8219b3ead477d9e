package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kasbino/kasbino-backend/internal/app/model"
	"github.com/kasbino/kasbino-backend/internal/app/service"
	apperrors "github.com/kasbino/kasbino-backend/internal/errors"
	"github.com/kasbino/kasbino-backend/internal/middleware"
)

type BusinessController struct {
	businessService service.BusinessService
}

func NewBusinessController(businessService service.BusinessService) *BusinessController {
	return &BusinessController{
		businessService: businessService,
	}
}

type CreateBusinessRequest struct {
	Name        string                   `json:"name" binding:"required,min=2,max=100"`
	CategoryID  *uint                    `json:"category_id"`
	Description string                   `json:"description"`
	Address     string                   `json:"address"`
	City        string                   `json:"city" binding:"required"`
	District    string                   `json:"district"`
	Phone       string                   `json:"phone"`
	Instagram   string                   `json:"instagram"`
	ImageURLs   []string                 `json:"image_urls"`
	Services    []BusinessServiceRequest `json:"services"`
	Hours       []BusinessHoursRequest   `json:"hours"`
}

type BusinessServiceRequest struct {
	Name string `json:"name" binding:"required"`
	Icon string `json:"icon"`
}

type BusinessHoursRequest struct {
	Days      string `json:"days" binding:"required"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsClosed  bool   `json:"is_closed"`
}

func businessSummary(b *model.Business) gin.H {
	summary := gin.H{
		"id":          b.ID,
		"name":        b.Name,
		"slug":        b.Slug,
		"description": b.Description,
		"city":        b.City,
		"district":    b.District,
		"views":       b.Views,
		"is_approved": b.IsApproved,
		"created_at":  b.CreatedAt,
	}
	if b.Category != nil {
		summary["category"] = gin.H{
			"id":   b.Category.ID,
			"name": b.Category.Name,
			"slug": b.Category.Slug,
		}
	}
	if len(b.Images) > 0 {
		summary["image_url"] = b.Images[0].ImageURL
	}
	return summary
}

// ListCategories returns all business categories
// GET /api/v1/categories
func (ctrl *BusinessController) ListCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	categories, err := ctrl.businessService.ListCategories()
	if err != nil {
		log.Error("Failed to list categories", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
	})
}

// List returns approved businesses matching the filters
// GET /api/v1/businesses?category=a&category=b&city=x&search=q
func (ctrl *BusinessController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	// clients send either plain or bracket-style array keys
	categorySlugs := append(c.QueryArray("category"), c.QueryArray("category[]")...)
	cities := append(c.QueryArray("city"), c.QueryArray("city[]")...)
	search := c.Query("search")

	businesses, err := ctrl.businessService.List(categorySlugs, cities, search)
	if err != nil {
		log.Error("Failed to list businesses", err, map[string]interface{}{
			"search": search,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list businesses")
		return
	}

	results := make([]gin.H, 0, len(businesses))
	for i := range businesses {
		results = append(results, businessSummary(&businesses[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"businesses": results,
		"count":      len(results),
	})
}

// ListCities returns cities that have approved businesses
// GET /api/v1/businesses/cities
func (ctrl *BusinessController) ListCities(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	cities, err := ctrl.businessService.ListCities()
	if err != nil {
		log.Error("Failed to list cities", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list cities")
		return
	}

	results := make([]gin.H, 0, len(cities))
	for _, city := range cities {
		results = append(results, gin.H{
			"city":           city.City,
			"business_count": city.BusinessCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"cities": results,
	})
}

// GetDetail returns the full business page
// GET /api/v1/businesses/:slug
func (ctrl *BusinessController) GetDetail(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	slug := c.Param("slug")
	viewerID, _ := middleware.GetUserID(c)

	detail, err := ctrl.businessService.GetDetail(c.Request.Context(), slug, viewerID)
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			apperrors.NotFound(c, apperrors.BusinessNotFound, "کسب‌وکار یافت نشد")
			return
		}
		log.Error("Failed to load business detail", err, map[string]interface{}{
			"slug": slug,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get business")
		return
	}

	b := detail.Business

	ratings := make([]gin.H, 0, len(detail.Ratings))
	for _, r := range detail.Ratings {
		ratings = append(ratings, gin.H{
			"id":         r.ID,
			"rating":     r.Rating,
			"comment":    r.Comment,
			"author":     r.User.Username,
			"edited_at":  r.EditedAt,
			"created_at": r.CreatedAt,
		})
	}

	similar := make([]gin.H, 0, len(detail.Similar))
	for i := range detail.Similar {
		similar = append(similar, businessSummary(&detail.Similar[i]))
	}

	response := businessSummary(b)
	response["address"] = b.Address
	response["phone"] = b.Phone
	response["instagram"] = b.Instagram
	response["images"] = b.Images
	response["services"] = b.Services
	response["hours"] = b.Hours
	response["owner"] = gin.H{
		"id":       b.Owner.ID,
		"username": b.Owner.Username,
	}

	c.JSON(http.StatusOK, gin.H{
		"business":          response,
		"stats":             detail.Stats,
		"ratings":           ratings,
		"similar":           similar,
		"user_has_reviewed": detail.UserHasReviewed,
	})
}

// Create registers a new business pending moderation
// POST /api/v1/businesses
func (ctrl *BusinessController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "ورود به حساب کاربری الزامی است")
		return
	}

	var req CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid business request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "اطلاعات واردشده معتبر نیست")
		return
	}

	input := service.CreateBusinessInput{
		Name:        req.Name,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		District:    req.District,
		Phone:       req.Phone,
		Instagram:   req.Instagram,
		ImageURLs:   req.ImageURLs,
	}
	for _, svc := range req.Services {
		input.Services = append(input.Services, service.BusinessServiceInput{
			Name: svc.Name,
			Icon: svc.Icon,
		})
	}
	for _, h := range req.Hours {
		input.Hours = append(input.Hours, service.BusinessHoursInput{
			Days:      h.Days,
			StartTime: h.StartTime,
			EndTime:   h.EndTime,
			IsClosed:  h.IsClosed,
		})
	}

	business, err := ctrl.businessService.Create(userID, input)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			apperrors.BadRequest(c, apperrors.CategoryNotFound, "دسته‌بندی انتخاب‌شده وجود ندارد")
			return
		}
		log.Error("Failed to create business", err, map[string]interface{}{
			"user_id": userID,
			"name":    req.Name,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create business")
		return
	}

	log.Info("Business created", map[string]interface{}{
		"business_id": business.ID,
		"slug":        business.Slug,
		"owner_id":    userID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":  "کسب‌وکار شما ثبت شد و پس از تأیید نمایش داده می‌شود",
		"business": businessSummary(business),
	})
}

// MyBusinesses lists the current user's businesses including pending ones
// GET /api/v1/me/businesses
func (ctrl *BusinessController) MyBusinesses(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "ورود به حساب کاربری الزامی است")
		return
	}

	businesses, err := ctrl.businessService.MyBusinesses(userID)
	if err != nil {
		log.Error("Failed to list own businesses", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list businesses")
		return
	}

	results := make([]gin.H, 0, len(businesses))
	for i := range businesses {
		results = append(results, businessSummary(&businesses[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"businesses": results,
	})
}
