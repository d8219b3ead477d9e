package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kasbino/kasbino-backend/internal/app/service"
	apperrors "github.com/kasbino/kasbino-backend/internal/errors"
	"github.com/kasbino/kasbino-backend/internal/middleware"
)

type RatingController struct {
	ratingService service.RatingService
}

func NewRatingController(ratingService service.RatingService) *RatingController {
	return &RatingController{
		ratingService: ratingService,
	}
}

type RatingRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// List returns approved reviews and aggregates for a business
// GET /api/v1/businesses/:slug/reviews
func (ctrl *RatingController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	slug := c.Param("slug")
	ratings, stats, err := ctrl.ratingService.ListApproved(slug)
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			apperrors.NotFound(c, apperrors.BusinessNotFound, "کسب‌وکار یافت نشد")
			return
		}
		log.Error("Failed to list reviews", err, map[string]interface{}{
			"slug": slug,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list reviews")
		return
	}

	results := make([]gin.H, 0, len(ratings))
	for _, r := range ratings {
		results = append(results, gin.H{
			"id":         r.ID,
			"rating":     r.Rating,
			"comment":    r.Comment,
			"author":     r.User.Username,
			"edited_at":  r.EditedAt,
			"created_at": r.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": results,
		"stats":   stats,
	})
}

// Create submits a new review pending moderation
// POST /api/v1/businesses/:slug/reviews
func (ctrl *RatingController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "برای ثبت نظر ابتدا وارد شوید")
		return
	}

	var req RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "اطلاعات واردشده معتبر نیست")
		return
	}

	slug := c.Param("slug")
	rating, err := ctrl.ratingService.AddRating(userID, slug, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			apperrors.NotFound(c, apperrors.BusinessNotFound, "کسب‌وکار یافت نشد")
		case errors.Is(err, service.ErrRatingAlreadyExists):
			apperrors.Conflict(c, apperrors.ReviewAlreadyExists, "شما قبلاً برای این کسب‌وکار نظر ثبت کرده‌اید")
		default:
			log.Error("Failed to create review", err, map[string]interface{}{
				"slug":    slug,
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create review")
		}
		return
	}

	log.Info("Review submitted", map[string]interface{}{
		"rating_id": rating.ID,
		"user_id":   userID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "نظر شما ثبت شد و پس از تأیید نمایش داده می‌شود",
		"review": gin.H{
			"id":          rating.ID,
			"rating":      rating.Rating,
			"comment":     rating.Comment,
			"is_approved": rating.IsApproved,
		},
	})
}

// Update replaces the caller's review and resets moderation
// PUT /api/v1/businesses/:slug/reviews
func (ctrl *RatingController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "برای ویرایش نظر ابتدا وارد شوید")
		return
	}

	var req RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "اطلاعات واردشده معتبر نیست")
		return
	}

	slug := c.Param("slug")
	rating, err := ctrl.ratingService.EditRating(userID, slug, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			apperrors.NotFound(c, apperrors.BusinessNotFound, "کسب‌وکار یافت نشد")
		case errors.Is(err, service.ErrRatingNotFound):
			apperrors.NotFound(c, apperrors.ReviewNotFound, "نظری برای ویرایش یافت نشد")
		default:
			log.Error("Failed to update review", err, map[string]interface{}{
				"slug":    slug,
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update review")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "نظر شما ویرایش شد و پس از تأیید مجدد نمایش داده می‌شود",
		"review": gin.H{
			"id":          rating.ID,
			"rating":      rating.Rating,
			"comment":     rating.Comment,
			"is_approved": rating.IsApproved,
			"edited_at":   rating.EditedAt,
		},
	})
}

// Delete removes the caller's review
// DELETE /api/v1/businesses/:slug/reviews
func (ctrl *RatingController) Delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "برای حذف نظر ابتدا وارد شوید")
		return
	}

	slug := c.Param("slug")
	if err := ctrl.ratingService.DeleteRating(userID, slug); err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			apperrors.NotFound(c, apperrors.BusinessNotFound, "کسب‌وکار یافت نشد")
		case errors.Is(err, service.ErrRatingNotFound):
			apperrors.NotFound(c, apperrors.ReviewNotFound, "نظری برای حذف یافت نشد")
		default:
			log.Error("Failed to delete review", err, map[string]interface{}{
				"slug":    slug,
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete review")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "نظر شما حذف شد",
	})
}

// GetMine returns the caller's review for a business
// GET /api/v1/businesses/:slug/reviews/me
func (ctrl *RatingController) GetMine(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "ورود به حساب کاربری الزامی است")
		return
	}

	slug := c.Param("slug")
	rating, err := ctrl.ratingService.GetUserRating(userID, slug)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			apperrors.NotFound(c, apperrors.BusinessNotFound, "کسب‌وکار یافت نشد")
		case errors.Is(err, service.ErrRatingNotFound):
			apperrors.NotFound(c, apperrors.ReviewNotFound, "نظری ثبت نشده است")
		default:
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get review")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"review": gin.H{
			"id":          rating.ID,
			"rating":      rating.Rating,
			"comment":     rating.Comment,
			"is_approved": rating.IsApproved,
			"edited_at":   rating.EditedAt,
			"created_at":  rating.CreatedAt,
		},
	})
}
