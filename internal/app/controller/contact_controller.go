package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kasbino/kasbino-backend/internal/app/service"
	apperrors "github.com/kasbino/kasbino-backend/internal/errors"
	"github.com/kasbino/kasbino-backend/internal/middleware"
)

type ContactController struct {
	contactService service.ContactService
}

func NewContactController(contactService service.ContactService) *ContactController {
	return &ContactController{
		contactService: contactService,
	}
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"max=20"`
	Subject string `json:"subject" binding:"max=200"`
	Message string `json:"message" binding:"required,min=10"`
}

// Submit stores a contact form message
// POST /api/v1/contact
func (ctrl *ContactController) Submit(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "اطلاعات واردشده معتبر نیست")
		return
	}

	if _, err := ctrl.contactService.Submit(req.Name, req.Email, req.Phone, req.Subject, req.Message); err != nil {
		log.Error("Failed to submit contact message", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.InternalError(c, "ارسال پیام با خطا مواجه شد")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "پیام شما با موفقیت ارسال شد",
	})
}

// List returns all submitted messages for moderators
// GET /api/v1/contact
func (ctrl *ContactController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	messages, err := ctrl.contactService.List()
	if err != nil {
		log.Error("Failed to list contact messages", err, nil)
		apperrors.InternalError(c, "دریافت پیام‌ها با خطا مواجه شد")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"count":    len(messages),
	})
}
