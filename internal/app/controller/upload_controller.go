package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kasbino/kasbino-backend/internal/errors"
	"github.com/kasbino/kasbino-backend/internal/middleware"
	"github.com/kasbino/kasbino-backend/internal/storage"
)

type UploadController struct {
	storage *storage.S3Storage
}

func NewUploadController(storage *storage.S3Storage) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

type GeneratePresignedURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Folder      string `json:"folder"` // businesses, profiles or chat
}

// chat attachments additionally allow video and document payloads
var allowedTypesByFolder = map[string][]string{
	"businesses": {"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp"},
	"profiles":   {"image/jpeg", "image/jpg", "image/png", "image/webp"},
	"chat":       {"image/", "video/", "application/"},
}

// maxUploadSize caps every upload at 10MB.
const maxUploadSize = 10 * 1024 * 1024

// GeneratePresignedURL generates a presigned URL for uploading files to S3
// POST /api/v1/upload/presigned-url
func (ctrl *UploadController) GeneratePresignedURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req GeneratePresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid presigned URL request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "اطلاعات واردشده معتبر نیست")
		return
	}

	folder := req.Folder
	if folder == "" {
		folder = "businesses"
	}

	allowedTypes, ok := allowedTypesByFolder[folder]
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "پوشه آپلود نامعتبر است")
		return
	}

	if err := ctrl.storage.ValidateContentType(req.ContentType, allowedTypes); err != nil {
		log.Warn("Invalid content type", map[string]interface{}{
			"content_type": req.ContentType,
			"folder":       folder,
		})
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "نوع فایل برای آپلود مجاز نیست")
		return
	}

	response, err := ctrl.storage.GeneratePresignedURL(req.Filename, req.ContentType, folder)
	if err != nil {
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"filename": req.Filename,
			"folder":   folder,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "ایجاد لینک آپلود با خطا مواجه شد")
		return
	}

	log.Info("Presigned URL generated", map[string]interface{}{
		"folder": folder,
		"key":    response.Key,
	})

	c.JSON(http.StatusOK, gin.H{
		"upload_url": response.UploadURL,
		"file_url":   response.FileURL,
		"key":        response.Key,
		"max_size":   maxUploadSize,
	})
}
