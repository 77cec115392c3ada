// internal/handlers/lesson.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/uni402-backend/internal/config"
	"github.com/javajoker/uni402-backend/internal/i18n"
	"github.com/javajoker/uni402-backend/internal/models"
	"github.com/javajoker/uni402-backend/internal/services"
	"github.com/javajoker/uni402-backend/internal/utils"
)

type LessonHandler struct {
	lessonService  *services.LessonService
	storageService *services.StorageService
	config         *config.Config
}

func NewLessonHandler(lessonService *services.LessonService, storageService *services.StorageService, config *config.Config) *LessonHandler {
	return &LessonHandler{
		lessonService:  lessonService,
		storageService: storageService,
		config:         config,
	}
}

// GET /api/lessons
func (h *LessonHandler) GetLessons(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	params := services.LessonSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
		Wallet:           c.Query("wallet"),
	}

	lessons, total, err := h.lessonService.ListLessons(c.Request.Context(), params)
	if err != nil {
		logrus.WithError(err).Error("Database error")
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyLessonFetchFailed))
		return
	}

	result := utils.CreatePaginationResult(lessons, total, params.PaginationParams)
	utils.PaginatedResponse(c, result)
}

// GET /api/lessons/:id
func (h *LessonHandler) GetLesson(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	lesson, err := h.lessonService.GetLesson(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrLessonNotFound) {
			utils.NotFoundResponse(c, "lesson")
			return
		}
		logrus.WithError(err).Error("Database error")
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyLessonFetchFailed))
		return
	}

	utils.SuccessResponse(c, lesson)
}

// POST /api/lessons
func (h *LessonHandler) CreateLesson(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	response, err := h.lessonService.CreateLesson(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields):
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyLessonFieldsMissing), nil)
		case errors.Is(err, services.ErrPriceOutOfRange):
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyLessonPriceRange,
				h.config.Payment.MinLessonPrice, h.config.Payment.MaxLessonPrice), nil)
		default:
			logrus.WithError(err).Error("Failed to create lesson")
			utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyLessonCreateFailed))
		}
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyLessonCreated),
		"lesson_id":  response.LessonID,
		"lesson_url": response.LessonURL,
	})
}

// POST /api/lessons/upload
func (h *LessonHandler) UploadLessonFile(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "file"), nil)
		return
	}
	defer file.Close()

	contentType := models.ContentType(c.DefaultPostForm("content_type", string(models.ContentTypePDF)))
	if !contentType.HasObjectPayload() {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "content_type"), nil)
		return
	}

	result, err := h.storageService.UploadFile(file, header, h.storageService.GetDefaultUploadOptions(contentType))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"content_type": contentType,
		"content_data": result.Key,
		"file":         result,
	})
}
