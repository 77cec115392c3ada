// internal/services/lesson_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/uni402-backend/internal/config"
	"github.com/javajoker/uni402-backend/internal/database"
	"github.com/javajoker/uni402-backend/internal/models"
	"github.com/javajoker/uni402-backend/internal/utils"
)

type LessonService struct {
	db            *gorm.DB
	config        *config.Config
	accessService *AccessService
}

type CreateLessonRequest struct {
	Title       string              `json:"title" validate:"max=255"`
	Description string              `json:"description,omitempty"`
	Price       utils.FlexibleFloat `json:"price"`
	ContentType models.ContentType  `json:"content_type,omitempty" validate:"omitempty,content_type"`
	ContentData string              `json:"content_data"`
}

type CreateLessonResponse struct {
	Success   bool      `json:"success"`
	LessonID  uuid.UUID `json:"lesson_id"`
	LessonURL string    `json:"lesson_url"`
}

type LessonSearchParams struct {
	utils.PaginationParams
	Wallet string `json:"wallet,omitempty"`
}

func NewLessonService(db *gorm.DB, config *config.Config, accessService *AccessService) *LessonService {
	return &LessonService{
		db:            db,
		config:        config,
		accessService: accessService,
	}
}

func (s *LessonService) CreateLesson(ctx context.Context, req *CreateLessonRequest) (*CreateLessonResponse, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || strings.TrimSpace(req.ContentData) == "" {
		return nil, ErrMissingFields
	}

	// written as a containment check so NaN falls outside the range
	price := req.Price.Float64()
	if !(price >= s.config.Payment.MinLessonPrice && price <= s.config.Payment.MaxLessonPrice) {
		return nil, ErrPriceOutOfRange
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = models.ContentTypeText
	}
	if !contentType.IsValid() {
		return nil, fmt.Errorf("unsupported content type %q", contentType)
	}

	lesson := &models.Lesson{
		Title:       req.Title,
		Description: req.Description,
		Price:       price,
		ContentType: contentType,
		ContentData: req.ContentData,
	}

	if err := s.db.WithContext(ctx).Create(lesson).Error; err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"lesson_id":    lesson.ID,
		"price":        lesson.Price,
		"content_type": lesson.ContentType,
	}).Info("Lesson created")

	return &CreateLessonResponse{
		Success:   true,
		LessonID:  lesson.ID,
		LessonURL: fmt.Sprintf("/lesson.html?id=%s", lesson.ID),
	}, nil
}

func (s *LessonService) GetLesson(ctx context.Context, lessonID string) (*models.LessonSummary, error) {
	id, err := uuid.Parse(lessonID)
	if err != nil {
		return nil, ErrLessonNotFound
	}

	var lesson models.Lesson
	if err := s.db.WithContext(ctx).First(&lesson, "id = ?", id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to fetch lesson: %w", err)
	}

	summary := lesson.Summary()
	return &summary, nil
}

// ListLessons returns catalog summaries, newest first. When a wallet is given,
// lessons it has paid for are flagged as unlocked.
func (s *LessonService) ListLessons(ctx context.Context, params LessonSearchParams) ([]models.LessonSummary, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Lesson{})

	if params.Search != "" {
		pattern := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count lessons: %w", err)
	}

	// Apply sorting and pagination
	allowedSortFields := []string{"created_at", "price", "title"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var lessons []models.Lesson
	if err := query.Omit("content_data").Find(&lessons).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch lessons: %w", err)
	}

	ids := make([]uuid.UUID, len(lessons))
	for i := range lessons {
		ids[i] = lessons[i].ID
	}

	unlocked := map[uuid.UUID]bool{}
	if params.Wallet != "" && s.accessService != nil {
		paid, err := s.accessService.UnlockedLessons(ctx, params.Wallet, ids)
		if err != nil {
			// the catalog is still useful without the unlocked flags
			logrus.WithError(err).Warn("Failed to resolve unlocked lessons")
		} else {
			unlocked = paid
		}
	}

	summaries := make([]models.LessonSummary, len(lessons))
	for i := range lessons {
		summaries[i] = lessons[i].Summary()
		summaries[i].Unlocked = unlocked[lessons[i].ID]
	}

	return summaries, total, nil
}
