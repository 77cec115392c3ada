// internal/services/access_service.go
package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/uni402-backend/internal/cache"
	"github.com/javajoker/uni402-backend/internal/config"
	"github.com/javajoker/uni402-backend/internal/database"
	"github.com/javajoker/uni402-backend/internal/models"
	"github.com/javajoker/uni402-backend/internal/utils"
)

const (
	x402Version        = 1
	exactPaymentScheme = "exact"
	challengeMessage   = "x402 payment required for lesson access"
)

// AccessService derives lesson access from confirmed payments. Access is never stored on its own.
type AccessService struct {
	db             *gorm.DB
	config         *config.Config
	cache          cache.Cache
	storageService *StorageService
}

// PaymentRequirement mirrors a single x402 "accepts" entry.
type PaymentRequirement struct {
	Scheme            string                 `json:"scheme"`
	Network           string                 `json:"network"`
	Asset             string                 `json:"asset"`
	Amount            string                 `json:"amount"`
	MaxAmountRequired string                 `json:"maxAmountRequired"`
	PayTo             string                 `json:"payTo"`
	Resource          string                 `json:"resource,omitempty"`
	Description       string                 `json:"description,omitempty"`
	MaxTimeoutSeconds int                    `json:"maxTimeoutSeconds"`
	Extra             map[string]interface{} `json:"extra,omitempty"`
}

// PaymentChallenge is the body of a 402 response.
type PaymentChallenge struct {
	Price          float64              `json:"price"`
	Token          string               `json:"token"`
	Address        string               `json:"address"`
	Message        string               `json:"message"`
	LessonID       string               `json:"lesson_id"`
	USDCMint       string               `json:"usdc_mint"`
	Network        string               `json:"network"`
	RequiredAmount float64              `json:"required_amount"`
	X402Version    int                  `json:"x402Version"`
	Accepts        []PaymentRequirement `json:"accepts"`
}

// AccessDecision is either Granted (Content set) or Denied (Challenge set).
type AccessDecision struct {
	Granted   bool
	Content   *models.LessonContent
	Challenge *PaymentChallenge
}

func NewAccessService(db *gorm.DB, config *config.Config, accessCache cache.Cache, storageService *StorageService) *AccessService {
	if accessCache == nil {
		accessCache = cache.NewMemoryCache()
	}

	return &AccessService{
		db:             db,
		config:         config,
		cache:          accessCache,
		storageService: storageService,
	}
}

// RequestAccess grants the lesson content when a confirmed payment matches
// (lesson, wallet, signature), and otherwise returns the payment challenge.
func (s *AccessService) RequestAccess(ctx context.Context, lessonID, walletAddress, txSignature string) (*AccessDecision, error) {
	id, err := uuid.Parse(lessonID)
	if err != nil {
		return nil, ErrLessonNotFound
	}

	if walletAddress != "" && txSignature != "" {
		granted, err := s.hasConfirmedPayment(ctx, id, walletAddress, txSignature)
		if err != nil {
			// lookup failures deny access rather than fail the request
			logrus.WithError(err).WithField("lesson_id", lessonID).Error("Payment check error")
		}
		if granted {
			return s.grant(ctx, id)
		}
	}

	lesson, err := s.findLesson(ctx, id)
	if err != nil {
		return nil, err
	}

	return &AccessDecision{
		Granted:   false,
		Challenge: s.BuildChallenge(lesson),
	}, nil
}

// CheckAccess reports whether the wallet holds any confirmed payment for the lesson.
func (s *AccessService) CheckAccess(ctx context.Context, lessonID, walletAddress string) (bool, error) {
	if walletAddress == "" {
		return false, nil
	}

	id, err := uuid.Parse(lessonID)
	if err != nil {
		return false, nil
	}

	var count int64
	err = s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("lesson_id = ? AND from_address = ? AND status = ?", id, walletAddress, models.PaymentStatusConfirmed).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check access: %w", err)
	}

	return count > 0, nil
}

// UnlockedLessons returns the subset of lessonIDs the wallet has paid for.
func (s *AccessService) UnlockedLessons(ctx context.Context, walletAddress string, lessonIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	unlocked := make(map[uuid.UUID]bool)
	if walletAddress == "" || len(lessonIDs) == 0 {
		return unlocked, nil
	}

	var paid []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("from_address = ? AND status = ? AND lesson_id IN ?", walletAddress, models.PaymentStatusConfirmed, lessonIDs).
		Distinct().
		Pluck("lesson_id", &paid).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load unlocked lessons: %w", err)
	}

	for _, id := range paid {
		unlocked[id] = true
	}
	return unlocked, nil
}

// RememberGrant primes the access cache for a freshly confirmed payment.
func (s *AccessService) RememberGrant(ctx context.Context, payment *models.Payment) {
	if payment.Status != models.PaymentStatusConfirmed {
		return
	}
	key := accessCacheKey(payment.LessonID.String(), payment.FromAddress, payment.TxSignature)
	s.cache.Set(ctx, key, []byte(payment.ID.String()), s.cacheTTL())
}

func (s *AccessService) BuildChallenge(lesson *models.Lesson) *PaymentChallenge {
	payment := s.config.Payment
	amount := strconv.FormatInt(toBaseUnits(lesson.Price, payment.AssetDecimals), 10)

	return &PaymentChallenge{
		Price:          lesson.Price,
		Token:          payment.AssetSymbol,
		Address:        payment.RecipientAddress,
		Message:        challengeMessage,
		LessonID:       lesson.ID.String(),
		USDCMint:       payment.AssetMint,
		Network:        payment.Network,
		RequiredAmount: lesson.Price,
		X402Version:    x402Version,
		Accepts: []PaymentRequirement{
			{
				Scheme:            exactPaymentScheme,
				Network:           payment.Network,
				Asset:             payment.AssetMint,
				Amount:            amount,
				MaxAmountRequired: amount,
				PayTo:             payment.RecipientAddress,
				Resource:          fmt.Sprintf("/api/lesson/%s/access", lesson.ID),
				Description:       lesson.Title,
				MaxTimeoutSeconds: payment.MaxTimeoutSeconds,
				Extra: map[string]interface{}{
					"symbol":   payment.AssetSymbol,
					"decimals": payment.AssetDecimals,
				},
			},
		},
	}
}

func (s *AccessService) hasConfirmedPayment(ctx context.Context, lessonID uuid.UUID, walletAddress, txSignature string) (bool, error) {
	key := accessCacheKey(lessonID.String(), walletAddress, txSignature)
	if _, ok := s.cache.Get(ctx, key); ok {
		return true, nil
	}

	var payment models.Payment
	err := s.db.WithContext(ctx).
		Where("tx_signature = ? AND lesson_id = ? AND from_address = ? AND status = ?",
			txSignature, lessonID, walletAddress, models.PaymentStatusConfirmed).
		First(&payment).Error
	if database.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	// only grants are cached, so a new payment is never masked by a stale denial
	s.cache.Set(ctx, key, []byte(payment.ID.String()), s.cacheTTL())
	return true, nil
}

func (s *AccessService) grant(ctx context.Context, lessonID uuid.UUID) (*AccessDecision, error) {
	lesson, err := s.findLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	content := &models.LessonContent{
		Title:       lesson.Title,
		Description: lesson.Description,
		Price:       lesson.Price,
		ContentType: lesson.ContentType,
		ContentData: lesson.ContentData,
		Unlocked:    true,
	}

	if s.storageService != nil {
		contentURL, err := s.storageService.ContentURL(lesson)
		if err != nil {
			logrus.WithError(err).WithField("lesson_id", lesson.ID).Warn("Failed to build content URL")
		}
		content.ContentURL = contentURL
	}

	return &AccessDecision{Granted: true, Content: content}, nil
}

func (s *AccessService) findLesson(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := s.db.WithContext(ctx).First(&lesson, "id = ?", id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to fetch lesson: %w", err)
	}
	return &lesson, nil
}

func (s *AccessService) cacheTTL() time.Duration {
	return time.Duration(s.config.Redis.TTL) * time.Second
}

func accessCacheKey(lessonID, walletAddress, txSignature string) string {
	return "access:" + utils.HashKey(lessonID, walletAddress, txSignature)
}

func toBaseUnits(amount float64, decimals int) int64 {
	return int64(math.Round(amount * math.Pow10(decimals)))
}
