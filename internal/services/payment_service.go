// internal/services/payment_service.go
package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/uni402-backend/internal/config"
	"github.com/javajoker/uni402-backend/internal/database"
	"github.com/javajoker/uni402-backend/internal/models"
	"github.com/javajoker/uni402-backend/internal/utils"
)

type PaymentService struct {
	db            *gorm.DB
	config        *config.Config
	ledger        LedgerVerifier
	accessService *AccessService
}

type VerifyPaymentRequest struct {
	LessonID    string              `json:"lessonId"`
	TxSignature string              `json:"txSignature"`
	Amount      utils.FlexibleFloat `json:"amount"`
	FromAddress string              `json:"fromAddress"`
}

type VerifyPaymentResponse struct {
	Success             bool       `json:"success"`
	Message             string     `json:"message"`
	PaymentID           *uuid.UUID `json:"payment_id,omitempty"`
	AlreadyProcessed    bool       `json:"already_processed"`
	AccessGranted       bool       `json:"access_granted"`
	AccessPass          string     `json:"access_pass,omitempty"`
	AccessPassExpiresAt *time.Time `json:"access_pass_expires_at,omitempty"`
}

type PaymentHistoryParams struct {
	utils.PaginationParams
	Wallet   string `json:"wallet"`
	LessonID string `json:"lesson_id,omitempty"`
}

func NewPaymentService(db *gorm.DB, config *config.Config, ledger LedgerVerifier, accessService *AccessService) *PaymentService {
	if ledger == nil {
		ledger = NewFormatVerifier(config.Payment.StrictSignature)
	}

	return &PaymentService{
		db:            db,
		config:        config,
		ledger:        ledger,
		accessService: accessService,
	}
}

// VerifyPayment records a client's payment claim. Checks run in a fixed order:
// required fields, lesson existence, amount, then signature and payer format. A signature
// that was already recorded is reported as success without inserting a row.
func (s *PaymentService) VerifyPayment(ctx context.Context, req *VerifyPaymentRequest) (*VerifyPaymentResponse, error) {
	claim := PaymentClaim{
		LessonID:    strings.TrimSpace(req.LessonID),
		TxSignature: strings.TrimSpace(req.TxSignature),
		Amount:      req.Amount.Float64(),
		FromAddress: strings.TrimSpace(req.FromAddress),
	}

	if claim.LessonID == "" || claim.TxSignature == "" || claim.Amount == 0 || claim.FromAddress == "" {
		return nil, ErrMissingFields
	}

	lesson, err := s.findLesson(ctx, claim.LessonID)
	if err != nil {
		return nil, err
	}
	claim.LessonID = lesson.ID.String()

	if !(math.Abs(claim.Amount-lesson.Price) <= s.config.Payment.AmountTolerance) {
		return nil, ErrAmountMismatch
	}

	if err := s.ledger.VerifyClaim(ctx, claim); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		LessonID:    lesson.ID,
		TxSignature: claim.TxSignature,
		Amount:      claim.Amount,
		FromAddress: claim.FromAddress,
		Status:      models.PaymentStatusConfirmed,
		PaidAt:      time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(payment).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return s.alreadyProcessed(ctx, claim)
		}
		logrus.WithError(err).WithField("lesson_id", lesson.ID).Error("Payment save error")
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"lesson_id":  lesson.ID,
		"wallet":     claim.FromAddress,
		"amount":     claim.Amount,
	}).Info("Payment claim recorded")

	if s.accessService != nil {
		s.accessService.RememberGrant(ctx, payment)
	}

	response := &VerifyPaymentResponse{
		Success:       true,
		PaymentID:     &payment.ID,
		AccessGranted: true,
	}
	s.attachAccessPass(response, claim)

	return response, nil
}

// alreadyProcessed answers a replayed signature. Access is only confirmed when the
// stored payment belongs to the same lesson and wallet as the replay.
func (s *PaymentService) alreadyProcessed(ctx context.Context, claim PaymentClaim) (*VerifyPaymentResponse, error) {
	response := &VerifyPaymentResponse{
		Success:          true,
		AlreadyProcessed: true,
	}

	var existing models.Payment
	if err := s.db.WithContext(ctx).Where("tx_signature = ?", claim.TxSignature).First(&existing).Error; err != nil {
		logrus.WithError(err).Warn("Failed to load already processed payment")
		return response, nil
	}

	response.PaymentID = &existing.ID
	if existing.LessonID.String() == claim.LessonID &&
		existing.FromAddress == claim.FromAddress &&
		existing.Status == models.PaymentStatusConfirmed {
		response.AccessGranted = true
		s.attachAccessPass(response, claim)
	}

	return response, nil
}

func (s *PaymentService) attachAccessPass(response *VerifyPaymentResponse, claim PaymentClaim) {
	pass, expiresAt, err := utils.GenerateAccessPass(claim.LessonID, claim.FromAddress, claim.TxSignature, s.config.JWT.AccessPassTTL)
	if err != nil {
		// the client can still unlock with tx and wallet query parameters
		logrus.WithError(err).Warn("Failed to issue access pass")
		return
	}
	response.AccessPass = pass
	response.AccessPassExpiresAt = &expiresAt
}

func (s *PaymentService) GetPaymentHistory(ctx context.Context, params PaymentHistoryParams) ([]models.Payment, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("from_address = ? AND status = ?", params.Wallet, models.PaymentStatusConfirmed)

	if params.LessonID != "" {
		lessonID, err := uuid.Parse(params.LessonID)
		if err != nil {
			return []models.Payment{}, 0, nil
		}
		query = query.Where("lesson_id = ?", lessonID)
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	// Apply sorting and pagination
	if params.Sort == "created_at" {
		params.Sort = "paid_at"
	}
	allowedSortFields := []string{"paid_at", "amount"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch payments: %w", err)
	}

	return payments, total, nil
}

func (s *PaymentService) findLesson(ctx context.Context, lessonID string) (*models.Lesson, error) {
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
	return &lesson, nil
}
