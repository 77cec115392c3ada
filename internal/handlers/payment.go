// internal/handlers/payment.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/uni402-backend/internal/i18n"
	"github.com/javajoker/uni402-backend/internal/services"
	"github.com/javajoker/uni402-backend/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// POST /api/payments/verify
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyPaymentFieldsMissing), err.Error())
		return
	}

	response, err := h.paymentService.VerifyPayment(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields):
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyPaymentFieldsMissing), nil)
		case errors.Is(err, services.ErrLessonNotFound):
			utils.NotFoundResponse(c, "lesson")
		case errors.Is(err, services.ErrAmountMismatch):
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyPaymentAmountMismatch), nil)
		case errors.Is(err, services.ErrInvalidSignature):
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyPaymentInvalidSignature), nil)
		case errors.Is(err, services.ErrInvalidPayer):
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyPaymentInvalidPayer), nil)
		default:
			logrus.WithError(err).Error("Payment verification failed")
			utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyPaymentSaveFailed))
		}
		return
	}

	if response.AlreadyProcessed {
		response.Message = i18n.T(lang, i18n.KeyPaymentAlreadyProcessed)
	} else {
		response.Message = i18n.T(lang, i18n.KeyPaymentRecorded)
	}

	utils.SuccessResponse(c, response)
}

// GET /api/payments
func (h *PaymentHandler) GetPaymentHistory(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	wallet := c.Query("wallet")
	if wallet == "" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyPaymentWalletRequired), nil)
		return
	}

	params := services.PaymentHistoryParams{
		PaginationParams: utils.GetPaginationParams(c),
		Wallet:           wallet,
		LessonID:         c.Query("lesson_id"),
	}

	payments, total, err := h.paymentService.GetPaymentHistory(c.Request.Context(), params)
	if err != nil {
		logrus.WithError(err).Error("Failed to load payment history")
		utils.InternalErrorResponse(c, "")
		return
	}

	result := utils.CreatePaginationResult(payments, total, params.PaginationParams)
	utils.PaginatedResponse(c, result)
}
