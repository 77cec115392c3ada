// internal/handlers/access.go
package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/uni402-backend/internal/i18n"
	"github.com/javajoker/uni402-backend/internal/middleware"
	"github.com/javajoker/uni402-backend/internal/services"
	"github.com/javajoker/uni402-backend/internal/utils"
)

type AccessHandler struct {
	accessService *services.AccessService
}

func NewAccessHandler(accessService *services.AccessService) *AccessHandler {
	return &AccessHandler{
		accessService: accessService,
	}
}

// GET /api/lesson/:id/check-access
func (h *AccessHandler) CheckAccess(c *gin.Context) {
	hasAccess, err := h.accessService.CheckAccess(c.Request.Context(), c.Param("id"), c.Query("wallet"))
	if err != nil {
		logrus.WithError(err).Error("Access check error")
		hasAccess = false
	}

	utils.SuccessResponse(c, gin.H{
		"has_access": hasAccess,
	})
}

// GET /api/lesson/:id/access
func (h *AccessHandler) GetLessonContent(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	lessonID := c.Param("id")

	txSignature := c.Query("tx")
	wallet := c.Query("wallet")
	if txSignature == "" || wallet == "" {
		txSignature, wallet = accessPassCredentials(c, lessonID)
	}

	decision, err := h.accessService.RequestAccess(c.Request.Context(), lessonID, wallet, txSignature)
	if err != nil {
		if errors.Is(err, services.ErrLessonNotFound) {
			utils.NotFoundResponse(c, "lesson")
			return
		}
		logrus.WithError(err).Error("Lesson fetch error")
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyDatabaseError))
		return
	}

	if !decision.Granted {
		decision.Challenge.Message = i18n.T(lang, i18n.KeyPaymentRequired)
		utils.PaymentRequiredResponse(c, decision.Challenge)
		return
	}

	utils.SuccessResponse(c, decision.Content)
}

// accessPassCredentials reads the pass stored by the access pass middleware. A pass
// issued for another lesson yields no credentials and therefore the payment challenge.
func accessPassCredentials(c *gin.Context, lessonID string) (string, string) {
	value, exists := c.Get(middleware.AccessPassKey)
	if !exists {
		return "", ""
	}

	claims, ok := value.(*utils.AccessPassClaims)
	if !ok || !strings.EqualFold(claims.LessonID, lessonID) {
		return "", ""
	}

	return claims.TxSignature, claims.Wallet
}
