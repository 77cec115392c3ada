// internal/handlers/health.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/uni402-backend/internal/i18n"
	"github.com/javajoker/uni402-backend/internal/utils"
)

const (
	serviceName    = "Uni402 Platform"
	serviceVersion = "1.0.0"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// GET /api/health
func (h *HealthHandler) Health(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	status := "healthy"
	code := http.StatusOK
	message := i18n.T(lang, i18n.KeyServiceHealthy)

	if err := h.ping(c.Request.Context()); err != nil {
		logrus.WithError(err).Warn("Health check database ping failed")
		status = "degraded"
		code = http.StatusServiceUnavailable
		message = i18n.T(lang, i18n.KeyServiceDegraded)
	}

	c.JSON(code, gin.H{
		"status":    status,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"service":   serviceName,
		"version":   serviceVersion,
	})
}

func (h *HealthHandler) ping(ctx context.Context) error {
	if h.db == nil {
		return nil
	}

	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
