package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/javajoker/uni402-backend/internal/config"
	"github.com/javajoker/uni402-backend/internal/database"
	"github.com/javajoker/uni402-backend/internal/i18n"
	"github.com/javajoker/uni402-backend/internal/models"
	"github.com/javajoker/uni402-backend/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	require.NoError(t, i18n.Initialize("en"))

	limiter := NewRateLimiter(rate.Every(time.Hour), 2, time.Minute)

	r := gin.New()
	r.Use(I18nMiddleware("en"), limiter.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := perform(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := perform(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")

	// another client has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.2:4000"
	assert.Equal(t, http.StatusOK, perform(r, req).Code)
}

func TestAPIKeyRequired(t *testing.T) {
	require.NoError(t, i18n.Initialize("en"))

	hash, err := utils.HashAPIKey("admin-key")
	require.NoError(t, err)

	r := gin.New()
	r.POST("/open", APIKeyRequired(""), func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.POST("/locked", APIKeyRequired(hash), func(c *gin.Context) { c.Status(http.StatusCreated) })

	assert.Equal(t, http.StatusCreated, perform(r, httptest.NewRequest(http.MethodPost, "/open", nil)).Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, httptest.NewRequest(http.MethodPost, "/locked", nil)).Code)

	req := httptest.NewRequest(http.MethodPost, "/locked", nil)
	req.Header.Set("X-API-Key", "wrong")
	assert.Equal(t, http.StatusUnauthorized, perform(r, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/locked", nil)
	req.Header.Set("X-API-Key", "admin-key")
	assert.Equal(t, http.StatusCreated, perform(r, req).Code)
}

func TestOptionalAccessPass(t *testing.T) {
	utils.SetJWTSecret("middleware-secret")
	pass, _, err := utils.GenerateAccessPass("lesson-1", "wallet-1", "sig-1", 1)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/content", OptionalAccessPass(), func(c *gin.Context) {
		value, exists := c.Get(AccessPassKey)
		if !exists {
			c.String(http.StatusOK, "none")
			return
		}
		c.String(http.StatusOK, value.(*utils.AccessPassClaims).Wallet)
	})

	req := httptest.NewRequest(http.MethodGet, "/content", nil)
	req.Header.Set("Authorization", "Bearer "+pass)
	assert.Equal(t, "wallet-1", perform(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/content", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	assert.Equal(t, "none", perform(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/content", nil)
	assert.Equal(t, "none", perform(r, req).Body.String())
}

func TestI18nMiddleware(t *testing.T) {
	require.NoError(t, i18n.Initialize("en"))

	r := gin.New()
	r.Use(I18nMiddleware("en"))
	r.GET("/lang", func(c *gin.Context) { c.String(http.StatusOK, utils.GetLangFromContext(c)) })

	tests := []struct {
		header   string
		query    string
		expected string
	}{
		{"", "", "en"},
		{"zh-TW,zh;q=0.9,en;q=0.8", "", "zh_TW"},
		{"zh-Hant", "", "zh_TW"},
		{"fr-FR", "", "en"},
		{"en-US", "zh_TW", "zh_TW"},
	}

	for _, tt := range tests {
		target := "/lang"
		if tt.query != "" {
			target += "?lang=" + tt.query
		}
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if tt.header != "" {
			req.Header.Set("Accept-Language", tt.header)
		}
		assert.Equal(t, tt.expected, perform(r, req).Body.String(), tt.header)
	}
}

func TestExtractResource(t *testing.T) {
	assert.Equal(t, "lessons", extractResourceType("/api/lessons"))
	assert.Equal(t, "lessons", extractResourceType("/api/lesson/0b7c/access"))
	assert.Equal(t, "payments", extractResourceType("/api/payments/verify"))
	assert.Equal(t, "health", extractResourceType("/health"))

	id := "3f1c2a8e-4b5d-4c6e-9f70-8a9b0c1d2e3f"
	assert.Equal(t, id, extractResourceID("/api/lesson/"+id+"/access"))
	assert.Empty(t, extractResourceID("/api/payments/verify"))
}

func TestAuditLogWrittenBeforeResponseReturns(t *testing.T) {
	db, err := database.Initialize(config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))

	r := gin.New()
	r.Use(AuditLogMiddleware(db))
	r.POST("/api/payments/verify", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/api/lessons", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/api/payments/verify", strings.NewReader(`{"lessonId":"abc","amount":0.02}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusOK, perform(r, req).Code)

	perform(r, httptest.NewRequest(http.MethodGet, "/api/lessons", nil))

	// closing right away must not lose the entry
	var logs []models.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	database.Close(db)

	require.Len(t, logs, 1)
	assert.Equal(t, "POST /api/payments/verify", logs[0].Action)
	assert.Equal(t, "payments", logs[0].ResourceType)
	assert.Equal(t, http.StatusOK, logs[0].StatusCode)
	assert.Equal(t, "abc", logs[0].NewValues["lessonId"])
}
