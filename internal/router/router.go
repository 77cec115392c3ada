// internal/router/router.go
package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/uni402-backend/internal/cache"
	"github.com/javajoker/uni402-backend/internal/config"
	"github.com/javajoker/uni402-backend/internal/handlers"
	"github.com/javajoker/uni402-backend/internal/i18n"
	"github.com/javajoker/uni402-backend/internal/middleware"
	"github.com/javajoker/uni402-backend/internal/services"
	"github.com/javajoker/uni402-backend/internal/utils"
)

// Initialize wires services and handlers into a gin engine. A nil accessCache falls back
// to an in-process cache.
func Initialize(db *gorm.DB, cfg *config.Config, accessCache cache.Cache) *gin.Engine {
	// Initialize services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Warn("Object storage unavailable, serving lesson files locally")
		storageService = services.NewLocalStorageService(cfg)
	}

	accessService := services.NewAccessService(db, cfg, accessCache, storageService)
	lessonService := services.NewLessonService(db, cfg, accessService)
	paymentService := services.NewPaymentService(db, cfg, nil, accessService)

	// Initialize handlers
	lessonHandler := handlers.NewLessonHandler(lessonService, storageService, cfg)
	accessHandler := handlers.NewAccessHandler(accessService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	healthHandler := handlers.NewHealthHandler(db)
	fileHandler := handlers.NewFileHandler(storageService)

	// Access passes are signed with the JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	utils.SetJWTIssuer(cfg.JWT.AccessPassName)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))

	limits := middleware.NewRateLimits(cfg.RateLimit)
	if cfg.RateLimit.Enabled {
		r.Use(limits.GeneralRateLimit())
	}
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	{
		api.GET("/health", healthHandler.Health)

		// Lesson catalog
		lessons := api.Group("/lessons")
		{
			lessons.GET("", lessonHandler.GetLessons)
			lessons.GET("/:id", lessonHandler.GetLesson)

			// Authoring routes
			authoring := lessons.Group("")
			authoring.Use(middleware.APIKeyRequired(cfg.Admin.APIKeyHash))
			{
				authoring.POST("", lessonHandler.CreateLesson)
				authoring.POST("/upload", lessonHandler.UploadLessonFile)
			}
		}

		// Paid access
		lesson := api.Group("/lesson")
		{
			lesson.GET("/:id/check-access", accessHandler.CheckAccess)
			lesson.GET("/:id/access", middleware.OptionalAccessPass(), accessHandler.GetLessonContent)
		}

		// Payment claims
		payments := api.Group("/payments")
		{
			verify := []gin.HandlerFunc{paymentHandler.VerifyPayment}
			if cfg.RateLimit.Enabled {
				verify = append([]gin.HandlerFunc{limits.PaymentRateLimit()}, verify...)
			}
			payments.POST("/verify", verify...)
			payments.GET("", paymentHandler.GetPaymentHistory)
		}
	}

	// Locally stored lesson files, reachable only through signed links
	if !storageService.UsesS3() {
		r.GET("/uploads/*key", fileHandler.ServeLessonFile)
	}

	registerStaticPages(r, cfg.Static.Dir)

	return r
}

var reservedPaths = map[string]bool{
	"index.html": true,
	"api":        true,
	"health":     true,
	"uploads":    true,
}

// registerStaticPages serves the storefront. Unknown non-API paths get index.html with a 404.
func registerStaticPages(r *gin.Engine, dir string) {
	index := filepath.Join(dir, "index.html")

	if _, err := os.Stat(index); err == nil {
		r.StaticFile("/", index)
		r.StaticFile("/index.html", index)
	}

	if entries, err := os.ReadDir(dir); err == nil {
		for _, entry := range entries {
			name := entry.Name()
			if reservedPaths[name] {
				continue
			}
			if entry.IsDir() {
				r.Static("/"+name, filepath.Join(dir, name))
				continue
			}
			r.StaticFile("/"+name, filepath.Join(dir, name))
		}
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			lang := utils.GetLangFromContext(c)
			utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", i18n.T(lang, i18n.KeyRouteNotFound), nil)
			return
		}

		page, err := os.ReadFile(index)
		if err != nil {
			lang := utils.GetLangFromContext(c)
			utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", i18n.T(lang, i18n.KeyRouteNotFound), nil)
			return
		}

		c.Data(http.StatusNotFound, "text/html; charset=utf-8", page)
	})
}
