package router

import (
	"time"

	"lms-service/internal/config"
	"lms-service/internal/handlers"
	"lms-service/internal/middleware"
	"lms-service/internal/validator"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// New assembles the Gin engine: middleware chain, CORS policy and all
// exam-question and stage-category routes under the /api/v1 prefix.
func New(cfg *config.Config, log zerolog.Logger, questions *handlers.ExamQuestionHandler, categories *handlers.StageCategoryHandler) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	validator.Setup()
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "Cache-Control", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Device fingerprinting guards body-carrying admin mutations when enabled.
	deviceGuard := func(c *gin.Context) { c.Next() }
	if cfg.DeviceCheck {
		deviceGuard = middleware.RequireDeviceFingerprint()
	}

	api := r.Group("/api/v1")

	admin := middleware.RequireRoles(middleware.RoleAdmin, middleware.RoleSuperAdmin)

	question := api.Group("/exam-questions")
	question.Use(middleware.RequireAuth(cfg.JWTSecret), admin)
	{
		question.POST("", deviceGuard, questions.Create)
		question.GET("", questions.List)

		// statistics routes must be registered before /:id
		question.GET("/statistics", questions.Statistics)
		question.GET("/statistics/:courseId", questions.Statistics)
		question.GET("/statistics/:courseId/:stageId", questions.Statistics)
		question.GET("/statistics/:courseId/:stageId/:subjectId", questions.Statistics)

		question.GET("/course/:courseId", questions.ListByCourse)
		question.POST("/bulk", deviceGuard, questions.BulkCreate)

		question.GET("/:id", questions.GetByID)
		question.PUT("/:id", deviceGuard, questions.Update)
		question.DELETE("/:id", questions.Delete)
		question.PATCH("/:id/toggle-status", questions.ToggleStatus)
	}

	category := api.Group("/stage-categories")
	{
		category.GET("", categories.List)
		category.GET("/:id", categories.Get)

		protected := category.Group("")
		protected.Use(middleware.RequireAuth(cfg.JWTSecret), middleware.RequireRoles(middleware.RoleAdmin))
		{
			protected.POST("", deviceGuard, categories.Create)
			protected.PUT("/:id", deviceGuard, categories.Update)
			protected.DELETE("/:id", categories.Delete)
		}
	}

	return r
}
