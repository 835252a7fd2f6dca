package router

import (
	"github.com/gia-feedback/feedback-api/internal/config"
	"github.com/gia-feedback/feedback-api/internal/handlers"
	"github.com/gia-feedback/feedback-api/internal/middleware"
	"github.com/gia-feedback/feedback-api/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, cfg *config.Config, log *zap.Logger) *gin.Engine {
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		log.Warn("file storage unavailable, uploads disabled", zap.Error(err))
	}

	questionService := services.NewQuestionService(db, log)
	formService := services.NewFormService(db, questionService, storageService, log)
	responseService := services.NewResponseService(db, storageService, cfg.StrictSubmissions, log)
	pdfRenderer := services.NewPDFRenderer(log)
	excelRenderer := services.NewExcelRenderer(log)

	rateLimiter, err := middleware.NewRateLimiter(cfg.RedisURL)
	if err != nil {
		log.Warn("rate limiter unavailable, login throttling disabled", zap.Error(err))
	}

	gin.SetMode(cfg.GinMode)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck(db))

		auth := api.Group("/auth")
		{
			login := handlers.Login(db, cfg)
			if rateLimiter != nil {
				// 5 attempts per 15 minutes per IP.
				auth.POST("/login", rateLimiter.ByIP(5, 900), login)
			} else {
				auth.POST("/login", login)
			}
			auth.POST("/register", middleware.AuthRequired(cfg), middleware.AdminRequired(), handlers.Register(db))
			auth.GET("/me", middleware.AuthRequired(cfg), handlers.GetCurrentUser(db))
		}

		visitor := api.Group("/visitor")
		{
			visitor.POST("/guest", handlers.GuestLogin(db))
			visitor.POST("/internal", handlers.InternalLogin(db))
		}

		forms := api.Group("/forms")
		{
			forms.GET("", handlers.ListForms(formService))
			forms.GET("/active/:visitorType", handlers.GetActiveForm(formService))
			forms.GET("/:id", handlers.GetForm(formService))

			protected := forms.Group("", middleware.AuthRequired(cfg))
			{
				protected.POST("", handlers.CreateForm(formService))
				protected.PUT("/:id", handlers.UpdateForm(formService))
				protected.DELETE("/:id", handlers.DeleteForm(formService))
				protected.POST("/:id/set-active-guest", handlers.SetActiveGuest(formService))
				protected.POST("/:id/set-active-internal", handlers.SetActiveInternal(formService))
			}
		}

		questions := api.Group("/questions", middleware.AuthRequired(cfg))
		{
			questions.POST("/:formId", handlers.AddQuestion(questionService))
			questions.GET("/:id", handlers.GetQuestion(questionService))
			questions.PUT("/:id", handlers.UpdateQuestion(questionService))
			questions.DELETE("/:id", handlers.DeleteQuestion(questionService))
		}

		responses := api.Group("/responses")
		{
			responses.POST("/:formId", handlers.SubmitResponse(responseService))

			protected := responses.Group("", middleware.AuthRequired(cfg))
			{
				protected.GET("/download/all", handlers.DownloadAllResponses(responseService, excelRenderer))
				protected.GET("/pdf/:responseId", handlers.DownloadResponsePDF(responseService, pdfRenderer))
				protected.GET("/detail/:responseId", handlers.GetResponseDetails(responseService))
				protected.GET("/:formId", handlers.ListResponses(responseService))
				protected.DELETE("/:responseId", handlers.DeleteResponse(responseService))
			}
		}

		uploads := api.Group("/uploads")
		{
			uploads.POST("", handlers.UploadFile(storageService))
			uploads.GET("/:name", middleware.AuthRequired(cfg), handlers.DownloadFile(storageService))
		}
	}

	return r
}
