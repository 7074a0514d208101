package app

import (
	"secaware_backend/docs"
	"secaware_backend/internal/config"
	"secaware_backend/internal/middleware"
	"secaware_backend/internal/model"
	"secaware_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/auth/me", c.auth.Me)

		// 模块与小节
		authGroup.GET("/modules", c.module.ListModules)
		authGroup.GET("/modules/:id/sections", c.module.ListSections)
		authGroup.GET("/sections/:id", c.module.GetSectionDetail)

		// 阅读进度
		authGroup.POST("/content/:id/complete", c.progress.MarkContentComplete)
		authGroup.POST("/sections/:id/content/complete", c.progress.MarkSectionContentComplete)
		authGroup.GET("/sections/:id/progress", c.progress.GetSectionProgress)
		authGroup.PUT("/sections/:id/reading-position", c.quiz.SaveReadingPosition)
		authGroup.GET("/sections/:id/reading-position", c.quiz.GetReadingPosition)

		// 答题与测验
		authGroup.POST("/questions/:id/answer", c.progress.SubmitAnswer)
		authGroup.POST("/sections/:id/quiz/submit", c.quiz.SubmitQuiz)
		authGroup.PUT("/sections/:id/quiz/draft", c.quiz.SaveDraft)
		authGroup.GET("/sections/:id/quiz/draft", c.quiz.GetDraft)

		// 用户
		authGroup.GET("/users/me/statistics", c.user.GetStatistics)
		authGroup.POST("/users/me/avatar", c.user.UploadAvatar)
		authGroup.GET("/leaderboard", c.user.GetLeaderboard)

		// 管理员
		admin := authGroup.Group("/admin")
		admin.Use(middleware.RoleMiddleware(model.Admin))
		{
			admin.PATCH("/users/:id/disabled", c.user.SetDisabled)
		}
	}
}
