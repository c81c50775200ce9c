package app

import (
	"edu_course_backend/internal/config"
	"edu_course_backend/internal/middleware"
	"edu_course_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/courses", c.course.ListCourses)
		public.GET("/courses/:id", c.course.GetCourse)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerStudentRoutes(g *gin.RouterGroup, c *controllers) {
	g.GET("/me", c.auth.Me)

	// 钱包与购买
	g.GET("/wallet", c.purchase.GetWallet)
	g.GET("/purchases", c.purchase.ListPurchases)
	g.POST("/courses/:id/purchase", c.purchase.PurchaseCourse)
	g.POST("/courses/:id/purchase/gateway", c.purchase.PurchaseViaGateway)
	g.POST("/redeem", c.purchase.RedeemCode)

	// 学习
	g.GET("/courses/:id/sequence", c.content.GetSequence)
	g.GET("/courses/:id/items/:itemId/neighbors", c.content.GetNeighbors)
	g.GET("/courses/:id/progress", c.course.GetProgress)
	g.POST("/lessons/:id/complete", c.course.CompleteLesson)

	// 测验
	g.GET("/quizzes/:id", c.quiz.GetQuizForAttempt)
	g.POST("/quizzes/:id/submit", c.quiz.SubmitQuiz)
	g.GET("/quizzes/:id/result", c.quiz.LatestResult)
	g.GET("/quizzes/:id/attempts", c.quiz.ListAttempts)
}

func (a *App) registerTeacherRoutes(g *gin.RouterGroup, c *controllers) {
	teacher := g.Group("/teacher")
	teacher.Use(middleware.RequirePermission(middleware.PermManageCourses))
	{
		teacher.POST("/courses", c.course.CreateCourse)
		teacher.PUT("/courses/:id", c.course.UpdateCourse)
		teacher.PUT("/courses/:id/publish", c.course.PublishCourse)
		teacher.POST("/courses/:id/lessons", c.course.CreateLesson)
		teacher.POST("/courses/:id/quizzes", c.course.CreateQuiz)
		teacher.PUT("/courses/:id/reorder", c.content.Reorder)
	}

	codes := g.Group("/teacher")
	codes.Use(middleware.RequirePermission(middleware.PermGenerateCodes))
	{
		codes.POST("/courses/:id/codes", c.code.GenerateCodes)
		codes.GET("/courses/:id/codes", c.code.ListCodes)
	}
}

func (a *App) registerAdminRoutes(g *gin.RouterGroup, c *controllers) {
	admin := g.Group("/admin")

	funding := admin.Group("")
	funding.Use(middleware.RequirePermission(middleware.PermFundAccounts))
	{
		funding.POST("/balance", c.purchase.AddBalance)
	}

	ops := admin.Group("")
	ops.Use(middleware.RequirePermission(middleware.PermViewOperations))
	{
		ops.POST("/purchases/resolve", c.purchase.ResolvePending)
	}
}
