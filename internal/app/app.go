package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edu_course_backend/internal/config"
	"edu_course_backend/internal/controller"
	"edu_course_backend/internal/middleware"
	"edu_course_backend/internal/repository"
	"edu_course_backend/internal/service"
	"edu_course_backend/pkg/database"
	"edu_course_backend/pkg/logger"
	"edu_course_backend/pkg/monitoring"
	"edu_course_backend/pkg/security"
	"edu_course_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
	stopBackground  context.CancelFunc
}

type repositories struct {
	user     *repository.UserRepository
	course   *repository.CourseRepository
	lesson   *repository.LessonRepository
	quiz     *repository.QuizRepository
	purchase *repository.PurchaseRepository
	code     *repository.RedemptionCodeRepository
	txn      *repository.BalanceTransactionRepository
	attempt  *repository.QuizAttemptRepository
	progress *repository.LessonProgressRepository
}

type services struct {
	auth     *service.AuthService
	course   *service.CourseService
	content  *service.ContentService
	purchase *service.PurchaseService
	quiz     *service.QuizService
	progress *service.ProgressService
	code     *service.RedemptionCodeService
}

type controllers struct {
	auth     *controller.AuthController
	course   *controller.CourseController
	content  *controller.ContentController
	purchase *controller.PurchaseController
	quiz     *controller.QuizController
	code     *controller.RedemptionCodeController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 热更新回调入口，配置文件变更后由 watcher 调用
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
	logger.Log.Info("Config reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		course:   repository.NewCourseRepository(db),
		lesson:   repository.NewLessonRepository(db),
		quiz:     repository.NewQuizRepository(db),
		purchase: repository.NewPurchaseRepository(db),
		code:     repository.NewRedemptionCodeRepository(db),
		txn:      repository.NewBalanceTransactionRepository(db),
		attempt:  repository.NewQuizAttemptRepository(db),
		progress: repository.NewLessonProgressRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.content = service.NewContentService(repos.course, repos.lesson, repos.quiz, rdb, db)
	s.course = service.NewCourseService(repos.course, repos.lesson, repos.quiz, repos.progress, repos.purchase, s.content, db)

	// 未接入真实网关：网关购买保持 PENDING，直到轮询耗尽转 FAILED
	gateway := service.StaticGateway{Status: service.PaymentPending}
	s.purchase = service.NewPurchaseService(repos.user, repos.course, repos.purchase, repos.code, repos.txn, gateway, cfg, db)

	s.quiz = service.NewQuizService(repos.quiz, repos.attempt, repos.purchase, db)
	s.progress = service.NewProgressService(repos.course, repos.lesson, repos.quiz, repos.progress, repos.attempt)
	s.code = service.NewRedemptionCodeService(repos.code, repos.course)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		course:   controller.NewCourseController(s.course, s.progress),
		content:  controller.NewContentController(s.content),
		purchase: controller.NewPurchaseController(s.purchase),
		quiz:     controller.NewQuizController(s.quiz),
		code:     controller.NewRedemptionCodeController(s.code),
		health:   controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.RequestID())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 周期结算 PENDING 购买
func (a *App) startBackgroundTasks(s *services) {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopBackground = cancel

	go func() {
		ticker := time.NewTicker(a.Config.Payment.PollIntervalSeconds)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.purchase.ResolvePendingPurchases(ctx); err != nil {
					logger.Log.Error("pending purchase resolution error", zap.Error(err))
				}
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("edu-course-platform", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.stopBackground != nil {
		a.stopBackground()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
