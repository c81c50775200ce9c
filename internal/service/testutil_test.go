package service

import (
	"os"
	"testing"

	"edu_course_backend/internal/config"
	"edu_course_backend/internal/model"
	"edu_course_backend/internal/repository"
	"edu_course_backend/pkg/database"
	"edu_course_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// 内存库跟连接走，多连接会各自拿到一个空库
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string, balance float64) *model.User {
	t.Helper()
	user := &model.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "hashed",
		Role:     model.Student,
		Balance:  balance,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedCourse(t *testing.T, db *gorm.DB, title string, price float64, published bool) *model.Course {
	t.Helper()
	course := &model.Course{
		Title:       title,
		Price:       price,
		IsPublished: published,
		CreatorID:   1,
	}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return course
}

func seedLesson(t *testing.T, db *gorm.DB, courseID uint, title string, position int, published bool) *model.Lesson {
	t.Helper()
	lesson := &model.Lesson{
		CourseID:    courseID,
		Title:       title,
		Position:    position,
		IsPublished: published,
	}
	if err := db.Create(lesson).Error; err != nil {
		t.Fatalf("seed lesson: %v", err)
	}
	return lesson
}

func seedQuiz(t *testing.T, db *gorm.DB, courseID uint, title string, position, maxAttempts int, published bool) *model.Quiz {
	t.Helper()
	quiz := &model.Quiz{
		CourseID:    courseID,
		Title:       title,
		MaxAttempts: maxAttempts,
		Position:    position,
		IsPublished: published,
	}
	if err := db.Create(quiz).Error; err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	return quiz
}

func seedActivePurchase(t *testing.T, db *gorm.DB, userID, courseID uint) {
	t.Helper()
	p := &model.Purchase{UserID: userID, CourseID: courseID, Status: model.PurchaseActive}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed purchase: %v", err)
	}
}

func newPurchaseService(db *gorm.DB, gateway PaymentGateway, cfg *config.Config) *PurchaseService {
	if cfg == nil {
		cfg = &config.Config{}
		cfg.Payment.MaxPolls = 3
	}
	return NewPurchaseService(
		repository.NewUserRepository(db),
		repository.NewCourseRepository(db),
		repository.NewPurchaseRepository(db),
		repository.NewRedemptionCodeRepository(db),
		repository.NewBalanceTransactionRepository(db),
		gateway,
		cfg,
		db,
	)
}

func newQuizServiceForTest(db *gorm.DB) *QuizService {
	return NewQuizService(
		repository.NewQuizRepository(db),
		repository.NewQuizAttemptRepository(db),
		repository.NewPurchaseRepository(db),
		db,
	)
}

func newContentServiceForTest(db *gorm.DB) *ContentService {
	return NewContentService(
		repository.NewCourseRepository(db),
		repository.NewLessonRepository(db),
		repository.NewQuizRepository(db),
		nil, // 测试不接 Redis，序列走直接构建路径
		db,
	)
}

func newProgressServiceForTest(db *gorm.DB) *ProgressService {
	return NewProgressService(
		repository.NewCourseRepository(db),
		repository.NewLessonRepository(db),
		repository.NewQuizRepository(db),
		repository.NewLessonProgressRepository(db),
		repository.NewQuizAttemptRepository(db),
	)
}
