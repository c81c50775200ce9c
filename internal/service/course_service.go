package service

import (
	"context"
	"errors"

	"edu_course_backend/internal/model"
	"edu_course_backend/internal/repository"
	"edu_course_backend/internal/util"

	"gorm.io/gorm"
)

// CourseService 课程与课时/测验的创作维护，以及学员的课时完成打卡。
type CourseService struct {
	CourseRepo   *repository.CourseRepository
	LessonRepo   *repository.LessonRepository
	QuizRepo     *repository.QuizRepository
	ProgressRepo *repository.LessonProgressRepository
	PurchaseRepo *repository.PurchaseRepository
	Content      *ContentService
	DB           *gorm.DB
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	lessonRepo *repository.LessonRepository,
	quizRepo *repository.QuizRepository,
	progressRepo *repository.LessonProgressRepository,
	purchaseRepo *repository.PurchaseRepository,
	content *ContentService,
	db *gorm.DB,
) *CourseService {
	return &CourseService{
		CourseRepo:   courseRepo,
		LessonRepo:   lessonRepo,
		QuizRepo:     quizRepo,
		ProgressRepo: progressRepo,
		PurchaseRepo: purchaseRepo,
		Content:      content,
		DB:           db,
	}
}

type CourseInput struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

func (s *CourseService) CreateCourse(creatorID uint, in CourseInput) (*model.Course, error) {
	if in.Price < 0 {
		return nil, util.ErrInvalidAmount
	}
	course := &model.Course{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		CreatorID:   creatorID,
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) UpdateCourse(courseID uint, in CourseInput) (*model.Course, error) {
	if in.Price < 0 {
		return nil, util.ErrInvalidAmount
	}
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	course.Title = in.Title
	course.Description = in.Description
	course.Price = in.Price
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) PublishCourse(ctx context.Context, courseID uint, published bool) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	course.IsPublished = published
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	s.Content.InvalidateSequence(ctx, courseID)
	return course, nil
}

func (s *CourseService) GetCourse(courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (s *CourseService) ListPublishedCourses(page, limit int) ([]model.Course, int64, error) {
	return s.CourseRepo.ListPublished(page, limit)
}

type LessonInput struct {
	Title       string `json:"title" binding:"required"`
	Content     string `json:"content"`
	Position    int    `json:"position"`
	IsPublished bool   `json:"isPublished"`
}

func (s *CourseService) CreateLesson(ctx context.Context, courseID uint, in LessonInput) (*model.Lesson, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	lesson := &model.Lesson{
		CourseID:    courseID,
		Title:       in.Title,
		Content:     in.Content,
		Position:    in.Position,
		IsPublished: in.IsPublished,
	}
	if err := s.LessonRepo.Create(lesson); err != nil {
		return nil, err
	}
	s.Content.InvalidateSequence(ctx, courseID)
	return lesson, nil
}

type QuestionInput struct {
	Type          model.QuestionType `json:"type" binding:"required"`
	Content       string             `json:"content" binding:"required"`
	Options       []string           `json:"options"`
	CorrectAnswer string             `json:"correctAnswer" binding:"required"`
	Points        int                `json:"points"`
	Position      int                `json:"position"`
}

type QuizInput struct {
	Title       string          `json:"title" binding:"required"`
	MaxAttempts int             `json:"maxAttempts"`
	TimeLimit   *int            `json:"timeLimit"`
	Position    int             `json:"position"`
	IsPublished bool            `json:"isPublished"`
	Questions   []QuestionInput `json:"questions"`
}

// CreateQuiz 测验连同题目一个事务写入，题目选项统一序列化为 JSON 数组
func (s *CourseService) CreateQuiz(ctx context.Context, courseID uint, in QuizInput) (*model.Quiz, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if in.MaxAttempts <= 0 {
		in.MaxAttempts = 1
	}

	quiz := &model.Quiz{
		CourseID:    courseID,
		Title:       in.Title,
		MaxAttempts: in.MaxAttempts,
		TimeLimit:   in.TimeLimit,
		Position:    in.Position,
		IsPublished: in.IsPublished,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quiz).Error; err != nil {
			return err
		}
		for i, q := range in.Questions {
			points := q.Points
			if points <= 0 {
				points = 1
			}
			question := &model.Question{
				QuizID:        quiz.ID,
				Type:          q.Type,
				Content:       q.Content,
				Options:       StringifyOptions(q.Options),
				CorrectAnswer: q.CorrectAnswer,
				Points:        points,
				Position:      q.Position,
			}
			if question.Position == 0 {
				question.Position = i + 1
			}
			if err := tx.Create(question).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Content.InvalidateSequence(ctx, courseID)
	return quiz, nil
}

// CompleteLesson 学员打卡，重复打卡幂等
func (s *CourseService) CompleteLesson(userID, lessonID uint) error {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil || !lesson.IsPublished {
		return util.ErrLessonNotFound
	}

	course, err := s.CourseRepo.FindPublishedByID(lesson.CourseID)
	if err != nil {
		return util.ErrCourseNotFound
	}

	hasAccess, err := s.PurchaseRepo.HasActiveForCourse(userID, course.ID)
	if err != nil {
		return err
	}
	if !hasAccess {
		return util.ErrCourseAccessRequired
	}

	return s.ProgressRepo.Complete(userID, lessonID)
}
