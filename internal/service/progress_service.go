package service

import (
	"errors"
	"math"

	"edu_course_backend/internal/repository"
	"edu_course_backend/internal/util"

	"gorm.io/gorm"
)

// ProgressService 课程完成度统计。
// 口径：总数 = 已发布课时数 + 已发布测验数；
// 完成数 = 有完成记录的课时数 + 至少提交过一次的测验数（去重，不要求及格）。
type ProgressService struct {
	CourseRepo   *repository.CourseRepository
	LessonRepo   *repository.LessonRepository
	QuizRepo     *repository.QuizRepository
	ProgressRepo *repository.LessonProgressRepository
	AttemptRepo  *repository.QuizAttemptRepository
}

func NewProgressService(
	courseRepo *repository.CourseRepository,
	lessonRepo *repository.LessonRepository,
	quizRepo *repository.QuizRepository,
	progressRepo *repository.LessonProgressRepository,
	attemptRepo *repository.QuizAttemptRepository,
) *ProgressService {
	return &ProgressService{
		CourseRepo:   courseRepo,
		LessonRepo:   lessonRepo,
		QuizRepo:     quizRepo,
		ProgressRepo: progressRepo,
		AttemptRepo:  attemptRepo,
	}
}

type CourseProgress struct {
	CourseID       uint `json:"courseId"`
	TotalItems     int  `json:"totalItems"`
	CompletedItems int  `json:"completedItems"`
	Percentage     int  `json:"percentage"`
}

func (s *ProgressService) GetCourseProgress(userID, courseID uint) (*CourseProgress, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	lessons, err := s.LessonRepo.ListPublishedByCourse(courseID)
	if err != nil {
		return nil, err
	}
	quizzes, err := s.QuizRepo.ListPublishedByCourse(courseID)
	if err != nil {
		return nil, err
	}

	total := len(lessons) + len(quizzes)

	// 没有已发布内容时进度定义为 0，不是错误也不是 NaN
	if total == 0 {
		return &CourseProgress{CourseID: courseID}, nil
	}

	completedLessons, err := s.ProgressRepo.CountCompleted(userID, courseID)
	if err != nil {
		return nil, err
	}
	attemptedQuizzes, err := s.AttemptRepo.DistinctAttemptedQuizCount(userID, courseID)
	if err != nil {
		return nil, err
	}

	completed := int(completedLessons + attemptedQuizzes)
	percentage := int(math.Round(float64(completed) / float64(total) * 100))

	return &CourseProgress{
		CourseID:       courseID,
		TotalItems:     total,
		CompletedItems: completed,
		Percentage:     percentage,
	}, nil
}
