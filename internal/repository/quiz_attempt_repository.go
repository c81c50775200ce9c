package repository

import (
	"edu_course_backend/internal/model"

	"gorm.io/gorm"
)

type QuizAttemptRepository struct {
	DB *gorm.DB
}

func NewQuizAttemptRepository(db *gorm.DB) *QuizAttemptRepository {
	return &QuizAttemptRepository{DB: db}
}

// Count 支持在事务内调用：提交时的次数上限校验必须用插入事务里的计数
func (r *QuizAttemptRepository) Count(tx *gorm.DB, studentID, quizID uint) (int64, error) {
	if tx == nil {
		tx = r.DB
	}
	var count int64
	err := tx.Model(&model.QuizAttempt{}).
		Where("student_id = ? AND quiz_id = ?", studentID, quizID).
		Count(&count).Error
	return count, err
}

func (r *QuizAttemptRepository) Latest(studentID, quizID uint) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.DB.Preload("Answers").
		Where("student_id = ? AND quiz_id = ?", studentID, quizID).
		Order("attempt_number desc").First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *QuizAttemptRepository) ListByStudentAndQuiz(studentID, quizID uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("student_id = ? AND quiz_id = ?", studentID, quizID).
		Order("attempt_number desc").Find(&attempts).Error
	return attempts, err
}

// DistinctAttemptedQuizCount 用户在某课程下至少提交过一次的测验数（去重），
// 进度统计口径：任意得分的尝试都算完成
func (r *QuizAttemptRepository) DistinctAttemptedQuizCount(userID, courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizAttempt{}).
		Distinct("quiz_attempts.quiz_id").
		Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id").
		Where("quiz_attempts.student_id = ? AND quizzes.course_id = ? AND quizzes.is_published = ?",
			userID, courseID, true).
		Count(&count).Error
	return count, err
}
