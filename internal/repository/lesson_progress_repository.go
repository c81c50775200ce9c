package repository

import (
	"edu_course_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LessonProgressRepository struct {
	DB *gorm.DB
}

func NewLessonProgressRepository(db *gorm.DB) *LessonProgressRepository {
	return &LessonProgressRepository{DB: db}
}

// Complete 幂等：重复完成同一课时不新增记录
func (r *LessonProgressRepository) Complete(userID, lessonID uint) error {
	return r.DB.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.LessonProgress{UserID: userID, LessonID: lessonID}).Error
}

func (r *LessonProgressRepository) CountCompleted(userID, courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id").
		Where("lesson_progresses.user_id = ? AND lessons.course_id = ? AND lessons.is_published = ?",
			userID, courseID, true).
		Count(&count).Error
	return count, err
}
