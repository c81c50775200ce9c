package repository

import (
	"edu_course_backend/internal/model"

	"gorm.io/gorm"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

func (r *LessonRepository) Create(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *LessonRepository) FindByID(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.First(&lesson, id).Error
	return &lesson, err
}

func (r *LessonRepository) Update(lesson *model.Lesson) error {
	return r.DB.Save(lesson).Error
}

// ListPublishedByCourse 按 position 升序返回已发布课时，归并排序的左输入
func (r *LessonRepository) ListPublishedByCourse(courseID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Where("course_id = ? AND is_published = ?", courseID, true).
		Order("position asc, id asc").Find(&lessons).Error
	return lessons, err
}

func (r *LessonRepository) ListByCourse(courseID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Where("course_id = ?", courseID).
		Order("position asc, id asc").Find(&lessons).Error
	return lessons, err
}

func (r *LessonRepository) UpdatePosition(tx *gorm.DB, courseID, id uint, position int) error {
	res := tx.Model(&model.Lesson{}).Where("id = ? AND course_id = ?", id, courseID).
		Update("position", position)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
