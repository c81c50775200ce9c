package repository

import (
	"edu_course_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.First(&quiz, id).Error
	return &quiz, err
}

// LockByID 提交判分事务内锁住测验行，串行化同一测验的并发提交计数
func (r *QuizRepository) LockByID(tx *gorm.DB, id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&quiz, id).Error
	return &quiz, err
}

func (r *QuizRepository) Update(quiz *model.Quiz) error {
	return r.DB.Save(quiz).Error
}

func (r *QuizRepository) ListPublishedByCourse(courseID uint) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Where("course_id = ? AND is_published = ?", courseID, true).
		Order("position asc, id asc").Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) ListByCourse(courseID uint) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Where("course_id = ?", courseID).
		Order("position asc, id asc").Find(&quizzes).Error
	return quizzes, err
}

// ListQuestions 按题目 position 升序，判分与展示都依赖这个顺序
func (r *QuizRepository) ListQuestions(quizID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("quiz_id = ?", quizID).
		Order("position asc, id asc").Find(&qs).Error
	return qs, err
}

func (r *QuizRepository) CreateQuestion(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuizRepository) UpdatePosition(tx *gorm.DB, courseID, id uint, position int) error {
	res := tx.Model(&model.Quiz{}).Where("id = ? AND course_id = ?", id, courseID).
		Update("position", position)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
