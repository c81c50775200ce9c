package repository

import (
	"edu_course_backend/internal/model"

	"gorm.io/gorm"
)

type PurchaseRepository struct {
	DB *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{DB: db}
}

func (r *PurchaseRepository) FindActive(userID, courseID uint) (*model.Purchase, error) {
	var p model.Purchase
	err := r.DB.Where("user_id = ? AND course_id = ? AND status = ?",
		userID, courseID, model.PurchaseActive).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PurchaseRepository) FindByPair(userID, courseID uint) (*model.Purchase, error) {
	var p model.Purchase
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteInactive 物理删除该用户/课程对下的 FAILED/CANCELED 记录，
// 释放 (user_id, course_id) 唯一约束供重试。软删除会继续占用唯一索引，
// 所以这里必须 Unscoped。
func (r *PurchaseRepository) DeleteInactive(tx *gorm.DB, userID, courseID uint) error {
	return tx.Unscoped().
		Where("user_id = ? AND course_id = ? AND status IN ?",
			userID, courseID, []model.PurchaseStatus{model.PurchaseFailed, model.PurchaseCanceled}).
		Delete(&model.Purchase{}).Error
}

func (r *PurchaseRepository) ListByUser(userID uint) ([]model.Purchase, error) {
	var purchases []model.Purchase
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&purchases).Error
	return purchases, err
}

func (r *PurchaseRepository) ListPending() ([]model.Purchase, error) {
	var purchases []model.Purchase
	err := r.DB.Where("status = ?", model.PurchasePending).Find(&purchases).Error
	return purchases, err
}

func (r *PurchaseRepository) HasActiveForCourse(userID, courseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Purchase{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, model.PurchaseActive).
		Count(&count).Error
	return count > 0, err
}
