package repository

import (
	"edu_course_backend/internal/model"

	"gorm.io/gorm"
)

type BalanceTransactionRepository struct {
	DB *gorm.DB
}

func NewBalanceTransactionRepository(db *gorm.DB) *BalanceTransactionRepository {
	return &BalanceTransactionRepository{DB: db}
}

// 流水只追加：仓储层不提供 Update/Delete

func (r *BalanceTransactionRepository) ListByUser(userID uint, page, limit int) ([]model.BalanceTransaction, int64, error) {
	var total int64
	query := r.DB.Model(&model.BalanceTransaction{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txns []model.BalanceTransaction
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&txns).Error
	return txns, total, err
}
