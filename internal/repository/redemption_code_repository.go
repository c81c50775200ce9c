package repository

import (
	"edu_course_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type RedemptionCodeRepository struct {
	DB *gorm.DB
}

func NewRedemptionCodeRepository(db *gorm.DB) *RedemptionCodeRepository {
	return &RedemptionCodeRepository{DB: db}
}

func (r *RedemptionCodeRepository) Create(code *model.RedemptionCode) error {
	return r.DB.Create(code).Error
}

// FindByCode 接收已归一化（大写）的码值
func (r *RedemptionCodeRepository) FindByCode(code string) (*model.RedemptionCode, error) {
	var rc model.RedemptionCode
	err := r.DB.Where("code = ?", code).First(&rc).Error
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

// MarkUsed 以条件 UPDATE 实现 is_used 的 compare-and-swap：
// 只有 WHERE is_used = false 命中的那个事务能翻转成功，
// RowsAffected == 0 意味着并发竞争失败，调用方应返回 ALREADY_USED。
func (r *RedemptionCodeRepository) MarkUsed(tx *gorm.DB, codeID, userID uint) (bool, error) {
	now := time.Now()
	res := tx.Model(&model.RedemptionCode{}).
		Where("id = ? AND is_used = ?", codeID, false).
		Updates(map[string]interface{}{
			"is_used": true,
			"used_by": userID,
			"used_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *RedemptionCodeRepository) ListByCourse(courseID uint, page, limit int) ([]model.RedemptionCode, int64, error) {
	var total int64
	query := r.DB.Model(&model.RedemptionCode{}).Where("course_id = ?", courseID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var codes []model.RedemptionCode
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&codes).Error
	return codes, total, err
}
