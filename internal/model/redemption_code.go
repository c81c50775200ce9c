package model

import "time"

// swagger:model RedemptionCode
// 一次性兑换码。is_used 只允许 false→true 单向翻转，
// 翻转通过带条件的 UPDATE 完成（见 RedemptionCodeRepository.MarkUsed）。
type RedemptionCode struct {
	BaseModel
	Code      string     `gorm:"size:32;unique;not null" json:"code"` // 统一存大写，查询前归一化
	CourseID  uint       `gorm:"index;not null" json:"courseId"`
	IsUsed    bool       `gorm:"default:false;index" json:"isUsed"`
	UsedBy    *uint      `json:"usedBy,omitempty"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	CreatorID uint       `gorm:"index" json:"creatorId"`
}

func (RedemptionCode) TableName() string {
	return "redemption_codes"
}
