package model

type PurchaseStatus string

const (
	PurchaseActive   PurchaseStatus = "ACTIVE"
	PurchaseFailed   PurchaseStatus = "FAILED"
	PurchasePending  PurchaseStatus = "PENDING"
	PurchaseCanceled PurchaseStatus = "CANCELED"
)

// swagger:model Purchase
// (user_id, course_id) 唯一，同一对用户/课程最多一条 ACTIVE 记录。
// FAILED/CANCELED 记录重试购买前会被物理删除以释放唯一约束。
type Purchase struct {
	BaseModel
	UserID           uint           `gorm:"uniqueIndex:idx_user_course;not null" json:"userId"`
	CourseID         uint           `gorm:"uniqueIndex:idx_user_course;not null" json:"courseId"`
	Status           PurchaseStatus `gorm:"size:20;not null;default:'ACTIVE';index" json:"status"`
	PricePaid        float64        `gorm:"type:decimal(12,2);not null;default:0" json:"pricePaid"`
	RedemptionCodeID *uint          `gorm:"index" json:"redemptionCodeId,omitempty"`
	PollCount        int            `gorm:"not null;default:0" json:"-"` // PENDING 状态下已查询支付网关的次数
}

func (Purchase) TableName() string {
	return "purchases"
}
