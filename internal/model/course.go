package model

// swagger:model Course
type Course struct {
	BaseModel
	Title       string  `gorm:"size:200;not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"type:decimal(12,2);not null;default:0" json:"price"` // 0 表示免费课程
	IsPublished bool    `gorm:"default:false;index" json:"isPublished"`
	CreatorID   uint    `gorm:"index" json:"creatorId"`
}

func (Course) TableName() string {
	return "courses"
}
