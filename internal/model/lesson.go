package model

// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID    uint   `gorm:"index;not null" json:"courseId"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Content     string `gorm:"type:longtext" json:"content"`
	Position    int    `gorm:"not null;default:0;index" json:"position"`
	IsPublished bool   `gorm:"default:false" json:"isPublished"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// LessonProgress 学生完成课时的记录，进度统计依赖它
type LessonProgress struct {
	BaseModel
	UserID   uint `gorm:"uniqueIndex:idx_user_lesson;not null" json:"userId"`
	LessonID uint `gorm:"uniqueIndex:idx_user_lesson;not null" json:"lessonId"`
}

func (LessonProgress) TableName() string {
	return "lesson_progresses"
}
