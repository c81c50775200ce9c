package model

type QuestionType string

const (
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	TrueFalse      QuestionType = "TRUE_FALSE"
	ShortAnswer    QuestionType = "SHORT_ANSWER"
)

// swagger:model Quiz
type Quiz struct {
	BaseModel
	CourseID    uint   `gorm:"index;not null" json:"courseId"`
	Title       string `gorm:"size:200;not null" json:"title"`
	MaxAttempts int    `gorm:"not null;default:1" json:"maxAttempts"`
	TimeLimit   *int   `json:"timeLimit,omitempty"` // 分钟，可选
	Position    int    `gorm:"not null;default:0;index" json:"position"`
	IsPublished bool   `gorm:"default:false" json:"isPublished"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// Question Options 为序列化列表，历史数据存在三种格式：
// JSON 数组、JSON 字符串包裹的数组、逗号分隔的旧格式。
// 解析见 service.ParseOptions。
type Question struct {
	BaseModel
	QuizID        uint         `gorm:"index;not null" json:"quizId"`
	Type          QuestionType `gorm:"size:20;not null" json:"type"`
	Content       string       `gorm:"type:text;not null" json:"content"`
	Options       string       `gorm:"type:text" json:"options"`
	CorrectAnswer string       `gorm:"type:text;not null" json:"-"`
	Points        int          `gorm:"not null;default:1" json:"points"`
	Position      int          `gorm:"not null;default:0" json:"position"`
}

func (Question) TableName() string {
	return "questions"
}
