package model

// swagger:model QuizAttempt
// 一次提交即一条不可变记录，(student_id, quiz_id, attempt_number) 唯一，
// 作为并发提交下次数上限的最终防线。
type QuizAttempt struct {
	BaseModel
	StudentID     uint         `gorm:"uniqueIndex:idx_student_quiz_attempt;not null" json:"studentId"`
	QuizID        uint         `gorm:"uniqueIndex:idx_student_quiz_attempt;not null" json:"quizId"`
	AttemptNumber int          `gorm:"uniqueIndex:idx_student_quiz_attempt;not null" json:"attemptNumber"`
	Score         int          `gorm:"not null" json:"score"`
	TotalPoints   int          `gorm:"not null" json:"totalPoints"`
	Percentage    float64      `gorm:"not null" json:"percentage"`
	Answers       []QuizAnswer `gorm:"foreignKey:AttemptID" json:"answers,omitempty"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// QuizAnswer 每题的判分快照，CorrectAnswer 固化提交时刻的标准答案供回看
type QuizAnswer struct {
	BaseModel
	AttemptID     uint   `gorm:"index;not null" json:"attemptId"`
	QuestionID    uint   `gorm:"index;not null" json:"questionId"`
	StudentAnswer string `gorm:"type:text" json:"studentAnswer"`
	CorrectAnswer string `gorm:"type:text" json:"correctAnswer"`
	IsCorrect     bool   `gorm:"not null" json:"isCorrect"`
	PointsEarned  int    `gorm:"not null" json:"pointsEarned"`
}

func (QuizAnswer) TableName() string {
	return "quiz_answers"
}
