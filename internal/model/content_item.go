package model

type ContentKind string

const (
	KindLesson ContentKind = "lesson"
	KindQuiz   ContentKind = "quiz"
)

// ContentItem 不落库：课时与测验按 position 归并后的统一视图，
// 同一 position 值上课时排在测验之前（稳定，可重复）。
type ContentItem struct {
	ID       uint        `json:"id"`
	Kind     ContentKind `json:"kind"`
	Title    string      `json:"title"`
	Position int         `json:"position"`
}
