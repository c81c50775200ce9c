package service

import (
	"encoding/json"
	"errors"
	"strings"

	"edu_course_backend/internal/model"
	"edu_course_backend/internal/repository"
	"edu_course_backend/internal/util"
	"edu_course_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuizService 测验答题状态机：
// NOT_STARTED → IN_PROGRESS(第N次) → GRADED(第N次)，最多 MaxAttempts 次。
// 判分是 (题目, 答案) 的纯函数，结果一经写入不再变动。
type QuizService struct {
	QuizRepo     *repository.QuizRepository
	AttemptRepo  *repository.QuizAttemptRepository
	PurchaseRepo *repository.PurchaseRepository
	DB           *gorm.DB
}

func NewQuizService(
	quizRepo *repository.QuizRepository,
	attemptRepo *repository.QuizAttemptRepository,
	purchaseRepo *repository.PurchaseRepository,
	db *gorm.DB,
) *QuizService {
	return &QuizService{
		QuizRepo:     quizRepo,
		AttemptRepo:  attemptRepo,
		PurchaseRepo: purchaseRepo,
		DB:           db,
	}
}

// ParseOptions 解析选择题选项。历史数据存在三种格式，
// 回退链必须保持：JSON 数组 → JSON 字符串包裹的数组 → 去括号引号后按逗号切分。
func ParseOptions(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	var arr []string
	if err := json.Unmarshal([]byte(trimmed), &arr); err == nil {
		return cleanOptions(arr)
	}

	// 整体是一个 JSON 字符串，内容再试一次数组解析
	var inner string
	if err := json.Unmarshal([]byte(trimmed), &inner); err == nil {
		if err := json.Unmarshal([]byte(inner), &arr); err == nil {
			return cleanOptions(arr)
		}
		return legacySplitOptions(inner)
	}

	return legacySplitOptions(trimmed)
}

func StringifyOptions(options []string) string {
	b, _ := json.Marshal(options)
	return string(b)
}

func cleanOptions(options []string) []string {
	out := make([]string, 0, len(options))
	for _, o := range options {
		if s := strings.TrimSpace(o); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// legacySplitOptions 旧格式兜底："[a, b, c]"、"'a','b'" 之类
func legacySplitOptions(raw string) []string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, `"'`)
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

type StudentQuestion struct {
	ID       uint               `json:"id"`
	Type     model.QuestionType `json:"type"`
	Content  string             `json:"content"`
	Options  []string           `json:"options,omitempty"`
	Points   int                `json:"points"`
	Position int                `json:"position"`
}

type QuizForAttempt struct {
	ID                uint              `json:"id"`
	Title             string            `json:"title"`
	CourseID          uint              `json:"courseId"`
	TimeLimit         *int              `json:"timeLimit,omitempty"`
	MaxAttempts       int               `json:"maxAttempts"`
	AttemptNumber     int               `json:"attemptNumber"` // 即将进行的第几次
	AttemptsRemaining int               `json:"attemptsRemaining"`
	Questions         []StudentQuestion `json:"questions"`
}

// GetQuizForAttempt 取卷。标准答案不随卷下发。
func (s *QuizService) GetQuizForAttempt(userID, quizID uint) (*QuizForAttempt, error) {
	quiz, err := s.loadPublishedQuiz(quizID)
	if err != nil {
		return nil, err
	}

	if err := s.requireCourseAccess(userID, quiz.CourseID); err != nil {
		return nil, err
	}

	count, err := s.AttemptRepo.Count(nil, userID, quizID)
	if err != nil {
		return nil, err
	}
	if int(count) >= quiz.MaxAttempts {
		return nil, util.ErrMaxAttemptsReached
	}

	questions, err := s.QuizRepo.ListQuestions(quizID)
	if err != nil {
		return nil, err
	}

	studentQs := make([]StudentQuestion, len(questions))
	for i, q := range questions {
		sq := StudentQuestion{
			ID:       q.ID,
			Type:     q.Type,
			Content:  q.Content,
			Points:   q.Points,
			Position: q.Position,
		}
		if q.Type == model.MultipleChoice {
			sq.Options = ParseOptions(q.Options)
		}
		studentQs[i] = sq
	}

	return &QuizForAttempt{
		ID:                quiz.ID,
		Title:             quiz.Title,
		CourseID:          quiz.CourseID,
		TimeLimit:         quiz.TimeLimit,
		MaxAttempts:       quiz.MaxAttempts,
		AttemptNumber:     int(count) + 1,
		AttemptsRemaining: quiz.MaxAttempts - int(count),
		Questions:         studentQs,
	}, nil
}

type AnswerSubmission struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	Answer     string `json:"answer"`
}

// SubmitQuiz 提交判分。次数上限在插入事务内、锁住测验行之后重新校验，
// 不信任客户端带来的 attemptNumber；(student, quiz, attempt_number)
// 唯一索引是并发竞争下的最终防线。
func (s *QuizService) SubmitQuiz(userID, quizID uint, submissions []AnswerSubmission) (*model.QuizAttempt, error) {
	quiz, err := s.loadPublishedQuiz(quizID)
	if err != nil {
		return nil, err
	}

	if err := s.requireCourseAccess(userID, quiz.CourseID); err != nil {
		return nil, err
	}

	questions, err := s.QuizRepo.ListQuestions(quizID)
	if err != nil {
		return nil, err
	}

	answerMap := make(map[uint]string, len(submissions))
	for _, sub := range submissions {
		answerMap[sub.QuestionID] = sub.Answer
	}

	score, totalPoints, percentage, answers := GradeAnswers(questions, answerMap)

	var attempt *model.QuizAttempt

	// 唯一索引竞争失败说明另一次提交刚拿走了同一个 attempt_number，重算一次
	for retry := 0; retry < 2; retry++ {
		attempt = nil
		err = s.DB.Transaction(func(tx *gorm.DB) error {
			if _, err := s.QuizRepo.LockByID(tx, quizID); err != nil {
				return err
			}

			count, err := s.AttemptRepo.Count(tx, userID, quizID)
			if err != nil {
				return err
			}
			if int(count) >= quiz.MaxAttempts {
				return util.ErrMaxAttemptsReached
			}

			attempt = &model.QuizAttempt{
				StudentID:     userID,
				QuizID:        quizID,
				AttemptNumber: int(count) + 1,
				Score:         score,
				TotalPoints:   totalPoints,
				Percentage:    percentage,
				Answers:       answers,
			}
			return tx.Create(attempt).Error
		})
		if err == nil || !util.IsDuplicateKey(err) {
			break
		}
	}

	if err != nil {
		if util.IsDuplicateKey(err) {
			return nil, util.ErrMaxAttemptsReached
		}
		return nil, err
	}

	logger.Log.Info("quiz submitted",
		zap.Uint("userId", userID),
		zap.Uint("quizId", quizID),
		zap.Int("attempt", attempt.AttemptNumber),
		zap.Int("score", score),
		zap.Int("total", totalPoints))
	return attempt, nil
}

// GradeAnswers 纯函数判分：同样的题目和答案永远得到同样的结果。
// 按 position 顺序遍历（正确性与顺序无关，只影响遍历的可复现性）。
func GradeAnswers(questions []model.Question, answerMap map[uint]string) (score, totalPoints int, percentage float64, answers []model.QuizAnswer) {
	answers = make([]model.QuizAnswer, 0, len(questions))

	for _, q := range questions {
		totalPoints += q.Points

		submitted := answerMap[q.ID] // 缺答按空字符串判
		isCorrect := gradeOne(q, submitted)

		earned := 0
		if isCorrect {
			earned = q.Points
			score += earned
		}

		answers = append(answers, model.QuizAnswer{
			QuestionID:    q.ID,
			StudentAnswer: submitted,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     isCorrect,
			PointsEarned:  earned,
		})
	}

	if totalPoints > 0 {
		percentage = float64(score) / float64(totalPoints) * 100
	}
	return
}

func gradeOne(q model.Question, submitted string) bool {
	switch q.Type {
	case model.MultipleChoice:
		ans := strings.TrimSpace(submitted)
		correct := strings.TrimSpace(q.CorrectAnswer)
		if ans != correct {
			return false
		}
		// 标准答案必须仍在选项列表里，挡掉脏数据/过期选项
		for _, opt := range ParseOptions(q.Options) {
			if strings.TrimSpace(opt) == correct {
				return true
			}
		}
		return false
	case model.TrueFalse:
		return strings.EqualFold(submitted, q.CorrectAnswer)
	case model.ShortAnswer:
		return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(q.CorrectAnswer))
	}
	return false
}

// LatestResult 默认结果查询口径：attempt_number 最大的一次
func (s *QuizService) LatestResult(userID, quizID uint) (*model.QuizAttempt, error) {
	attempt, err := s.AttemptRepo.Latest(userID, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	return attempt, nil
}

func (s *QuizService) ListAttempts(userID, quizID uint) ([]model.QuizAttempt, error) {
	return s.AttemptRepo.ListByStudentAndQuiz(userID, quizID)
}

func (s *QuizService) loadPublishedQuiz(quizID uint) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if !quiz.IsPublished {
		return nil, util.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *QuizService) requireCourseAccess(userID, courseID uint) error {
	has, err := s.PurchaseRepo.HasActiveForCourse(userID, courseID)
	if err != nil {
		return err
	}
	if !has {
		return util.ErrCourseAccessRequired
	}
	return nil
}
