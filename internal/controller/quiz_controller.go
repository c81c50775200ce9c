package controller

import (
	"errors"

	"edu_course_backend/internal/service"
	"edu_course_backend/internal/util"
	"edu_course_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// GetQuizForAttempt godoc
// @Summary 获取待答测验（不含正确答案）
// @Tags 测验
// @Security BearerAuth
// @Produce json
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response{data=service.QuizForAttempt}
// @Failure 403 {object} util.Response "未购买课程"
// @Failure 409 {object} util.Response "次数已用完"
// @Router /api/quizzes/{id} [get]
func (c *QuizController) GetQuizForAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	quizID := util.MustParseUint(ctx.Param("id"))
	if quizID == 0 {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	quiz, err := c.QuizService.GetQuizForAttempt(user.UserID, quizID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, quiz)
}

type SubmitQuizRequest struct {
	Answers []service.AnswerSubmission `json:"answers"`
}

// SubmitQuiz godoc
// @Summary 提交答卷并判分
// @Tags 测验
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "测验ID"
// @Param body body SubmitQuizRequest true "答案列表"
// @Success 201 {object} util.Response{data=model.QuizAttempt}
// @Failure 409 {object} util.Response "次数已用完"
// @Router /api/quizzes/{id}/submit [post]
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	quizID := util.MustParseUint(ctx.Param("id"))
	if quizID == 0 {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.QuizService.SubmitQuiz(user.UserID, quizID, req.Answers)
	monitoring.QuizSubmissionCounter.WithLabelValues(submissionOutcome(err)).Inc()
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, attempt)
}

func submissionOutcome(err error) string {
	switch {
	case err == nil:
		return "graded"
	case errors.Is(err, util.ErrMaxAttemptsReached):
		return "max_attempts"
	case errors.Is(err, util.ErrCourseAccessRequired):
		return "no_access"
	default:
		return "error"
	}
}

// LatestResult godoc
// @Summary 最近一次答题结果（含逐题判分）
// @Tags 测验
// @Security BearerAuth
// @Produce json
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response{data=model.QuizAttempt}
// @Router /api/quizzes/{id}/result [get]
func (c *QuizController) LatestResult(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	quizID := util.MustParseUint(ctx.Param("id"))
	if quizID == 0 {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	attempt, err := c.QuizService.LatestResult(user.UserID, quizID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, attempt)
}

// ListAttempts godoc
// @Summary 历史答题记录
// @Tags 测验
// @Security BearerAuth
// @Produce json
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response{data=[]model.QuizAttempt}
// @Router /api/quizzes/{id}/attempts [get]
func (c *QuizController) ListAttempts(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	quizID := util.MustParseUint(ctx.Param("id"))
	if quizID == 0 {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	attempts, err := c.QuizService.ListAttempts(user.UserID, quizID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, attempts)
}
