package util

import (
	"edu_course_backend/pkg/logger"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	if IsSchemaMismatch(err) {
		logger.Log.Error("Database schema mismatch, check migrations", zap.Error(err))
	} else {
		logger.Log.Error("Internal server error", zap.Error(err))
	}
	InternalServerError(c)
}

// HandleServiceError 把服务层的哨兵错误映射为对应的 HTTP 响应。
// 消息不泄露资源存在性：无权限访问与不存在统一文案。
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrCourseNotFound),
		errors.Is(err, ErrQuizNotFound),
		errors.Is(err, ErrLessonNotFound),
		errors.Is(err, ErrCodeNotFound),
		errors.Is(err, ErrContentItemNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c)
	case errors.Is(err, ErrAlreadyPurchased), errors.Is(err, ErrPurchasePending):
		Conflict(c, "course already purchased")
	case errors.Is(err, ErrCodeAlreadyUsed):
		Conflict(c, "redemption code already used")
	case errors.Is(err, ErrMaxAttemptsReached):
		Conflict(c, "max attempts reached")
	case errors.Is(err, ErrInsufficientFunds):
		Error(c, http.StatusPaymentRequired, "insufficient balance")
	case errors.Is(err, ErrCourseAccessRequired),
		errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrStudentCannotSelfFund):
		Forbidden(c)
	case errors.Is(err, ErrInvalidAmount):
		BadRequest(c, err.Error())
	default:
		LogInternalError(c, err)
	}
}
