package util

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound          = errors.New("用户不存在")
	ErrEmailRegistered       = errors.New("该邮箱已被注册")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrCourseNotFound        = errors.New("course not found")
	ErrQuizNotFound          = errors.New("quiz not found")
	ErrLessonNotFound        = errors.New("lesson not found")
	ErrCodeNotFound          = errors.New("redemption code not found")
	ErrCodeAlreadyUsed       = errors.New("redemption code already used")
	ErrAlreadyPurchased      = errors.New("course already purchased")
	ErrPurchasePending       = errors.New("purchase pending payment confirmation")
	ErrInsufficientFunds     = errors.New("insufficient balance")
	ErrCourseAccessRequired  = errors.New("course access required")
	ErrMaxAttemptsReached    = errors.New("max attempts reached")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrStudentCannotSelfFund = errors.New("students cannot add balance")
	ErrContentItemNotFound   = errors.New("content item not found")
)

// IsDuplicateKey 唯一约束冲突：并发购买/提交竞争失败方会落到这里
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// IsSchemaMismatch 识别因迁移不完整导致的表/列缺失错误（MySQL 1146/1054，
// sqlite "no such table/column"），这类错误应按部署配置问题上报而非一般内部错误。
func IsSchemaMismatch(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Error 1146") ||
		strings.Contains(msg, "Error 1054") ||
		strings.Contains(msg, "no such table") ||
		strings.Contains(msg, "no such column")
}
