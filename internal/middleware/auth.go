package middleware

import (
	"strings"

	"edu_course_backend/internal/config"
	"edu_course_backend/internal/model"
	"edu_course_backend/internal/util"

	"github.com/gin-gonic/gin"
)

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

// Permission 接口级能力点，路由声明需要哪个能力而不是哪些角色
type Permission string

const (
	PermManageCourses  Permission = "courses:manage"
	PermGenerateCodes  Permission = "codes:generate"
	PermFundAccounts   Permission = "accounts:fund"
	PermViewOperations Permission = "operations:view"
)

// rolePermissions 角色到能力的映射。管理员包含教师的全部能力。
var rolePermissions = map[model.UserRole]map[Permission]bool{
	model.Teacher: {
		PermManageCourses: true,
		PermGenerateCodes: true,
	},
	model.Admin: {
		PermManageCourses:  true,
		PermGenerateCodes:  true,
		PermFundAccounts:   true,
		PermViewOperations: true,
	},
}

func HasPermission(role model.UserRole, perm Permission) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	return perms[perm]
}

func RequirePermission(perm Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if !HasPermission(user.Role, perm) {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

type UserActivityRepo interface {
	UpdateLastSeen(userID uint) error
}

func ActivityMiddleware(repo UserActivityRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims != nil {
			// 异步更新，不阻塞主流程
			go repo.UpdateLastSeen(claims.UserID)
		}
		c.Next()
	}
}
