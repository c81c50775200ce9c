package controller

import (
	"edu_course_backend/internal/service"
	"edu_course_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RedemptionCodeController struct {
	CodeService *service.RedemptionCodeService
}

func NewRedemptionCodeController(codeService *service.RedemptionCodeService) *RedemptionCodeController {
	return &RedemptionCodeController{CodeService: codeService}
}

type GenerateCodesRequest struct {
	Count int `json:"count" binding:"required,min=1,max=1000"`
}

// GenerateCodes godoc
// @Summary 批量生成兑换码
// @Tags 课程管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "课程ID"
// @Param body body GenerateCodesRequest true "生成数量"
// @Success 201 {object} util.Response{data=[]model.RedemptionCode}
// @Router /api/teacher/courses/{id}/codes [post]
func (c *RedemptionCodeController) GenerateCodes(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID := util.MustParseUint(ctx.Param("id"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	var req GenerateCodesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	codes, err := c.CodeService.GenerateCodes(user.UserID, courseID, req.Count)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, codes)
}

// ListCodes godoc
// @Summary 课程的兑换码列表
// @Tags 课程管理
// @Security BearerAuth
// @Produce json
// @Param id path int true "课程ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/teacher/courses/{id}/codes [get]
func (c *RedemptionCodeController) ListCodes(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	page, limit := util.Pagination(ctx)
	codes, total, err := c.CodeService.ListCodes(courseID, page, limit)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  codes,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
