package controller

import (
	"edu_course_backend/internal/model"
	"edu_course_backend/internal/service"
	"edu_course_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ContentController struct {
	ContentService *service.ContentService
}

func NewContentController(contentService *service.ContentService) *ContentController {
	return &ContentController{ContentService: contentService}
}

// GetSequence godoc
// @Summary 课程内容的全局有序序列
// @Tags 内容
// @Security BearerAuth
// @Produce json
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.ContentItem}
// @Router /api/courses/{id}/sequence [get]
func (c *ContentController) GetSequence(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	items, err := c.ContentService.CourseSequence(ctx.Request.Context(), courseID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, items)
}

// GetNeighbors godoc
// @Summary 某内容项的前驱与后继
// @Tags 内容
// @Security BearerAuth
// @Produce json
// @Param id path int true "课程ID"
// @Param itemId path int true "内容项ID"
// @Param kind query string true "内容类型 lesson|quiz"
// @Success 200 {object} util.Response{data=service.Neighbors}
// @Router /api/courses/{id}/items/{itemId}/neighbors [get]
func (c *ContentController) GetNeighbors(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))
	itemID := util.MustParseUint(ctx.Param("itemId"))
	if courseID == 0 || itemID == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	kind := model.ContentKind(ctx.Query("kind"))
	if kind != model.KindLesson && kind != model.KindQuiz {
		util.BadRequest(ctx, "kind must be lesson or quiz")
		return
	}

	neighbors, err := c.ContentService.ItemNeighbors(ctx.Request.Context(), courseID, itemID, kind)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, neighbors)
}

type ReorderRequest struct {
	Items      []service.ReorderItem `json:"items" binding:"required,min=1"`
	BestEffort bool                  `json:"bestEffort"`
}

// Reorder godoc
// @Summary 批量调整内容顺序
// @Description 默认整批一个事务提交；bestEffort=true 时逐项独立生效
// @Tags 课程管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "课程ID"
// @Param body body ReorderRequest true "调整项"
// @Success 200 {object} util.Response{data=[]service.ReorderResult}
// @Router /api/teacher/courses/{id}/reorder [put]
func (c *ContentController) Reorder(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	var req ReorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	results, err := c.ContentService.Reorder(ctx.Request.Context(), courseID, req.Items, req.BestEffort)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, results)
}
