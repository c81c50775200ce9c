package controller

import (
	"errors"

	"edu_course_backend/internal/service"
	"edu_course_backend/internal/util"
	"edu_course_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

type PurchaseController struct {
	PurchaseService *service.PurchaseService
}

func NewPurchaseController(purchaseService *service.PurchaseService) *PurchaseController {
	return &PurchaseController{PurchaseService: purchaseService}
}

func purchaseOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, util.ErrAlreadyPurchased), errors.Is(err, util.ErrPurchasePending):
		return "conflict"
	case errors.Is(err, util.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, util.ErrCodeAlreadyUsed), errors.Is(err, util.ErrCodeNotFound):
		return "invalid_code"
	default:
		return "error"
	}
}

// PurchaseCourse godoc
// @Summary 余额购买课程
// @Tags 购买
// @Security BearerAuth
// @Produce json
// @Param id path int true "课程ID"
// @Success 201 {object} util.Response{data=service.PurchaseResult}
// @Failure 402 {object} util.Response "余额不足"
// @Failure 409 {object} util.Response "已拥有该课程"
// @Router /api/courses/{id}/purchase [post]
func (c *PurchaseController) PurchaseCourse(ctx *gin.Context) {
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

	result, err := c.PurchaseService.PurchaseCourse(user.UserID, courseID)
	monitoring.PurchaseCounter.WithLabelValues("balance", purchaseOutcome(err)).Inc()
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, result)
}

type RedeemRequest struct {
	Code string `json:"code" binding:"required"`
}

// RedeemCode godoc
// @Summary 兑换码解锁课程
// @Tags 购买
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body RedeemRequest true "兑换码"
// @Success 201 {object} util.Response{data=service.PurchaseResult}
// @Failure 404 {object} util.Response "兑换码不存在"
// @Failure 409 {object} util.Response "兑换码已被使用"
// @Router /api/redeem [post]
func (c *PurchaseController) RedeemCode(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req RedeemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.PurchaseService.RedeemCode(user.UserID, req.Code)
	monitoring.PurchaseCounter.WithLabelValues("code", purchaseOutcome(err)).Inc()
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, result)
}

// PurchaseViaGateway godoc
// @Summary 通过支付网关下单，购买记录进入 PENDING 等待确认
// @Tags 购买
// @Security BearerAuth
// @Produce json
// @Param id path int true "课程ID"
// @Success 201 {object} util.Response{data=model.Purchase}
// @Router /api/courses/{id}/purchase/gateway [post]
func (c *PurchaseController) PurchaseViaGateway(ctx *gin.Context) {
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

	purchase, err := c.PurchaseService.PurchaseViaGateway(user.UserID, courseID)
	monitoring.PurchaseCounter.WithLabelValues("gateway", purchaseOutcome(err)).Inc()
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, purchase)
}

type AddBalanceRequest struct {
	UserID      uint    `json:"userId" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Description string  `json:"description"`
}

// AddBalance godoc
// @Summary 管理员给账户充值
// @Tags 钱包
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body AddBalanceRequest true "充值信息"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "金额非法"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/admin/balance [post]
func (c *PurchaseController) AddBalance(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AddBalanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	newBalance, err := c.PurchaseService.AddBalance(user.Role, req.UserID, req.Amount, req.Description)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"userId": req.UserID, "balance": newBalance})
}

// GetWallet godoc
// @Summary 当前用户余额与流水
// @Tags 钱包
// @Security BearerAuth
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=service.WalletInfo}
// @Router /api/wallet [get]
func (c *PurchaseController) GetWallet(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := util.Pagination(ctx)
	wallet, err := c.PurchaseService.GetWallet(user.UserID, page, limit)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, wallet)
}

// ListPurchases godoc
// @Summary 当前用户的购买记录
// @Tags 购买
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Purchase}
// @Router /api/purchases [get]
func (c *PurchaseController) ListPurchases(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	purchases, err := c.PurchaseService.ListPurchases(user.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, purchases)
}

// ResolvePending godoc
// @Summary 手动触发一轮待确认订单结算
// @Tags 运维
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/admin/purchases/resolve [post]
func (c *PurchaseController) ResolvePending(ctx *gin.Context) {
	if err := c.PurchaseService.ResolvePendingPurchases(ctx.Request.Context()); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"status": "done"})
}
