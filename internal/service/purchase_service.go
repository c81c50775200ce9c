package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"edu_course_backend/internal/config"
	"edu_course_backend/internal/model"
	"edu_course_backend/internal/repository"
	"edu_course_backend/internal/util"
	"edu_course_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PurchaseService 负责所有触碰余额和购买记录的路径。
// 不变量：余额永不为负；每次余额变动在同一事务里恰好写一条流水；
// 同一 (user, course) 至多一条 ACTIVE 购买。
type PurchaseService struct {
	UserRepo     *repository.UserRepository
	CourseRepo   *repository.CourseRepository
	PurchaseRepo *repository.PurchaseRepository
	CodeRepo     *repository.RedemptionCodeRepository
	TxnRepo      *repository.BalanceTransactionRepository
	Gateway      PaymentGateway
	Cfg          *config.Config
	DB           *gorm.DB
}

func NewPurchaseService(
	userRepo *repository.UserRepository,
	courseRepo *repository.CourseRepository,
	purchaseRepo *repository.PurchaseRepository,
	codeRepo *repository.RedemptionCodeRepository,
	txnRepo *repository.BalanceTransactionRepository,
	gateway PaymentGateway,
	cfg *config.Config,
	db *gorm.DB,
) *PurchaseService {
	return &PurchaseService{
		UserRepo:     userRepo,
		CourseRepo:   courseRepo,
		PurchaseRepo: purchaseRepo,
		CodeRepo:     codeRepo,
		TxnRepo:      txnRepo,
		Gateway:      gateway,
		Cfg:          cfg,
		DB:           db,
	}
}

type PurchaseResult struct {
	PurchaseID uint    `json:"purchaseId"`
	CourseID   uint    `json:"courseId"`
	PricePaid  float64 `json:"pricePaid"`
	NewBalance float64 `json:"newBalance"`
}

// PurchaseCourse 余额扣款购买。免费课程价格为 0，仍写购买记录和流水。
func (s *PurchaseService) PurchaseCourse(userID, courseID uint) (*PurchaseResult, error) {
	course, err := s.CourseRepo.FindPublishedByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if err := s.checkPairFree(userID, courseID); err != nil {
		return nil, err
	}

	price := course.Price
	var result PurchaseResult

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		user, err := s.UserRepo.LockByID(tx, userID)
		if err != nil {
			return err
		}
		if user.Balance < price {
			return util.ErrInsufficientFunds
		}

		// FAILED/CANCELED 占位记录先清掉，释放唯一约束
		if err := s.PurchaseRepo.DeleteInactive(tx, userID, courseID); err != nil {
			return err
		}

		purchase := &model.Purchase{
			UserID:    userID,
			CourseID:  courseID,
			Status:    model.PurchaseActive,
			PricePaid: price,
		}
		if err := tx.Create(purchase).Error; err != nil {
			return err
		}

		newBalance := user.Balance - price
		if err := tx.Model(&model.User{}).Where("id = ?", userID).
			Update("balance", newBalance).Error; err != nil {
			return err
		}

		txn := &model.BalanceTransaction{
			UserID:      userID,
			Amount:      -price,
			Type:        model.TransactionPurchase,
			Description: "购买课程: " + course.Title,
		}
		if err := tx.Create(txn).Error; err != nil {
			return err
		}

		result = PurchaseResult{
			PurchaseID: purchase.ID,
			CourseID:   courseID,
			PricePaid:  price,
			NewBalance: newBalance,
		}
		return nil
	})

	if err != nil {
		// 并发竞争的失败方撞唯一索引，按已购买处理
		if util.IsDuplicateKey(err) {
			return nil, util.ErrAlreadyPurchased
		}
		return nil, err
	}

	logger.Log.Info("course purchased",
		zap.Uint("userId", userID),
		zap.Uint("courseId", courseID),
		zap.Float64("price", price))
	return &result, nil
}

// RedeemCode 兑换码购买：不触碰余额，is_used 翻转是唯一写入者竞争点。
func (s *PurchaseService) RedeemCode(userID uint, rawCode string) (*PurchaseResult, error) {
	normalized := strings.ToUpper(strings.TrimSpace(rawCode))
	if normalized == "" {
		return nil, util.ErrCodeNotFound
	}

	code, err := s.CodeRepo.FindByCode(normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCodeNotFound
		}
		return nil, err
	}
	if code.IsUsed {
		return nil, util.ErrCodeAlreadyUsed
	}

	if err := s.checkPairFree(userID, code.CourseID); err != nil {
		return nil, err
	}

	var result PurchaseResult

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		flipped, err := s.CodeRepo.MarkUsed(tx, code.ID, userID)
		if err != nil {
			return err
		}
		if !flipped {
			// CAS 失败：另一个事务已经用掉了这个码
			return util.ErrCodeAlreadyUsed
		}

		if err := s.PurchaseRepo.DeleteInactive(tx, userID, code.CourseID); err != nil {
			return err
		}

		purchase := &model.Purchase{
			UserID:           userID,
			CourseID:         code.CourseID,
			Status:           model.PurchaseActive,
			RedemptionCodeID: &code.ID,
		}
		if err := tx.Create(purchase).Error; err != nil {
			return err
		}

		result = PurchaseResult{
			PurchaseID: purchase.ID,
			CourseID:   code.CourseID,
		}
		return nil
	})

	if err != nil {
		if util.IsDuplicateKey(err) {
			return nil, util.ErrAlreadyPurchased
		}
		return nil, err
	}

	logger.Log.Info("redemption code used",
		zap.Uint("userId", userID),
		zap.Uint("courseId", code.CourseID),
		zap.Uint("codeId", code.ID))
	return &result, nil
}

// AddBalance 特权充值。actorRole 来自已认证身份，学生不允许给账户充值。
func (s *PurchaseService) AddBalance(actorRole model.UserRole, targetUserID uint, amount float64, description string) (float64, error) {
	if actorRole == model.Student {
		return 0, util.ErrStudentCannotSelfFund
	}
	if amount <= 0 {
		return 0, util.ErrInvalidAmount
	}
	if description == "" {
		description = "管理员充值"
	}

	var newBalance float64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		user, err := s.UserRepo.LockByID(tx, targetUserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrUserNotFound
			}
			return err
		}

		newBalance = user.Balance + amount
		if err := tx.Model(&model.User{}).Where("id = ?", targetUserID).
			Update("balance", newBalance).Error; err != nil {
			return err
		}

		txn := &model.BalanceTransaction{
			UserID:      targetUserID,
			Amount:      amount,
			Type:        model.TransactionDeposit,
			Description: description,
		}
		return tx.Create(txn).Error
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// PurchaseViaGateway 走外部支付的购买：先占住 (user, course) 槽位，
// 状态 PENDING，由后台轮询最终落到 ACTIVE 或 FAILED。
func (s *PurchaseService) PurchaseViaGateway(userID, courseID uint) (*model.Purchase, error) {
	course, err := s.CourseRepo.FindPublishedByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if err := s.checkPairFree(userID, courseID); err != nil {
		return nil, err
	}

	purchase := &model.Purchase{
		UserID:    userID,
		CourseID:  courseID,
		Status:    model.PurchasePending,
		PricePaid: course.Price,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.PurchaseRepo.DeleteInactive(tx, userID, courseID); err != nil {
			return err
		}
		return tx.Create(purchase).Error
	})
	if err != nil {
		if util.IsDuplicateKey(err) {
			return nil, util.ErrAlreadyPurchased
		}
		return nil, err
	}
	return purchase, nil
}

// ResolvePendingPurchases 由后台定时任务调用：查询网关状态，
// confirmed 时在一个事务内扣款+流水+转 ACTIVE（余额不足则 FAILED），
// declined 或轮询次数耗尽则判为终态 FAILED。
func (s *PurchaseService) ResolvePendingPurchases(ctx context.Context) error {
	pending, err := s.PurchaseRepo.ListPending()
	if err != nil {
		return err
	}

	for i := range pending {
		p := &pending[i]
		status, err := s.Gateway.PaymentStatus(ctx, p)
		if err != nil {
			logger.Log.Error("payment status poll failed",
				zap.Uint("purchaseId", p.ID), zap.Error(err))
			status = PaymentPending
		}

		switch status {
		case PaymentConfirmed:
			if err := s.confirmPendingPurchase(p); err != nil {
				logger.Log.Error("failed to confirm pending purchase",
					zap.Uint("purchaseId", p.ID), zap.Error(err))
			}
		case PaymentDeclined:
			if err := s.failPurchase(p.ID); err != nil {
				logger.Log.Error("failed to mark purchase failed",
					zap.Uint("purchaseId", p.ID), zap.Error(err))
			}
		default:
			polls := p.PollCount + 1
			if polls >= s.Cfg.Payment.MaxPolls {
				if err := s.failPurchase(p.ID); err != nil {
					logger.Log.Error("failed to expire pending purchase",
						zap.Uint("purchaseId", p.ID), zap.Error(err))
				} else {
					logger.Log.Warn("pending purchase expired after max polls",
						zap.Uint("purchaseId", p.ID), zap.Int("polls", polls))
				}
			} else if err := s.DB.Model(&model.Purchase{}).Where("id = ?", p.ID).
				Update("poll_count", polls).Error; err != nil {
				logger.Log.Error("failed to bump poll count",
					zap.Uint("purchaseId", p.ID), zap.Error(err))
			}
		}
	}
	return nil
}

func (s *PurchaseService) confirmPendingPurchase(p *model.Purchase) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		user, err := s.UserRepo.LockByID(tx, p.UserID)
		if err != nil {
			return err
		}
		if user.Balance < p.PricePaid {
			return tx.Model(&model.Purchase{}).Where("id = ?", p.ID).
				Update("status", model.PurchaseFailed).Error
		}

		if err := tx.Model(&model.Purchase{}).Where("id = ?", p.ID).
			Update("status", model.PurchaseActive).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.User{}).Where("id = ?", p.UserID).
			Update("balance", user.Balance-p.PricePaid).Error; err != nil {
			return err
		}
		txn := &model.BalanceTransaction{
			UserID:      p.UserID,
			Amount:      -p.PricePaid,
			Type:        model.TransactionPurchase,
			Description: fmt.Sprintf("网关购买确认 (purchase %d)", p.ID),
		}
		return tx.Create(txn).Error
	})
}

func (s *PurchaseService) failPurchase(purchaseID uint) error {
	return s.DB.Model(&model.Purchase{}).Where("id = ?", purchaseID).
		Update("status", model.PurchaseFailed).Error
}

// checkPairFree 购买前置校验：ACTIVE 记录直接拒绝，PENDING 记录等同冲突
func (s *PurchaseService) checkPairFree(userID, courseID uint) error {
	existing, err := s.PurchaseRepo.FindByPair(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	switch existing.Status {
	case model.PurchaseActive:
		return util.ErrAlreadyPurchased
	case model.PurchasePending:
		return util.ErrPurchasePending
	}
	return nil
}

type WalletInfo struct {
	Balance      float64                    `json:"balance"`
	Transactions []model.BalanceTransaction `json:"transactions"`
	Total        int64                      `json:"total"`
}

func (s *PurchaseService) GetWallet(userID uint, page, limit int) (*WalletInfo, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	txns, total, err := s.TxnRepo.ListByUser(userID, page, limit)
	if err != nil {
		return nil, err
	}

	return &WalletInfo{Balance: user.Balance, Transactions: txns, Total: total}, nil
}

func (s *PurchaseService) ListPurchases(userID uint) ([]model.Purchase, error) {
	return s.PurchaseRepo.ListByUser(userID)
}

// HasCourseAccess 测验获取/提交前的课程访问校验
func (s *PurchaseService) HasCourseAccess(userID, courseID uint) (bool, error) {
	return s.PurchaseRepo.HasActiveForCourse(userID, courseID)
}
