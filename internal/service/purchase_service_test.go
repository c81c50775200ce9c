package service

import (
	"context"
	"errors"
	"testing"

	"edu_course_backend/internal/config"
	"edu_course_backend/internal/model"
	"edu_course_backend/internal/util"
)

func TestPurchaseCourse_DebitsBalanceOnce(t *testing.T) {
	db := newTestDB(t)
	svc := newPurchaseService(db, StaticGateway{Status: PaymentPending}, nil)

	user := seedUser(t, db, "alice", 100)
	course := seedCourse(t, db, "Go 基础", 60, true)

	result, err := svc.PurchaseCourse(user.ID, course.ID)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if result.NewBalance != 40 {
		t.Fatalf("expected new balance 40, got %v", result.NewBalance)
	}
	if result.PricePaid != 60 {
		t.Fatalf("expected price paid 60, got %v", result.PricePaid)
	}

	var fresh model.User
	if err := db.First(&fresh, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if fresh.Balance != 40 {
		t.Fatalf("expected stored balance 40, got %v", fresh.Balance)
	}

	var txns []model.BalanceTransaction
	if err := db.Where("user_id = ?", user.ID).Find(&txns).Error; err != nil {
		t.Fatalf("load transactions: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("expected exactly 1 transaction, got %d", len(txns))
	}
	if txns[0].Amount != -60 || txns[0].Type != model.TransactionPurchase {
		t.Fatalf("unexpected transaction: amount=%v type=%s", txns[0].Amount, txns[0].Type)
	}
}

func TestPurchaseCourse_SecondPurchaseConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := newPurchaseService(db, StaticGateway{Status: PaymentPending}, nil)

	user := seedUser(t, db, "bob", 200)
	course := seedCourse(t, db, "课程", 50, true)

	if _, err := svc.PurchaseCourse(user.ID, course.ID); err != nil {
		t.Fatalf("first purchase: %v", err)
	}

	_, err := svc.PurchaseCourse(user.ID, course.ID)
	if !errors.Is(err, util.ErrAlreadyPurchased) {
		t.Fatalf("expected ErrAlreadyPurchased, got %v", err)
	}

	var fresh model.User
	db.First(&fresh, user.ID)
	if fresh.Balance != 150 {
		t.Fatalf("second purchase must not debit, balance=%v", fresh.Balance)
	}
}

func TestPurchaseCourse_InsufficientFundsLeavesStateUntouched(t *testing.T) {
	db := newTestDB(t)
	svc := newPurchaseService(db, StaticGateway{Status: PaymentPending}, nil)

	user := seedUser(t, db, "carol", 40)
	course := seedCourse(t, db, "贵课程", 100, true)

	_, err := svc.PurchaseCourse(user.ID, course.ID)
	if !errors.Is(err, util.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	var fresh model.User
	db.First(&fresh, user.ID)
	if fresh.Balance != 40 {
		t.Fatalf("balance must be unchanged, got %v", fresh.Balance)
	}

	var purchaseCount, txnCount int64
	db.Model(&model.Purchase{}).Where("user_id = ?", user.ID).Count(&purchaseCount)
	db.Model(&model.BalanceTransaction{}).Where("user_id = ?", user.ID).Count(&txnCount)
	if purchaseCount != 0 || txnCount != 0 {
		t.Fatalf("no rows expected, purchases=%d txns=%d", purchaseCount, txnCount)
	}
}

func TestPurchaseCourse_FreeCourseStillRecorded(t *testing.T) {
	db := newTestDB(t)
	svc := newPurchaseService(db, StaticGateway{Status: PaymentPending}, nil)

	user := seedUser(t, db, "dave", 0)
	course := seedCourse(t, db, "免费课", 0, true)

	result, err := svc.PurchaseCourse(user.ID, course.ID)
	if err != nil {
		t.Fatalf("free purchase: %v", err)
	}
	if result.PricePaid != 0 || result.NewBalance != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	var txnCount int64
	db.Model(&model.BalanceTransaction{}).Where("user_id = ?", user.ID).Count(&txnCount)
	if txnCount != 1 {
		t.Fatalf("free purchase still writes one ledger entry, got %d", txnCount)
	}
}

func TestPurchaseCourse_RetryAfterFailureFreesSlot(t *testing.T) {
	db := newTestDB(t)
	svc := newPurchaseService(db, StaticGateway{Status: PaymentPending}, nil)

	user := seedUser(t, db, "erin", 100)
	course := seedCourse(t, db, "课程", 30, true)

	failed := &model.Purchase{UserID: user.ID, CourseID: course.ID, Status: model.PurchaseFailed}
	if err := db.Create(failed).Error; err != nil {
		t.Fatalf("seed failed purchase: %v", err)
	}

	if _, err := svc.PurchaseCourse(user.ID, course.ID); err != nil {
		t.Fatalf("retry after FAILED must succeed: %v", err)
	}

	var purchases []model.Purchase
	db.Unscoped().Where("user_id = ? AND course_id = ?", user.ID, course.ID).Find(&purchases)
	if len(purchases) != 1 || purchases[0].Status != model.PurchaseActive {
		t.Fatalf("expected single ACTIVE purchase, got %+v", purchases)
	}
}

func TestPurchaseCourse_UnpublishedCourseNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newPurchaseService(db, StaticGateway{Status: PaymentPending}, nil)

	user := seedUser(t, db, "frank", 100)
	course := seedCourse(t, db, "草稿", 10, false)

	_, err := svc.PurchaseCourse(user.ID, course.ID)
	if !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestRedeemCode_GrantsAccessWithoutTouchingBalance(t *testing.T) {
	db := newTestDB(t)
	svc := newPurchaseService(db, StaticGateway{Status: PaymentPending}, nil)

	user := seedUser(t, db, "gina", 5)
	course := seedCourse(t, db, "课程", 100, true)

	code := &model.RedemptionCode{Code: "ABCD1234EFGH", CourseID: course.ID, CreatorID: 1}
	if err := db.Create(code).Error; err != nil {
		t.Fatalf("seed code: %v", err)
	}

	// 归一化：小写和空白也能兑换
	result, err := svc.RedeemCode(user.ID, "  abcd1234efgh ")
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if result.CourseID != course.ID {
		t.Fatalf("unexpected course id %d", result.CourseID)
	}

	var fresh model.User
	db.First(&fresh, user.ID)
	if fresh.Balance != 5 {
		t.Fatalf("redemption must not touch balance, got %v", fresh.Balance)
	}

	var rc model.RedemptionCode
	db.First(&rc, code.ID)
	if !rc.IsUsed || rc.UsedBy == nil || *rc.UsedBy != user.ID || rc.UsedAt == nil {
		t.Fatalf("code not marked used correctly: %+v", rc)
	}
}

func TestRedeemCode_SecondUseRejectedWithoutMutation(t *testing.T) {
	db := newTestDB(t)
	svc := newPurchaseService(db, StaticGateway{Status: PaymentPending}, nil)

	first := seedUser(t, db, "henry", 0)
	second := seedUser(t, db, "iris", 0)
	course := seedCourse(t, db, "课程", 100, true)

	code := &model.RedemptionCode{Code: "ZZZZ9999YYYY", CourseID: course.ID, CreatorID: 1}
	db.Create(code)

	if _, err := svc.RedeemCode(first.ID, code.Code); err != nil {
		t.Fatalf("first redeem: %v", err)
	}

	_, err := svc.RedeemCode(second.ID, code.Code)
	if !errors.Is(err, util.ErrCodeAlreadyUsed) {
		t.Fatalf("expected ErrCodeAlreadyUsed, got %v", err)
	}

	var rc model.RedemptionCode
	db.First(&rc, code.ID)
	if rc.UsedBy == nil || *rc.UsedBy != first.ID {
		t.Fatalf("used_by must stay with first user: %+v", rc)
	}

	var count int64
	db.Model(&model.Purchase{}).Where("user_id = ?", second.ID).Count(&count)
	if count != 0 {
		t.Fatalf("second user must not gain a purchase, got %d", count)
	}
}

func TestRedeemCode_UnknownCode(t *testing.T) {
	db := newTestDB(t)
	svc := newPurchaseService(db, StaticGateway{Status: PaymentPending}, nil)

	user := seedUser(t, db, "judy", 0)
	_, err := svc.RedeemCode(user.ID, "NOPE")
	if !errors.Is(err, util.ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound, got %v", err)
	}
}

func TestAddBalance_RulesEnforced(t *testing.T) {
	db := newTestDB(t)
	svc := newPurchaseService(db, StaticGateway{Status: PaymentPending}, nil)

	user := seedUser(t, db, "kate", 10)

	if _, err := svc.AddBalance(model.Student, user.ID, 50, ""); !errors.Is(err, util.ErrStudentCannotSelfFund) {
		t.Fatalf("student funding must be rejected, got %v", err)
	}
	if _, err := svc.AddBalance(model.Admin, user.ID, -5, ""); !errors.Is(err, util.ErrInvalidAmount) {
		t.Fatalf("negative amount must be rejected, got %v", err)
	}
	if _, err := svc.AddBalance(model.Admin, user.ID, 0, ""); !errors.Is(err, util.ErrInvalidAmount) {
		t.Fatalf("zero amount must be rejected, got %v", err)
	}

	newBalance, err := svc.AddBalance(model.Admin, user.ID, 90, "测试充值")
	if err != nil {
		t.Fatalf("admin funding: %v", err)
	}
	if newBalance != 100 {
		t.Fatalf("expected balance 100, got %v", newBalance)
	}

	var txns []model.BalanceTransaction
	db.Where("user_id = ?", user.ID).Find(&txns)
	if len(txns) != 1 || txns[0].Type != model.TransactionDeposit || txns[0].Amount != 90 {
		t.Fatalf("expected single DEPOSIT of 90, got %+v", txns)
	}
}

func TestResolvePendingPurchases_ConfirmedActivatesAndDebits(t *testing.T) {
	db := newTestDB(t)
	svc := newPurchaseService(db, StaticGateway{Status: PaymentConfirmed}, nil)

	user := seedUser(t, db, "liam", 80)
	course := seedCourse(t, db, "课程", 30, true)

	pending, err := svc.PurchaseViaGateway(user.ID, course.ID)
	if err != nil {
		t.Fatalf("gateway purchase: %v", err)
	}
	if pending.Status != model.PurchasePending {
		t.Fatalf("expected PENDING, got %s", pending.Status)
	}

	if err := svc.ResolvePendingPurchases(context.Background()); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	var p model.Purchase
	db.First(&p, pending.ID)
	if p.Status != model.PurchaseActive {
		t.Fatalf("expected ACTIVE after confirmation, got %s", p.Status)
	}

	var fresh model.User
	db.First(&fresh, user.ID)
	if fresh.Balance != 50 {
		t.Fatalf("expected balance 50 after debit, got %v", fresh.Balance)
	}
}

func TestResolvePendingPurchases_DeclinedFails(t *testing.T) {
	db := newTestDB(t)
	svc := newPurchaseService(db, StaticGateway{Status: PaymentDeclined}, nil)

	user := seedUser(t, db, "mona", 80)
	course := seedCourse(t, db, "课程", 30, true)

	pending, _ := svc.PurchaseViaGateway(user.ID, course.ID)

	if err := svc.ResolvePendingPurchases(context.Background()); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	var p model.Purchase
	db.First(&p, pending.ID)
	if p.Status != model.PurchaseFailed {
		t.Fatalf("expected FAILED after decline, got %s", p.Status)
	}

	var fresh model.User
	db.First(&fresh, user.ID)
	if fresh.Balance != 80 {
		t.Fatalf("declined purchase must not debit, got %v", fresh.Balance)
	}
}

func TestResolvePendingPurchases_ExpiresAfterMaxPolls(t *testing.T) {
	db := newTestDB(t)
	cfg := &config.Config{}
	cfg.Payment.MaxPolls = 2
	svc := newPurchaseService(db, StaticGateway{Status: PaymentPending}, cfg)

	user := seedUser(t, db, "nina", 80)
	course := seedCourse(t, db, "课程", 30, true)

	pending, _ := svc.PurchaseViaGateway(user.ID, course.ID)

	// 第一轮：仍 PENDING，计数 +1
	if err := svc.ResolvePendingPurchases(context.Background()); err != nil {
		t.Fatalf("resolve 1: %v", err)
	}
	var p model.Purchase
	db.First(&p, pending.ID)
	if p.Status != model.PurchasePending {
		t.Fatalf("expected still PENDING after first poll, got %s", p.Status)
	}

	// 第二轮：轮询耗尽，转 FAILED
	if err := svc.ResolvePendingPurchases(context.Background()); err != nil {
		t.Fatalf("resolve 2: %v", err)
	}
	db.First(&p, pending.ID)
	if p.Status != model.PurchaseFailed {
		t.Fatalf("expected FAILED after max polls, got %s", p.Status)
	}
}

func TestPurchaseViaGateway_PendingBlocksSecondPurchase(t *testing.T) {
	db := newTestDB(t)
	svc := newPurchaseService(db, StaticGateway{Status: PaymentPending}, nil)

	user := seedUser(t, db, "omar", 80)
	course := seedCourse(t, db, "课程", 30, true)

	if _, err := svc.PurchaseViaGateway(user.ID, course.ID); err != nil {
		t.Fatalf("gateway purchase: %v", err)
	}

	_, err := svc.PurchaseCourse(user.ID, course.ID)
	if !errors.Is(err, util.ErrPurchasePending) {
		t.Fatalf("expected ErrPurchasePending, got %v", err)
	}
}
