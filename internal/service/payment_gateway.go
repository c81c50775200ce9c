package service

import (
	"context"

	"edu_course_backend/internal/model"
)

type PaymentStatus string

const (
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentDeclined  PaymentStatus = "declined"
	PaymentPending   PaymentStatus = "pending"
)

// PaymentGateway 抽象外部支付状态查询。本服务不实现任何网关逻辑，
// 只按固定次数、固定间隔轮询，轮询耗尽后 PENDING 购买被判为 FAILED。
type PaymentGateway interface {
	PaymentStatus(ctx context.Context, purchase *model.Purchase) (PaymentStatus, error)
}

// StaticGateway 固定返回同一状态，用于未接入真实网关的部署和测试
type StaticGateway struct {
	Status PaymentStatus
}

func (g StaticGateway) PaymentStatus(_ context.Context, _ *model.Purchase) (PaymentStatus, error) {
	return g.Status, nil
}
