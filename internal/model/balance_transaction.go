package model

type TransactionType string

const (
	TransactionDeposit  TransactionType = "DEPOSIT"
	TransactionPurchase TransactionType = "PURCHASE"
)

// swagger:model BalanceTransaction
// 只追加的流水表：每次余额变动必须在同一事务里写入一条对应记录，
// 创建后不再更新或删除。
type BalanceTransaction struct {
	BaseModel
	UserID      uint            `gorm:"index;not null" json:"userId"`
	Amount      float64         `gorm:"type:decimal(12,2);not null" json:"amount"` // 带符号，PURCHASE 为负
	Type        TransactionType `gorm:"size:20;not null;index" json:"type"`
	Description string          `gorm:"size:255" json:"description"`
}

func (BalanceTransaction) TableName() string {
	return "balance_transactions"
}
