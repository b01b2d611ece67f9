package models

import (
	"time"
)

const (
	PayoutKindClaim  = "claim"
	PayoutKindRefund = "refund"
)

// Payout records a settlement leaving the market vault: a 1:1 winning-share
// claim after resolution, or a cost-basis refund after cancellation.
type Payout struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	MarketID string `gorm:"type:varchar(64);not null;index"`
	UserID   string `gorm:"column:user_id;type:varchar(100);not null;index"`

	Kind   string `gorm:"type:varchar(10);not null"`
	Amount uint64 `gorm:"not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (Payout) TableName() string {
	return "payouts"
}
