package models

import (
	"time"
)

const (
	LiquidityKindInitialize = "initialize"
	LiquidityKindAdd        = "add"
	LiquidityKindRemove     = "remove"
)

// LiquidityEvent is an append-only record of a deposit into or withdrawal
// from a pool, with the LP tokens minted or burned for it.
type LiquidityEvent struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	MarketID string `gorm:"type:varchar(64);not null;index"`
	UserID   string `gorm:"column:user_id;type:varchar(100);not null;index"`

	Kind string `gorm:"type:varchar(12);not null"`

	Amount   uint64 `gorm:"not null"`
	LPTokens uint64 `gorm:"column:lp_tokens;not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (LiquidityEvent) TableName() string {
	return "liquidity_events"
}
