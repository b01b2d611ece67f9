package models

import (
	"time"
)

const (
	TradeKindBuy  = "buy"
	TradeKindSell = "sell"
)

// Trade is an append-only fill record written once per executed swap.
type Trade struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	MarketID string `gorm:"type:varchar(64);not null;index"`
	UserID   string `gorm:"column:user_id;type:varchar(100);not null;index"`

	Kind string `gorm:"type:varchar(10);not null"`
	Side string `gorm:"type:varchar(10);not null"`

	// AmountIn is collateral for buys and shares for sells; AmountOut is the
	// mirror. Fee is denominated in AmountIn units for buys and in output
	// collateral for sells.
	AmountIn  uint64 `gorm:"not null"`
	AmountOut uint64 `gorm:"not null"`
	Fee       uint64 `gorm:"not null;default:0"`

	// Post-trade pool state, for charting and audit.
	Price      uint64 `gorm:"not null"`
	YesReserve uint64 `gorm:"not null"`
	NoReserve  uint64 `gorm:"not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (Trade) TableName() string {
	return "trades"
}
