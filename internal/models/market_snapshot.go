package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketSnapshot is a periodic statistics row per market. Prices are stored
// as decimals (implied probability in [0,1]) for direct charting.
type MarketSnapshot struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	MarketID string `gorm:"type:varchar(64);not null;index"`

	YesPrice decimal.Decimal `gorm:"type:numeric(20,10);not null"`
	NoPrice  decimal.Decimal `gorm:"type:numeric(20,10);not null"`

	YesReserve         uint64 `gorm:"not null"`
	NoReserve          uint64 `gorm:"not null"`
	TotalLiquidity     uint64 `gorm:"not null"`
	LPTokenSupply      uint64 `gorm:"column:lp_token_supply;not null"`
	TotalFeesCollected uint64 `gorm:"not null"`

	TradeCount uint64 `gorm:"not null"`
	Volume     uint64 `gorm:"not null"`

	SnapshotAt time.Time `gorm:"type:timestamptz;not null;index"`
	CreatedAt  time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (MarketSnapshot) TableName() string {
	return "market_snapshots"
}
