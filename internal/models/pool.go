package models

import (
	"time"
)

// Pool holds the constant-product reserves for one market. Reserves are
// virtual share balances; TotalLiquidity tracks net collateral deposits and
// is never adjusted by trading fees.
type Pool struct {
	MarketID string `gorm:"primaryKey;type:varchar(64)"`

	YesReserve uint64 `gorm:"not null;default:0"`
	NoReserve  uint64 `gorm:"not null;default:0"`

	TotalLiquidity     uint64 `gorm:"not null;default:0"`
	TotalFeesCollected uint64 `gorm:"not null;default:0"`
	LPTokenSupply      uint64 `gorm:"column:lp_token_supply;not null;default:0"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Pool) TableName() string {
	return "pools"
}
