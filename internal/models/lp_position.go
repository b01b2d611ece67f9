package models

import (
	"time"
)

// LPPosition is one user's share of a pool's liquidity. The claim on
// Pool.TotalLiquidity is LPTokens / Pool.LPTokenSupply; a zero balance is a
// valid terminal state and the row is kept.
type LPPosition struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	MarketID string `gorm:"type:varchar(64);not null;uniqueIndex:idx_lp_positions_market_user;index"`
	UserID   string `gorm:"column:user_id;type:varchar(100);not null;uniqueIndex:idx_lp_positions_market_user;index"`

	LPTokens uint64 `gorm:"column:lp_tokens;not null;default:0"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (LPPosition) TableName() string {
	return "lp_positions"
}
