package models

import (
	"time"
)

// Position tracks one user's share balances in one market. Average prices
// are volume-weighted entry prices at 10^-6 scale and stay untouched on
// sells; they back the cost-basis refund after a cancellation.
type Position struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	MarketID string `gorm:"type:varchar(64);not null;uniqueIndex:idx_positions_market_user;index"`
	UserID   string `gorm:"column:user_id;type:varchar(100);not null;uniqueIndex:idx_positions_market_user;index"`

	YesShares   uint64 `gorm:"not null;default:0"`
	NoShares    uint64 `gorm:"not null;default:0"`
	YesAvgPrice uint64 `gorm:"not null;default:0"`
	NoAvgPrice  uint64 `gorm:"not null;default:0"`

	Claimed   bool       `gorm:"not null;default:false"`
	ClaimedAt *time.Time `gorm:"type:timestamptz"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Position) TableName() string {
	return "positions"
}
