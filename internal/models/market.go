package models

import (
	"time"
)

const (
	MarketStatusActive    = "active"
	MarketStatusResolved  = "resolved"
	MarketStatusCancelled = "cancelled"
)

const (
	SideYes = "yes"
	SideNo  = "no"
)

// Market is a binary-outcome market resolved against an oracle price feed.
// Outcome, ResolutionPrice and ResolvedAt are set together, once, when the
// market transitions to resolved.
type Market struct {
	ID          string `gorm:"primaryKey;type:varchar(64)"`
	Authority   string `gorm:"type:varchar(100);not null;index"`
	Description string `gorm:"type:varchar(128);not null"`

	OracleFeed    string `gorm:"type:varchar(100);not null;index"`
	StrikePrice   int64  `gorm:"not null"`
	MaxConfidence uint64 `gorm:"not null"`

	ExpiresAt time.Time `gorm:"type:timestamptz;not null;index"`

	Status          string     `gorm:"type:varchar(20);not null;default:'active';index"`
	Outcome         *string    `gorm:"type:varchar(10)"`
	ResolutionPrice *int64
	ResolvedAt      *time.Time `gorm:"type:timestamptz"`

	TotalYesShares uint64 `gorm:"not null;default:0"`
	TotalNoShares  uint64 `gorm:"not null;default:0"`

	Delegated   bool       `gorm:"not null;default:false"`
	DelegatedAt *time.Time `gorm:"type:timestamptz"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Market) TableName() string {
	return "markets"
}
