package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	OracleSourceStream = "stream"
	OracleSourceREST   = "rest"
)

// OraclePrice is append-only price-feed history. Price and Confidence are
// normalized to 10^-8 scale regardless of the feed's native exponent.
type OraclePrice struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	FeedID string `gorm:"type:varchar(100);not null;index"`

	Price       int64  `gorm:"not null"`
	Confidence  uint64 `gorm:"not null"`
	PublishedAt time.Time `gorm:"type:timestamptz;not null;index"`

	Source     string         `gorm:"type:varchar(10);not null"`
	Payload    datatypes.JSON `gorm:"type:jsonb"`
	ReceivedAt time.Time      `gorm:"type:timestamptz;not null"`
}

func (OraclePrice) TableName() string {
	return "oracle_prices"
}
