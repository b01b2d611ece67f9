package models

import "time"

// OracleLatest caches the freshest reading per feed for resolution and the
// price API; history lives in OraclePrice.
type OracleLatest struct {
	FeedID string `gorm:"primaryKey;type:varchar(100)"`

	Price       int64     `gorm:"not null"`
	Confidence  uint64    `gorm:"not null"`
	PublishedAt time.Time `gorm:"type:timestamptz;not null"`

	Source    string    `gorm:"type:varchar(10);not null"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null"`
}

func (OracleLatest) TableName() string {
	return "oracle_latest"
}
