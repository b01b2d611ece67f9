package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SettlementActionDelegate = "delegate"
	SettlementActionCommit   = "commit"
	SettlementActionRelease  = "release"
)

const (
	SettlementStatusOK     = "ok"
	SettlementStatusFailed = "failed"
)

// SettlementRecord logs one interaction with the settlement bridge, with the
// flat market+pool snapshot that was sent.
type SettlementRecord struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	MarketID string `gorm:"type:varchar(64);not null;index"`

	Action    string `gorm:"type:varchar(10);not null"`
	BridgeRef string `gorm:"type:varchar(100)"`
	Status    string `gorm:"type:varchar(10);not null;index"`

	Snapshot datatypes.JSON `gorm:"type:jsonb"`
	Error    string         `gorm:"type:text"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (SettlementRecord) TableName() string {
	return "settlement_records"
}
