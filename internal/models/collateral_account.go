package models

import (
	"time"
)

// CollateralAccount is one balance row in the internal collateral ledger.
// User accounts are keyed by identity string, market vaults by
// "market:<market_id>". Transfers debit and credit pairs of rows inside one
// database transaction, so the sum over all rows only changes through
// explicit deposits and withdrawals.
type CollateralAccount struct {
	Account string `gorm:"primaryKey;type:varchar(100)"`
	Balance uint64 `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (CollateralAccount) TableName() string {
	return "collateral_accounts"
}
