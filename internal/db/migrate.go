package db

import (
	"github.com/datmedevil17/magic-market/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	if err := db.Gorm.AutoMigrate(
		&models.Market{},
		&models.Pool{},
		&models.Position{},
		&models.LPPosition{},
		&models.CollateralAccount{},
		&models.Trade{},
		&models.LiquidityEvent{},
		&models.Payout{},
		&models.OraclePrice{},
		&models.OracleLatest{},
		&models.SettlementRecord{},
		&models.MarketSnapshot{},
		&models.SystemSetting{},
	); err != nil {
		return err
	}
	if db.Gorm.Migrator().HasColumn(&models.Pool{}, "fee_bps") {
		if err := db.Gorm.Migrator().DropColumn(&models.Pool{}, "fee_bps"); err != nil {
			return err
		}
	}
	return nil
}
