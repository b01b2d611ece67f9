package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/datmedevil17/magic-market/internal/models"
)

// Repository is the ledger/account store behind the engine services. Reads
// return (nil, nil) on a miss. The *Tx variants run against a transaction
// handle from InTx; the ForUpdate reads take row locks so concurrent
// operations against one market serialize at the database.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Markets
	InsertMarketTx(ctx context.Context, tx *gorm.DB, item *models.Market) error
	GetMarketByID(ctx context.Context, id string) (*models.Market, error)
	GetMarketForUpdateTx(ctx context.Context, tx *gorm.DB, id string) (*models.Market, error)
	SaveMarketTx(ctx context.Context, tx *gorm.DB, item *models.Market) error
	ListMarkets(ctx context.Context, params ListMarketsParams) ([]models.Market, error)
	CountMarkets(ctx context.Context, params ListMarketsParams) (int64, error)
	ListExpiredActiveMarkets(ctx context.Context, expiredBefore time.Time, limit int) ([]models.Market, error)
	ListDelegatedMarketIDs(ctx context.Context, limit int) ([]string, error)
	ListActiveOracleFeeds(ctx context.Context, limit int) ([]string, error)
	ListActiveMarketIDs(ctx context.Context, limit int) ([]string, error)

	// Pools
	GetPoolByMarketID(ctx context.Context, marketID string) (*models.Pool, error)
	GetPoolForUpdateTx(ctx context.Context, tx *gorm.DB, marketID string) (*models.Pool, error)
	InsertPoolTx(ctx context.Context, tx *gorm.DB, item *models.Pool) error
	SavePoolTx(ctx context.Context, tx *gorm.DB, item *models.Pool) error

	// Positions
	GetPosition(ctx context.Context, marketID, user string) (*models.Position, error)
	GetPositionForUpdateTx(ctx context.Context, tx *gorm.DB, marketID, user string) (*models.Position, error)
	SavePositionTx(ctx context.Context, tx *gorm.DB, item *models.Position) error
	ListPositions(ctx context.Context, params ListPositionsParams) ([]models.Position, error)
	CountPositions(ctx context.Context, params ListPositionsParams) (int64, error)

	// LP positions
	GetLPPosition(ctx context.Context, marketID, user string) (*models.LPPosition, error)
	GetLPPositionForUpdateTx(ctx context.Context, tx *gorm.DB, marketID, user string) (*models.LPPosition, error)
	SaveLPPositionTx(ctx context.Context, tx *gorm.DB, item *models.LPPosition) error

	// Collateral ledger
	CollateralRepository

	// Trade history
	InsertTradeTx(ctx context.Context, tx *gorm.DB, item *models.Trade) error
	ListTrades(ctx context.Context, params ListTradesParams) ([]models.Trade, error)
	CountTrades(ctx context.Context, params ListTradesParams) (int64, error)
	TradeTotals(ctx context.Context, marketID string) (TradeTotals, error)

	// Liquidity / payout history
	InsertLiquidityEventTx(ctx context.Context, tx *gorm.DB, item *models.LiquidityEvent) error
	InsertPayoutTx(ctx context.Context, tx *gorm.DB, item *models.Payout) error

	// Oracle cache
	OracleRepository

	// Settlement bridge log
	InsertSettlementRecord(ctx context.Context, item *models.SettlementRecord) error
	ListSettlementRecords(ctx context.Context, params ListSettlementRecordsParams) ([]models.SettlementRecord, error)
	CountSettlementRecords(ctx context.Context, params ListSettlementRecordsParams) (int64, error)

	// Statistics
	InsertMarketSnapshot(ctx context.Context, item *models.MarketSnapshot) error
	GetLatestMarketSnapshot(ctx context.Context, marketID string) (*models.MarketSnapshot, error)

	// System settings
	UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error
	GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error)
	ListSystemSettings(ctx context.Context, params ListSystemSettingsParams) ([]models.SystemSetting, error)
	CountSystemSettings(ctx context.Context, params ListSystemSettingsParams) (int64, error)
}

// OracleRepository is the slice of the store that caches oracle readings:
// an append-only history plus one latest row per feed.
type OracleRepository interface {
	InsertOraclePrice(ctx context.Context, item *models.OraclePrice) error
	UpsertOracleLatest(ctx context.Context, item *models.OracleLatest) error
	GetOracleLatest(ctx context.Context, feedID string) (*models.OracleLatest, error)
}

// CollateralRepository is the slice of the store the vault ledger works
// against. EnsureCollateralAccountTx inserts a zero-balance row when none
// exists and never touches an existing balance, so callers can lock the row
// afterwards regardless of whether the account was ever funded.
type CollateralRepository interface {
	EnsureCollateralAccountTx(ctx context.Context, tx *gorm.DB, account string) error
	GetCollateralAccount(ctx context.Context, account string) (*models.CollateralAccount, error)
	GetCollateralAccountForUpdateTx(ctx context.Context, tx *gorm.DB, account string) (*models.CollateralAccount, error)
	SaveCollateralAccountTx(ctx context.Context, tx *gorm.DB, item *models.CollateralAccount) error
}

// TradeTotals aggregates a market's fill history. Volume sums the collateral
// leg of every trade (amount in for buys, amount out for sells).
type TradeTotals struct {
	Count  int64
	Volume uint64
}

type ListMarketsParams struct {
	Limit      int
	Offset     int
	Status     *string
	Authority  *string
	OracleFeed *string
	Delegated  *bool
	OrderBy    string
	Asc        *bool
}

type ListPositionsParams struct {
	Limit    int
	Offset   int
	MarketID *string
	User     *string
	Claimed  *bool
	OrderBy  string
	Asc      *bool
}

type ListTradesParams struct {
	Limit    int
	Offset   int
	MarketID *string
	User     *string
	Kind     *string
	Side     *string
	Since    *time.Time
	OrderBy  string
	Asc      *bool
}

type ListSettlementRecordsParams struct {
	Limit    int
	Offset   int
	MarketID *string
	Action   *string
	Status   *string
	OrderBy  string
	Asc      *bool
}

type ListSystemSettingsParams struct {
	Limit   int
	Offset  int
	Prefix  *string
	OrderBy string
	Asc     *bool
}
