package service

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/datmedevil17/magic-market/internal/models"
	"github.com/datmedevil17/magic-market/internal/oracle"
	"github.com/datmedevil17/magic-market/internal/repository"
)

// stubRepo is an in-memory Repository for service tests. InTx runs the
// callback against a nil handle; writes are not rolled back on error, so
// tests exercising failures rely on services failing before the first save.
type stubRepo struct {
	markets  map[string]models.Market
	pools    map[string]models.Pool
	position map[string]models.Position
	lps      map[string]models.LPPosition
	accounts map[string]models.CollateralAccount
	settings map[string]models.SystemSetting
	latest   map[string]models.OracleLatest

	trades      []models.Trade
	liquidity   []models.LiquidityEvent
	payouts     []models.Payout
	history     []models.OraclePrice
	settlements []models.SettlementRecord
	snapshots   []models.MarketSnapshot
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		markets:  map[string]models.Market{},
		pools:    map[string]models.Pool{},
		position: map[string]models.Position{},
		lps:      map[string]models.LPPosition{},
		accounts: map[string]models.CollateralAccount{},
		settings: map[string]models.SystemSetting{},
		latest:   map[string]models.OracleLatest{},
	}
}

func posKey(marketID, user string) string { return marketID + "/" + user }

func (r *stubRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (r *stubRepo) InsertMarketTx(ctx context.Context, tx *gorm.DB, item *models.Market) error {
	if _, ok := r.markets[item.ID]; ok {
		return gorm.ErrDuplicatedKey
	}
	r.markets[item.ID] = *item
	return nil
}

func (r *stubRepo) GetMarketByID(ctx context.Context, id string) (*models.Market, error) {
	m, ok := r.markets[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *stubRepo) GetMarketForUpdateTx(ctx context.Context, tx *gorm.DB, id string) (*models.Market, error) {
	return r.GetMarketByID(ctx, id)
}

func (r *stubRepo) SaveMarketTx(ctx context.Context, tx *gorm.DB, item *models.Market) error {
	r.markets[item.ID] = *item
	return nil
}

func (r *stubRepo) ListMarkets(ctx context.Context, params repository.ListMarketsParams) ([]models.Market, error) {
	var out []models.Market
	for _, m := range r.markets {
		if params.Status != nil && m.Status != *params.Status {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *stubRepo) CountMarkets(ctx context.Context, params repository.ListMarketsParams) (int64, error) {
	items, _ := r.ListMarkets(ctx, params)
	return int64(len(items)), nil
}

func (r *stubRepo) ListExpiredActiveMarkets(ctx context.Context, expiredBefore time.Time, limit int) ([]models.Market, error) {
	var out []models.Market
	for _, m := range r.markets {
		if m.Status == models.MarketStatusActive && m.ExpiresAt.Before(expiredBefore) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubRepo) ListDelegatedMarketIDs(ctx context.Context, limit int) ([]string, error) {
	var out []string
	for _, m := range r.markets {
		if m.Delegated {
			out = append(out, m.ID)
		}
	}
	return out, nil
}

func (r *stubRepo) ListActiveOracleFeeds(ctx context.Context, limit int) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, m := range r.markets {
		if m.Status == models.MarketStatusActive && !seen[m.OracleFeed] {
			seen[m.OracleFeed] = true
			out = append(out, m.OracleFeed)
		}
	}
	return out, nil
}

func (r *stubRepo) ListActiveMarketIDs(ctx context.Context, limit int) ([]string, error) {
	var out []string
	for _, m := range r.markets {
		if m.Status == models.MarketStatusActive {
			out = append(out, m.ID)
		}
	}
	return out, nil
}

func (r *stubRepo) GetPoolByMarketID(ctx context.Context, marketID string) (*models.Pool, error) {
	p, ok := r.pools[marketID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *stubRepo) GetPoolForUpdateTx(ctx context.Context, tx *gorm.DB, marketID string) (*models.Pool, error) {
	return r.GetPoolByMarketID(ctx, marketID)
}

func (r *stubRepo) InsertPoolTx(ctx context.Context, tx *gorm.DB, item *models.Pool) error {
	if _, ok := r.pools[item.MarketID]; ok {
		return gorm.ErrDuplicatedKey
	}
	r.pools[item.MarketID] = *item
	return nil
}

func (r *stubRepo) SavePoolTx(ctx context.Context, tx *gorm.DB, item *models.Pool) error {
	r.pools[item.MarketID] = *item
	return nil
}

func (r *stubRepo) GetPosition(ctx context.Context, marketID, user string) (*models.Position, error) {
	p, ok := r.position[posKey(marketID, user)]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *stubRepo) GetPositionForUpdateTx(ctx context.Context, tx *gorm.DB, marketID, user string) (*models.Position, error) {
	return r.GetPosition(ctx, marketID, user)
}

func (r *stubRepo) SavePositionTx(ctx context.Context, tx *gorm.DB, item *models.Position) error {
	r.position[posKey(item.MarketID, item.UserID)] = *item
	return nil
}

func (r *stubRepo) ListPositions(ctx context.Context, params repository.ListPositionsParams) ([]models.Position, error) {
	var out []models.Position
	for _, p := range r.position {
		if params.MarketID != nil && p.MarketID != *params.MarketID {
			continue
		}
		if params.User != nil && p.UserID != *params.User {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *stubRepo) CountPositions(ctx context.Context, params repository.ListPositionsParams) (int64, error) {
	items, _ := r.ListPositions(ctx, params)
	return int64(len(items)), nil
}

func (r *stubRepo) GetLPPosition(ctx context.Context, marketID, user string) (*models.LPPosition, error) {
	p, ok := r.lps[posKey(marketID, user)]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *stubRepo) GetLPPositionForUpdateTx(ctx context.Context, tx *gorm.DB, marketID, user string) (*models.LPPosition, error) {
	return r.GetLPPosition(ctx, marketID, user)
}

func (r *stubRepo) SaveLPPositionTx(ctx context.Context, tx *gorm.DB, item *models.LPPosition) error {
	r.lps[posKey(item.MarketID, item.UserID)] = *item
	return nil
}

func (r *stubRepo) EnsureCollateralAccountTx(ctx context.Context, tx *gorm.DB, account string) error {
	if _, ok := r.accounts[account]; !ok {
		r.accounts[account] = models.CollateralAccount{Account: account}
	}
	return nil
}

func (r *stubRepo) GetCollateralAccount(ctx context.Context, account string) (*models.CollateralAccount, error) {
	a, ok := r.accounts[account]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *stubRepo) GetCollateralAccountForUpdateTx(ctx context.Context, tx *gorm.DB, account string) (*models.CollateralAccount, error) {
	return r.GetCollateralAccount(ctx, account)
}

func (r *stubRepo) SaveCollateralAccountTx(ctx context.Context, tx *gorm.DB, item *models.CollateralAccount) error {
	r.accounts[item.Account] = *item
	return nil
}

func (r *stubRepo) InsertTradeTx(ctx context.Context, tx *gorm.DB, item *models.Trade) error {
	r.trades = append(r.trades, *item)
	return nil
}

func (r *stubRepo) ListTrades(ctx context.Context, params repository.ListTradesParams) ([]models.Trade, error) {
	var out []models.Trade
	for _, t := range r.trades {
		if params.MarketID != nil && t.MarketID != *params.MarketID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *stubRepo) CountTrades(ctx context.Context, params repository.ListTradesParams) (int64, error) {
	items, _ := r.ListTrades(ctx, params)
	return int64(len(items)), nil
}

func (r *stubRepo) TradeTotals(ctx context.Context, marketID string) (repository.TradeTotals, error) {
	var totals repository.TradeTotals
	for _, t := range r.trades {
		if t.MarketID != marketID {
			continue
		}
		totals.Count++
		if t.Kind == models.TradeKindBuy {
			totals.Volume += t.AmountIn
		} else {
			totals.Volume += t.AmountOut
		}
	}
	return totals, nil
}

func (r *stubRepo) InsertLiquidityEventTx(ctx context.Context, tx *gorm.DB, item *models.LiquidityEvent) error {
	r.liquidity = append(r.liquidity, *item)
	return nil
}

func (r *stubRepo) InsertPayoutTx(ctx context.Context, tx *gorm.DB, item *models.Payout) error {
	r.payouts = append(r.payouts, *item)
	return nil
}

func (r *stubRepo) InsertOraclePrice(ctx context.Context, item *models.OraclePrice) error {
	r.history = append(r.history, *item)
	return nil
}

func (r *stubRepo) UpsertOracleLatest(ctx context.Context, item *models.OracleLatest) error {
	r.latest[item.FeedID] = *item
	return nil
}

func (r *stubRepo) GetOracleLatest(ctx context.Context, feedID string) (*models.OracleLatest, error) {
	row, ok := r.latest[feedID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *stubRepo) InsertSettlementRecord(ctx context.Context, item *models.SettlementRecord) error {
	r.settlements = append(r.settlements, *item)
	return nil
}

func (r *stubRepo) ListSettlementRecords(ctx context.Context, params repository.ListSettlementRecordsParams) ([]models.SettlementRecord, error) {
	return r.settlements, nil
}

func (r *stubRepo) CountSettlementRecords(ctx context.Context, params repository.ListSettlementRecordsParams) (int64, error) {
	return int64(len(r.settlements)), nil
}

func (r *stubRepo) InsertMarketSnapshot(ctx context.Context, item *models.MarketSnapshot) error {
	r.snapshots = append(r.snapshots, *item)
	return nil
}

func (r *stubRepo) GetLatestMarketSnapshot(ctx context.Context, marketID string) (*models.MarketSnapshot, error) {
	for i := len(r.snapshots) - 1; i >= 0; i-- {
		if r.snapshots[i].MarketID == marketID {
			row := r.snapshots[i]
			return &row, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error {
	r.settings[item.Key] = *item
	return nil
}

func (r *stubRepo) GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	row, ok := r.settings[key]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *stubRepo) ListSystemSettings(ctx context.Context, params repository.ListSystemSettingsParams) ([]models.SystemSetting, error) {
	var out []models.SystemSetting
	for _, s := range r.settings {
		if params.Prefix != nil && !strings.HasPrefix(s.Key, *params.Prefix) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *stubRepo) CountSystemSettings(ctx context.Context, params repository.ListSystemSettingsParams) (int64, error) {
	items, _ := r.ListSystemSettings(ctx, params)
	return int64(len(items)), nil
}

// ledgerTotal sums every collateral row; trades and payouts must not change
// it because they only move funds between rows.
func (r *stubRepo) ledgerTotal() uint64 {
	var total uint64
	for _, a := range r.accounts {
		total += a.Balance
	}
	return total
}

// stubOracle returns one fixed reading for every feed.
type stubOracle struct {
	price *oracle.Price
	err   error
}

func (s *stubOracle) GetPrice(ctx context.Context, feedID string, now time.Time, maxStaleness time.Duration) (*oracle.Price, error) {
	if s.err != nil {
		return nil, s.err
	}
	p := *s.price
	p.FeedID = feedID
	return &p, nil
}
