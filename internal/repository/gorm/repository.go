package gormrepository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/datmedevil17/magic-market/internal/models"
	"github.com/datmedevil17/magic-market/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- Markets -----------------------------------------------------------------

// InsertMarketTx reports gorm.ErrDuplicatedKey when the market ID already
// exists, so callers can surface the conflict without parsing driver errors.
func (s *Store) InsertMarketTx(ctx context.Context, tx *gorm.DB, item *models.Market) error {
	if item == nil {
		return nil
	}
	res := tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(item)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrDuplicatedKey
	}
	return nil
}

func (s *Store) GetMarketByID(ctx context.Context, id string) (*models.Market, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	var item models.Market
	err := s.db.WithContext(ctx).Model(&models.Market{}).Where("id = ?", id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetMarketForUpdateTx(ctx context.Context, tx *gorm.DB, id string) (*models.Market, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	var item models.Market
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) SaveMarketTx(ctx context.Context, tx *gorm.DB, item *models.Market) error {
	if item == nil {
		return nil
	}
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status",
			"outcome",
			"resolution_price",
			"resolved_at",
			"total_yes_shares",
			"total_no_shares",
			"delegated",
			"delegated_at",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) ListMarkets(ctx context.Context, params repository.ListMarketsParams) ([]models.Market, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyMarketFilters(s.db.WithContext(ctx).Model(&models.Market{}), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Market
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountMarkets(ctx context.Context, params repository.ListMarketsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := applyMarketFilters(s.db.WithContext(ctx).Model(&models.Market{}), params)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func applyMarketFilters(query *gorm.DB, params repository.ListMarketsParams) *gorm.DB {
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	if params.Authority != nil && strings.TrimSpace(*params.Authority) != "" {
		query = query.Where("authority = ?", strings.TrimSpace(*params.Authority))
	}
	if params.OracleFeed != nil && strings.TrimSpace(*params.OracleFeed) != "" {
		query = query.Where("oracle_feed = ?", strings.TrimSpace(*params.OracleFeed))
	}
	if params.Delegated != nil {
		query = query.Where("delegated = ?", *params.Delegated)
	}
	return query
}

func (s *Store) ListExpiredActiveMarkets(ctx context.Context, expiredBefore time.Time, limit int) ([]models.Market, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if expiredBefore.IsZero() {
		expiredBefore = time.Now().UTC()
	}
	limit = normalizeLimit(limit, 200)
	var items []models.Market
	err := s.db.WithContext(ctx).
		Model(&models.Market{}).
		Where("status = ?", models.MarketStatusActive).
		Where("expires_at <= ?", expiredBefore).
		Order("expires_at asc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListDelegatedMarketIDs(ctx context.Context, limit int) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 200)
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&models.Market{}).
		Where("delegated = ?", true).
		Where("status IN ?", []string{models.MarketStatusResolved, models.MarketStatusCancelled}).
		Order("updated_at asc").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) ListActiveOracleFeeds(ctx context.Context, limit int) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 500)
	var feeds []string
	err := s.db.WithContext(ctx).
		Model(&models.Market{}).
		Where("status = ?", models.MarketStatusActive).
		Distinct().
		Order("oracle_feed asc").
		Limit(limit).
		Pluck("oracle_feed", &feeds).Error
	if err != nil {
		return nil, err
	}
	return feeds, nil
}

func (s *Store) ListActiveMarketIDs(ctx context.Context, limit int) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 500)
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&models.Market{}).
		Where("status = ?", models.MarketStatusActive).
		Order("created_at asc").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// --- Pools -------------------------------------------------------------------

func (s *Store) GetPoolByMarketID(ctx context.Context, marketID string) (*models.Pool, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	marketID = strings.TrimSpace(marketID)
	if marketID == "" {
		return nil, nil
	}
	var item models.Pool
	err := s.db.WithContext(ctx).Model(&models.Pool{}).Where("market_id = ?", marketID).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetPoolForUpdateTx(ctx context.Context, tx *gorm.DB, marketID string) (*models.Pool, error) {
	marketID = strings.TrimSpace(marketID)
	if marketID == "" {
		return nil, nil
	}
	var item models.Pool
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("market_id = ?", marketID).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) InsertPoolTx(ctx context.Context, tx *gorm.DB, item *models.Pool) error {
	if item == nil {
		return nil
	}
	return tx.WithContext(ctx).Create(item).Error
}

func (s *Store) SavePoolTx(ctx context.Context, tx *gorm.DB, item *models.Pool) error {
	if item == nil {
		return nil
	}
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "market_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"yes_reserve",
			"no_reserve",
			"total_liquidity",
			"total_fees_collected",
			"lp_token_supply",
			"updated_at",
		}),
	}).Create(item).Error
}

// --- Positions ---------------------------------------------------------------

func (s *Store) GetPosition(ctx context.Context, marketID, user string) (*models.Position, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	marketID = strings.TrimSpace(marketID)
	user = strings.TrimSpace(user)
	if marketID == "" || user == "" {
		return nil, nil
	}
	var item models.Position
	err := s.db.WithContext(ctx).
		Model(&models.Position{}).
		Where("market_id = ?", marketID).
		Where("user_id = ?", user).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetPositionForUpdateTx(ctx context.Context, tx *gorm.DB, marketID, user string) (*models.Position, error) {
	marketID = strings.TrimSpace(marketID)
	user = strings.TrimSpace(user)
	if marketID == "" || user == "" {
		return nil, nil
	}
	var item models.Position
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("market_id = ?", marketID).
		Where("user_id = ?", user).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) SavePositionTx(ctx context.Context, tx *gorm.DB, item *models.Position) error {
	if item == nil {
		return nil
	}
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "market_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"yes_shares",
			"no_shares",
			"yes_avg_price",
			"no_avg_price",
			"claimed",
			"claimed_at",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) ListPositions(ctx context.Context, params repository.ListPositionsParams) ([]models.Position, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyPositionFilters(s.db.WithContext(ctx).Model(&models.Position{}), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "updated_at")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Position
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountPositions(ctx context.Context, params repository.ListPositionsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := applyPositionFilters(s.db.WithContext(ctx).Model(&models.Position{}), params)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func applyPositionFilters(query *gorm.DB, params repository.ListPositionsParams) *gorm.DB {
	if params.MarketID != nil && strings.TrimSpace(*params.MarketID) != "" {
		query = query.Where("market_id = ?", strings.TrimSpace(*params.MarketID))
	}
	if params.User != nil && strings.TrimSpace(*params.User) != "" {
		query = query.Where("user_id = ?", strings.TrimSpace(*params.User))
	}
	if params.Claimed != nil {
		query = query.Where("claimed = ?", *params.Claimed)
	}
	return query
}

// --- LP positions ------------------------------------------------------------

func (s *Store) GetLPPosition(ctx context.Context, marketID, user string) (*models.LPPosition, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	marketID = strings.TrimSpace(marketID)
	user = strings.TrimSpace(user)
	if marketID == "" || user == "" {
		return nil, nil
	}
	var item models.LPPosition
	err := s.db.WithContext(ctx).
		Model(&models.LPPosition{}).
		Where("market_id = ?", marketID).
		Where("user_id = ?", user).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetLPPositionForUpdateTx(ctx context.Context, tx *gorm.DB, marketID, user string) (*models.LPPosition, error) {
	marketID = strings.TrimSpace(marketID)
	user = strings.TrimSpace(user)
	if marketID == "" || user == "" {
		return nil, nil
	}
	var item models.LPPosition
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("market_id = ?", marketID).
		Where("user_id = ?", user).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) SaveLPPositionTx(ctx context.Context, tx *gorm.DB, item *models.LPPosition) error {
	if item == nil {
		return nil
	}
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "market_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"lp_tokens",
			"updated_at",
		}),
	}).Create(item).Error
}

// --- Collateral ledger ---------------------------------------------------------

// EnsureCollateralAccountTx inserts a zero-balance row when the account does
// not exist yet. An existing balance is left alone, so it is safe to call
// before taking a row lock.
func (s *Store) EnsureCollateralAccountTx(ctx context.Context, tx *gorm.DB, account string) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return nil
	}
	item := models.CollateralAccount{Account: account}
	return tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&item).Error
}

func (s *Store) GetCollateralAccount(ctx context.Context, account string) (*models.CollateralAccount, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, nil
	}
	var item models.CollateralAccount
	err := s.db.WithContext(ctx).
		Model(&models.CollateralAccount{}).
		Where("account = ?", account).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetCollateralAccountForUpdateTx(ctx context.Context, tx *gorm.DB, account string) (*models.CollateralAccount, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, nil
	}
	var item models.CollateralAccount
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account = ?", account).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) SaveCollateralAccountTx(ctx context.Context, tx *gorm.DB, item *models.CollateralAccount) error {
	if item == nil {
		return nil
	}
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"balance",
			"updated_at",
		}),
	}).Create(item).Error
}

// --- Trade history -------------------------------------------------------------

func (s *Store) InsertTradeTx(ctx context.Context, tx *gorm.DB, item *models.Trade) error {
	if item == nil {
		return nil
	}
	return tx.WithContext(ctx).Create(item).Error
}

func (s *Store) ListTrades(ctx context.Context, params repository.ListTradesParams) ([]models.Trade, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyTradeFilters(s.db.WithContext(ctx).Model(&models.Trade{}), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Trade
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountTrades(ctx context.Context, params repository.ListTradesParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := applyTradeFilters(s.db.WithContext(ctx).Model(&models.Trade{}), params)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func applyTradeFilters(query *gorm.DB, params repository.ListTradesParams) *gorm.DB {
	if params.MarketID != nil && strings.TrimSpace(*params.MarketID) != "" {
		query = query.Where("market_id = ?", strings.TrimSpace(*params.MarketID))
	}
	if params.User != nil && strings.TrimSpace(*params.User) != "" {
		query = query.Where("user_id = ?", strings.TrimSpace(*params.User))
	}
	if params.Kind != nil && strings.TrimSpace(*params.Kind) != "" {
		query = query.Where("kind = ?", strings.TrimSpace(*params.Kind))
	}
	if params.Side != nil && strings.TrimSpace(*params.Side) != "" {
		query = query.Where("side = ?", strings.TrimSpace(*params.Side))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("created_at >= ?", *params.Since)
	}
	return query
}

// TradeTotals sums the collateral leg of every fill: amount in for buys,
// amount out for sells.
func (s *Store) TradeTotals(ctx context.Context, marketID string) (repository.TradeTotals, error) {
	var out repository.TradeTotals
	if s == nil || s.db == nil {
		return out, nil
	}
	marketID = strings.TrimSpace(marketID)
	if marketID == "" {
		return out, nil
	}
	row := struct {
		Count  int64
		Volume uint64
	}{}
	err := s.db.WithContext(ctx).
		Model(&models.Trade{}).
		Select("COUNT(*) AS count, COALESCE(SUM(CASE WHEN kind = ? THEN amount_in ELSE amount_out END), 0) AS volume", models.TradeKindBuy).
		Where("market_id = ?", marketID).
		Scan(&row).Error
	if err != nil {
		return out, err
	}
	out.Count = row.Count
	out.Volume = row.Volume
	return out, nil
}

// --- Liquidity / payout history --------------------------------------------------

func (s *Store) InsertLiquidityEventTx(ctx context.Context, tx *gorm.DB, item *models.LiquidityEvent) error {
	if item == nil {
		return nil
	}
	return tx.WithContext(ctx).Create(item).Error
}

func (s *Store) InsertPayoutTx(ctx context.Context, tx *gorm.DB, item *models.Payout) error {
	if item == nil {
		return nil
	}
	return tx.WithContext(ctx).Create(item).Error
}

// --- Oracle cache ----------------------------------------------------------------

func (s *Store) InsertOraclePrice(ctx context.Context, item *models.OraclePrice) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) UpsertOracleLatest(ctx context.Context, item *models.OracleLatest) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	item.FeedID = strings.TrimSpace(item.FeedID)
	if item.FeedID == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "feed_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"price",
			"confidence",
			"published_at",
			"source",
			"updated_at",
		}),
		// Stream and REST writers race; never move the cache backwards.
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "oracle_latest.published_at <= excluded.published_at"},
		}},
	}).Create(item).Error
}

func (s *Store) GetOracleLatest(ctx context.Context, feedID string) (*models.OracleLatest, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	feedID = strings.TrimSpace(feedID)
	if feedID == "" {
		return nil, nil
	}
	var item models.OracleLatest
	err := s.db.WithContext(ctx).
		Model(&models.OracleLatest{}).
		Where("feed_id = ?", feedID).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// --- Settlement bridge log ---------------------------------------------------------

func (s *Store) InsertSettlementRecord(ctx context.Context, item *models.SettlementRecord) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListSettlementRecords(ctx context.Context, params repository.ListSettlementRecordsParams) ([]models.SettlementRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applySettlementFilters(s.db.WithContext(ctx).Model(&models.SettlementRecord{}), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.SettlementRecord
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountSettlementRecords(ctx context.Context, params repository.ListSettlementRecordsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := applySettlementFilters(s.db.WithContext(ctx).Model(&models.SettlementRecord{}), params)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func applySettlementFilters(query *gorm.DB, params repository.ListSettlementRecordsParams) *gorm.DB {
	if params.MarketID != nil && strings.TrimSpace(*params.MarketID) != "" {
		query = query.Where("market_id = ?", strings.TrimSpace(*params.MarketID))
	}
	if params.Action != nil && strings.TrimSpace(*params.Action) != "" {
		query = query.Where("action = ?", strings.TrimSpace(*params.Action))
	}
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	return query
}

// --- Statistics ----------------------------------------------------------------------

func (s *Store) InsertMarketSnapshot(ctx context.Context, item *models.MarketSnapshot) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetLatestMarketSnapshot(ctx context.Context, marketID string) (*models.MarketSnapshot, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	marketID = strings.TrimSpace(marketID)
	if marketID == "" {
		return nil, nil
	}
	var item models.MarketSnapshot
	err := s.db.WithContext(ctx).
		Model(&models.MarketSnapshot{}).
		Where("market_id = ?", marketID).
		Order("snapshot_at desc").
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// --- System settings --------------------------------------------------------------------

func (s *Store) UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	item.Key = strings.TrimSpace(item.Key)
	if item.Key == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"value",
			"description",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	var item models.SystemSetting
	err := s.db.WithContext(ctx).Model(&models.SystemSetting{}).Where("key = ?", key).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListSystemSettings(ctx context.Context, params repository.ListSystemSettingsParams) ([]models.SystemSetting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.SystemSetting{})
	if params.Prefix != nil && strings.TrimSpace(*params.Prefix) != "" {
		pattern := strings.TrimSpace(*params.Prefix) + "%"
		query = query.Where("key LIKE ?", pattern)
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "key")
	limit := normalizeLimit(params.Limit, 500)
	offset := normalizeOffset(params.Offset)
	var items []models.SystemSetting
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountSystemSettings(ctx context.Context, params repository.ListSystemSettingsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := s.db.WithContext(ctx).Model(&models.SystemSetting{})
	if params.Prefix != nil && strings.TrimSpace(*params.Prefix) != "" {
		pattern := strings.TrimSpace(*params.Prefix) + "%"
		query = query.Where("key LIKE ?", pattern)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// --- helpers ---------------------------------------------------------------------------------

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

var _ repository.Repository = (*Store)(nil)
