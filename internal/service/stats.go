package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/datmedevil17/magic-market/internal/engine"
	"github.com/datmedevil17/magic-market/internal/models"
	"github.com/datmedevil17/magic-market/internal/repository"
)

const statsBatchSize = 500

// StatsService snapshots per-market statistics on a schedule so charts can
// read one row instead of replaying trade history.
type StatsService struct {
	Repo   repository.Repository
	Flags  *SystemSettingsService
	Logger *zap.Logger
}

// SnapshotOnce records a snapshot for every active market with a pool.
func (s *StatsService) SnapshotOnce(ctx context.Context) (int, error) {
	if s.Flags != nil && !s.Flags.IsEnabled(ctx, FeatureStatsSnapshot, true) {
		return 0, nil
	}
	ids, err := s.Repo.ListActiveMarketIDs(ctx, statsBatchSize)
	if err != nil {
		return 0, err
	}
	stored := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return stored, ctx.Err()
		}
		snap, err := s.SnapshotMarket(ctx, id)
		if err != nil {
			if s.Logger != nil {
				s.Logger.Warn("market snapshot failed", zap.String("market_id", id), zap.Error(err))
			}
			continue
		}
		if snap != nil {
			stored++
		}
	}
	if stored > 0 && s.Logger != nil {
		s.Logger.Info("stats snapshot done", zap.Int("markets", stored))
	}
	return stored, nil
}

// SnapshotMarket records one market's snapshot. A market without a pool has
// nothing to chart and returns (nil, nil).
func (s *StatsService) SnapshotMarket(ctx context.Context, marketID string) (*models.MarketSnapshot, error) {
	p, err := s.Repo.GetPoolByMarketID(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	totals, err := s.Repo.TradeTotals(ctx, marketID)
	if err != nil {
		return nil, err
	}
	yes, no := engine.Prices(p)
	snap := &models.MarketSnapshot{
		MarketID:           marketID,
		YesPrice:           PriceDecimal(yes),
		NoPrice:            PriceDecimal(no),
		YesReserve:         p.YesReserve,
		NoReserve:          p.NoReserve,
		TotalLiquidity:     p.TotalLiquidity,
		LPTokenSupply:      p.LPTokenSupply,
		TotalFeesCollected: p.TotalFeesCollected,
		TradeCount:         uint64(totals.Count),
		Volume:             totals.Volume,
		SnapshotAt:         time.Now().UTC(),
	}
	if err := s.Repo.InsertMarketSnapshot(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// PriceDecimal renders a fixed-point price as its implied probability.
func PriceDecimal(price uint64) decimal.Decimal {
	return decimal.New(int64(price), -6)
}
