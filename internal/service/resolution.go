package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/datmedevil17/magic-market/internal/engine"
	"github.com/datmedevil17/magic-market/internal/events"
	"github.com/datmedevil17/magic-market/internal/models"
	"github.com/datmedevil17/magic-market/internal/oracle"
	"github.com/datmedevil17/magic-market/internal/repository"
)

const sweepBatchSize = 100

// ResolutionService settles expired markets against the oracle, either on
// demand or through the periodic sweep.
type ResolutionService struct {
	Repo   repository.Repository
	Oracle oracle.PriceSource
	Flags  *SystemSettingsService
	Events *events.Hub
	Logger *zap.Logger

	// Resolvers may resolve any market in addition to its authority.
	Resolvers []string
}

func (s *ResolutionService) authorized(m *models.Market, caller string) bool {
	if caller == m.Authority {
		return true
	}
	for _, r := range s.Resolvers {
		if r == caller {
			return true
		}
	}
	return false
}

// Resolve settles one market. An empty caller marks an internal call (the
// sweep) and bypasses the resolver allowlist. The oracle snapshot is taken
// before the row lock so a slow feed fetch never holds up other trades.
func (s *ResolutionService) Resolve(ctx context.Context, marketID, caller string) (*models.Market, error) {
	m0, err := s.Repo.GetMarketByID(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if m0 == nil {
		return nil, ErrMarketNotFound
	}
	caller = strings.TrimSpace(caller)
	if caller != "" && !s.authorized(m0, caller) {
		return nil, engine.ErrUnauthorized
	}
	now := time.Now().UTC()
	if m0.Status != models.MarketStatusActive {
		return nil, engine.ErrMarketNotActive
	}
	if now.Before(m0.ExpiresAt.Add(engine.ResolutionDelay)) {
		return nil, engine.ErrMarketNotExpired
	}

	price, err := s.Oracle.GetPrice(ctx, m0.OracleFeed, now, engine.ResolutionMaxStaleness)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("resolution oracle read failed",
				zap.String("market_id", marketID),
				zap.String("feed_id", m0.OracleFeed),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("feed %s: %w", m0.OracleFeed, engine.ErrInvalidOraclePrice)
	}

	var out *models.Market
	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		m, err := s.Repo.GetMarketForUpdateTx(ctx, tx, marketID)
		if err != nil {
			return err
		}
		if m == nil {
			return ErrMarketNotFound
		}
		if err := engine.Resolve(m, price.Price, price.Confidence, now); err != nil {
			return err
		}
		if err := s.Repo.SaveMarketTx(ctx, tx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.Events != nil {
		s.Events.Publish(events.Event{
			Type:     events.TypeResolution,
			MarketID: out.ID,
			User:     caller,
			Side:     *out.Outcome,
			Status:   out.Status,
		})
	}
	if s.Logger != nil {
		s.Logger.Info("market resolved",
			zap.String("market_id", out.ID),
			zap.String("outcome", *out.Outcome),
			zap.Int64("price", price.Price),
			zap.Uint64("confidence", price.Confidence),
		)
	}
	return out, nil
}

// SweepOnce resolves every market whose quiet period has elapsed. A market
// that fails (stale feed, wide confidence) is logged and retried next tick.
func (s *ResolutionService) SweepOnce(ctx context.Context) (int, error) {
	if s.Flags != nil && !s.Flags.IsEnabled(ctx, FeatureResolutionSweep, true) {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-engine.ResolutionDelay)
	markets, err := s.Repo.ListExpiredActiveMarkets(ctx, cutoff, sweepBatchSize)
	if err != nil {
		return 0, err
	}
	resolved := 0
	for _, m := range markets {
		if ctx.Err() != nil {
			return resolved, ctx.Err()
		}
		if _, err := s.Resolve(ctx, m.ID, ""); err != nil {
			if s.Logger != nil {
				s.Logger.Warn("sweep resolve failed",
					zap.String("market_id", m.ID),
					zap.Error(err),
				)
			}
			continue
		}
		resolved++
	}
	if resolved > 0 && s.Logger != nil {
		s.Logger.Info("resolution sweep done",
			zap.Int("candidates", len(markets)),
			zap.Int("resolved", resolved),
		)
	}
	return resolved, nil
}
