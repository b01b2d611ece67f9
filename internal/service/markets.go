package service

import (
	"context"
	"errors"
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

// MarketService creates and cancels markets. Resolution lives in
// ResolutionService since it needs the oracle's tight staleness bound.
type MarketService struct {
	Repo   repository.Repository
	Oracle oracle.PriceSource
	Flags  *SystemSettingsService
	Events *events.Hub
	Logger *zap.Logger
}

type CreateMarketParams struct {
	ID            string
	Authority     string
	Description   string
	OracleFeed    string
	StrikePrice   int64
	MaxConfidence uint64
	ExpiresAt     time.Time
}

// Create validates params, gates on the feed publishing a reasonably fresh
// price, and inserts the market as active.
func (s *MarketService) Create(ctx context.Context, params CreateMarketParams) (*models.Market, error) {
	if s.Flags != nil && !s.Flags.IsEnabled(ctx, FeatureMarketCreation, true) {
		return nil, fmt.Errorf("market creation: %w", ErrFeatureDisabled)
	}
	params.Authority = strings.TrimSpace(params.Authority)
	if params.Authority == "" {
		return nil, ErrInvalidUser
	}
	params.OracleFeed = strings.TrimSpace(params.OracleFeed)
	if params.OracleFeed == "" {
		return nil, ErrInvalidOracleFeed
	}
	if params.ID != "" && !engine.ValidMarketID(params.ID) {
		return nil, ErrInvalidMarketID
	}
	now := time.Now().UTC()
	if s.Oracle != nil {
		if _, err := s.Oracle.GetPrice(ctx, params.OracleFeed, now, engine.CreationMaxStaleness); err != nil {
			if s.Logger != nil {
				s.Logger.Warn("market creation oracle gate failed",
					zap.String("feed_id", params.OracleFeed),
					zap.Error(err),
				)
			}
			return nil, fmt.Errorf("feed %s: %w", params.OracleFeed, engine.ErrInvalidOraclePrice)
		}
	}

	m, err := engine.NewMarket(engine.MarketParams{
		ID:            params.ID,
		Authority:     params.Authority,
		Description:   params.Description,
		OracleFeed:    params.OracleFeed,
		StrikePrice:   params.StrikePrice,
		MaxConfidence: params.MaxConfidence,
		ExpiresAt:     params.ExpiresAt.UTC(),
	}, now)
	if err != nil {
		return nil, err
	}

	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		if err := s.Repo.InsertMarketTx(ctx, tx, m); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return engine.ErrMarketExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("market created",
			zap.String("market_id", m.ID),
			zap.String("authority", m.Authority),
			zap.String("feed_id", m.OracleFeed),
			zap.Int64("strike", m.StrikePrice),
			zap.Time("expires_at", m.ExpiresAt),
		)
	}
	return m, nil
}

// Cancel voids an active market on behalf of its authority. Positions
// become refundable at cost basis.
func (s *MarketService) Cancel(ctx context.Context, marketID, caller string) (*models.Market, error) {
	caller = strings.TrimSpace(caller)
	if caller == "" {
		return nil, ErrInvalidUser
	}
	var out *models.Market
	err := s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		m, err := s.Repo.GetMarketForUpdateTx(ctx, tx, marketID)
		if err != nil {
			return err
		}
		if m == nil {
			return ErrMarketNotFound
		}
		if err := engine.Cancel(m, caller); err != nil {
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
			Status:   out.Status,
		})
	}
	if s.Logger != nil {
		s.Logger.Info("market cancelled",
			zap.String("market_id", out.ID),
			zap.String("authority", caller),
		)
	}
	return out, nil
}
