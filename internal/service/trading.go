package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/datmedevil17/magic-market/internal/engine"
	"github.com/datmedevil17/magic-market/internal/events"
	"github.com/datmedevil17/magic-market/internal/models"
	"github.com/datmedevil17/magic-market/internal/repository"
	"github.com/datmedevil17/magic-market/internal/vault"
)

// TradingService executes swaps against a market's pool. Every trade runs
// in one transaction that locks the market row first, so trades against the
// same market serialize and the quote's reserve snapshot stays valid through
// the apply.
type TradingService struct {
	Repo   repository.Repository
	Vault  *vault.Ledger
	Flags  *SystemSettingsService
	Events *events.Hub
	Logger *zap.Logger

	// MaxTradeBps caps a buy relative to pool liquidity; zero uses the
	// protocol default.
	MaxTradeBps uint64
}

// TradeResult carries the post-trade state a caller wants to render.
type TradeResult struct {
	Trade    *models.Trade
	Position *models.Position
	Pool     *models.Pool
}

func (s *TradingService) Buy(ctx context.Context, marketID, user, side string, amountIn, minSharesOut uint64) (*TradeResult, error) {
	if s.Flags != nil && !s.Flags.IsEnabled(ctx, FeatureTrading, true) {
		return nil, fmt.Errorf("trading: %w", ErrFeatureDisabled)
	}
	user, err := normalizeUserAccount(user)
	if err != nil {
		return nil, err
	}

	var result *TradeResult
	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		m, p, err := s.lockMarketAndPool(ctx, tx, marketID)
		if err != nil {
			return err
		}
		q, err := engine.QuoteBuy(m, p, side, amountIn, minSharesOut, s.MaxTradeBps)
		if err != nil {
			return err
		}
		if err := s.Vault.TransferTx(ctx, tx, user, vault.MarketAccount(marketID), q.AmountIn); err != nil {
			return err
		}
		pos, err := s.lockPosition(ctx, tx, marketID, user)
		if err != nil {
			return err
		}
		if err := engine.ApplyBuy(m, p, pos, q); err != nil {
			return err
		}
		if err := s.Repo.SaveMarketTx(ctx, tx, m); err != nil {
			return err
		}
		if err := s.Repo.SavePoolTx(ctx, tx, p); err != nil {
			return err
		}
		if err := s.Repo.SavePositionTx(ctx, tx, pos); err != nil {
			return err
		}
		trade := &models.Trade{
			ID:         uuid.NewString(),
			MarketID:   marketID,
			UserID:     user,
			Kind:       models.TradeKindBuy,
			Side:       q.Side,
			AmountIn:   q.AmountIn,
			AmountOut:  q.SharesOut,
			Fee:        q.Fee,
			Price:      q.Price,
			YesReserve: q.NewYesReserve,
			NoReserve:  q.NewNoReserve,
		}
		if err := s.Repo.InsertTradeTx(ctx, tx, trade); err != nil {
			return err
		}
		result = &TradeResult{Trade: trade, Position: pos, Pool: p}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(result.Trade)
	if s.Logger != nil {
		s.Logger.Info("buy executed",
			zap.String("market_id", marketID),
			zap.String("user", user),
			zap.String("side", result.Trade.Side),
			zap.Uint64("amount_in", result.Trade.AmountIn),
			zap.Uint64("shares_out", result.Trade.AmountOut),
			zap.Uint64("fee", result.Trade.Fee),
		)
	}
	return result, nil
}

func (s *TradingService) Sell(ctx context.Context, marketID, user, side string, sharesIn, minAmountOut uint64) (*TradeResult, error) {
	if s.Flags != nil && !s.Flags.IsEnabled(ctx, FeatureTrading, true) {
		return nil, fmt.Errorf("trading: %w", ErrFeatureDisabled)
	}
	user, err := normalizeUserAccount(user)
	if err != nil {
		return nil, err
	}

	var result *TradeResult
	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		m, p, err := s.lockMarketAndPool(ctx, tx, marketID)
		if err != nil {
			return err
		}
		pos, err := s.lockPosition(ctx, tx, marketID, user)
		if err != nil {
			return err
		}
		q, err := engine.QuoteSell(m, p, pos, side, sharesIn, minAmountOut)
		if err != nil {
			return err
		}
		if err := s.Vault.TransferTx(ctx, tx, vault.MarketAccount(marketID), user, q.AmountOut); err != nil {
			return err
		}
		if err := engine.ApplySell(m, p, pos, q); err != nil {
			return err
		}
		if err := s.Repo.SaveMarketTx(ctx, tx, m); err != nil {
			return err
		}
		if err := s.Repo.SavePoolTx(ctx, tx, p); err != nil {
			return err
		}
		if err := s.Repo.SavePositionTx(ctx, tx, pos); err != nil {
			return err
		}
		trade := &models.Trade{
			ID:         uuid.NewString(),
			MarketID:   marketID,
			UserID:     user,
			Kind:       models.TradeKindSell,
			Side:       q.Side,
			AmountIn:   q.SharesIn,
			AmountOut:  q.AmountOut,
			Fee:        q.Fee,
			Price:      q.Price,
			YesReserve: q.NewYesReserve,
			NoReserve:  q.NewNoReserve,
		}
		if err := s.Repo.InsertTradeTx(ctx, tx, trade); err != nil {
			return err
		}
		result = &TradeResult{Trade: trade, Position: pos, Pool: p}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(result.Trade)
	if s.Logger != nil {
		s.Logger.Info("sell executed",
			zap.String("market_id", marketID),
			zap.String("user", user),
			zap.String("side", result.Trade.Side),
			zap.Uint64("shares_in", result.Trade.AmountIn),
			zap.Uint64("amount_out", result.Trade.AmountOut),
			zap.Uint64("fee", result.Trade.Fee),
		)
	}
	return result, nil
}

// lockMarketAndPool takes the per-market row locks every mutating operation
// starts with. Locking the market first gives all writers one lock order.
func (s *TradingService) lockMarketAndPool(ctx context.Context, tx *gorm.DB, marketID string) (*models.Market, *models.Pool, error) {
	m, err := s.Repo.GetMarketForUpdateTx(ctx, tx, marketID)
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		return nil, nil, ErrMarketNotFound
	}
	p, err := s.Repo.GetPoolForUpdateTx(ctx, tx, marketID)
	if err != nil {
		return nil, nil, err
	}
	return m, p, nil
}

func (s *TradingService) lockPosition(ctx context.Context, tx *gorm.DB, marketID, user string) (*models.Position, error) {
	pos, err := s.Repo.GetPositionForUpdateTx(ctx, tx, marketID, user)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		pos = &models.Position{MarketID: marketID, UserID: user}
	}
	return pos, nil
}

func (s *TradingService) publish(t *models.Trade) {
	if s.Events == nil || t == nil {
		return
	}
	shares, amount := t.AmountOut, t.AmountIn
	if t.Kind == models.TradeKindSell {
		shares, amount = t.AmountIn, t.AmountOut
	}
	s.Events.Publish(events.Event{
		Type:     events.TypeTrade,
		MarketID: t.MarketID,
		User:     t.UserID,
		Side:     t.Side,
		Amount:   amount,
		Shares:   shares,
		At:       t.CreatedAt,
	})
}
