package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/datmedevil17/magic-market/internal/amm"
	"github.com/datmedevil17/magic-market/internal/engine"
	"github.com/datmedevil17/magic-market/internal/events"
	"github.com/datmedevil17/magic-market/internal/models"
	"github.com/datmedevil17/magic-market/internal/repository"
	"github.com/datmedevil17/magic-market/internal/vault"
)

// LiquidityService seeds pools and handles LP deposits and withdrawals,
// under the same market-row lock order trading uses.
type LiquidityService struct {
	Repo   repository.Repository
	Vault  *vault.Ledger
	Events *events.Hub
	Logger *zap.Logger
}

// LiquidityResult is the post-operation state: the pool, the provider's LP
// position, and the event row recording the movement.
type LiquidityResult struct {
	Pool       *models.Pool
	LPPosition *models.LPPosition
	Event      *models.LiquidityEvent
}

// Initialize seeds a fresh pool with initialLiquidity per side; the
// initializer deposits twice that and receives the full first LP grant.
func (s *LiquidityService) Initialize(ctx context.Context, marketID, user string, initialLiquidity uint64) (*LiquidityResult, error) {
	user, err := normalizeUserAccount(user)
	if err != nil {
		return nil, err
	}
	var result *LiquidityResult
	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		m, err := s.Repo.GetMarketForUpdateTx(ctx, tx, marketID)
		if err != nil {
			return err
		}
		if m == nil {
			return ErrMarketNotFound
		}
		existing, err := s.Repo.GetPoolForUpdateTx(ctx, tx, marketID)
		if err != nil {
			return err
		}
		if existing != nil {
			return engine.ErrPoolAlreadyInitialized
		}
		p, deposit, err := engine.InitializePool(m, initialLiquidity)
		if err != nil {
			return err
		}
		if err := s.Vault.TransferTx(ctx, tx, user, vault.MarketAccount(marketID), deposit); err != nil {
			return err
		}
		if err := s.Repo.InsertPoolTx(ctx, tx, p); err != nil {
			return err
		}
		lp, err := s.lockLPPosition(ctx, tx, marketID, user)
		if err != nil {
			return err
		}
		balance, err := amm.CheckedAdd(lp.LPTokens, deposit)
		if err != nil {
			return err
		}
		lp.LPTokens = balance
		if err := s.Repo.SaveLPPositionTx(ctx, tx, lp); err != nil {
			return err
		}
		event := &models.LiquidityEvent{
			ID:       uuid.NewString(),
			MarketID: marketID,
			UserID:   user,
			Kind:     models.LiquidityKindInitialize,
			Amount:   deposit,
			LPTokens: deposit,
		}
		if err := s.Repo.InsertLiquidityEventTx(ctx, tx, event); err != nil {
			return err
		}
		result = &LiquidityResult{Pool: p, LPPosition: lp, Event: event}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(result.Event)
	if s.Logger != nil {
		s.Logger.Info("pool initialized",
			zap.String("market_id", marketID),
			zap.String("user", user),
			zap.Uint64("deposit", result.Event.Amount),
		)
	}
	return result, nil
}

// Add deposits collateral into an active pool, minting LP tokens pro rata.
func (s *LiquidityService) Add(ctx context.Context, marketID, user string, amount, minLPTokens uint64) (*LiquidityResult, error) {
	user, err := normalizeUserAccount(user)
	if err != nil {
		return nil, err
	}
	var result *LiquidityResult
	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		m, err := s.Repo.GetMarketForUpdateTx(ctx, tx, marketID)
		if err != nil {
			return err
		}
		if m == nil {
			return ErrMarketNotFound
		}
		p, err := s.Repo.GetPoolForUpdateTx(ctx, tx, marketID)
		if err != nil {
			return err
		}
		q, err := engine.QuoteAddLiquidity(m, p, amount, minLPTokens)
		if err != nil {
			return err
		}
		if err := s.Vault.TransferTx(ctx, tx, user, vault.MarketAccount(marketID), q.Amount); err != nil {
			return err
		}
		lp, err := s.lockLPPosition(ctx, tx, marketID, user)
		if err != nil {
			return err
		}
		if err := engine.ApplyAddLiquidity(p, lp, q); err != nil {
			return err
		}
		if err := s.Repo.SavePoolTx(ctx, tx, p); err != nil {
			return err
		}
		if err := s.Repo.SaveLPPositionTx(ctx, tx, lp); err != nil {
			return err
		}
		event := &models.LiquidityEvent{
			ID:       uuid.NewString(),
			MarketID: marketID,
			UserID:   user,
			Kind:     models.LiquidityKindAdd,
			Amount:   q.Amount,
			LPTokens: q.LPTokens,
		}
		if err := s.Repo.InsertLiquidityEventTx(ctx, tx, event); err != nil {
			return err
		}
		result = &LiquidityResult{Pool: p, LPPosition: lp, Event: event}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(result.Event)
	if s.Logger != nil {
		s.Logger.Info("liquidity added",
			zap.String("market_id", marketID),
			zap.String("user", user),
			zap.Uint64("amount", result.Event.Amount),
			zap.Uint64("lp_tokens", result.Event.LPTokens),
		)
	}
	return result, nil
}

// Remove burns LP tokens for a proportional share of pool liquidity. There
// is no status gate: providers may exit resolved and cancelled markets.
func (s *LiquidityService) Remove(ctx context.Context, marketID, user string, lpTokens, minAmountOut uint64) (*LiquidityResult, error) {
	user, err := normalizeUserAccount(user)
	if err != nil {
		return nil, err
	}
	var result *LiquidityResult
	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		m, err := s.Repo.GetMarketForUpdateTx(ctx, tx, marketID)
		if err != nil {
			return err
		}
		if m == nil {
			return ErrMarketNotFound
		}
		p, err := s.Repo.GetPoolForUpdateTx(ctx, tx, marketID)
		if err != nil {
			return err
		}
		lp, err := s.lockLPPosition(ctx, tx, marketID, user)
		if err != nil {
			return err
		}
		q, err := engine.QuoteRemoveLiquidity(p, lp, lpTokens, minAmountOut)
		if err != nil {
			return err
		}
		engine.ApplyRemoveLiquidity(p, lp, q)
		if err := s.Vault.TransferTx(ctx, tx, vault.MarketAccount(marketID), user, q.AmountOut); err != nil {
			return err
		}
		if err := s.Repo.SavePoolTx(ctx, tx, p); err != nil {
			return err
		}
		if err := s.Repo.SaveLPPositionTx(ctx, tx, lp); err != nil {
			return err
		}
		event := &models.LiquidityEvent{
			ID:       uuid.NewString(),
			MarketID: marketID,
			UserID:   user,
			Kind:     models.LiquidityKindRemove,
			Amount:   q.AmountOut,
			LPTokens: q.LPTokens,
		}
		if err := s.Repo.InsertLiquidityEventTx(ctx, tx, event); err != nil {
			return err
		}
		result = &LiquidityResult{Pool: p, LPPosition: lp, Event: event}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(result.Event)
	if s.Logger != nil {
		s.Logger.Info("liquidity removed",
			zap.String("market_id", marketID),
			zap.String("user", user),
			zap.Uint64("amount", result.Event.Amount),
			zap.Uint64("lp_tokens", result.Event.LPTokens),
		)
	}
	return result, nil
}

func (s *LiquidityService) lockLPPosition(ctx context.Context, tx *gorm.DB, marketID, user string) (*models.LPPosition, error) {
	lp, err := s.Repo.GetLPPositionForUpdateTx(ctx, tx, marketID, user)
	if err != nil {
		return nil, err
	}
	if lp == nil {
		lp = &models.LPPosition{MarketID: marketID, UserID: user}
	}
	return lp, nil
}

func (s *LiquidityService) publish(ev *models.LiquidityEvent) {
	if s.Events == nil || ev == nil {
		return
	}
	s.Events.Publish(events.Event{
		Type:     events.TypeLiquidity,
		MarketID: ev.MarketID,
		User:     ev.UserID,
		Amount:   ev.Amount,
		Shares:   ev.LPTokens,
		Status:   ev.Kind,
		At:       ev.CreatedAt,
	})
}
