package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/datmedevil17/magic-market/internal/engine"
	"github.com/datmedevil17/magic-market/internal/events"
	"github.com/datmedevil17/magic-market/internal/models"
	"github.com/datmedevil17/magic-market/internal/repository"
	"github.com/datmedevil17/magic-market/internal/vault"
)

// ClaimService pays out settled positions: 1:1 winning-share claims after
// resolution and cost-basis refunds after cancellation. Both mark the
// position claimed exactly once.
type ClaimService struct {
	Repo   repository.Repository
	Vault  *vault.Ledger
	Events *events.Hub
	Logger *zap.Logger
}

func (s *ClaimService) Claim(ctx context.Context, marketID, user string) (*models.Payout, error) {
	return s.settle(ctx, marketID, user, models.PayoutKindClaim)
}

func (s *ClaimService) Refund(ctx context.Context, marketID, user string) (*models.Payout, error) {
	return s.settle(ctx, marketID, user, models.PayoutKindRefund)
}

func (s *ClaimService) settle(ctx context.Context, marketID, user, kind string) (*models.Payout, error) {
	user, err := normalizeUserAccount(user)
	if err != nil {
		return nil, err
	}
	var payout *models.Payout
	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		m, err := s.Repo.GetMarketForUpdateTx(ctx, tx, marketID)
		if err != nil {
			return err
		}
		if m == nil {
			return ErrMarketNotFound
		}
		pos, err := s.Repo.GetPositionForUpdateTx(ctx, tx, marketID, user)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		var amount uint64
		if kind == models.PayoutKindClaim {
			amount, err = engine.Claim(m, pos, now)
		} else {
			amount, err = engine.Refund(m, pos, now)
		}
		if err != nil {
			return err
		}
		if err := s.Vault.TransferTx(ctx, tx, vault.MarketAccount(marketID), user, amount); err != nil {
			return err
		}
		if err := s.Repo.SavePositionTx(ctx, tx, pos); err != nil {
			return err
		}
		payout = &models.Payout{
			ID:       uuid.NewString(),
			MarketID: marketID,
			UserID:   user,
			Kind:     kind,
			Amount:   amount,
		}
		return s.Repo.InsertPayoutTx(ctx, tx, payout)
	})
	if err != nil {
		return nil, err
	}
	if s.Events != nil {
		s.Events.Publish(events.Event{
			Type:     events.TypePayout,
			MarketID: marketID,
			User:     user,
			Amount:   payout.Amount,
			Status:   payout.Kind,
			At:       payout.CreatedAt,
		})
	}
	if s.Logger != nil {
		s.Logger.Info("position settled",
			zap.String("market_id", marketID),
			zap.String("user", user),
			zap.String("kind", kind),
			zap.Uint64("amount", payout.Amount),
		)
	}
	return payout, nil
}
