package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/datmedevil17/magic-market/internal/engine"
	"github.com/datmedevil17/magic-market/internal/repository"
	"github.com/datmedevil17/magic-market/internal/vault"
)

// AccountService moves external collateral into and out of the ledger.
// Market vault accounts are off limits; only the engine funds those.
type AccountService struct {
	Repo   repository.Repository
	Vault  *vault.Ledger
	Logger *zap.Logger
}

func (s *AccountService) Deposit(ctx context.Context, account string, amount uint64) (uint64, error) {
	account, err := normalizeUserAccount(account)
	if err != nil {
		return 0, err
	}
	if amount == 0 {
		return 0, engine.ErrInvalidAmount
	}
	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		return s.Vault.DepositTx(ctx, tx, account, amount)
	})
	if err != nil {
		return 0, err
	}
	if s.Logger != nil {
		s.Logger.Info("collateral deposited",
			zap.String("account", account),
			zap.Uint64("amount", amount),
		)
	}
	return s.Vault.Balance(ctx, account)
}

func (s *AccountService) Withdraw(ctx context.Context, account string, amount uint64) (uint64, error) {
	account, err := normalizeUserAccount(account)
	if err != nil {
		return 0, err
	}
	if amount == 0 {
		return 0, engine.ErrInvalidAmount
	}
	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		return s.Vault.WithdrawTx(ctx, tx, account, amount)
	})
	if err != nil {
		return 0, err
	}
	if s.Logger != nil {
		s.Logger.Info("collateral withdrawn",
			zap.String("account", account),
			zap.Uint64("amount", amount),
		)
	}
	return s.Vault.Balance(ctx, account)
}

func (s *AccountService) Balance(ctx context.Context, account string) (uint64, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return 0, ErrInvalidUser
	}
	return s.Vault.Balance(ctx, account)
}

// normalizeUserAccount rejects empty identities and the reserved market
// vault namespace.
func normalizeUserAccount(account string) (string, error) {
	account = strings.TrimSpace(account)
	if account == "" || vault.IsMarketAccount(account) {
		return "", ErrInvalidUser
	}
	return account, nil
}
