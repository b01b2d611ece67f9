// Package vault keeps the collateral ledger. Every market owns one vault
// account keyed "market:<market_id>"; user balances live alongside under
// their identity string. Funds only move between rows, so the sum of all
// balances changes only through explicit deposits and withdrawals.
package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/datmedevil17/magic-market/internal/amm"
	"github.com/datmedevil17/magic-market/internal/models"
	"github.com/datmedevil17/magic-market/internal/repository"
)

var ErrInsufficientFunds = errors.New("vault: insufficient funds")

const marketAccountPrefix = "market:"

// MarketAccount returns the ledger key of a market's vault.
func MarketAccount(marketID string) string {
	return marketAccountPrefix + marketID
}

// IsMarketAccount reports whether the account names a market vault rather
// than a user balance.
func IsMarketAccount(account string) bool {
	return strings.HasPrefix(account, marketAccountPrefix)
}

type Ledger struct {
	repo repository.CollateralRepository
}

func New(repo repository.CollateralRepository) *Ledger {
	return &Ledger{repo: repo}
}

// Balance returns the current balance of an account, zero when the account
// has never been touched.
func (l *Ledger) Balance(ctx context.Context, account string) (uint64, error) {
	item, err := l.repo.GetCollateralAccount(ctx, account)
	if err != nil {
		return 0, err
	}
	if item == nil {
		return 0, nil
	}
	return item.Balance, nil
}

// DepositTx credits an account from outside the ledger.
func (l *Ledger) DepositTx(ctx context.Context, tx *gorm.DB, account string, amount uint64) error {
	account = strings.TrimSpace(account)
	if account == "" || amount == 0 {
		return nil
	}
	item, err := l.lockAccount(ctx, tx, account)
	if err != nil {
		return err
	}
	balance, err := amm.CheckedAdd(item.Balance, amount)
	if err != nil {
		return err
	}
	item.Balance = balance
	return l.repo.SaveCollateralAccountTx(ctx, tx, item)
}

// WithdrawTx debits an account, removing the funds from the ledger.
func (l *Ledger) WithdrawTx(ctx context.Context, tx *gorm.DB, account string, amount uint64) error {
	account = strings.TrimSpace(account)
	if account == "" || amount == 0 {
		return nil
	}
	item, err := l.lockAccount(ctx, tx, account)
	if err != nil {
		return err
	}
	if item.Balance < amount {
		return ErrInsufficientFunds
	}
	item.Balance -= amount
	return l.repo.SaveCollateralAccountTx(ctx, tx, item)
}

// TransferTx moves collateral between two accounts. Rows are locked in
// lexicographic order so two opposing transfers cannot deadlock.
func (l *Ledger) TransferTx(ctx context.Context, tx *gorm.DB, from, to string, amount uint64) error {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" || to == "" {
		return fmt.Errorf("vault: transfer needs both accounts, got %q -> %q", from, to)
	}
	if from == to || amount == 0 {
		return nil
	}
	first, second := from, to
	if second < first {
		first, second = second, first
	}
	a, err := l.lockAccount(ctx, tx, first)
	if err != nil {
		return err
	}
	b, err := l.lockAccount(ctx, tx, second)
	if err != nil {
		return err
	}
	src, dst := a, b
	if src.Account != from {
		src, dst = b, a
	}
	if src.Balance < amount {
		return ErrInsufficientFunds
	}
	credit, err := amm.CheckedAdd(dst.Balance, amount)
	if err != nil {
		return err
	}
	src.Balance -= amount
	dst.Balance = credit
	if err := l.repo.SaveCollateralAccountTx(ctx, tx, src); err != nil {
		return err
	}
	return l.repo.SaveCollateralAccountTx(ctx, tx, dst)
}

func (l *Ledger) lockAccount(ctx context.Context, tx *gorm.DB, account string) (*models.CollateralAccount, error) {
	if err := l.repo.EnsureCollateralAccountTx(ctx, tx, account); err != nil {
		return nil, err
	}
	item, err := l.repo.GetCollateralAccountForUpdateTx(ctx, tx, account)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("vault: account %q missing after ensure", account)
	}
	return item, nil
}
