package vault

import (
	"context"
	"errors"
	"math"
	"testing"

	"gorm.io/gorm"

	"github.com/datmedevil17/magic-market/internal/amm"
	"github.com/datmedevil17/magic-market/internal/models"
)

// stubAccounts is an in-memory CollateralRepository. The tx handle is unused.
type stubAccounts struct {
	accounts map[string]models.CollateralAccount
}

func newStubAccounts() *stubAccounts {
	return &stubAccounts{accounts: map[string]models.CollateralAccount{}}
}

func (s *stubAccounts) EnsureCollateralAccountTx(ctx context.Context, tx *gorm.DB, account string) error {
	if _, ok := s.accounts[account]; !ok {
		s.accounts[account] = models.CollateralAccount{Account: account}
	}
	return nil
}

func (s *stubAccounts) GetCollateralAccount(ctx context.Context, account string) (*models.CollateralAccount, error) {
	item, ok := s.accounts[account]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (s *stubAccounts) GetCollateralAccountForUpdateTx(ctx context.Context, tx *gorm.DB, account string) (*models.CollateralAccount, error) {
	return s.GetCollateralAccount(ctx, account)
}

func (s *stubAccounts) SaveCollateralAccountTx(ctx context.Context, tx *gorm.DB, item *models.CollateralAccount) error {
	s.accounts[item.Account] = *item
	return nil
}

func TestDepositWithdraw(t *testing.T) {
	ctx := context.Background()
	ledger := New(newStubAccounts())

	if err := ledger.DepositTx(ctx, nil, "alice", 1000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	balance, err := ledger.Balance(ctx, "alice")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 1000 {
		t.Fatalf("balance = %d, want 1000", balance)
	}

	if err := ledger.WithdrawTx(ctx, nil, "alice", 400); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	balance, _ = ledger.Balance(ctx, "alice")
	if balance != 600 {
		t.Fatalf("balance after withdraw = %d, want 600", balance)
	}

	if err := ledger.WithdrawTx(ctx, nil, "alice", 700); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("overdraw err = %v, want ErrInsufficientFunds", err)
	}
	balance, _ = ledger.Balance(ctx, "alice")
	if balance != 600 {
		t.Fatalf("balance after failed withdraw = %d, want 600", balance)
	}

	if err := ledger.WithdrawTx(ctx, nil, "nobody", 1); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("withdraw from empty account err = %v, want ErrInsufficientFunds", err)
	}
}

func TestBalanceUntouchedAccount(t *testing.T) {
	ledger := New(newStubAccounts())
	balance, err := ledger.Balance(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 0 {
		t.Fatalf("balance = %d, want 0", balance)
	}
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	ledger := New(newStubAccounts())
	if err := ledger.DepositTx(ctx, nil, "alice", 1000); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	marketVault := MarketAccount("m1")
	if err := ledger.TransferTx(ctx, nil, "alice", marketVault, 250); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	got, _ := ledger.Balance(ctx, "alice")
	if got != 750 {
		t.Fatalf("alice = %d, want 750", got)
	}
	got, _ = ledger.Balance(ctx, marketVault)
	if got != 250 {
		t.Fatalf("vault = %d, want 250", got)
	}

	if err := ledger.TransferTx(ctx, nil, "alice", marketVault, 751); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("over-transfer err = %v, want ErrInsufficientFunds", err)
	}
	if err := ledger.TransferTx(ctx, nil, "bob", "alice", 1); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("transfer from empty account err = %v, want ErrInsufficientFunds", err)
	}

	// Self transfer and zero amount are no-ops.
	if err := ledger.TransferTx(ctx, nil, "alice", "alice", 100); err != nil {
		t.Fatalf("self transfer: %v", err)
	}
	if err := ledger.TransferTx(ctx, nil, "alice", marketVault, 0); err != nil {
		t.Fatalf("zero transfer: %v", err)
	}
	got, _ = ledger.Balance(ctx, "alice")
	if got != 750 {
		t.Fatalf("alice after no-ops = %d, want 750", got)
	}
}

func TestTransferMissingAccountNames(t *testing.T) {
	ledger := New(newStubAccounts())
	if err := ledger.TransferTx(context.Background(), nil, "", "bob", 10); err == nil {
		t.Fatal("expected error for empty source account")
	}
	if err := ledger.TransferTx(context.Background(), nil, "alice", "  ", 10); err == nil {
		t.Fatal("expected error for empty destination account")
	}
}

func TestDepositOverflow(t *testing.T) {
	ctx := context.Background()
	repo := newStubAccounts()
	repo.accounts["whale"] = models.CollateralAccount{Account: "whale", Balance: math.MaxUint64}
	ledger := New(repo)
	if err := ledger.DepositTx(ctx, nil, "whale", 1); !errors.Is(err, amm.ErrOverflow) {
		t.Fatalf("deposit overflow err = %v, want amm.ErrOverflow", err)
	}
}

func TestMarketAccount(t *testing.T) {
	account := MarketAccount("abc123")
	if account != "market:abc123" {
		t.Fatalf("MarketAccount = %q", account)
	}
	if !IsMarketAccount(account) {
		t.Fatal("IsMarketAccount(market vault) = false")
	}
	if IsMarketAccount("alice") {
		t.Fatal("IsMarketAccount(user) = true")
	}
}
