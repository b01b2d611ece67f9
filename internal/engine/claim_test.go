package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/datmedevil17/magic-market/internal/models"
)

func resolvedMarket(t *testing.T, outcome string) *models.Market {
	t.Helper()
	m := testMarket(models.MarketStatusActive)
	price := m.StrikePrice
	if outcome == models.SideNo {
		price = m.StrikePrice - 1
	}
	if err := Resolve(m, price, 0, m.ExpiresAt.Add(ResolutionDelay)); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return m
}

func TestClaim(t *testing.T) {
	m := resolvedMarket(t, models.SideYes)
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	pos := &models.Position{MarketID: m.ID, UserID: "bob", YesShares: 907, NoShares: 50}

	payout, err := Claim(m, pos, now)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if payout != 907 {
		t.Fatalf("payout=%d want 907", payout)
	}
	if !pos.Claimed || pos.ClaimedAt == nil || !pos.ClaimedAt.Equal(now) {
		t.Fatalf("claimed flag not set: %+v", pos)
	}
	if _, err := Claim(m, pos, now); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("second claim: %v", err)
	}
}

func TestClaim_NoOutcome(t *testing.T) {
	m := resolvedMarket(t, models.SideNo)
	now := m.ExpiresAt.Add(time.Hour)
	pos := &models.Position{MarketID: m.ID, UserID: "bob", YesShares: 0, NoShares: 123}

	payout, err := Claim(m, pos, now)
	if err != nil || payout != 123 {
		t.Fatalf("no-side payout=%d err=%v", payout, err)
	}

	loser := &models.Position{MarketID: m.ID, UserID: "carol", YesShares: 400}
	if _, err := Claim(m, loser, now); !errors.Is(err, ErrNoWinnings) {
		t.Fatalf("loser claim: %v", err)
	}
	if loser.Claimed {
		t.Fatalf("losing claim marked the position")
	}
}

func TestClaim_Gates(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	active := testMarket(models.MarketStatusActive)
	pos := &models.Position{MarketID: active.ID, UserID: "bob", YesShares: 1}
	if _, err := Claim(active, pos, now); !errors.Is(err, ErrMarketNotResolved) {
		t.Fatalf("active market: %v", err)
	}
	cancelled := testMarket(models.MarketStatusCancelled)
	if _, err := Claim(cancelled, pos, now); !errors.Is(err, ErrMarketNotResolved) {
		t.Fatalf("cancelled market: %v", err)
	}
	m := resolvedMarket(t, models.SideYes)
	if _, err := Claim(m, nil, now); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("nil position: %v", err)
	}
}

func TestRefund(t *testing.T) {
	m := testMarket(models.MarketStatusActive)
	if err := Cancel(m, "alice"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	// Cost basis: 907 × 0.547386 + 500 × 0.452613 = 496 + 226.
	pos := &models.Position{
		MarketID: m.ID, UserID: "bob",
		YesShares: 907, YesAvgPrice: 547_386,
		NoShares: 500, NoAvgPrice: 452_613,
	}
	refund, err := Refund(m, pos, now)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if refund != 722 {
		t.Fatalf("refund=%d want 722", refund)
	}
	if !pos.Claimed || pos.ClaimedAt == nil {
		t.Fatalf("refund did not mark claimed")
	}
	if _, err := Refund(m, pos, now); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("second refund: %v", err)
	}
}

func TestRefund_Gates(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	pos := &models.Position{UserID: "bob", YesShares: 1, YesAvgPrice: 500_000}

	active := testMarket(models.MarketStatusActive)
	if _, err := Refund(active, pos, now); !errors.Is(err, ErrMarketNotCancelled) {
		t.Fatalf("active: %v", err)
	}
	resolved := resolvedMarket(t, models.SideYes)
	if _, err := Refund(resolved, pos, now); !errors.Is(err, ErrMarketNotCancelled) {
		t.Fatalf("resolved: %v", err)
	}

	cancelled := testMarket(models.MarketStatusActive)
	if err := Cancel(cancelled, "alice"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := Refund(cancelled, nil, now); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("nil position: %v", err)
	}
	// 1 share at half price floors to zero collateral.
	empty := &models.Position{UserID: "bob", YesShares: 1, YesAvgPrice: 500_000}
	if _, err := Refund(cancelled, empty, now); !errors.Is(err, ErrNoWinnings) {
		t.Fatalf("zero basis: %v", err)
	}
	if empty.Claimed {
		t.Fatalf("zero-basis refund marked the position")
	}
}
