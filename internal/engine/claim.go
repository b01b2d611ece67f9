package engine

import (
	"fmt"
	"time"

	"github.com/datmedevil17/magic-market/internal/amm"
	"github.com/datmedevil17/magic-market/internal/models"
)

// Claim redeems the winning side of a resolved market 1:1 and marks the
// position claimed. Losing shares are worthless and LP value is recovered
// through liquidity withdrawal, not here.
func Claim(m *models.Market, pos *models.Position, now time.Time) (uint64, error) {
	if m.Status != models.MarketStatusResolved || m.Outcome == nil {
		return 0, ErrMarketNotResolved
	}
	if pos == nil {
		return 0, ErrInvalidPosition
	}
	if pos.Claimed {
		return 0, ErrAlreadyClaimed
	}
	winning := pos.NoShares
	if *m.Outcome == models.SideYes {
		winning = pos.YesShares
	}
	if winning == 0 {
		return 0, ErrNoWinnings
	}
	claimedAt := now
	pos.Claimed = true
	pos.ClaimedAt = &claimedAt
	return winning, nil
}

// Refund returns a cancelled market position's recorded cost basis: each
// side's balance times its volume-weighted entry price. Shares bought and
// later sold are excluded because sells already paid collateral out.
func Refund(m *models.Market, pos *models.Position, now time.Time) (uint64, error) {
	if m.Status != models.MarketStatusCancelled {
		return 0, ErrMarketNotCancelled
	}
	if pos == nil {
		return 0, ErrInvalidPosition
	}
	if pos.Claimed {
		return 0, ErrAlreadyClaimed
	}
	yesBasis, err := amm.MulDiv(pos.YesShares, pos.YesAvgPrice, amm.PriceScale)
	if err != nil {
		return 0, fmt.Errorf("yes basis: %w", err)
	}
	noBasis, err := amm.MulDiv(pos.NoShares, pos.NoAvgPrice, amm.PriceScale)
	if err != nil {
		return 0, fmt.Errorf("no basis: %w", err)
	}
	refund, err := amm.CheckedAdd(yesBasis, noBasis)
	if err != nil {
		return 0, fmt.Errorf("refund: %w", err)
	}
	if refund == 0 {
		return 0, ErrNoWinnings
	}
	claimedAt := now
	pos.Claimed = true
	pos.ClaimedAt = &claimedAt
	return refund, nil
}
