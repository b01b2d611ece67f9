package engine

import (
	"fmt"

	"github.com/datmedevil17/magic-market/internal/amm"
	"github.com/datmedevil17/magic-market/internal/models"
)

// InitializePool seeds both reserves of a fresh pool with initialLiquidity
// and returns the pool plus the collateral deposit owed by the initializer
// (twice the per-side seed). The deposit doubles as the initial LP token
// grant; the existence check against a prior pool row belongs to the caller.
func InitializePool(m *models.Market, initialLiquidity uint64) (*models.Pool, uint64, error) {
	if m.Status != models.MarketStatusActive {
		return nil, 0, ErrMarketNotActive
	}
	if initialLiquidity < amm.MinLiquidity {
		return nil, 0, ErrInsufficientLiquidity
	}
	deposit, err := amm.CheckedAdd(initialLiquidity, initialLiquidity)
	if err != nil {
		return nil, 0, fmt.Errorf("deposit: %w", err)
	}
	return &models.Pool{
		MarketID:       m.ID,
		YesReserve:     initialLiquidity,
		NoReserve:      initialLiquidity,
		TotalLiquidity: deposit,
		LPTokenSupply:  deposit,
	}, deposit, nil
}

// AddQuote is a checked liquidity deposit: the collateral amount, the LP
// tokens it mints, and the split across reserves (odd unit to the NO side).
type AddQuote struct {
	Amount   uint64
	LPTokens uint64
	YesAdd   uint64
	NoAdd    uint64
}

// QuoteAddLiquidity prices a deposit into an active market's pool.
func QuoteAddLiquidity(m *models.Market, p *models.Pool, amount, minLPTokens uint64) (*AddQuote, error) {
	if m.Status != models.MarketStatusActive {
		return nil, ErrMarketNotActive
	}
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	if p == nil {
		return nil, ErrPoolNotInitialized
	}
	minted, err := amm.LPTokensForDeposit(amount, p.LPTokenSupply, p.TotalLiquidity)
	if err != nil {
		return nil, fmt.Errorf("lp tokens: %w", err)
	}
	if minted < minLPTokens {
		return nil, ErrSlippageExceeded
	}
	yesAdd, noAdd := amm.SplitHalf(amount)
	return &AddQuote{Amount: amount, LPTokens: minted, YesAdd: yesAdd, NoAdd: noAdd}, nil
}

// ApplyAddLiquidity commits a deposit quote to the pool and the provider's
// LP position.
func ApplyAddLiquidity(p *models.Pool, lp *models.LPPosition, q *AddQuote) error {
	yes, err := amm.CheckedAdd(p.YesReserve, q.YesAdd)
	if err != nil {
		return fmt.Errorf("yes reserve: %w", err)
	}
	no, err := amm.CheckedAdd(p.NoReserve, q.NoAdd)
	if err != nil {
		return fmt.Errorf("no reserve: %w", err)
	}
	liquidity, err := amm.CheckedAdd(p.TotalLiquidity, q.Amount)
	if err != nil {
		return fmt.Errorf("total liquidity: %w", err)
	}
	supply, err := amm.CheckedAdd(p.LPTokenSupply, q.LPTokens)
	if err != nil {
		return fmt.Errorf("lp supply: %w", err)
	}
	balance, err := amm.CheckedAdd(lp.LPTokens, q.LPTokens)
	if err != nil {
		return fmt.Errorf("lp balance: %w", err)
	}
	p.YesReserve, p.NoReserve = yes, no
	p.TotalLiquidity = liquidity
	p.LPTokenSupply = supply
	lp.LPTokens = balance
	return nil
}

// RemoveQuote is a checked liquidity withdrawal: tokens burned, collateral
// out, and the reserve decrements (odd unit from the NO side).
type RemoveQuote struct {
	LPTokens  uint64
	AmountOut uint64
	YesSub    uint64
	NoSub     uint64
}

// QuoteRemoveLiquidity prices a withdrawal. There is no market-status gate:
// providers may exit resolved and cancelled markets.
func QuoteRemoveLiquidity(p *models.Pool, lp *models.LPPosition, lpTokens, minAmountOut uint64) (*RemoveQuote, error) {
	if lpTokens == 0 {
		return nil, ErrInvalidAmount
	}
	if p == nil {
		return nil, ErrPoolNotInitialized
	}
	if p.LPTokenSupply == 0 {
		return nil, ErrInsufficientLiquidity
	}
	if lp == nil || lp.LPTokens < lpTokens {
		return nil, ErrInsufficientShares
	}
	amountOut, err := amm.WithdrawalForTokens(lpTokens, p.LPTokenSupply, p.TotalLiquidity)
	if err != nil {
		return nil, fmt.Errorf("withdrawal: %w", err)
	}
	if amountOut < minAmountOut {
		return nil, ErrSlippageExceeded
	}
	yesSub, noSub := amm.SplitHalf(amountOut)
	return &RemoveQuote{LPTokens: lpTokens, AmountOut: amountOut, YesSub: yesSub, NoSub: noSub}, nil
}

// ApplyRemoveLiquidity commits a withdrawal quote. Reserve and liquidity
// decrements saturate at zero; the LP balance was checked by the quote.
func ApplyRemoveLiquidity(p *models.Pool, lp *models.LPPosition, q *RemoveQuote) {
	p.YesReserve = amm.SatSub(p.YesReserve, q.YesSub)
	p.NoReserve = amm.SatSub(p.NoReserve, q.NoSub)
	p.TotalLiquidity = amm.SatSub(p.TotalLiquidity, q.AmountOut)
	p.LPTokenSupply = amm.SatSub(p.LPTokenSupply, q.LPTokens)
	lp.LPTokens = amm.SatSub(lp.LPTokens, q.LPTokens)
}
