package engine

import (
	"fmt"

	"github.com/datmedevil17/magic-market/internal/amm"
	"github.com/datmedevil17/magic-market/internal/models"
)

// BuyQuote is the fully-checked outcome of a prospective buy. Nothing is
// mutated until ApplyBuy runs with it.
type BuyQuote struct {
	Side           string
	AmountIn       uint64
	Fee            uint64
	AmountAfterFee uint64
	SharesOut      uint64

	NewYesReserve uint64
	NewNoReserve  uint64

	// Price is the spot price of Side after the reserve update, at
	// amm.PriceScale. Position averages blend at this price.
	Price uint64
}

// QuoteBuy prices a buy of side for amountIn collateral against the current
// pool state. maxTradeBps of 0 falls back to the protocol default. Every
// precondition is checked here so callers can transfer collateral before
// touching state.
func QuoteBuy(m *models.Market, p *models.Pool, side string, amountIn, minSharesOut, maxTradeBps uint64) (*BuyQuote, error) {
	side, err := NormalizeSide(side)
	if err != nil {
		return nil, err
	}
	if m.Status != models.MarketStatusActive {
		return nil, ErrMarketNotActive
	}
	if amountIn == 0 {
		return nil, ErrInvalidAmount
	}
	if p == nil || p.YesReserve == 0 || p.NoReserve == 0 {
		return nil, ErrPoolNotInitialized
	}
	if maxTradeBps == 0 {
		maxTradeBps = amm.DefaultMaxTradeBps
	}
	maxSize, err := amm.MulDiv(p.TotalLiquidity, maxTradeBps, amm.BasisPoints)
	if err != nil {
		return nil, fmt.Errorf("max trade size: %w", err)
	}
	if amountIn > maxSize {
		return nil, ErrTradeExceedsMaxSize
	}

	fee := amm.Fee(amountIn)
	afterFee := amountIn - fee

	reserveIn, reserveOut := p.YesReserve, p.NoReserve
	if side == models.SideYes {
		reserveIn, reserveOut = p.NoReserve, p.YesReserve
	}
	newIn, newOut, sharesOut, err := amm.SwapOutput(reserveIn, reserveOut, afterFee)
	if err != nil {
		return nil, fmt.Errorf("swap: %w", err)
	}
	if sharesOut < minSharesOut {
		return nil, ErrSlippageExceeded
	}
	if sharesOut < amm.MinOutput {
		return nil, ErrOutputTooSmall
	}

	q := &BuyQuote{
		Side:           side,
		AmountIn:       amountIn,
		Fee:            fee,
		AmountAfterFee: afterFee,
		SharesOut:      sharesOut,
	}
	if side == models.SideYes {
		q.NewYesReserve, q.NewNoReserve = newOut, newIn
		q.Price = amm.SpotPrice(q.NewNoReserve, q.NewYesReserve)
	} else {
		q.NewYesReserve, q.NewNoReserve = newIn, newOut
		q.Price = amm.SpotPrice(q.NewYesReserve, q.NewNoReserve)
	}
	return q, nil
}

// ApplyBuy commits a quote: reserves, fee accrual, market share totals and
// the buyer's position. The caller persists the mutated rows in one
// transaction and rolls everything back on error.
func ApplyBuy(m *models.Market, p *models.Pool, pos *models.Position, q *BuyQuote) error {
	fees, err := amm.CheckedAdd(p.TotalFeesCollected, q.Fee)
	if err != nil {
		return fmt.Errorf("fee total: %w", err)
	}
	yesTotal, noTotal := m.TotalYesShares, m.TotalNoShares
	if q.Side == models.SideYes {
		if yesTotal, err = amm.CheckedAdd(yesTotal, q.SharesOut); err != nil {
			return fmt.Errorf("yes share total: %w", err)
		}
	} else {
		if noTotal, err = amm.CheckedAdd(noTotal, q.SharesOut); err != nil {
			return fmt.Errorf("no share total: %w", err)
		}
	}
	if err := creditPosition(pos, q.Side, q.SharesOut, q.Price); err != nil {
		return err
	}
	p.YesReserve, p.NoReserve = q.NewYesReserve, q.NewNoReserve
	p.TotalFeesCollected = fees
	m.TotalYesShares, m.TotalNoShares = yesTotal, noTotal
	return nil
}

// SellQuote mirrors BuyQuote for a share sale. Fee comes out of the
// collateral output.
type SellQuote struct {
	Side      string
	SharesIn  uint64
	Fee       uint64
	AmountOut uint64

	NewYesReserve uint64
	NewNoReserve  uint64

	Price uint64
}

// QuoteSell prices a sale of sharesIn of side. The seller's position is part
// of the precondition set: selling more than the recorded balance fails
// before any math runs.
func QuoteSell(m *models.Market, p *models.Pool, pos *models.Position, side string, sharesIn, minAmountOut uint64) (*SellQuote, error) {
	side, err := NormalizeSide(side)
	if err != nil {
		return nil, err
	}
	if m.Status != models.MarketStatusActive {
		return nil, ErrMarketNotActive
	}
	if sharesIn == 0 {
		return nil, ErrInvalidAmount
	}
	if p == nil || p.YesReserve == 0 || p.NoReserve == 0 {
		return nil, ErrPoolNotInitialized
	}
	if pos == nil || balanceOf(pos, side) < sharesIn {
		return nil, ErrInsufficientShares
	}

	reserveIn, reserveOut := p.NoReserve, p.YesReserve
	if side == models.SideYes {
		reserveIn, reserveOut = p.YesReserve, p.NoReserve
	}
	newIn, newOut, gross, err := amm.SwapOutput(reserveIn, reserveOut, sharesIn)
	if err != nil {
		return nil, fmt.Errorf("swap: %w", err)
	}
	fee := amm.Fee(gross)
	amountOut := gross - fee
	if amountOut < minAmountOut {
		return nil, ErrSlippageExceeded
	}
	if amountOut < amm.MinOutput {
		return nil, ErrOutputTooSmall
	}

	q := &SellQuote{
		Side:      side,
		SharesIn:  sharesIn,
		Fee:       fee,
		AmountOut: amountOut,
	}
	if side == models.SideYes {
		q.NewYesReserve, q.NewNoReserve = newIn, newOut
		q.Price = amm.SpotPrice(q.NewNoReserve, q.NewYesReserve)
	} else {
		q.NewYesReserve, q.NewNoReserve = newOut, newIn
		q.Price = amm.SpotPrice(q.NewYesReserve, q.NewNoReserve)
	}
	return q, nil
}

// ApplySell commits a sell quote. Share totals and the position balance
// decrement saturating at zero; the recorded average price is untouched so
// the cost basis survives for refunds.
func ApplySell(m *models.Market, p *models.Pool, pos *models.Position, q *SellQuote) error {
	fees, err := amm.CheckedAdd(p.TotalFeesCollected, q.Fee)
	if err != nil {
		return fmt.Errorf("fee total: %w", err)
	}
	p.YesReserve, p.NoReserve = q.NewYesReserve, q.NewNoReserve
	p.TotalFeesCollected = fees
	if q.Side == models.SideYes {
		m.TotalYesShares = amm.SatSub(m.TotalYesShares, q.SharesIn)
		pos.YesShares = amm.SatSub(pos.YesShares, q.SharesIn)
	} else {
		m.TotalNoShares = amm.SatSub(m.TotalNoShares, q.SharesIn)
		pos.NoShares = amm.SatSub(pos.NoShares, q.SharesIn)
	}
	return nil
}

func balanceOf(pos *models.Position, side string) uint64 {
	if side == models.SideYes {
		return pos.YesShares
	}
	return pos.NoShares
}

// creditPosition blends sharesOut at price into the side's volume-weighted
// average, then adds the shares.
func creditPosition(pos *models.Position, side string, sharesOut, price uint64) error {
	if sharesOut == 0 {
		return nil
	}
	if side == models.SideYes {
		avg, err := amm.WeightedAverage(pos.YesAvgPrice, pos.YesShares, price, sharesOut)
		if err != nil {
			return fmt.Errorf("yes average: %w", err)
		}
		pos.YesAvgPrice = avg
		pos.YesShares += sharesOut
		return nil
	}
	avg, err := amm.WeightedAverage(pos.NoAvgPrice, pos.NoShares, price, sharesOut)
	if err != nil {
		return fmt.Errorf("no average: %w", err)
	}
	pos.NoAvgPrice = avg
	pos.NoShares += sharesOut
	return nil
}
