package amm

import (
	"errors"

	"github.com/holiman/uint256"
)

// Protocol constants. Share amounts and unit prices carry 6 decimals; strike
// and oracle prices carry 8 (Pyth convention).
const (
	BasisPoints uint64 = 10_000
	FeeBps      uint64 = 30

	// MinLiquidity is the minimum per-side reserve at pool initialization.
	MinLiquidity uint64 = 1000

	PriceScale uint64 = 1_000_000
	ShareScale uint64 = 1_000_000

	OracleScale int64 = 100_000_000

	// MinOutput is the dust floor on trade output, independent of the
	// caller's slippage bound.
	MinOutput uint64 = 100

	// DefaultMaxTradeBps caps a single buy at 10% of pool liquidity unless
	// overridden in config.
	DefaultMaxTradeBps uint64 = 1000
)

var (
	ErrOverflow     = errors.New("amount overflows 64 bits")
	ErrDivideByZero = errors.New("division by zero")
)

// Product returns a × b widened to 256 bits.
func Product(a, b uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
}

// MulDiv returns floor(a × b / div), computing the product in the widened
// domain. Narrowing failure is a checked error, never a wraparound.
func MulDiv(a, b, div uint64) (uint64, error) {
	if div == 0 {
		return 0, ErrDivideByZero
	}
	q := Product(a, b)
	q.Div(q, uint256.NewInt(div))
	if !q.IsUint64() {
		return 0, ErrOverflow
	}
	return q.Uint64(), nil
}

func CheckedAdd(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrOverflow
	}
	return sum, nil
}

// SatSub returns a − b, floored at zero.
func SatSub(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}

// Fee returns the protocol fee on amount, rounded down (truncation favors
// the pool).
func Fee(amount uint64) uint64 {
	fee, _ := MulDiv(amount, FeeBps, BasisPoints)
	return fee
}

// SwapOutput runs one constant-product step: amountIn joins reserveIn and the
// implied output leaves reserveOut. newOut = floor(k / newIn) is the largest
// value with newIn × newOut ≤ k, so rounding always favors the pool and the
// output never exceeds the curve solution.
func SwapOutput(reserveIn, reserveOut, amountIn uint64) (newIn, newOut, out uint64, err error) {
	k := Product(reserveIn, reserveOut)
	newIn, err = CheckedAdd(reserveIn, amountIn)
	if err != nil {
		return 0, 0, 0, err
	}
	if newIn == 0 {
		return 0, 0, 0, ErrDivideByZero
	}
	q := new(uint256.Int).Div(k, uint256.NewInt(newIn))
	if !q.IsUint64() {
		return 0, 0, 0, ErrOverflow
	}
	newOut = q.Uint64()
	return newIn, newOut, SatSub(reserveOut, newOut), nil
}

// LPTokensForDeposit returns the LP tokens minted for depositing amount
// against the current supply and pool equity. The first deposit mints 1:1.
func LPTokensForDeposit(amount, supply, totalLiquidity uint64) (uint64, error) {
	if totalLiquidity == 0 {
		return amount, nil
	}
	return MulDiv(amount, supply, totalLiquidity)
}

// WithdrawalForTokens returns the collateral owed for burning tokens.
func WithdrawalForTokens(tokens, supply, totalLiquidity uint64) (uint64, error) {
	if supply == 0 {
		return 0, ErrDivideByZero
	}
	return MulDiv(tokens, totalLiquidity, supply)
}

// SplitHalf splits amount into two legs; an odd unit lands on the second.
func SplitHalf(amount uint64) (uint64, uint64) {
	half := amount / 2
	return half, amount - half
}

// WeightedAverage folds qty units at price into an existing position of
// oldQty units at oldAvg: floor((oldAvg×oldQty + price×qty) / (oldQty+qty)).
// Products and the sum are widened before the division.
func WeightedAverage(oldAvg, oldQty, price, qty uint64) (uint64, error) {
	total, err := CheckedAdd(oldQty, qty)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, ErrDivideByZero
	}
	num := Product(oldAvg, oldQty)
	num.Add(num, Product(price, qty))
	num.Div(num, uint256.NewInt(total))
	if !num.IsUint64() {
		return 0, ErrOverflow
	}
	return num.Uint64(), nil
}

// SpotPrice returns the unit price, at PriceScale, of the side whose opposite
// reserve is passed first: price = opposite × PriceScale / (opposite + same).
// An empty pool defaults to 50/50.
func SpotPrice(opposite, same uint64) uint64 {
	total := new(uint256.Int).Add(uint256.NewInt(opposite), uint256.NewInt(same))
	if total.IsZero() {
		return PriceScale / 2
	}
	q := Product(opposite, PriceScale)
	q.Div(q, total)
	return q.Uint64()
}
