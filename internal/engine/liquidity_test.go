package engine

import (
	"errors"
	"testing"

	"github.com/datmedevil17/magic-market/internal/models"
)

func TestInitializePool(t *testing.T) {
	m := testMarket(models.MarketStatusActive)
	p, deposit, err := InitializePool(m, 10_000)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if p.YesReserve != 10_000 || p.NoReserve != 10_000 {
		t.Fatalf("reserves yes=%d no=%d", p.YesReserve, p.NoReserve)
	}
	if p.TotalLiquidity != 20_000 || p.LPTokenSupply != 20_000 || deposit != 20_000 {
		t.Fatalf("tl=%d supply=%d deposit=%d want 20000", p.TotalLiquidity, p.LPTokenSupply, deposit)
	}
	if p.MarketID != m.ID {
		t.Fatalf("market id %q", p.MarketID)
	}
}

func TestInitializePool_Gates(t *testing.T) {
	m := testMarket(models.MarketStatusActive)
	if _, _, err := InitializePool(m, 999); !errors.Is(err, ErrInsufficientLiquidity) {
		t.Fatalf("below minimum: %v", err)
	}
	if _, _, err := InitializePool(m, 1000); err != nil {
		t.Fatalf("at minimum: %v", err)
	}
	cancelled := testMarket(models.MarketStatusCancelled)
	if _, _, err := InitializePool(cancelled, 10_000); !errors.Is(err, ErrMarketNotActive) {
		t.Fatalf("status: %v", err)
	}
}

func TestAddLiquidity(t *testing.T) {
	m := testMarket(models.MarketStatusActive)
	p := testPool(t, m)
	lp := &models.LPPosition{MarketID: m.ID, UserID: "carol"}

	q, err := QuoteAddLiquidity(m, p, 5000, 0)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.LPTokens != 5000 || q.YesAdd != 2500 || q.NoAdd != 2500 {
		t.Fatalf("minted=%d yes=%d no=%d", q.LPTokens, q.YesAdd, q.NoAdd)
	}
	if err := ApplyAddLiquidity(p, lp, q); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if p.YesReserve != 12_500 || p.NoReserve != 12_500 {
		t.Fatalf("reserves yes=%d no=%d", p.YesReserve, p.NoReserve)
	}
	if p.TotalLiquidity != 25_000 || p.LPTokenSupply != 25_000 {
		t.Fatalf("tl=%d supply=%d", p.TotalLiquidity, p.LPTokenSupply)
	}
	if lp.LPTokens != 5000 {
		t.Fatalf("lp balance=%d", lp.LPTokens)
	}

	// Odd deposits put the spare unit on the NO side.
	q, err = QuoteAddLiquidity(m, p, 5001, 0)
	if err != nil {
		t.Fatalf("odd quote: %v", err)
	}
	if q.YesAdd != 2500 || q.NoAdd != 2501 {
		t.Fatalf("odd split yes=%d no=%d", q.YesAdd, q.NoAdd)
	}
}

func TestAddLiquidity_Gates(t *testing.T) {
	m := testMarket(models.MarketStatusActive)
	p := testPool(t, m)

	resolved := testMarket(models.MarketStatusResolved)
	if _, err := QuoteAddLiquidity(resolved, p, 5000, 0); !errors.Is(err, ErrMarketNotActive) {
		t.Fatalf("status: %v", err)
	}
	if _, err := QuoteAddLiquidity(m, p, 0, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("amount: %v", err)
	}
	if _, err := QuoteAddLiquidity(m, nil, 5000, 0); !errors.Is(err, ErrPoolNotInitialized) {
		t.Fatalf("pool: %v", err)
	}
	if _, err := QuoteAddLiquidity(m, p, 5000, 5001); !errors.Is(err, ErrSlippageExceeded) {
		t.Fatalf("slippage: %v", err)
	}
}

func TestRemoveLiquidity(t *testing.T) {
	m := testMarket(models.MarketStatusActive)
	p := testPool(t, m)
	lp := &models.LPPosition{MarketID: m.ID, UserID: "alice", LPTokens: 20_000}

	q, err := QuoteRemoveLiquidity(p, lp, 5000, 0)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.AmountOut != 5000 || q.YesSub != 2500 || q.NoSub != 2500 {
		t.Fatalf("out=%d yes=%d no=%d", q.AmountOut, q.YesSub, q.NoSub)
	}
	ApplyRemoveLiquidity(p, lp, q)
	if p.YesReserve != 7500 || p.NoReserve != 7500 {
		t.Fatalf("reserves yes=%d no=%d", p.YesReserve, p.NoReserve)
	}
	if p.TotalLiquidity != 15_000 || p.LPTokenSupply != 15_000 {
		t.Fatalf("tl=%d supply=%d", p.TotalLiquidity, p.LPTokenSupply)
	}
	if lp.LPTokens != 15_000 {
		t.Fatalf("lp balance=%d", lp.LPTokens)
	}

	// Full exit drains the pool to a valid empty terminal state.
	q, err = QuoteRemoveLiquidity(p, lp, 15_000, 0)
	if err != nil {
		t.Fatalf("exit quote: %v", err)
	}
	ApplyRemoveLiquidity(p, lp, q)
	if p.YesReserve != 0 || p.NoReserve != 0 || p.TotalLiquidity != 0 || p.LPTokenSupply != 0 {
		t.Fatalf("pool not drained: %+v", p)
	}
	if lp.LPTokens != 0 {
		t.Fatalf("lp balance=%d", lp.LPTokens)
	}
}

func TestRemoveLiquidity_Gates(t *testing.T) {
	m := testMarket(models.MarketStatusActive)
	p := testPool(t, m)
	lp := &models.LPPosition{MarketID: m.ID, UserID: "alice", LPTokens: 100}

	if _, err := QuoteRemoveLiquidity(p, lp, 0, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("amount: %v", err)
	}
	if _, err := QuoteRemoveLiquidity(nil, lp, 10, 0); !errors.Is(err, ErrPoolNotInitialized) {
		t.Fatalf("pool: %v", err)
	}
	empty := &models.Pool{MarketID: m.ID}
	if _, err := QuoteRemoveLiquidity(empty, lp, 10, 0); !errors.Is(err, ErrInsufficientLiquidity) {
		t.Fatalf("zero supply: %v", err)
	}
	if _, err := QuoteRemoveLiquidity(p, nil, 10, 0); !errors.Is(err, ErrInsufficientShares) {
		t.Fatalf("nil lp: %v", err)
	}
	if _, err := QuoteRemoveLiquidity(p, lp, 101, 0); !errors.Is(err, ErrInsufficientShares) {
		t.Fatalf("balance: %v", err)
	}
	if _, err := QuoteRemoveLiquidity(p, lp, 100, 101); !errors.Is(err, ErrSlippageExceeded) {
		t.Fatalf("slippage: %v", err)
	}
}

func TestLPShare_UnchangedByTrading(t *testing.T) {
	m := testMarket(models.MarketStatusActive)
	p := testPool(t, m)
	alice := &models.LPPosition{MarketID: m.ID, UserID: "alice", LPTokens: 20_000}
	pos := &models.Position{MarketID: m.ID, UserID: "bob"}

	for i := 0; i < 4; i++ {
		q, err := QuoteBuy(m, p, models.SideNo, 1200, 0, 0)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if err := ApplyBuy(m, p, pos, q); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if p.LPTokenSupply != 20_000 || alice.LPTokens != 20_000 {
		t.Fatalf("trading diluted the provider: supply=%d balance=%d", p.LPTokenSupply, alice.LPTokens)
	}

	// Dilution happens only through another provider's deposit.
	bob := &models.LPPosition{MarketID: m.ID, UserID: "bob"}
	q, err := QuoteAddLiquidity(m, p, 10_000, 0)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := ApplyAddLiquidity(p, bob, q); err != nil {
		t.Fatalf("add apply: %v", err)
	}
	if q.LPTokens != 10_000 || p.LPTokenSupply != 30_000 {
		t.Fatalf("minted=%d supply=%d", q.LPTokens, p.LPTokenSupply)
	}
	if alice.LPTokens != 20_000 {
		t.Fatalf("alice balance moved: %d", alice.LPTokens)
	}
}
