package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/datmedevil17/magic-market/internal/engine"
	"github.com/datmedevil17/magic-market/internal/models"
	"github.com/datmedevil17/magic-market/internal/oracle"
	"github.com/datmedevil17/magic-market/internal/vault"
)

const (
	testMarketID = "m-1"
	testFeed     = "feedbeef"
)

type fixture struct {
	repo      *stubRepo
	ledger    *vault.Ledger
	accounts  *AccountService
	trading   *TradingService
	liquidity *LiquidityService
	claims    *ClaimService
}

func newFixture() *fixture {
	repo := newStubRepo()
	ledger := vault.New(repo)
	return &fixture{
		repo:      repo,
		ledger:    ledger,
		accounts:  &AccountService{Repo: repo, Vault: ledger},
		trading:   &TradingService{Repo: repo, Vault: ledger},
		liquidity: &LiquidityService{Repo: repo, Vault: ledger},
		claims:    &ClaimService{Repo: repo, Vault: ledger},
	}
}

func (f *fixture) seedMarket(t *testing.T, expiresAt time.Time) {
	t.Helper()
	f.repo.markets[testMarketID] = models.Market{
		ID:            testMarketID,
		Authority:     "authority",
		Description:   "BTC above 51k",
		OracleFeed:    testFeed,
		StrikePrice:   5_000_000_000,
		MaxConfidence: 100_000_000,
		ExpiresAt:     expiresAt,
		Status:        models.MarketStatusActive,
	}
}

func (f *fixture) fund(t *testing.T, account string, amount uint64) {
	t.Helper()
	if _, err := f.accounts.Deposit(context.Background(), account, amount); err != nil {
		t.Fatalf("deposit %s: %v", account, err)
	}
}

func (f *fixture) expire(t *testing.T) {
	t.Helper()
	m, ok := f.repo.markets[testMarketID]
	if !ok {
		t.Fatal("market not seeded")
	}
	m.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	f.repo.markets[testMarketID] = m
}

func TestTradeLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seedMarket(t, time.Now().Add(24*time.Hour))
	f.fund(t, "lp", 5_000_000)
	f.fund(t, "alice", 1_000_000)
	totalBefore := f.repo.ledgerTotal()

	init, err := f.liquidity.Initialize(ctx, testMarketID, "lp", 1_000_000)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if init.Event.Amount != 2_000_000 {
		t.Fatalf("initialize deposit = %d, want 2000000", init.Event.Amount)
	}
	if init.LPPosition.LPTokens != 2_000_000 {
		t.Fatalf("lp tokens = %d, want 2000000", init.LPPosition.LPTokens)
	}

	buy, err := f.trading.Buy(ctx, testMarketID, "alice", "yes", 100_000, 0)
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if buy.Trade.Fee != 300 {
		t.Fatalf("buy fee = %d, want 300 (30 bps of 100000)", buy.Trade.Fee)
	}
	if buy.Position.YesShares == 0 {
		t.Fatal("buy must credit yes shares")
	}
	if buy.Position.YesAvgPrice == 0 {
		t.Fatal("buy must record an entry price")
	}

	aliceBalance, err := f.ledger.Balance(ctx, "alice")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if aliceBalance != 900_000 {
		t.Fatalf("alice balance = %d, want 900000", aliceBalance)
	}
	vaultBalance, err := f.ledger.Balance(ctx, vault.MarketAccount(testMarketID))
	if err != nil {
		t.Fatalf("vault balance: %v", err)
	}
	if vaultBalance != 2_100_000 {
		t.Fatalf("market vault = %d, want 2100000", vaultBalance)
	}

	sell, err := f.trading.Sell(ctx, testMarketID, "alice", "yes", buy.Position.YesShares, 0)
	if err != nil {
		t.Fatalf("Sell: %v", err)
	}
	if sell.Position.YesShares != 0 {
		t.Fatalf("yes shares after full exit = %d, want 0", sell.Position.YesShares)
	}
	if sell.Trade.AmountOut >= 100_000 {
		t.Fatalf("round trip paid out %d, must lose fees", sell.Trade.AmountOut)
	}

	// Trading only moves collateral between ledger rows.
	if got := f.repo.ledgerTotal(); got != totalBefore {
		t.Fatalf("ledger total = %d, want %d", got, totalBefore)
	}
	if len(f.repo.trades) != 2 {
		t.Fatalf("trade rows = %d, want 2", len(f.repo.trades))
	}
}

func TestBuyRequiresPool(t *testing.T) {
	f := newFixture()
	f.seedMarket(t, time.Now().Add(24*time.Hour))
	f.fund(t, "alice", 1_000_000)

	_, err := f.trading.Buy(context.Background(), testMarketID, "alice", "yes", 100_000, 0)
	if !errors.Is(err, engine.ErrPoolNotInitialized) {
		t.Fatalf("err = %v, want ErrPoolNotInitialized", err)
	}
}

func TestBuyInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seedMarket(t, time.Now().Add(24*time.Hour))
	f.fund(t, "lp", 5_000_000)
	if _, err := f.liquidity.Initialize(ctx, testMarketID, "lp", 1_000_000); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	_, err := f.trading.Buy(ctx, testMarketID, "broke", "yes", 100_000, 0)
	if !errors.Is(err, vault.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if len(f.repo.trades) != 0 {
		t.Fatalf("trade rows = %d after failed buy, want 0", len(f.repo.trades))
	}
}

func TestTradingFeatureSwitch(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seedMarket(t, time.Now().Add(24*time.Hour))
	flags := &SystemSettingsService{Repo: f.repo}
	f.trading.Flags = flags

	if err := flags.SetEnabled(ctx, FeatureTrading, false); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	_, err := f.trading.Buy(ctx, testMarketID, "alice", "yes", 100_000, 0)
	if !errors.Is(err, ErrFeatureDisabled) {
		t.Fatalf("err = %v, want ErrFeatureDisabled", err)
	}
}

func TestResolveAndClaim(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seedMarket(t, time.Now().Add(24*time.Hour))
	f.fund(t, "lp", 5_000_000)
	f.fund(t, "alice", 1_000_000)
	f.fund(t, "bob", 1_000_000)
	totalBefore := f.repo.ledgerTotal()

	if _, err := f.liquidity.Initialize(ctx, testMarketID, "lp", 1_000_000); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	aliceBuy, err := f.trading.Buy(ctx, testMarketID, "alice", "yes", 100_000, 0)
	if err != nil {
		t.Fatalf("alice buy: %v", err)
	}
	if _, err := f.trading.Buy(ctx, testMarketID, "bob", "no", 100_000, 0); err != nil {
		t.Fatalf("bob buy: %v", err)
	}

	f.expire(t)
	resolution := &ResolutionService{
		Repo: f.repo,
		Oracle: &stubOracle{price: &oracle.Price{
			Price:       5_100_000_000,
			Confidence:  10_000_000,
			PublishedAt: time.Now().UTC(),
		}},
	}
	m, err := resolution.Resolve(ctx, testMarketID, "authority")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Status != models.MarketStatusResolved || m.Outcome == nil || *m.Outcome != models.SideYes {
		t.Fatalf("resolved market = %+v", m)
	}

	payout, err := f.claims.Claim(ctx, testMarketID, "alice")
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if payout.Amount != aliceBuy.Position.YesShares {
		t.Fatalf("payout = %d, want %d (1:1 on winning shares)", payout.Amount, aliceBuy.Position.YesShares)
	}
	balance, err := f.ledger.Balance(ctx, "alice")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 900_000+payout.Amount {
		t.Fatalf("alice balance = %d, want %d", balance, 900_000+payout.Amount)
	}

	if _, err := f.claims.Claim(ctx, testMarketID, "alice"); !errors.Is(err, engine.ErrAlreadyClaimed) {
		t.Fatalf("second claim err = %v, want ErrAlreadyClaimed", err)
	}
	if _, err := f.claims.Claim(ctx, testMarketID, "bob"); !errors.Is(err, engine.ErrNoWinnings) {
		t.Fatalf("losing claim err = %v, want ErrNoWinnings", err)
	}

	if got := f.repo.ledgerTotal(); got != totalBefore {
		t.Fatalf("ledger total = %d, want %d", got, totalBefore)
	}
}

func TestResolveAuthorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seedMarket(t, time.Now().Add(24*time.Hour))
	f.expire(t)

	resolution := &ResolutionService{
		Repo:      f.repo,
		Resolvers: []string{"keeper"},
		Oracle: &stubOracle{price: &oracle.Price{
			Price:       5_100_000_000,
			Confidence:  10_000_000,
			PublishedAt: time.Now().UTC(),
		}},
	}
	if _, err := resolution.Resolve(ctx, testMarketID, "stranger"); !errors.Is(err, engine.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if _, err := resolution.Resolve(ctx, testMarketID, "keeper"); err != nil {
		t.Fatalf("allowlisted resolver: %v", err)
	}
}

func TestResolveNegativeFeed(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seedMarket(t, time.Now().Add(24*time.Hour))
	m := f.repo.markets[testMarketID]
	m.StrikePrice = -500_000
	f.repo.markets[testMarketID] = m
	f.expire(t)

	resolution := &ResolutionService{
		Repo: f.repo,
		Oracle: &stubOracle{price: &oracle.Price{
			Price:       -1,
			Confidence:  10_000_000,
			PublishedAt: time.Now().UTC(),
		}},
	}
	out, err := resolution.Resolve(ctx, testMarketID, "authority")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Outcome == nil || *out.Outcome != models.SideYes {
		t.Fatalf("outcome = %v, want yes (-1 >= -500000)", out.Outcome)
	}
	if out.ResolutionPrice == nil || *out.ResolutionPrice != -1 {
		t.Fatalf("resolution price = %v, want -1", out.ResolutionPrice)
	}
}

func TestSweepResolvesExpired(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seedMarket(t, time.Now().Add(24*time.Hour))
	f.expire(t)

	resolution := &ResolutionService{
		Repo: f.repo,
		Oracle: &stubOracle{price: &oracle.Price{
			Price:       4_900_000_000,
			Confidence:  10_000_000,
			PublishedAt: time.Now().UTC(),
		}},
	}
	resolved, err := resolution.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
	if resolved != 1 {
		t.Fatalf("resolved = %d, want 1", resolved)
	}
	m := f.repo.markets[testMarketID]
	if m.Outcome == nil || *m.Outcome != models.SideNo {
		t.Fatalf("outcome = %v, want no (price below strike)", m.Outcome)
	}

	// Nothing left to resolve.
	resolved, err = resolution.SweepOnce(ctx)
	if err != nil || resolved != 0 {
		t.Fatalf("second sweep = (%d, %v), want (0, nil)", resolved, err)
	}
}

func TestCancelAndRefund(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seedMarket(t, time.Now().Add(24*time.Hour))
	f.fund(t, "lp", 5_000_000)
	f.fund(t, "alice", 1_000_000)
	totalBefore := f.repo.ledgerTotal()

	if _, err := f.liquidity.Initialize(ctx, testMarketID, "lp", 1_000_000); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	buy, err := f.trading.Buy(ctx, testMarketID, "alice", "yes", 100_000, 0)
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}

	markets := &MarketService{Repo: f.repo}
	if _, err := markets.Cancel(ctx, testMarketID, "stranger"); !errors.Is(err, engine.ErrUnauthorized) {
		t.Fatalf("stranger cancel err = %v, want ErrUnauthorized", err)
	}
	m, err := markets.Cancel(ctx, testMarketID, "authority")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if m.Status != models.MarketStatusCancelled {
		t.Fatalf("status = %q, want cancelled", m.Status)
	}

	payout, err := f.claims.Refund(ctx, testMarketID, "alice")
	if err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if payout.Amount == 0 || payout.Amount > buy.Trade.AmountIn {
		t.Fatalf("refund = %d, want cost basis in (0, %d]", payout.Amount, buy.Trade.AmountIn)
	}

	// LPs exit through withdrawal; no status gate applies.
	lpBalance := f.repo.lps[posKey(testMarketID, "lp")].LPTokens
	out, err := f.liquidity.Remove(ctx, testMarketID, "lp", lpBalance, 0)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if out.LPPosition.LPTokens != 0 {
		t.Fatalf("lp tokens after exit = %d, want 0", out.LPPosition.LPTokens)
	}

	if got := f.repo.ledgerTotal(); got != totalBefore {
		t.Fatalf("ledger total = %d, want %d", got, totalBefore)
	}
}

func TestCreateMarket(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	svc := &MarketService{
		Repo: repo,
		Oracle: &stubOracle{price: &oracle.Price{
			Price:       5_100_000_000,
			Confidence:  10_000_000,
			PublishedAt: time.Now().UTC(),
		}},
	}

	params := CreateMarketParams{
		Authority:     "authority",
		Description:   "BTC above 51k",
		OracleFeed:    testFeed,
		StrikePrice:   5_000_000_000,
		MaxConfidence: 100_000_000,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
	}
	m, err := svc.Create(ctx, params)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !engine.ValidMarketID(m.ID) {
		t.Fatalf("generated id %q is not valid", m.ID)
	}
	if m.Status != models.MarketStatusActive {
		t.Fatalf("status = %q, want active", m.Status)
	}

	// Strike is a signed scaled integer; rate-style feeds strike at or
	// below zero.
	negParams := params
	negParams.StrikePrice = -500_000
	neg, err := svc.Create(ctx, negParams)
	if err != nil {
		t.Fatalf("Create with negative strike: %v", err)
	}
	if neg.StrikePrice != -500_000 {
		t.Fatalf("strike = %d, want -500000", neg.StrikePrice)
	}

	// Caller-supplied id collisions surface as ErrMarketExists.
	params.ID = m.ID
	if _, err := svc.Create(ctx, params); !errors.Is(err, engine.ErrMarketExists) {
		t.Fatalf("duplicate create err = %v, want ErrMarketExists", err)
	}

	// A dead feed blocks creation.
	svc.Oracle = &stubOracle{err: oracle.ErrUnavailable}
	params.ID = ""
	if _, err := svc.Create(ctx, params); !errors.Is(err, engine.ErrInvalidOraclePrice) {
		t.Fatalf("dead feed err = %v, want ErrInvalidOraclePrice", err)
	}
}
