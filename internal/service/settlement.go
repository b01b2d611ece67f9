package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/datmedevil17/magic-market/internal/bridge"
	"github.com/datmedevil17/magic-market/internal/engine"
	"github.com/datmedevil17/magic-market/internal/events"
	"github.com/datmedevil17/magic-market/internal/models"
	"github.com/datmedevil17/magic-market/internal/repository"
	"github.com/datmedevil17/magic-market/internal/vault"
)

// SettlementService mirrors market state to the settlement bridge. Markets
// are delegated explicitly; after that, every trade marks the market dirty
// and the auto-commit tick pushes a fresh snapshot.
type SettlementService struct {
	Repo   repository.Repository
	Vault  *vault.Ledger
	Bridge *bridge.Client
	Flags  *SystemSettingsService
	Logger *zap.Logger

	mu    sync.Mutex
	dirty map[string]struct{}
}

// bridgeSnapshot is the flat market+pool state the bridge records.
type bridgeSnapshot struct {
	MarketID        string    `json:"market_id"`
	Status          string    `json:"status"`
	Outcome         *string   `json:"outcome,omitempty"`
	ResolutionPrice *int64    `json:"resolution_price,omitempty"`
	ExpiresAt       time.Time `json:"expires_at"`
	TotalYesShares  uint64    `json:"total_yes_shares"`
	TotalNoShares   uint64    `json:"total_no_shares"`
	YesReserve      uint64    `json:"yes_reserve"`
	NoReserve       uint64    `json:"no_reserve"`
	TotalLiquidity  uint64    `json:"total_liquidity"`
	LPTokenSupply   uint64    `json:"lp_token_supply"`
	TotalFees       uint64    `json:"total_fees_collected"`
	VaultBalance    uint64    `json:"vault_balance"`
	SnapshotAt      time.Time `json:"snapshot_at"`
}

// Delegate hands a market over to the bridge. Authority only; the market
// must be active and not already delegated.
func (s *SettlementService) Delegate(ctx context.Context, marketID, caller string) (*models.Market, error) {
	if s.Bridge == nil || !s.Bridge.Enabled() {
		return nil, ErrBridgeNotConfigured
	}
	m, err := s.Repo.GetMarketByID(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMarketNotFound
	}
	if strings.TrimSpace(caller) != m.Authority {
		return nil, engine.ErrUnauthorized
	}
	if m.Status != models.MarketStatusActive {
		return nil, engine.ErrMarketNotActive
	}
	if m.Delegated {
		return nil, ErrAlreadyDelegated
	}

	ref, callErr := s.Bridge.Delegate(ctx, marketID)
	s.record(ctx, marketID, models.SettlementActionDelegate, ref, nil, callErr)
	if callErr != nil {
		if s.Logger != nil {
			s.Logger.Warn("bridge delegate failed", zap.String("market_id", marketID), zap.Error(callErr))
		}
		return nil, fmt.Errorf("%w: %v", ErrBridgeUnavailable, callErr)
	}

	var out *models.Market
	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		locked, err := s.Repo.GetMarketForUpdateTx(ctx, tx, marketID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrMarketNotFound
		}
		if locked.Delegated {
			return ErrAlreadyDelegated
		}
		now := time.Now().UTC()
		locked.Delegated = true
		locked.DelegatedAt = &now
		if err := s.Repo.SaveMarketTx(ctx, tx, locked); err != nil {
			return err
		}
		out = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("market delegated",
			zap.String("market_id", marketID),
			zap.String("bridge_ref", ref),
		)
	}
	return out, nil
}

// Commit pushes the market's current snapshot to the bridge. With release
// set this is the final commit and the delegation flag clears. An empty
// caller marks an internal call (the auto-commit tick).
func (s *SettlementService) Commit(ctx context.Context, marketID, caller string, release bool) (*models.SettlementRecord, error) {
	if s.Bridge == nil || !s.Bridge.Enabled() {
		return nil, ErrBridgeNotConfigured
	}
	m, err := s.Repo.GetMarketByID(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMarketNotFound
	}
	caller = strings.TrimSpace(caller)
	if caller != "" && caller != m.Authority {
		return nil, engine.ErrUnauthorized
	}
	if !m.Delegated {
		return nil, ErrNotDelegated
	}
	p, err := s.Repo.GetPoolByMarketID(ctx, marketID)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, m, p)
	if err != nil {
		return nil, err
	}

	action := models.SettlementActionCommit
	var ref string
	var callErr error
	if release {
		action = models.SettlementActionRelease
		ref, callErr = s.Bridge.CommitAndRelease(ctx, marketID, snap)
	} else {
		ref, callErr = s.Bridge.Commit(ctx, marketID, snap)
	}
	record := s.record(ctx, marketID, action, ref, snap, callErr)
	if callErr != nil {
		if s.Logger != nil {
			s.Logger.Warn("bridge commit failed",
				zap.String("market_id", marketID),
				zap.Bool("release", release),
				zap.Error(callErr),
			)
		}
		return record, fmt.Errorf("%w: %v", ErrBridgeUnavailable, callErr)
	}

	if release {
		err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
			locked, err := s.Repo.GetMarketForUpdateTx(ctx, tx, marketID)
			if err != nil {
				return err
			}
			if locked == nil {
				return ErrMarketNotFound
			}
			locked.Delegated = false
			locked.DelegatedAt = nil
			return s.Repo.SaveMarketTx(ctx, tx, locked)
		})
		if err != nil {
			return record, err
		}
	}
	if s.Logger != nil {
		s.Logger.Info("market committed",
			zap.String("market_id", marketID),
			zap.String("action", action),
			zap.String("bridge_ref", ref),
		)
	}
	return record, nil
}

// Watch subscribes to engine events and marks delegated markets dirty so
// the next auto-commit tick pushes them. Runs until ctx is cancelled.
func (s *SettlementService) Watch(ctx context.Context, hub *events.Hub) error {
	if hub == nil {
		return nil
	}
	trades := hub.Subscribe(events.TypeTrade, 64)
	liquidity := hub.Subscribe(events.TypeLiquidity, 64)
	resolutions := hub.Subscribe(events.TypeResolution, 16)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-trades:
			s.MarkDirty(ev.MarketID)
		case ev := <-liquidity:
			s.MarkDirty(ev.MarketID)
		case ev := <-resolutions:
			s.MarkDirty(ev.MarketID)
		}
	}
}

func (s *SettlementService) MarkDirty(marketID string) {
	if s == nil || marketID == "" {
		return
	}
	s.mu.Lock()
	if s.dirty == nil {
		s.dirty = map[string]struct{}{}
	}
	s.dirty[marketID] = struct{}{}
	s.mu.Unlock()
}

func (s *SettlementService) drainDirty() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.dirty))
	for id := range s.dirty {
		out = append(out, id)
	}
	s.dirty = map[string]struct{}{}
	return out
}

// CommitDirtyOnce commits every dirty delegated market. Failures re-mark
// the market so the next tick retries.
func (s *SettlementService) CommitDirtyOnce(ctx context.Context) (int, error) {
	if s.Bridge == nil || !s.Bridge.Enabled() {
		return 0, nil
	}
	if s.Flags != nil && !s.Flags.IsEnabled(ctx, FeatureSettlementCommit, true) {
		return 0, nil
	}
	committed := 0
	for _, id := range s.drainDirty() {
		if ctx.Err() != nil {
			return committed, ctx.Err()
		}
		m, err := s.Repo.GetMarketByID(ctx, id)
		if err != nil || m == nil || !m.Delegated {
			continue
		}
		if _, err := s.Commit(ctx, id, "", false); err != nil {
			s.MarkDirty(id)
			continue
		}
		committed++
	}
	if committed > 0 && s.Logger != nil {
		s.Logger.Info("auto-commit done", zap.Int("committed", committed))
	}
	return committed, nil
}

func (s *SettlementService) snapshot(ctx context.Context, m *models.Market, p *models.Pool) (json.RawMessage, error) {
	snap := bridgeSnapshot{
		MarketID:        m.ID,
		Status:          m.Status,
		Outcome:         m.Outcome,
		ResolutionPrice: m.ResolutionPrice,
		ExpiresAt:       m.ExpiresAt,
		TotalYesShares:  m.TotalYesShares,
		TotalNoShares:   m.TotalNoShares,
		SnapshotAt:      time.Now().UTC(),
	}
	if p != nil {
		snap.YesReserve = p.YesReserve
		snap.NoReserve = p.NoReserve
		snap.TotalLiquidity = p.TotalLiquidity
		snap.LPTokenSupply = p.LPTokenSupply
		snap.TotalFees = p.TotalFeesCollected
	}
	if s.Vault != nil {
		balance, err := s.Vault.Balance(ctx, vault.MarketAccount(m.ID))
		if err != nil {
			return nil, err
		}
		snap.VaultBalance = balance
	}
	return json.Marshal(snap)
}

// record logs one bridge interaction; persistence failures are logged and
// swallowed so they never mask the bridge call's own result.
func (s *SettlementService) record(ctx context.Context, marketID, action, ref string, snap json.RawMessage, callErr error) *models.SettlementRecord {
	item := &models.SettlementRecord{
		ID:        uuid.NewString(),
		MarketID:  marketID,
		Action:    action,
		BridgeRef: ref,
		Status:    models.SettlementStatusOK,
	}
	if len(snap) > 0 {
		item.Snapshot = datatypes.JSON(snap)
	}
	if callErr != nil {
		item.Status = models.SettlementStatusFailed
		item.Error = callErr.Error()
	}
	if err := s.Repo.InsertSettlementRecord(ctx, item); err != nil && s.Logger != nil {
		s.Logger.Warn("settlement record insert failed",
			zap.String("market_id", marketID),
			zap.Error(err),
		)
	}
	return item
}
