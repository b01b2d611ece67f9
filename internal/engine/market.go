package engine

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/datmedevil17/magic-market/internal/models"
)

const (
	// MaxDescriptionLen bounds the market description in bytes.
	MaxDescriptionLen = 128

	// ResolutionDelay is the quiet period after expiration before a market
	// may be resolved.
	ResolutionDelay = 300 * time.Second

	// ResolutionMaxStaleness bounds oracle age at resolution time;
	// CreationMaxStaleness is the coarser bound applied when a market is
	// created against a feed.
	ResolutionMaxStaleness = 300 * time.Second
	CreationMaxStaleness   = time.Hour
)

// MarketParams carries the caller-supplied fields for a new market.
type MarketParams struct {
	ID            string
	Authority     string
	Description   string
	OracleFeed    string
	StrikePrice   int64
	MaxConfidence uint64
	ExpiresAt     time.Time
}

// NewMarketID returns a fresh 32-byte market id, hex encoded.
func NewMarketID() string {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// ValidMarketID reports whether s is a well-formed caller-supplied id.
func ValidMarketID(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// NewMarket validates params and returns an active market. The oracle
// freshness gate at creation is the caller's job since it needs a price
// source.
func NewMarket(params MarketParams, now time.Time) (*models.Market, error) {
	if !params.ExpiresAt.After(now) {
		return nil, ErrInvalidExpiration
	}
	if len(params.Description) > MaxDescriptionLen {
		return nil, ErrDescriptionTooLong
	}
	id := params.ID
	if id == "" {
		id = NewMarketID()
	}
	return &models.Market{
		ID:            id,
		Authority:     params.Authority,
		Description:   params.Description,
		OracleFeed:    params.OracleFeed,
		StrikePrice:   params.StrikePrice,
		MaxConfidence: params.MaxConfidence,
		ExpiresAt:     params.ExpiresAt,
		Status:        models.MarketStatusActive,
	}, nil
}

// Resolve settles an expired market against an oracle reading. Status,
// outcome, resolution price and timestamp are set together or not at all;
// a second call fails on the status gate.
func Resolve(m *models.Market, price int64, confidence uint64, now time.Time) error {
	if m.Status != models.MarketStatusActive {
		return ErrMarketNotActive
	}
	if now.Before(m.ExpiresAt.Add(ResolutionDelay)) {
		return ErrMarketNotExpired
	}
	if confidence > m.MaxConfidence {
		return ErrConfidenceTooHigh
	}
	outcome := models.SideNo
	if price >= m.StrikePrice {
		outcome = models.SideYes
	}
	resolvedAt := now
	m.Status = models.MarketStatusResolved
	m.Outcome = &outcome
	m.ResolutionPrice = &price
	m.ResolvedAt = &resolvedAt
	return nil
}

// Cancel voids an active market. Only the market authority may cancel; the
// market keeps no outcome and positions become refundable at cost basis.
func Cancel(m *models.Market, caller string) error {
	if caller != m.Authority {
		return ErrUnauthorized
	}
	if m.Status != models.MarketStatusActive {
		return ErrMarketNotActive
	}
	m.Status = models.MarketStatusCancelled
	return nil
}
