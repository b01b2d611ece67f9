package oracle

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/datmedevil17/magic-market/internal/models"
	"github.com/datmedevil17/magic-market/internal/repository"
)

// CachedSource answers price lookups from the oracle_latest cache the
// stream keeps warm, and falls back to one REST round trip when the cache
// has nothing fresh enough. Fallback readings are written back so the next
// caller hits the cache.
type CachedSource struct {
	Repo   repository.OracleRepository
	Client *RESTClient
	Logger *zap.Logger
}

func (s *CachedSource) GetPrice(ctx context.Context, feedID string, now time.Time, maxStaleness time.Duration) (*Price, error) {
	if s == nil || s.Repo == nil {
		return nil, ErrUnavailable
	}
	row, err := s.Repo.GetOracleLatest(ctx, feedID)
	if err != nil {
		return nil, err
	}
	if row != nil {
		p := &Price{
			FeedID:      row.FeedID,
			Price:       row.Price,
			Confidence:  row.Confidence,
			PublishedAt: row.PublishedAt,
		}
		if maxStaleness <= 0 || now.Sub(p.PublishedAt) <= maxStaleness {
			return p, nil
		}
	}

	if s.Client == nil {
		if row != nil {
			return nil, ErrStalePrice
		}
		return nil, ErrUnavailable
	}
	p, err := s.Client.LatestPrice(ctx, feedID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("oracle rest fallback failed", zap.String("feed_id", feedID), zap.Error(err))
		}
		if row != nil {
			return nil, ErrStalePrice
		}
		return nil, ErrUnavailable
	}
	if recErr := s.Record(ctx, p, models.OracleSourceREST, nil); recErr != nil && s.Logger != nil {
		s.Logger.Warn("oracle cache write-back failed", zap.String("feed_id", feedID), zap.Error(recErr))
	}
	if maxStaleness > 0 && now.Sub(p.PublishedAt) > maxStaleness {
		return nil, ErrStalePrice
	}
	return p, nil
}

// Record persists one reading: an append-only history row plus the
// per-feed latest cache. payload may be nil.
func (s *CachedSource) Record(ctx context.Context, p *Price, source string, payload []byte) error {
	if s == nil || s.Repo == nil || p == nil {
		return nil
	}
	now := time.Now().UTC()
	hist := &models.OraclePrice{
		FeedID:      p.FeedID,
		Price:       p.Price,
		Confidence:  p.Confidence,
		PublishedAt: p.PublishedAt,
		Source:      source,
		ReceivedAt:  now,
	}
	if len(payload) > 0 {
		hist.Payload = datatypes.JSON(payload)
	}
	if err := s.Repo.InsertOraclePrice(ctx, hist); err != nil {
		return err
	}
	return s.Repo.UpsertOracleLatest(ctx, &models.OracleLatest{
		FeedID:      p.FeedID,
		Price:       p.Price,
		Confidence:  p.Confidence,
		PublishedAt: p.PublishedAt,
		Source:      source,
		UpdatedAt:   now,
	})
}

var _ PriceSource = (*CachedSource)(nil)
