package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/datmedevil17/magic-market/internal/models"
	"github.com/datmedevil17/magic-market/internal/oracle"
	"github.com/datmedevil17/magic-market/internal/repository"
)

// OracleFeedService keeps the oracle cache warm: a websocket consumer for
// the feeds active markets reference, plus a REST refresh tick that covers
// gaps when the stream is down.
type OracleFeedService struct {
	Repo   repository.Repository
	Cache  *oracle.CachedSource
	Rest   *oracle.RESTClient
	Flags  *SystemSettingsService
	Logger *zap.Logger

	StreamURL string
	MaxFeeds  int
}

func (s *OracleFeedService) maxFeeds() int {
	if s.MaxFeeds > 0 {
		return s.MaxFeeds
	}
	return 100
}

// Run consumes the oracle stream until ctx is cancelled, persisting every
// update. The subscription follows the set of feeds active markets use.
func (s *OracleFeedService) Run(ctx context.Context) error {
	stream := oracle.NewStream(oracle.StreamOptions{
		URL:      s.StreamURL,
		MaxFeeds: s.maxFeeds(),
		FeedProvider: func(ctx context.Context) ([]string, error) {
			return s.Repo.ListActiveOracleFeeds(ctx, s.maxFeeds())
		},
		Logger: s.Logger,
	})
	return stream.Run(ctx, func(p *oracle.Price, raw []byte) {
		if err := s.Cache.Record(ctx, p, models.OracleSourceStream, raw); err != nil && s.Logger != nil {
			s.Logger.Warn("oracle stream persist failed",
				zap.String("feed_id", p.FeedID),
				zap.Error(err),
			)
		}
	})
}

// RefreshOnce pulls the latest reading for every active feed over REST and
// persists what came back.
func (s *OracleFeedService) RefreshOnce(ctx context.Context) (int, error) {
	if s.Flags != nil && !s.Flags.IsEnabled(ctx, FeaturePriceRefresh, true) {
		return 0, nil
	}
	if s.Rest == nil {
		return 0, nil
	}
	feeds, err := s.Repo.ListActiveOracleFeeds(ctx, s.maxFeeds())
	if err != nil {
		return 0, err
	}
	if len(feeds) == 0 {
		return 0, nil
	}
	prices, err := s.Rest.LatestPrices(ctx, feeds)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("oracle refresh fetch failed", zap.Int("feeds", len(feeds)), zap.Error(err))
		}
		return 0, err
	}
	stored := 0
	for _, p := range prices {
		if err := s.Cache.Record(ctx, p, models.OracleSourceREST, nil); err != nil {
			if s.Logger != nil {
				s.Logger.Warn("oracle refresh persist failed",
					zap.String("feed_id", p.FeedID),
					zap.Error(err),
				)
			}
			continue
		}
		stored++
	}
	return stored, nil
}
