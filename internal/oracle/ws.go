package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

const DefaultStreamURL = "wss://hermes.pyth.network/ws"

type subscribeRequest struct {
	Type string   `json:"type"`
	IDs  []string `json:"ids"`
}

type streamMessage struct {
	Type      string     `json:"type"`
	Status    string     `json:"status,omitempty"`
	PriceFeed feedUpdate `json:"price_feed"`
}

// FeedProvider yields the feed ids the stream should be subscribed to.
type FeedProvider func(context.Context) ([]string, error)

type StreamClient struct {
	url  string
	conn *websocket.Conn
}

func NewStreamClient(url string) *StreamClient {
	if strings.TrimSpace(url) == "" {
		url = DefaultStreamURL
	}
	return &StreamClient{url: url}
}

func (c *StreamClient) Connect(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("stream client is nil")
	}
	conn, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		return err
	}
	// Batch updates for many feeds can be large; raise read limit above default.
	conn.SetReadLimit(2 << 20) // 2MB
	c.conn = conn
	return nil
}

func (c *StreamClient) Close(status websocket.StatusCode, reason string) error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close(status, reason)
}

func (c *StreamClient) Subscribe(ctx context.Context, feedIDs []string) error {
	return c.send(ctx, "subscribe", feedIDs)
}

func (c *StreamClient) Unsubscribe(ctx context.Context, feedIDs []string) error {
	return c.send(ctx, "unsubscribe", feedIDs)
}

func (c *StreamClient) send(ctx context.Context, kind string, feedIDs []string) error {
	if c == nil || c.conn == nil {
		return fmt.Errorf("stream not connected")
	}
	req := subscribeRequest{
		Type: kind,
		IDs:  feedIDs,
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, websocket.MessageText, payload)
}

func (c *StreamClient) Read(ctx context.Context) (streamMessage, []byte, error) {
	if c == nil || c.conn == nil {
		return streamMessage{}, nil, fmt.Errorf("stream not connected")
	}
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		return streamMessage{}, nil, err
	}
	var msg streamMessage
	_ = json.Unmarshal(data, &msg)
	return msg, data, nil
}

type StreamOptions struct {
	URL               string
	FeedIDs           []string
	FeedProvider      FeedProvider
	MaxFeeds          int
	RefreshInterval   time.Duration
	HeartbeatInterval time.Duration
	PingTimeout       time.Duration
	BackoffMin        time.Duration
	BackoffMax        time.Duration
	Logger            *zap.Logger
}

// Stream keeps a subscription to the oracle's websocket alive, following
// the set of feeds active markets reference and reconnecting with backoff.
type Stream struct {
	opts      StreamOptions
	seenFirst bool
}

func NewStream(opts StreamOptions) *Stream {
	if opts.URL == "" {
		opts.URL = DefaultStreamURL
	}
	if opts.MaxFeeds == 0 {
		opts.MaxFeeds = 100
	}
	if opts.HeartbeatInterval == 0 {
		opts.HeartbeatInterval = 20 * time.Second
	}
	if opts.PingTimeout == 0 {
		opts.PingTimeout = 5 * time.Second
	}
	if opts.BackoffMin == 0 {
		opts.BackoffMin = 1 * time.Second
	}
	if opts.BackoffMax == 0 {
		opts.BackoffMax = 30 * time.Second
	}
	if opts.RefreshInterval == 0 {
		opts.RefreshInterval = 30 * time.Second
	}
	return &Stream{opts: opts}
}

// Run connects, subscribes, and hands every normalized price update to
// onUpdate together with the raw payload it arrived in. It returns only
// when ctx is cancelled.
func (s *Stream) Run(ctx context.Context, onUpdate func(*Price, []byte)) error {
	if s == nil {
		return fmt.Errorf("stream is nil")
	}
	backoff := s.opts.BackoffMin
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		client := NewStreamClient(s.opts.URL)
		if err := client.Connect(ctx); err != nil {
			if s.opts.Logger != nil {
				s.opts.Logger.Warn("oracle ws connect failed", zap.Error(err))
			}
			if err := sleepWithJitter(ctx, backoff); err != nil {
				return err
			}
			backoff = nextBackoff(backoff, s.opts.BackoffMax)
			continue
		}
		if s.opts.Logger != nil {
			s.opts.Logger.Info("oracle ws connected")
		}
		feedIDs := s.opts.FeedIDs
		if s.opts.FeedProvider != nil {
			if ids, err := s.opts.FeedProvider(ctx); err == nil {
				feedIDs = ids
			}
		}
		feedIDs = s.capFeeds(feedIDs)
		if len(feedIDs) == 0 {
			if s.opts.Logger != nil {
				s.opts.Logger.Warn("oracle ws subscribe skipped: no feeds")
			}
			_ = client.Close(websocket.StatusInternalError, "no feeds to subscribe")
			if err := sleepWithJitter(ctx, backoff); err != nil {
				return err
			}
			backoff = nextBackoff(backoff, s.opts.BackoffMax)
			continue
		}
		if err := client.Subscribe(ctx, feedIDs); err != nil {
			if s.opts.Logger != nil {
				s.opts.Logger.Warn("oracle ws subscribe failed", zap.Error(err))
			}
			_ = client.Close(websocket.StatusInternalError, "subscribe failed")
			if err := sleepWithJitter(ctx, backoff); err != nil {
				return err
			}
			backoff = nextBackoff(backoff, s.opts.BackoffMax)
			continue
		}
		if s.opts.Logger != nil {
			s.opts.Logger.Info("oracle ws subscribed", zap.Int("feeds", len(feedIDs)))
		}
		backoff = s.opts.BackoffMin

		current := setFromSlice(feedIDs)
		err := s.consume(ctx, client, onUpdate, current)
		_ = client.Close(websocket.StatusNormalClosure, "reconnect")
		if err == nil || errors.Is(err, context.Canceled) {
			return err
		}
		if err := sleepWithJitter(ctx, backoff); err != nil {
			return err
		}
		backoff = nextBackoff(backoff, s.opts.BackoffMax)
	}
}

func (s *Stream) consume(ctx context.Context, client *StreamClient, onUpdate func(*Price, []byte), current map[string]struct{}) error {
	if client == nil {
		return fmt.Errorf("stream client is nil")
	}
	heartbeatErr := make(chan error, 1)
	heartbeatCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var refreshErr chan error
	refreshCtx, cancelRefresh := context.WithCancel(ctx)
	defer cancelRefresh()

	go func() {
		ticker := time.NewTicker(s.opts.HeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-heartbeatCtx.Done():
				heartbeatErr <- heartbeatCtx.Err()
				return
			case <-ticker.C:
				pingCtx, cancelPing := context.WithTimeout(heartbeatCtx, s.opts.PingTimeout)
				err := client.conn.Ping(pingCtx)
				cancelPing()
				if err != nil {
					heartbeatErr <- err
					return
				}
			}
		}
	}()

	if s.opts.FeedProvider != nil && s.opts.RefreshInterval > 0 {
		refreshErr = make(chan error, 1)
		go func() {
			ticker := time.NewTicker(s.opts.RefreshInterval)
			defer ticker.Stop()
			for {
				select {
				case <-refreshCtx.Done():
					refreshErr <- refreshCtx.Err()
					return
				case <-ticker.C:
					ids, err := s.opts.FeedProvider(refreshCtx)
					if err != nil {
						continue
					}
					next := setFromSlice(s.capFeeds(ids))
					added, removed := diffSets(current, next)
					if len(added) > 0 {
						_ = client.Subscribe(refreshCtx, added)
					}
					if len(removed) > 0 {
						_ = client.Unsubscribe(refreshCtx, removed)
					}
					current = next
				}
			}
		}()
	}

	for {
		select {
		case err := <-heartbeatErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		case err := <-refreshErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		default:
		}
		msg, raw, err := client.Read(ctx)
		if err != nil {
			if s.opts.Logger != nil && !errors.Is(err, context.Canceled) {
				s.opts.Logger.Warn("oracle ws read failed", zap.Error(err))
			}
			return err
		}
		if s.opts.Logger != nil && !s.seenFirst {
			s.seenFirst = true
			s.opts.Logger.Info("oracle ws first message", zap.String("type", msg.Type))
		}
		if msg.Type != "price_update" {
			// Subscription acks and unknown frames are not price data.
			continue
		}
		price, err := msg.PriceFeed.normalize()
		if err != nil {
			if s.opts.Logger != nil {
				s.opts.Logger.Warn("oracle ws bad update", zap.Error(err))
			}
			continue
		}
		if onUpdate != nil {
			onUpdate(price, raw)
		}
	}
}

func (s *Stream) capFeeds(ids []string) []string {
	if s.opts.MaxFeeds > 0 && len(ids) > s.opts.MaxFeeds {
		return ids[:s.opts.MaxFeeds]
	}
	return ids
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func sleepWithJitter(ctx context.Context, base time.Duration) error {
	if base <= 0 {
		return nil
	}
	jitter := time.Duration(rand.Int63n(int64(base / 2)))
	timer := time.NewTimer(base + jitter)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func setFromSlice(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out[item] = struct{}{}
	}
	return out
}

func diffSets(current, next map[string]struct{}) ([]string, []string) {
	added := make([]string, 0)
	removed := make([]string, 0)
	for key := range next {
		if _, ok := current[key]; !ok {
			added = append(added, key)
		}
	}
	for key := range current {
		if _, ok := next[key]; !ok {
			removed = append(removed, key)
		}
	}
	return added, removed
}
