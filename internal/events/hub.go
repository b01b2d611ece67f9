package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Event types published by the engine services.
const (
	TypeTrade      = "trade"
	TypeLiquidity  = "liquidity"
	TypeResolution = "resolution"
	TypePayout     = "payout"
)

// Event is a fact that already happened and is committed to the
// database. Subscribers must treat it as read-only.
type Event struct {
	Type     string    `json:"type"`
	MarketID string    `json:"market_id"`
	User     string    `json:"user,omitempty"`
	Side     string    `json:"side,omitempty"`
	Amount   uint64    `json:"amount,omitempty"`
	Shares   uint64    `json:"shares,omitempty"`
	Status   string    `json:"status,omitempty"`
	At       time.Time `json:"at"`
}

// Hub fans out committed engine events to in-process subscribers by type.
type Hub struct {
	mu   sync.RWMutex
	subs map[string][]chan Event

	logger *zap.Logger

	droppedFanout uint64
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   map[string][]chan Event{},
		logger: logger,
	}
}

// Subscribe returns a channel that receives events of the given type.
func (h *Hub) Subscribe(eventType string, buf int) <-chan Event {
	if buf <= 0 {
		buf = 16
	}
	ch := make(chan Event, buf)
	h.mu.Lock()
	h.subs[eventType] = append(h.subs[eventType], ch)
	h.mu.Unlock()
	return ch
}

// Publish delivers ev to every subscriber of its type without blocking.
// Slow subscribers lose events; publishing sits on the trade path and
// must never stall it.
func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[ev.Type] {
		select {
		case ch <- ev:
		default:
			atomic.AddUint64(&h.droppedFanout, 1)
		}
	}
}

// Dropped reports how many events were discarded because a subscriber
// channel was full.
func (h *Hub) Dropped() uint64 {
	if h == nil {
		return 0
	}
	return atomic.LoadUint64(&h.droppedFanout)
}

// Run logs fanout statistics until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	if h == nil {
		return nil
	}
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if h.logger != nil {
				h.logger.Info("event hub stats",
					zap.Uint64("dropped_fanout", atomic.LoadUint64(&h.droppedFanout)),
				)
			}
		}
	}
}
