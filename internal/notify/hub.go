// Package notify fans match events out to connected clients. Events are
// published through Redis pub/sub so every instance behind the load
// balancer sees matches created by its peers, then delivered locally to
// websocket subscribers.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/yourorg/talentmatch/internal/domain"
	"github.com/yourorg/talentmatch/internal/infrastructure/redis"
)

const matchEventsChannel = "talentmatch:match_events"

// subscriberBuffer bounds each subscriber channel; slow clients drop
// events rather than block the hub.
const subscriberBuffer = 16

// Hub routes match events to per-user subscribers
type Hub struct {
	redis  *redis.Client
	logger *slog.Logger

	mu   sync.RWMutex
	subs map[string]map[chan domain.MatchEvent]struct{} // userID -> subscriber set
}

// NewHub creates a hub. The redis client may be nil, in which case events
// are delivered to local subscribers only.
func NewHub(redisClient *redis.Client, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		redis:  redisClient,
		logger: logger,
		subs:   make(map[string]map[chan domain.MatchEvent]struct{}),
	}
}

// Publish delivers an event to both parties of the match. Delivery is best
// effort: publishing happens after the owning transaction commits and a
// failure is logged, never propagated.
func (h *Hub) Publish(ctx context.Context, event domain.MatchEvent) {
	if h.redis != nil {
		payload, err := json.Marshal(event)
		if err == nil {
			if err := h.redis.Publish(ctx, matchEventsChannel, payload); err != nil {
				h.logger.Warn("failed to publish match event",
					slog.String("match_id", event.MatchID),
					slog.String("error", err.Error()),
				)
			}
			// Local dispatch happens when the subscription loop receives
			// the message back from Redis.
			return
		}
		h.logger.Warn("failed to encode match event", slog.String("error", err.Error()))
	}

	h.dispatch(event)
}

// Run consumes the Redis channel and dispatches events to local
// subscribers until ctx is cancelled. No-op without a Redis client.
func (h *Hub) Run(ctx context.Context) {
	if h.redis == nil {
		return
	}

	sub := h.redis.Subscribe(ctx, matchEventsChannel)
	defer sub.Close()

	h.logger.Info("match event hub started", slog.String("channel", matchEventsChannel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("match event hub stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event domain.MatchEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.logger.Warn("failed to decode match event", slog.String("error", err.Error()))
				continue
			}
			h.dispatch(event)
		}
	}
}

// Subscribe registers a listener for events involving userID. The returned
// cancel function must be called when the client disconnects.
func (h *Hub) Subscribe(userID string) (<-chan domain.MatchEvent, func()) {
	ch := make(chan domain.MatchEvent, subscriberBuffer)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan domain.MatchEvent]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[userID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, userID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *Hub) dispatch(event domain.MatchEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, userID := range []string{event.JobseekerID, event.EmployerID} {
		for ch := range h.subs[userID] {
			select {
			case ch <- event:
			default:
				// subscriber is not keeping up, drop the event
			}
		}
	}
}
