package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/AnshRaj112/nits-community-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	feedChannel       = "feed:posts"
	feedSubscriberBuf = 16
)

// FeedPublisher receives post lifecycle events.
type FeedPublisher interface {
	Publish(ctx context.Context, event models.FeedEvent)
}

// FeedHub fans events out to local subscribers. A subscriber that is not
// keeping up misses events; publishers never block on it.
type FeedHub struct {
	mu   sync.RWMutex
	subs map[chan models.FeedEvent]struct{}
}

func NewFeedHub() *FeedHub {
	return &FeedHub{subs: make(map[chan models.FeedEvent]struct{})}
}

// Subscribe returns an event channel and a func that releases it.
func (h *FeedHub) Subscribe() (<-chan models.FeedEvent, func()) {
	ch := make(chan models.FeedEvent, feedSubscriberBuf)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *FeedHub) Publish(ctx context.Context, event models.FeedEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
			slog.Debug("feed subscriber lagging, dropping event", "type", event.Type, "post_id", event.PostID)
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (h *FeedHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// RedisFeedRelay publishes events through Redis so every instance's hub
// sees them, including the publishing one.
type RedisFeedRelay struct {
	client  *redis.Client
	hub     *FeedHub
	started sync.Once
}

func NewRedisFeedRelay(client *redis.Client, hub *FeedHub) *RedisFeedRelay {
	return &RedisFeedRelay{client: client, hub: hub}
}

func (r *RedisFeedRelay) Publish(ctx context.Context, event models.FeedEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to encode feed event", "error", err)
		return
	}
	if err := r.client.Publish(ctx, feedChannel, data).Err(); err != nil {
		// Redis is down: still serve local subscribers.
		slog.Warn("feed relay publish failed, delivering locally", "error", err)
		r.hub.Publish(ctx, event)
	}
}

// Start runs the shared subscriber until ctx is done. Safe to call twice.
func (r *RedisFeedRelay) Start(ctx context.Context) {
	r.started.Do(func() {
		go r.run(ctx)
	})
}

func (r *RedisFeedRelay) run(ctx context.Context) {
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := r.client.Subscribe(ctx, feedChannel)
			defer pubsub.Close()

			slog.Info("feed relay subscribed", "channel", feedChannel)

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					slog.Warn("feed relay receive failed", "error", err, "retry_in", backoff)
					select {
					case <-ctx.Done():
						return
					case <-time.After(backoff):
					}
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}
				backoff = time.Second

				var event models.FeedEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					slog.Warn("dropping malformed feed event", "error", err)
					continue
				}
				r.hub.Publish(ctx, event)
			}
		}()
	}
}
