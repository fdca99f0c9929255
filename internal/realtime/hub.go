package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Heartbeat intervals in seconds.
const (
	PingInterval = 30
	PongWait     = 60
)

// SubmissionEvent is broadcast to admin dashboards whenever a prelims
// attempt is scored.
type SubmissionEvent struct {
	QuizSlug    string    `json:"quiz_slug"`
	UserID      uuid.UUID `json:"user_id"`
	Score       int       `json:"score"`
	TabSwitches int       `json:"tab_switches"`
	IsFlagged   bool      `json:"is_flagged"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Publisher publishes feed payloads to Redis for cross-instance broadcast.
type Publisher interface {
	PublishFeed(payload []byte) error
}

// Subscriber subscribes to the feed channel and invokes handler per message.
type Subscriber interface {
	SubscribeFeed(handler func(payload []byte)) (cancel func(), err error)
}

// Hub maintains the set of connected admin dashboards and broadcasts
// submission events to them. Events are also published through Redis so
// every server instance sees every submission.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex
	cancel  func() // Redis subscription, held while any client is connected
	logger  *zap.Logger
	pub     Publisher
	sub     Subscriber
}

// NewHub creates the admin feed hub.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
		pub:     pub,
		sub:     sub,
	}
}

// PublishSubmission publishes a scored submission to Redis only; the
// subscriber callback performs the broadcast once for all instances, this one
// included, so local clients never see the event twice. Local broadcast is
// the fallback when no feed bridge or subscription is active.
func (h *Hub) PublishSubmission(ev SubmissionEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if h.pub != nil {
		if err := h.pub.PublishFeed(data); err != nil {
			h.logger.Warn("feed publish failed, broadcasting locally", zap.Error(err))
			h.broadcast(data)
			return
		}
		if !h.subscribed() {
			h.broadcast(data)
		}
		return
	}
	h.broadcast(data)
}

// subscribed reports whether the Redis feed subscription is active.
func (h *Hub) subscribed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cancel != nil
}

func (h *Hub) broadcast(payload []byte) {
	msg := WSMessage{Event: "submission_scored", Data: payload}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// register adds a client; the Redis subscription starts with the first one.
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 && h.sub != nil {
		cancel, err := h.sub.SubscribeFeed(func(payload []byte) {
			h.broadcast(payload)
		})
		if err != nil {
			h.logger.Warn("feed subscribe failed", zap.Error(err))
		} else {
			h.cancel = cancel
		}
	}
	h.clients[c.ID] = c
	h.logger.Debug("admin feed client joined", zap.String("client_id", c.ID))
}

// unregister removes a client; the Redis subscription stops with the last one.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c.ID)
	if len(h.clients) == 0 && h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.logger.Debug("admin feed client left", zap.String("client_id", c.ID))
}

// ClientCount returns the number of connected dashboards.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
