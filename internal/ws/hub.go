package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"campus_essentials/models"

	"github.com/pkg/errors"
)

// ErrIdentityMismatch is returned when a channel tries to join a delivery
// group other than the one its session token names.
var ErrIdentityMismatch = errors.New("cannot join as another user")

const sendBuffer = 256

// Relay fans deliveries out to other instances.
type Relay interface {
	Publish(ctx context.Context, userID uint, frame []byte) error
}

// PresenceStore records which users hold at least one joined channel,
// across instances.
type PresenceStore interface {
	MarkOnline(ctx context.Context, userID uint) error
	MarkOffline(ctx context.Context, userID uint) error
	IsOnline(ctx context.Context, userID uint) (bool, error)
}

// Hub tracks open channels and the delivery group each one has joined.
type Hub struct {
	mu sync.RWMutex

	// held from the membership change until its presence write completes,
	// so writes reach the store in the same order as the changes
	presenceMu sync.Mutex

	// every open channel, joined or not
	clients map[*Client]struct{}

	// user id -> joined channels
	groups map[uint]map[*Client]struct{}

	relay    Relay
	presence PresenceStore
	log      *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		groups:  make(map[uint]map[*Client]struct{}),
		log:     log,
	}
}

// UseRelay makes NotifyUser also publish each frame for other instances.
func (h *Hub) UseRelay(r Relay) { h.relay = r }

// UsePresence mirrors group membership into a shared store.
func (h *Hub) UsePresence(p PresenceStore) { h.presence = p }

// Register adds an anonymous channel.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Join places the channel in the delivery group of userID. The id must match
// the identity the channel authenticated with. Joining twice is a no-op.
func (h *Hub) Join(c *Client, userID uint) error {
	if userID == 0 || userID != c.authUserID {
		return ErrIdentityMismatch
	}

	h.mu.Lock()
	if _, open := h.clients[c]; !open {
		h.mu.Unlock()
		return errors.New("channel is closed")
	}
	group, ok := h.groups[userID]
	if !ok {
		group = make(map[*Client]struct{})
		h.groups[userID] = group
	}
	if _, joined := group[c]; joined {
		h.mu.Unlock()
		return nil
	}
	group[c] = struct{}{}
	first := len(group) == 1
	c.userID = userID
	if first {
		h.presenceMu.Lock()
	}
	h.mu.Unlock()

	if first {
		h.markPresence(userID, true)
		h.presenceMu.Unlock()
	}
	h.log.Debug("channel joined", "client", c.ID, "user_id", userID)
	return nil
}

// Unregister removes the channel and closes its send queue. Safe to call
// more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	var last bool
	if c.userID != 0 {
		if group, ok := h.groups[c.userID]; ok {
			delete(group, c)
			if len(group) == 0 {
				delete(h.groups, c.userID)
				last = true
			}
		}
	}
	close(c.send)
	if last {
		h.presenceMu.Lock()
	}
	h.mu.Unlock()

	if last {
		h.markPresence(c.userID, false)
		h.presenceMu.Unlock()
	}
}

// NotifyUser delivers an event to every local channel of userID and, with a
// relay configured, to other instances. It returns the number of local
// channels that accepted the frame.
func (h *Hub) NotifyUser(userID uint, event string, payload any) int {
	frame, err := json.Marshal(models.Event{Event: event, Data: payload})
	if err != nil {
		h.log.Error("encode event", "event", event, "error", err)
		return 0
	}

	n := h.Deliver(userID, frame)

	if h.relay != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := h.relay.Publish(ctx, userID, frame); err != nil {
				h.log.Warn("relay publish failed", "user_id", userID, "error", err)
			}
		}()
	}
	return n
}

// Deliver queues an encoded frame on each local channel of userID. A channel
// whose queue is full misses the frame.
func (h *Hub) Deliver(userID uint, frame []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for c := range h.groups[userID] {
		select {
		case c.send <- frame:
			n++
		default:
			h.log.Warn("send queue full, dropping frame", "client", c.ID, "user_id", userID)
		}
	}
	return n
}

// IsUserOnline reports whether the user has a joined channel here or, when
// a presence store is configured, on any instance.
func (h *Hub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	_, local := h.groups[userID]
	h.mu.RUnlock()
	if local || h.presence == nil {
		return local
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	online, err := h.presence.IsOnline(ctx, userID)
	if err != nil {
		h.log.Warn("presence lookup failed", "user_id", userID, "error", err)
		return false
	}
	return online
}

// Connections returns the number of open channels.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// send queues a frame for a single channel, used for replies to that channel.
func (h *Hub) send(c *Client, event string, payload any) {
	frame, err := json.Marshal(models.Event{Event: event, Data: payload})
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, open := h.clients[c]; !open {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

func (h *Hub) markPresence(userID uint, online bool) {
	if h.presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var err error
	if online {
		err = h.presence.MarkOnline(ctx, userID)
	} else {
		err = h.presence.MarkOffline(ctx, userID)
	}
	if err != nil {
		h.log.Warn("presence update failed", "user_id", userID, "online", online, "error", err)
	}
}
