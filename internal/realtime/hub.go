// Package realtime delivers task lifecycle events to clients subscribed to a
// project channel. Delivery is at-most-once with no replay.
package realtime

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/yukikurage/collab-api/internal/constants"
)

// Event is the frame written to subscribers.
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data"`
}

// Subscriber is a connection handle held by the hub. Send must not block.
type Subscriber interface {
	ID() string
	Send(evt Event) bool
}

// Publisher delivers an event to every subscriber of a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, evt Event) error
}

// ProjectChannel returns the channel key for a project.
func ProjectChannel(projectID string) string {
	return constants.ProjectChannelPrefix + projectID
}

// Hub owns the mapping from channel key to currently subscribed connections.
type Hub struct {
	mu          sync.RWMutex
	channels    map[string]map[string]Subscriber
	memberships map[string]map[string]struct{}
	log         *zap.SugaredLogger
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		channels:    make(map[string]map[string]Subscriber),
		memberships: make(map[string]map[string]struct{}),
		log:         log,
	}
}

func (h *Hub) Subscribe(channel string, s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.channels[channel] == nil {
		h.channels[channel] = make(map[string]Subscriber)
	}
	h.channels[channel][s.ID()] = s

	if h.memberships[s.ID()] == nil {
		h.memberships[s.ID()] = make(map[string]struct{})
	}
	h.memberships[s.ID()][channel] = struct{}{}
}

func (h *Hub) Unsubscribe(channel string, s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(channel, s.ID())
}

// UnsubscribeAll drops every membership of s. Called on disconnect.
func (h *Hub) UnsubscribeAll(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for channel := range h.memberships[s.ID()] {
		h.removeLocked(channel, s.ID())
	}
	delete(h.memberships, s.ID())
}

func (h *Hub) removeLocked(channel, id string) {
	if subs, ok := h.channels[channel]; ok {
		delete(subs, id)
		if len(subs) == 0 {
			delete(h.channels, channel)
		}
	}
	if chans, ok := h.memberships[id]; ok {
		delete(chans, channel)
		if len(chans) == 0 {
			delete(h.memberships, id)
		}
	}
}

// Publish hands evt to every current subscriber of channel. The lock is not
// held while sending.
func (h *Hub) Publish(_ context.Context, channel string, evt Event) error {
	h.mu.RLock()
	subs := make([]Subscriber, 0, len(h.channels[channel]))
	for _, s := range h.channels[channel] {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		if !s.Send(evt) {
			h.log.Warnw("dropped realtime event for slow subscriber",
				"channel", channel,
				"event", evt.Name,
				"subscriber", s.ID(),
			)
		}
	}
	return nil
}

// Subscribers returns the number of connections subscribed to channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}
