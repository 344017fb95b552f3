// AngelaMos | 2026
// hub.go

package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/metrics"
)

const (
	EventNewOrder       = "new_order"
	EventOrderRead      = "order_read"
	EventOrderCompleted = "order_completed"
	EventOrderUpdated   = "order_updated"

	EventJoinOrder  = "join_order"
	EventLeaveOrder = "leave_order"
)

// OrderGroup is the group key subscribers join to follow one order.
func OrderGroup(orderID int64) string {
	return "order:" + strconv.FormatInt(orderID, 10)
}

// Frame is the wire shape of every message in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Subscriber is one live connection. Deliver must not block; it reports
// false when the frame could not be queued.
type Subscriber interface {
	ID() string
	Deliver(frame []byte) bool
	Close()
}

type Stats struct {
	Connections int `json:"connections"`
	Groups      int `json:"groups"`
	Memberships int `json:"memberships"`
}

// Hub is the process-wide subscriber registry. Delivery is best effort and
// nothing is retained for subscribers that connect later.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]Subscriber
	groups      map[string]map[string]struct{}
	memberships map[string]map[string]struct{}

	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewHub(logger *slog.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		subscribers: make(map[string]Subscriber),
		groups:      make(map[string]map[string]struct{}),
		memberships: make(map[string]map[string]struct{}),
		logger:      logger,
		metrics:     m,
	}
}

func (h *Hub) Connect(s Subscriber) {
	h.mu.Lock()
	_, exists := h.subscribers[s.ID()]
	h.subscribers[s.ID()] = s
	total := len(h.subscribers)
	h.mu.Unlock()

	if !exists {
		h.metrics.ConnectionOpened()
	}
	h.logger.Debug("realtime subscriber connected", "subscriber_id", s.ID(), "total", total)
}

// Disconnect removes the subscriber and all its group memberships. It is a
// no-op for unknown ids.
func (h *Hub) Disconnect(id string) {
	h.mu.Lock()
	s, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
		for group := range h.memberships[id] {
			h.removeMember(group, id)
		}
		delete(h.memberships, id)
	}
	total := len(h.subscribers)
	h.mu.Unlock()

	if !ok {
		return
	}

	s.Close()
	h.metrics.ConnectionClosed()
	h.logger.Debug("realtime subscriber disconnected", "subscriber_id", id, "total", total)
}

// Join adds a connected subscriber to group. Repeated joins are harmless.
func (h *Hub) Join(id, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[id]; !ok {
		return
	}

	if h.groups[group] == nil {
		h.groups[group] = make(map[string]struct{})
	}
	h.groups[group][id] = struct{}{}

	if h.memberships[id] == nil {
		h.memberships[id] = make(map[string]struct{})
	}
	h.memberships[id][group] = struct{}{}
}

func (h *Hub) Leave(id, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeMember(group, id)
	if groups := h.memberships[id]; groups != nil {
		delete(groups, group)
		if len(groups) == 0 {
			delete(h.memberships, id)
		}
	}
}

func (h *Hub) removeMember(group, id string) {
	members := h.groups[group]
	if members == nil {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

// Broadcast delivers to every connected subscriber regardless of groups.
func (h *Hub) Broadcast(_ context.Context, event string, payload any) error {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	targets := make([]Subscriber, 0, len(h.subscribers))
	for _, s := range h.subscribers {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	h.deliver(targets, frame)
	h.metrics.EventPublished(event, "broadcast")
	return nil
}

// SendToGroup delivers only to subscribers that joined group.
func (h *Hub) SendToGroup(_ context.Context, group, event string, payload any) error {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	members := h.groups[group]
	targets := make([]Subscriber, 0, len(members))
	for id := range members {
		if s, ok := h.subscribers[id]; ok {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()

	h.deliver(targets, frame)
	h.metrics.EventPublished(event, "group")
	return nil
}

// deliver drops subscribers whose send buffer is full.
func (h *Hub) deliver(targets []Subscriber, frame []byte) {
	for _, s := range targets {
		if !s.Deliver(frame) {
			h.logger.Warn("realtime subscriber too slow, dropping", "subscriber_id", s.ID())
			h.Disconnect(s.ID())
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	memberships := 0
	for _, groups := range h.memberships {
		memberships += len(groups)
	}

	return Stats{
		Connections: len(h.subscribers),
		Groups:      len(h.groups),
		Memberships: memberships,
	}
}

// CloseAll disconnects every subscriber. Used at shutdown.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	ids := make([]string, 0, len(h.subscribers))
	for id := range h.subscribers {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	for _, id := range ids {
		h.Disconnect(id)
	}
}

func encodeFrame(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return json.Marshal(Frame{Event: event, Data: data})
}
