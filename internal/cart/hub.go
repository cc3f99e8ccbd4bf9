package cart

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// EventKind distinguishes the tab that wrote from the tabs that observe.
type EventKind int

const (
	// EventChanged goes to the tab that made the write.
	EventChanged EventKind = iota
	// EventStorage goes to every other tab of the same area.
	EventStorage
)

func (k EventKind) String() string {
	if k == EventStorage {
		return "storage"
	}
	return "changed"
}

// Event is delivered to subscribers when a key in their area is written.
type Event struct {
	Kind EventKind
	Key  string
}

const defaultSubscriberBuffer = 8

// Hub fans change notifications out to subscribed tabs. Delivery never blocks
// a writer: a subscriber whose buffer is full misses the event.
type Hub struct {
	logger *zap.Logger
	buffer int

	mu     sync.Mutex
	subs   map[string]map[*Subscription]struct{}
	closed bool
}

// NewHub constructs an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger: logger,
		buffer: defaultSubscriberBuffer,
		subs:   make(map[string]map[*Subscription]struct{}),
	}
}

// Subscription receives events for one tab of one area.
type Subscription struct {
	hub  *Hub
	area string
	tab  string
	ch   chan Event
	once sync.Once
}

// C returns the event channel. It is closed when the subscription ends.
func (s *Subscription) C() <-chan Event { return s.ch }

// Close ends the subscription.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Subscribe registers tab under area.
func (h *Hub) Subscribe(area, tab string) *Subscription {
	sub := &Subscription{hub: h, area: area, tab: tab, ch: make(chan Event, h.buffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		sub.once.Do(func() {})
		return sub
	}
	set, ok := h.subs[area]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[area] = set
	}
	set[sub] = struct{}{}
	return sub
}

// Publish implements Notifier. The origin tab receives EventChanged and
// every other tab of the area receives EventStorage.
func (h *Hub) Publish(_ context.Context, c Change) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[c.Area] {
		kind := EventStorage
		if c.Tab != "" && sub.tab == c.Tab {
			kind = EventChanged
		}
		select {
		case sub.ch <- Event{Kind: kind, Key: c.Key}:
		default:
			h.logger.Debug("cart event dropped", zap.String("area", c.Area), zap.String("tab", sub.tab))
		}
	}
	return nil
}

// Close ends every subscription. Later subscriptions are closed immediately.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for area, set := range h.subs {
		for sub := range set {
			sub.once.Do(func() { close(sub.ch) })
		}
		delete(h.subs, area)
	}
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[sub.area]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.area)
		}
	}
	sub.once.Do(func() { close(sub.ch) })
}
