package navigator

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ksai0398/railway-navigation-app/internal/station"
)

// Event types published on the hub
const (
	EventState       = "state"
	EventInstruction = "instruction"
	EventPosition    = "position"
	EventArrived     = "arrived"
	EventMessage     = "message"
	EventSpeak       = "speak"
	EventSpeakStop   = "speak-stop"
	EventLocation    = "location"
	EventRoute       = "route"
)

// Event is one notification for subscribers such as SSE clients
type Event struct {
	Type  string      `json:"type"`
	RunID string      `json:"runId,omitempty"`
	Data  interface{} `json:"data,omitempty"`
	At    time.Time   `json:"at"`
}

const subscriberBuffer = 64

// Hub fans events out to subscribers. A subscriber that falls behind
// loses events rather than blocking the navigator.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]chan Event
	closed bool
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[string]chan Event)}
}

// Subscribe registers a subscriber. The channel is closed by cancel or
// when the hub closes.
func (h *Hub) Subscribe() (id string, events <-chan Event, cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id = uuid.New().String()
	ch := make(chan Event, subscriberBuffer)
	if h.closed {
		close(ch)
		return id, ch, func() {}
	}
	h.subs[id] = ch

	return id, ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
}

// Publish delivers e to every subscriber without blocking
func (h *Hub) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		select {
		case ch <- e:
		default:
			log.Printf("Navigator: subscriber %s is slow, dropped %s event", id, e.Type)
		}
	}
}

// Subscribers returns the number of live subscribers
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close closes every subscriber channel
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// speech is the payload of speak events
type speech struct {
	Text string       `json:"text"`
	Lang station.Lang `json:"lang"`
}

// hubAnnouncer forwards announcements to browsers, which speak them with
// their own speech synthesis
type hubAnnouncer struct {
	hub *Hub
}

func (a hubAnnouncer) Announce(text string, lang station.Lang) {
	a.hub.Publish(Event{Type: EventSpeak, Data: speech{Text: text, Lang: lang}})
}

func (a hubAnnouncer) Stop() {
	a.hub.Publish(Event{Type: EventSpeakStop})
}
