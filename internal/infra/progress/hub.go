// File: internal/infra/progress/hub.go
package progress

import (
	"sync"

	"research-paper-ai/internal/domain/model"
	"research-paper-ai/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// subscriberBuffer bounds how far a sink may lag before it is dropped.
const subscriberBuffer = 16

// Subscriber is one live sink for a paper's progress events.
type Subscriber struct {
	ch chan model.ProgressEvent
}

// Events yields progress events until the subscriber is dropped or
// unsubscribed, at which point the channel is closed.
func (s *Subscriber) Events() <-chan model.ProgressEvent { return s.ch }

// Hub fans progress events out to the live subscribers of each paper.
// Publish never blocks on a slow or dead sink: a subscriber whose buffer is
// full is dropped so the remaining sinks and the publishing stage are never
// held up. There is no replay; a subscriber joining mid-run only sees events
// published after it joined.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*Subscriber]struct{}
	log  *zerolog.Logger
}

func NewHub(log *zerolog.Logger) *Hub {
	return &Hub{
		subs: make(map[string]map[*Subscriber]struct{}),
		log:  log,
	}
}

// Subscribe registers a new sink for the given paper. Subscribing to a paper
// with no active run is legal and simply yields no events.
func (h *Hub) Subscribe(paperID string) *Subscriber {
	s := &Subscriber{ch: make(chan model.ProgressEvent, subscriberBuffer)}
	h.mu.Lock()
	set := h.subs[paperID]
	if set == nil {
		set = make(map[*Subscriber]struct{})
		h.subs[paperID] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()
	metrics.SetProgressSubscribers(1)
	return s
}

// Unsubscribe removes the sink and closes its event channel. Safe to call
// for a subscriber that was already dropped.
func (h *Hub) Unsubscribe(paperID string, s *Subscriber) {
	h.mu.Lock()
	removed := h.removeLocked(paperID, s)
	h.mu.Unlock()
	if removed {
		metrics.SetProgressSubscribers(-1)
	}
}

// Publish delivers the event to every live subscriber of the paper.
// Publishing with zero subscribers is a no-op.
func (h *Hub) Publish(paperID string, ev model.ProgressEvent) {
	var dropped int
	h.mu.Lock()
	for s := range h.subs[paperID] {
		select {
		case s.ch <- ev:
		default:
			// sink is not draining; drop it rather than stall the pipeline
			h.removeLocked(paperID, s)
			dropped++
		}
	}
	h.mu.Unlock()

	if dropped > 0 {
		metrics.SetProgressSubscribers(-dropped)
		for i := 0; i < dropped; i++ {
			metrics.IncProgressDropped()
		}
		h.log.Debug().Str("paper_id", paperID).Int("dropped", dropped).Msg("dropped slow progress subscribers")
	}
}

// SubscriberCount reports the live sink count for a paper.
func (h *Hub) SubscriberCount(paperID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[paperID])
}

// removeLocked deletes the subscriber and closes its channel once.
// Callers must hold h.mu.
func (h *Hub) removeLocked(paperID string, s *Subscriber) bool {
	set := h.subs[paperID]
	if set == nil {
		return false
	}
	if _, ok := set[s]; !ok {
		return false
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.subs, paperID)
	}
	close(s.ch)
	return true
}
