// File: internal/infra/progress/hub_test.go
package progress

import (
	"fmt"
	"sync"
	"testing"

	"research-paper-ai/internal/domain/model"

	"github.com/rs/zerolog"
)

func newTestHub() *Hub {
	log := zerolog.Nop()
	return NewHub(&log)
}

func TestHubPublishFanOut(t *testing.T) {
	h := newTestHub()
	a := h.Subscribe("p1")
	b := h.Subscribe("p1")
	other := h.Subscribe("p2")

	h.Publish("p1", model.ProgressEvent{PaperID: "p1", Progress: 10})

	for _, sub := range []*Subscriber{a, b} {
		select {
		case ev := <-sub.Events():
			if ev.Progress != 10 {
				t.Errorf("progress = %v", ev.Progress)
			}
		default:
			t.Error("subscriber missed event")
		}
	}
	select {
	case <-other.Events():
		t.Error("event leaked across papers")
	default:
	}
}

func TestHubPublishNoSubscribers(t *testing.T) {
	h := newTestHub()
	// must not panic or block
	h.Publish("nobody", model.ProgressEvent{PaperID: "nobody"})
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := newTestHub()
	s := h.Subscribe("p1")
	h.Unsubscribe("p1", s)

	if _, ok := <-s.Events(); ok {
		t.Error("channel should be closed")
	}
	if n := h.SubscriberCount("p1"); n != 0 {
		t.Errorf("subscribers = %d", n)
	}
	// double unsubscribe is safe
	h.Unsubscribe("p1", s)
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	h := newTestHub()
	slow := h.Subscribe("p1")
	fast := h.Subscribe("p1")

	// overflow the slow sink's buffer without draining it
	for i := 0; i < subscriberBuffer+1; i++ {
		h.Publish("p1", model.ProgressEvent{PaperID: "p1", Progress: float64(i)})
		// keep the fast sink drained so it survives
		<-fast.Events()
	}

	if n := h.SubscriberCount("p1"); n != 1 {
		t.Fatalf("subscribers = %d, want only the draining one", n)
	}

	// the dropped sink's channel ends after its buffered backlog
	count := 0
	for range slow.Events() {
		count++
	}
	if count != subscriberBuffer {
		t.Errorf("buffered events = %d, want %d", count, subscriberBuffer)
	}

	// the survivor still receives
	h.Publish("p1", model.ProgressEvent{PaperID: "p1", Progress: 99})
	select {
	case ev := <-fast.Events():
		if ev.Progress != 99 {
			t.Errorf("progress = %v", ev.Progress)
		}
	default:
		t.Error("surviving subscriber missed event")
	}
}

func TestHubConcurrentPublishSubscribe(t *testing.T) {
	h := newTestHub()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("p%d", n%2)
			s := h.Subscribe(id)
			for j := 0; j < 50; j++ {
				h.Publish(id, model.ProgressEvent{PaperID: id, Progress: float64(j)})
			}
			h.Unsubscribe(id, s)
		}(i)
	}
	wg.Wait()
}
