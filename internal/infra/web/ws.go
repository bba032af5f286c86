package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// the API is same-origin agnostic; auth for the feed is out of scope
	CheckOrigin: func(r *http.Request) bool { return true },
}

// progressWSHandler bridges one websocket client onto the progress hub.
// The subscription lives exactly as long as the connection: a write failure
// or client close unsubscribes, and a hub-side drop (slow reader) closes the
// socket. There is no replay for late joiners.
func (s *Server) progressWSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		paperID := chi.URLParam(r, "id")
		if paperID == "" {
			http.Error(w, "Paper ID is required", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Debug().Err(err).Msg("websocket upgrade failed")
			return
		}

		sub := s.hub.Subscribe(paperID)
		defer func() {
			s.hub.Unsubscribe(paperID, sub)
			_ = conn.Close()
		}()

		// Reader goroutine: we never expect client frames, but reading is how
		// close frames and pongs get processed.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()

		for {
			select {
			case ev, ok := <-sub.Events():
				if !ok {
					// dropped by the hub as a slow reader
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "subscriber dropped"),
						time.Now().Add(wsWriteWait))
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteJSON(ev); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
					return
				}
			case <-done:
				return
			case <-r.Context().Done():
				return
			}
		}
	}
}
