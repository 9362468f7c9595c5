package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	svcErr "github.com/oduya/pendo/internal/errors"
	"github.com/oduya/pendo/internal/realtime"
	"github.com/oduya/pendo/internal/server"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Identity comes from the X-User-ID header, not cookies, so
	// cross-origin upgrades carry no ambient authority.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleSubscribe upgrades the connection and streams every message
// inserted into the match scope, in insertion order, until the viewer
// disconnects. There is no automatic resubscription: a dropped
// connection must be re-established by the client.
func (s *Service) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	userID := server.UserID(r.Context())
	matchID := chi.URLParam(r, "matchID")

	if _, _, err := s.resolveMatch(r.Context(), userID, matchID); err != nil {
		svcErr.WriteError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		s.appCtx.Logger.Error("websocket upgrade failed", "match_id", matchID, "err", err)
		return
	}
	defer conn.Close()

	sub := s.appCtx.Hub.Subscribe(matchID, realtime.DefaultBuffer)
	defer sub.Cancel()

	s.appCtx.Logger.Debug("subscriber attached", "match_id", matchID, "user_id", userID)

	// Reader goroutine: the client never sends application data, but
	// reading is what surfaces the close frame.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-sub.C():
			if !ok {
				// Dropped for falling behind.
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
