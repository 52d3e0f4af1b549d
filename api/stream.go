package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 10 * time.Second,
	// The JSON API is already open cross-origin; the stream matches it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type streamFrame struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Spreads   interface{} `json:"spreads"`
}

// handleStream upgrades to a websocket and pushes the snapshot table on an
// interval until the client goes away or the server shuts down.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	s.logger.WithField("remote", r.RemoteAddr).Debug("Spread stream connected")

	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	// Drain client frames so pings and close messages are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	keepAlive := time.NewTicker(30 * time.Second)
	defer keepAlive.Stop()

	if err := s.writeFrame(conn); err != nil {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case <-done:
			s.logger.WithField("remote", r.RemoteAddr).Debug("Spread stream disconnected")
			return
		case <-keepAlive.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-ticker.C:
			if err := s.writeFrame(conn); err != nil {
				s.logger.WithError(err).Debug("Spread stream write failed")
				return
			}
		}
	}
}

func (s *Server) writeFrame(conn *websocket.Conn) error {
	frame := streamFrame{
		Type:      "spreads",
		Timestamp: time.Now().UTC(),
		Spreads:   s.monitor.Store().Snapshot(),
	}
	return conn.WriteJSON(frame)
}
