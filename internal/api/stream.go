package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Netflux/Villa/internal/engine"
)

const (
	heartbeatInterval = 15 * time.Second
	writeWait         = 5 * time.Second
	pongWait          = 60 * time.Second
)

// connCounter caps concurrent stream connections across SSE and websocket.
type connCounter struct {
	n atomic.Int32
}

func (c *connCounter) acquire(limit int32) bool {
	if c.n.Add(1) > limit {
		c.n.Add(-1)
		return false
	}
	return true
}

func (c *connCounter) release() {
	c.n.Add(-1)
}

func (s *Server) streamAuthorized(w http.ResponseWriter, r *http.Request) bool {
	if s.RelayKey != "" && !bearer(r, s.RelayKey) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	if !s.streams.acquire(maxStreamConns) {
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// handleSSE streams events as server-sent events after replaying recent ones.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if !s.streamAuthorized(w, r) {
		return
	}
	defer s.streams.release()

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	subID, ch := s.Sim.Subscribe()
	defer s.Sim.Unsubscribe(subID)

	for _, e := range s.Sim.RecentEvents(catchUpEvents) {
		writeSSEEvent(w, e)
	}
	flusher.Flush()

	slog.Info("SSE client connected", "sub_id", subID)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			writeSSEEvent(w, e)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			slog.Info("SSE client disconnected", "sub_id", subID)
			return
		}
	}
}

// writeSSEEvent writes a single event in SSE format.
func writeSSEEvent(w http.ResponseWriter, e engine.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Category, data)
}

// streamMessage is the websocket frame: either an event or a stats tick.
type streamMessage struct {
	Type  string           `json:"type"` // "event" or "stats"
	Event *engine.Event    `json:"event,omitempty"`
	Stats *engine.SimStats `json:"stats,omitempty"`
	Tick  uint64           `json:"tick"`
}

// handleWS upgrades to a websocket and pushes events plus a stats frame on
// every heartbeat. A writer goroutine owns all writes; the handler reads
// only to notice the client going away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.streamAuthorized(w, r) {
		return
	}
	defer s.streams.release()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	subID, ch := s.Sim.Subscribe()
	defer s.Sim.Unsubscribe(subID)
	slog.Info("websocket client connected", "sub_id", subID, "remote", r.RemoteAddr)

	done := make(chan struct{})
	writeErr := make(chan error, 1)
	go func() {
		writeErr <- s.wsWriter(conn, ch, done)
	}()

	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(done)
	select {
	case err := <-writeErr:
		if err != nil {
			slog.Debug("websocket writer stopped", "sub_id", subID, "error", err)
		}
	case <-time.After(500 * time.Millisecond):
	}
	slog.Info("websocket client disconnected", "sub_id", subID)
}

func (s *Server) wsWriter(conn *websocket.Conn, ch <-chan engine.Event, done <-chan struct{}) error {
	send := func(m streamMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(m)
	}

	for _, e := range s.Sim.RecentEvents(catchUpEvents) {
		if err := send(streamMessage{Type: "event", Event: &e, Tick: e.Tick}); err != nil {
			return err
		}
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
			return nil
		case e, ok := <-ch:
			if !ok {
				return nil
			}
			if err := send(streamMessage{Type: "event", Event: &e, Tick: e.Tick}); err != nil {
				return err
			}
		case <-heartbeat.C:
			st := s.Sim.Snapshot()
			if err := send(streamMessage{Type: "stats", Stats: &st, Tick: s.Eng.Tick()}); err != nil {
				return err
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}
