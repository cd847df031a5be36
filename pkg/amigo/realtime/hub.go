package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/websocket"
)

// frame is what a websocket client sends to manage its subscriptions.
type frame struct {
	Action string `json:"action"`
	Code   string `json:"code"`
}

// peer wraps one websocket connection. The write mutex keeps concurrent
// broadcasts from interleaving frames on the wire.
type peer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func newPeer(encoder *json.Encoder) *peer {
	return &peer{encoder: encoder}
}

func (p *peer) send(ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(ev)
}

// Hub tracks which peers subscribed to which join codes and broadcasts
// events to them. It satisfies Publisher.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*peer]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*peer]struct{})}
}

var _ Publisher = (*Hub)(nil)

func (h *Hub) join(code string, p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[code]
	if !ok {
		room = make(map[*peer]struct{})
		h.rooms[code] = room
	}
	room[p] = struct{}{}
}

func (h *Hub) leave(code string, p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[code]; ok {
		delete(room, p)
		if len(room) == 0 {
			delete(h.rooms, code)
		}
	}
}

// drop removes a peer from every room, used when its connection dies.
func (h *Hub) drop(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for code, room := range h.rooms {
		delete(room, p)
		if len(room) == 0 {
			delete(h.rooms, code)
		}
	}
}

// Publish sends the event to every current subscriber of the join code.
// Write failures drop the subscriber, nothing more; a broadcast never
// reports an error back to the state change that caused it.
func (h *Hub) Publish(joinCode, event string, payload any) {
	ev := Event{Event: event, Payload: payload, EmittedAt: time.Now().UTC()}

	h.mu.Lock()
	subscribers := make([]*peer, 0, len(h.rooms[joinCode]))
	for p := range h.rooms[joinCode] {
		subscribers = append(subscribers, p)
	}
	h.mu.Unlock()

	for _, p := range subscribers {
		if err := p.send(ev); err != nil {
			slog.Debug("realtime: dropping subscriber", "join_code", joinCode, "error", err)
			h.drop(p)
		}
	}
}

// Handler returns the websocket endpoint clients connect to. A client
// manages its subscriptions by sending {"action":"join"|"leave","code":...}
// frames and receives Event frames until it disconnects.
func (h *Hub) Handler() http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		h.serve(conn)
	})
}

func (h *Hub) serve(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	p := newPeer(json.NewEncoder(conn))
	defer h.drop(p)

	decoder := json.NewDecoder(conn)
	for {
		var f frame
		if err := decoder.Decode(&f); err != nil {
			return
		}

		code := strings.ToUpper(strings.TrimSpace(f.Code))
		if code == "" {
			continue
		}

		switch f.Action {
		case "join":
			h.join(code, p)
		case "leave":
			h.leave(code, p)
		}
	}
}
