package events

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ericogr/arena-engine/internal/game"
	"github.com/ericogr/arena-engine/internal/logging"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The engine sits behind the host's gateway; origin policy is the
	// gateway's concern.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Hub broadcasts settled round results to connected presentation-layer
// clients. Slow or broken clients are dropped rather than blocking the
// settlement path.
type Hub struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// Serve upgrades the request to a websocket and keeps the connection
// registered until the client goes away. The feed is write-only; inbound
// messages are drained and discarded.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("websocket upgrade failed", err, nil)
		return
	}
	sub := &subscriber{conn: conn}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		defer h.drop(sub)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) drop(sub *subscriber) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
	sub.conn.Close()
}

// BroadcastResult pushes a settled round result to every subscriber.
func (h *Hub) BroadcastResult(result *game.RoundResult) {
	data, err := json.Marshal(result)
	if err != nil {
		logging.Error("failed to encode round result", err, nil)
		return
	}

	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := sub.conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			h.drop(sub)
		}
	}
}
