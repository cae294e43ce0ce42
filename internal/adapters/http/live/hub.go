// Package live pushes committed ranking updates to websocket subscribers so
// leaderboard views refresh without polling.
package live

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/podiumd/podium/internal/domain/model"
	"github.com/podiumd/podium/pkg/logger"
	"github.com/podiumd/podium/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 64
)

// rankingUpdate is the wire shape of one broadcast.
type rankingUpdate struct {
	Type          string              `json:"type"`
	CompetitionID string              `json:"competition_id"`
	Entries       []model.RankedEntry `json:"entries"`
	CommittedAt   time.Time           `json:"committed_at"`
}

// Hub fans committed rankings out to connected clients.
type Hub struct {
	clients    map[*client]struct{}
	broadcast  chan []byte
	register   chan *client
	unregister chan *client

	upgrader websocket.Upgrader
	log      logger.Logger
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub; call Run before serving connections.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan []byte, sendBufferSize),
		register:   make(chan *client),
		unregister: make(chan *client),
		upgrader: websocket.Upgrader{
			// The engine trusts its fronting proxy for origin policy.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: logger.Named("live"),
	}
}

// Run owns the client set. Exits when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			metrics.UpdateLiveClients(0)
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			metrics.UpdateLiveClients(len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			metrics.UpdateLiveClients(len(h.clients))

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer; drop it rather than stall the board.
					close(c.send)
					delete(h.clients, c)
				}
			}
			metrics.UpdateLiveClients(len(h.clients))
		}
	}
}

// PublishRanking implements the coordinator's Publisher contract.
func (h *Hub) PublishRanking(ctx context.Context, competitionID string, entries []model.RankedEntry) {
	payload, err := json.Marshal(rankingUpdate{
		Type:          "ranking",
		CompetitionID: competitionID,
		Entries:       entries,
		CommittedAt:   time.Now().UTC(),
	})
	if err != nil {
		h.log.Error(ctx, "marshal ranking update", logger.Error(err))
		return
	}
	select {
	case h.broadcast <- payload:
		metrics.RecordLiveBroadcast()
	default:
		h.log.Warn(ctx, "live broadcast dropped, channel full",
			logger.String("competition", competitionID))
	}
}

// HandleWS upgrades GET /live requests.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBufferSize)}
	h.register <- c

	go c.writePump()
	go c.readPump()
}

// readPump discards inbound frames; the feed is one-way. It exists to run
// the pong handler and notice closed connections.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
