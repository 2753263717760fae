package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"signage_server/internal/apperr"
	"signage_server/internal/events"
	"signage_server/internal/http/controllers"
	"signage_server/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendSize = 64
	broadcastSize  = 256
)

// ErrHubBusy is returned by Publish when the broadcast queue is full
var ErrHubBusy = errors.New("websocket hub broadcast queue is full")

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketMessage represents a message sent through WebSocket
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data"`
}

type ownerMessage struct {
	ownerID uint
	payload []byte
}

// wsClient is one operator dashboard connection
type wsClient struct {
	conn    *websocket.Conn
	ownerID uint
	send    chan []byte
}

// Hub fans device events out to the websocket connections of the owning operator.
// It implements events.Publisher.
type Hub struct {
	clients    map[*wsClient]bool
	broadcast  chan ownerMessage
	register   chan *wsClient
	unregister chan *wsClient
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *zap.Logger
}

// NewHub creates a hub; Run must be started before clients connect
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*wsClient]bool),
		broadcast:  make(chan ownerMessage, broadcastSize),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves register, unregister and broadcast until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Debug("websocket client connected", zap.Uint("owner", client.ownerID), zap.Int("clients", total))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Debug("websocket client disconnected", zap.Uint("owner", client.ownerID), zap.Int("clients", total))

		case msg := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				if client.ownerID != msg.ownerID {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					// slow reader
					delete(h.clients, client)
					close(client.send)
					h.logger.Warn("dropping slow websocket client", zap.Uint("owner", client.ownerID))
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Clients returns the number of connections held for ownerID
func (h *Hub) Clients(ownerID uint) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	n := 0
	for client := range h.clients {
		if client.ownerID == ownerID {
			n++
		}
	}
	return n
}

// Publish queues ev for the connections of ev.OwnerID
func (h *Hub) Publish(ctx context.Context, ev events.Event) error {
	payload, err := json.Marshal(WebSocketMessage{
		Type:      ev.Type,
		Timestamp: ev.Timestamp.UTC().Format(time.RFC3339Nano),
		Data:      ev,
	})
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- ownerMessage{ownerID: ev.OwnerID, payload: payload}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrHubBusy
	}
}

// Handler upgrades authenticated operators to a live feed of their devices' events.
// The operator token is passed as ?token= since browsers cannot set headers on upgrade.
func (h *Hub) Handler(identity *services.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := identity.Authenticate(c.Request.Context(), c.Query("token"))
		if err != nil {
			if apperr.KindOf(err) == apperr.KindInternal {
				h.logger.Error("websocket authentication failed", zap.Error(err))
			}
			controllers.RespondError(c, err)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.logger.Warn("failed to upgrade to websocket", zap.String("ip", c.ClientIP()), zap.Error(err))
			return
		}

		client := &wsClient{conn: conn, ownerID: user.ID, send: make(chan []byte, clientSendSize)}
		select {
		case h.register <- client:
		case <-h.done:
			conn.Close()
			return
		}

		go h.writePump(client)
		go h.readPump(client)
	}
}

// readPump drains client frames so pongs and close frames are processed
func (h *Hub) readPump(client *wsClient) {
	defer func() {
		select {
		case h.unregister <- client:
		case <-h.done:
		}
		client.conn.Close()
	}()

	client.conn.SetReadLimit(512)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(client *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				h.logger.Debug("websocket write error", zap.Error(err))
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
