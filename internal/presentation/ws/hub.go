package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

// clientMessage is what a websocket client may send: join or leave a channel
type clientMessage struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
}

// Hub upgrades HTTP connections to websockets and bridges them to the
// broker. Each connection gets its own subscription and writer goroutine;
// a failed write or read tears the connection down silently.
type Hub struct {
	broker   *Broker
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHub creates a websocket hub over the given broker
func NewHub(broker *Broker, logger *zap.Logger) *Hub {
	return &Hub{
		broker: broker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Frontends are served from other origins.
				return true
			},
		},
		logger: logger,
	}
}

// Handle handles GET /ws
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("Websocket upgrade failed", zap.Error(err))
		return
	}

	sub := h.broker.NewSubscription()

	go h.writeLoop(conn, sub)
	go h.readLoop(conn, sub)
}

// writeLoop pushes broker events and periodic pings to the connection
func (h *Hub) writeLoop(conn *websocket.Conn, sub *Subscription) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer conn.Close()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug("Websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop processes subscribe/unsubscribe messages until the connection
// drops, then detaches the subscription.
func (h *Hub) readLoop(conn *websocket.Conn, sub *Subscription) {
	defer func() {
		h.broker.Close(sub)
		conn.Close()
	}()

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		if msg.Channel == "" {
			continue
		}

		switch msg.Type {
		case "subscribe":
			h.broker.Join(sub, msg.Channel)
			h.logger.Debug("Client subscribed", zap.String("channel", msg.Channel))
		case "unsubscribe":
			h.broker.Leave(sub, msg.Channel)
		}
	}
}
