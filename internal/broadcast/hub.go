package broadcast

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub fans published events out to websocket clients grouped by topic. All
// client bookkeeping happens inside Run so no locking is needed on the maps.
type Hub struct {
	l          *zap.Logger
	Register   chan *Client
	unregister chan *Client
	publish    chan publication
	topics     map[string]map[*Client]bool
}

type publication struct {
	topic string
	data  []byte
}

// Client is one subscribed websocket connection.
type Client struct {
	Topic string
	Conn  *websocket.Conn
	Send  chan []byte
}

func NewHub(l *zap.Logger) *Hub {
	return &Hub{
		l:          l,
		Register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan publication, 256),
		topics:     make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			clients, ok := h.topics[client.Topic]
			if !ok {
				clients = make(map[*Client]bool)
				h.topics[client.Topic] = clients
			}
			clients[client] = true
			h.l.Debug("client registered",
				zap.String("topic", client.Topic),
				zap.Int("subscribers", len(clients)))
		case client := <-h.unregister:
			if clients, ok := h.topics[client.Topic]; ok && clients[client] {
				delete(clients, client)
				close(client.Send)
				if len(clients) == 0 {
					delete(h.topics, client.Topic)
				}
			}
			h.l.Debug("client unregistered", zap.String("topic", client.Topic))
		case pub := <-h.publish:
			for client := range h.topics[pub.topic] {
				select {
				case client.Send <- pub.data:
				default:
					// Slow subscriber, drop it rather than stall the fan-out.
					close(client.Send)
					delete(h.topics[pub.topic], client)
					h.l.Warn("dropped slow subscriber", zap.String("topic", pub.topic))
				}
			}
		}
	}
}

// Publish enqueues the event for fan-out. It never blocks: when the queue is
// full the event is dropped and logged.
func (h *Hub) Publish(topic string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.l.Error("failed to marshal event", zap.Error(err))
		return
	}
	select {
	case h.publish <- publication{topic: topic, data: data}:
	default:
		h.l.Warn("publish queue full, event dropped",
			zap.String("topic", topic),
			zap.String("type", string(event.Type)))
	}
}

// ReadPump discards inbound frames and unregisters the client when the
// connection goes away.
func (c *Client) ReadPump(hub *Hub) {
	defer func() {
		hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				hub.l.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

// WritePump forwards queued events to the connection until Send is closed.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for data := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}
