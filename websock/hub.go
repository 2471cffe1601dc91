package websock

import (
	"sync"

	"github.com/gorilla/websocket"
)

// ChangesTopic is the shared topic every connection subscribes to; it carries
// global entity-change events for list invalidation.
const ChangesTopic = "changes"

// TopicForAuthor names the private per-recipient notification topic.
func TopicForAuthor(authorID string) string {
	return "notifications/" + authorID
}

type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	Topics []string
	UserID string // empty when the handshake carried no valid token
	ConnID string
}

type broadcastMsg struct {
	Topic string
	Data  []byte
}

type Hub struct {
	topics     map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		topics:     make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			for _, topic := range c.Topics {
				if h.topics[topic] == nil {
					h.topics[topic] = make(map[*Client]bool)
				}
				h.topics[topic][c] = true
			}
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			h.removeClient(c)
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.topics[m.Topic] {
				select {
				case c.Send <- m.Data:
				default:
					// slow consumer: drop the client rather than block the hub
					h.removeClient(c)
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for topic, clients := range h.topics {
				for c := range clients {
					h.removeClient(c)
				}
				delete(h.topics, topic)
			}
			h.mu.Unlock()
			return
		}
	}
}

// removeClient detaches c from every topic and closes its send channel once.
// Callers must hold h.mu.
func (h *Hub) removeClient(c *Client) {
	found := false
	for _, topic := range c.Topics {
		if clients := h.topics[topic]; clients != nil && clients[c] {
			delete(clients, c)
			found = true
			if len(clients) == 0 {
				delete(h.topics, topic)
			}
		}
	}
	if found {
		close(c.Send)
	}
}

// Register attaches a client to its topics. No-op after Stop.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister detaches a client. No-op after Stop.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish sends data to every client subscribed to topic. Safe to call after
// Stop; the message is then discarded.
func (h *Hub) Publish(topic string, data []byte) {
	select {
	case h.broadcast <- broadcastMsg{Topic: topic, Data: data}:
	case <-h.done:
	}
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// DefaultHub is the process-wide hub; main starts its Run loop.
var DefaultHub = NewHub()

func PushToAuthor(authorID string, data []byte) {
	DefaultHub.Publish(TopicForAuthor(authorID), data)
}

func PushChanges(data []byte) {
	DefaultHub.Publish(ChangesTopic, data)
}
