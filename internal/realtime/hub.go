package realtime

import (
	"go.uber.org/zap"
)

// event is one outbound payload, addressed to a single user or, with an
// empty UserID, to every connected client.
type event struct {
	UserID  string
	Payload any
}

// Hub tracks connected clients and fans events out to them. All map access
// happens on the Run goroutine.
type Hub struct {
	clients    map[string][]*Client
	events     chan event
	register   chan *Client
	unregister chan *Client
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		events:     make(chan event, 1024),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.Named("realtime"),
	}
}

// Run is the hub's event loop; it returns when stop is closed.
func (h *Hub) Run(stop <-chan struct{}) {
	for {
		select {
		case c := <-h.register:
			h.clients[c.userID] = append(h.clients[c.userID], c)
			h.logger.Debug("client connected",
				zap.String("user", c.userID), zap.Int("connections", len(h.clients[c.userID])))

		case c := <-h.unregister:
			conns := h.clients[c.userID]
			for i, existing := range conns {
				if existing == c {
					h.clients[c.userID] = append(conns[:i], conns[i+1:]...)
					close(c.send)
					break
				}
			}
			if len(h.clients[c.userID]) == 0 {
				delete(h.clients, c.userID)
			}

		case ev := <-h.events:
			if ev.UserID == "" {
				for _, conns := range h.clients {
					for _, c := range conns {
						h.deliver(c, ev.Payload)
					}
				}
				continue
			}
			for _, c := range h.clients[ev.UserID] {
				h.deliver(c, ev.Payload)
			}

		case <-stop:
			for _, conns := range h.clients {
				for _, c := range conns {
					close(c.send)
				}
			}
			h.clients = make(map[string][]*Client)
			return
		}
	}
}

// deliver hands the payload to one client, dropping it when the client's
// buffer is full. A slow reader must not stall the hub.
func (h *Hub) deliver(c *Client, payload any) {
	select {
	case c.send <- payload:
	default:
		h.logger.Warn("client send buffer full, dropping event", zap.String("user", c.userID))
	}
}

// Push implements the service layer's broadcaster. An empty userID means
// broadcast. Events are dropped when the hub queue is full.
func (h *Hub) Push(userID string, payload any) {
	select {
	case h.events <- event{UserID: userID, Payload: payload}:
	default:
		h.logger.Warn("event queue full, dropping event", zap.String("user", userID))
	}
}
