package ticker

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Price updates are public data, any origin may subscribe
		return true
	},
}

// session is one connected price subscriber
type session struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	hub       *Hub
	closeChan chan struct{}
}

// Hub fans price updates out to all connected WebSocket sessions
type Hub struct {
	sessions   map[*session]bool
	broadcast  chan []byte
	register   chan *session
	unregister chan *session
	mu         sync.RWMutex
	logger     zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		sessions:   make(map[*session]bool),
		broadcast:  make(chan []byte, 4096),
		register:   make(chan *session),
		unregister: make(chan *session),
		logger:     logger.With().Str("component", "ticker-hub").Logger(),
	}
}

// Run processes registration and broadcast traffic. Call in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case s := <-h.register:
			h.mu.Lock()
			h.sessions[s] = true
			h.mu.Unlock()
			h.logger.Debug().Str("session", s.id).Msg("session registered")

		case s := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.sessions[s]; ok {
				delete(h.sessions, s)
				close(s.send)
			}
			h.mu.Unlock()
			h.logger.Debug().Str("session", s.id).Msg("session unregistered")

		case message := <-h.broadcast:
			h.mu.Lock()
			for s := range h.sessions {
				select {
				case s.send <- message:
				default:
					// Slow consumer, drop the session via the unregister path
					go func(s *session) {
						h.unregister <- s
					}(s)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast serializes v and sends it to every session. Drops the message
// when the broadcast channel is saturated.
func (h *Hub) Broadcast(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to marshal broadcast payload")
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn().Msg("broadcast channel full, dropping message")
	}
}

// SessionCount returns the number of connected subscribers
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// HandleConnection upgrades an HTTP request to a price-stream session
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	s := &session{
		id:        uuid.New().String(),
		conn:      conn,
		send:      make(chan []byte, 256),
		hub:       h,
		closeChan: make(chan struct{}),
	}
	h.register <- s

	go s.writePump()
	go s.readPump()

	welcome := map[string]interface{}{
		"type":      "CONNECTED",
		"sessionId": s.id,
		"timestamp": time.Now(),
	}
	if data, err := json.Marshal(welcome); err == nil {
		select {
		case s.send <- data:
		default:
		}
	}
}

func (s *session) writePump() {
	ping := time.NewTicker(30 * time.Second)
	defer func() {
		ping.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ping.C:
			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.closeChan:
			return
		}
	}
}

func (s *session) readPump() {
	defer func() {
		s.hub.unregister <- s
		s.conn.Close()
		close(s.closeChan)
	}()

	s.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Subscribers only listen; drain until the connection drops
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			break
		}
	}
}
