package status

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	INFO = iota
	ERROR
	PROGRESS
)

type Event struct {
	Message  string
	Time     time.Time
	Type     int
	Progress float32
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts status events to websocket clients.
// New clients get last event right after connecting.
type Hub struct {
	events   chan *Event
	lock     sync.Mutex
	clients  map[*client]bool
	last     []byte
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		events:  make(chan *Event, 16),
		clients: make(map[*client]bool),
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(time.Second * 30)
	defer func() {
		ticker.Stop()
		h.unregister(c)
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("[status] ws write msg error: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[status] ws write ping error: %v", err)
				return
			}
		}
	}
}

// readPump drains client frames so close and pong are processed
func (h *Hub) readPump(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.unregister(c)
			return
		}
	}
}

func (h *Hub) register(c *client) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.clients[c] = true
	if h.last != nil {
		c.send <- h.last
	}
}

func (h *Hub) unregister(c *client) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[status] ws upgrade error: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 32)}
	h.register(c)
	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) broadcast(e *Event) {
	data, err := json.Marshal(e)
	if err != nil {
		log.Errorf("[status] marshal error: %v", err)
		return
	}
	h.lock.Lock()
	defer h.lock.Unlock()
	h.last = data
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			log.Warnf("[status] client is too slow, dropping event")
		}
	}
}

// Run delivers published events until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case e := <-h.events:
			h.broadcast(e)
		case <-ctx.Done():
			h.lock.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.lock.Unlock()
			return
		}
	}
}

// Last returns json of latest delivered event, nil if none
func (h *Hub) Last() []byte {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.last
}

// Publish never blocks, event is dropped when queue is full
func (h *Hub) Publish(msg string, _type int, progress float32) {
	if math.IsNaN(float64(progress)) || math.IsInf(float64(progress), 0) {
		progress = 0
	}
	e := &Event{
		Message:  msg,
		Time:     time.Now(),
		Type:     _type,
		Progress: progress}
	select {
	case h.events <- e:
	default:
		log.Debugf("[status] queue is full, dropping %q", msg)
	}
}

func (h *Hub) Info(format string, a ...interface{}) {
	h.Publish(fmt.Sprintf(format, a...), INFO, 0.0)
}

func (h *Hub) Error(format string, a ...interface{}) {
	h.Publish(fmt.Sprintf(format, a...), ERROR, 0.0)
}

func (h *Hub) Progress(progress float32, format string, a ...interface{}) {
	h.Publish(fmt.Sprintf(format, a...), PROGRESS, progress)
}
