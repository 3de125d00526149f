package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ayusman/guineaday/internal/engine"
	"github.com/ayusman/guineaday/internal/gesture"
	"github.com/ayusman/guineaday/internal/input"
	"github.com/ayusman/guineaday/internal/server/api"
)

const (
	writeWait      = 2 * time.Second
	maxMessageSize = 64 << 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Message types exchanged over the websocket.
const (
	MsgSnapshot  = "snapshot"
	MsgPointer   = "pointer"
	MsgLandmarks = "landmarks"
	MsgSurface   = "surface"
	MsgRestart   = "restart"
	MsgError     = "error"
)

// inbound is a client message. Only the fields of its type are set.
type inbound struct {
	Type string `json:"type"`

	// pointer
	Event *input.PointerEvent `json:"event,omitempty"`

	// landmarks; no points means no hand
	Points     []gesture.Point `json:"points,omitempty"`
	Handedness string          `json:"handedness,omitempty"`
	Score      float64         `json:"score,omitempty"`

	// surface
	Surface *api.SurfaceRequest `json:"surface,omitempty"`
}

// outbound is a server message.
type outbound struct {
	Type     string           `json:"type"`
	Snapshot *engine.Snapshot `json:"snapshot,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Hub streams engine snapshots to websocket clients and feeds their input
// back into the engine.
type Hub struct {
	ctrl    api.Controller
	control *api.ControlHandler
	log     *zap.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	closed  bool
}

// NewHub creates a Hub.
func NewHub(ctrl api.Controller, control *api.ControlHandler, log *zap.Logger) *Hub {
	return &Hub{
		ctrl:    ctrl,
		control: control,
		log:     log,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for conn := range h.clients {
		conn.Close()
	}
}

// ServeHTTP upgrades the connection and serves it until either side closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	snaps, unsubscribe := h.ctrl.Engine().Subscribe()
	defer unsubscribe()

	replies := make(chan outbound, 1)
	done := make(chan struct{})
	go h.write(conn, snaps, replies, done)
	defer close(done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if errMsg := h.handle(data); errMsg != "" {
			select {
			case replies <- outbound{Type: MsgError, Error: errMsg}:
			default:
			}
		}
	}
}

// write is the only writer on conn.
func (h *Hub) write(conn *websocket.Conn, snaps <-chan engine.Snapshot, replies <-chan outbound, done <-chan struct{}) {
	send := func(msg outbound) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
			return false
		}
		return true
	}

	initial := h.ctrl.Engine().Snapshot()
	if !send(outbound{Type: MsgSnapshot, Snapshot: &initial}) {
		return
	}

	for {
		select {
		case <-done:
			return
		case msg := <-replies:
			if !send(msg) {
				return
			}
		case snap, ok := <-snaps:
			if !ok {
				conn.Close()
				return
			}
			if !send(outbound{Type: MsgSnapshot, Snapshot: &snap}) {
				return
			}
		}
	}
}

// handle applies one client message and returns an error text for the client.
func (h *Hub) handle(data []byte) string {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		return "invalid message"
	}

	eng := h.ctrl.Engine()
	switch msg.Type {
	case MsgPointer:
		if msg.Event == nil {
			return "pointer message without event"
		}
		eng.PushPointer(*msg.Event)
	case MsgLandmarks:
		remote := h.ctrl.Remote()
		if remote == nil {
			return "landmarks are not accepted from clients"
		}
		remote.Push(gesture.Frame{Points: msg.Points, Handedness: msg.Handedness, Score: msg.Score})
	case MsgSurface:
		if msg.Surface == nil {
			return "surface message without surface"
		}
		if err := h.control.ApplySurface(*msg.Surface); err != nil {
			return err.Error()
		}
	case MsgRestart:
		eng.Restart()
	default:
		return "unknown message type"
	}
	return ""
}
